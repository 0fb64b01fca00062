package user

import "github.com/shopspring/decimal"

type User struct {
	Id    int
	Uid   string
	Name  string
	Email string
	// HourlyRate is the user's personal rate. When not set, projects bill the user at their default rate.
	HourlyRate decimal.NullDecimal
}
