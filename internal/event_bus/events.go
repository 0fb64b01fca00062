package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ExpenseCreatedType  EventType = "project.expense.created"
	ExpenseDeletedType  EventType = "project.expense.deleted"
	UserRateUpdatedType EventType = "user.rate.updated"
)

type ExpenseCreated struct {
	Id        int
	ProjectId int
	Amount    decimal.Decimal
	Type      string
	Date      time.Time
}

type ExpenseDeleted struct {
	Id        int
	ProjectId int
}

// UserRateUpdated is published when a user's personal hourly rate is set, changed or cleared.
type UserRateUpdated struct {
	UserId     int
	HourlyRate decimal.NullDecimal
}
