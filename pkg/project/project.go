package project

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPlanning  Status = "Planning"
	StatusActive    Status = "Active"
	StatusOnHold    Status = "On Hold"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var Statuses = []Status{StatusPlanning, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled}

type Project struct {
	Id          int
	ClientId    *int
	ClientName  string
	Name        string
	Description string
	Status      Status
	StartDate   *time.Time
	EndDate     *time.Time
	// Budget is the last persisted budget. Reports derive the budget again from planned cost.
	Budget         decimal.Decimal
	HourlyRate     decimal.Decimal
	EstimatedHours decimal.Decimal
	// ProfitMargin in percent.
	ProfitMargin decimal.Decimal
}

type TeamMember struct {
	Id        int
	ProjectId int
	UserId    int
	UserName  string
	UserRate  decimal.NullDecimal
	Role      string
	// Hours allocated to the member, not logged time.
	Hours decimal.Decimal
}

type Filter struct {
	Status   Status
	ClientId int
}
