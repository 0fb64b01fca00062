package finance

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a negative hours, rate or amount value reaches the model.
var ErrInvalidInput = errors.New("invalid input")

var hundred = decimal.NewFromInt(100)

// LaborMode selects which labor records feed the cost aggregation.
type LaborMode string

const (
	// PlannedLabor sums allocated team member hours. Used when deriving a project budget.
	PlannedLabor LaborMode = "planned"
	// ActualLabor sums billable time log hours. Used when measuring realized cost.
	ActualLabor LaborMode = "actual"
)

// LaborRecord is a team member allocation or a time log reduced to what the model needs.
type LaborRecord struct {
	// UserRate is the personal hourly rate of the user; invalid when the user has none.
	UserRate decimal.NullDecimal
	Hours    decimal.Decimal
	// Billable is only consulted in ActualLabor mode. Team member allocations are always billable.
	Billable bool
}

type CostSummary struct {
	Mode             LaborMode
	LaborCost        decimal.Decimal
	ExpensesCost     decimal.Decimal
	TotalCost        decimal.Decimal
	TotalHours       decimal.Decimal
	BillableHours    decimal.Decimal
	NonBillableHours decimal.Decimal
}

type Variance struct {
	Variance        decimal.Decimal
	PercentVariance decimal.Decimal
}

type Profit struct {
	Profit decimal.Decimal
	Margin decimal.Decimal
}

type AlertLevel string

const (
	AlertNone       AlertLevel = "none"
	AlertWarning    AlertLevel = "warning"
	AlertOverBudget AlertLevel = "over_budget"
)

type Utilization struct {
	// Display is clamped to [0, 100] for progress bars.
	Display decimal.Decimal
	// Raw is the unclamped actual/budget ratio used for threshold checks.
	Raw   decimal.Decimal
	Level AlertLevel
}
