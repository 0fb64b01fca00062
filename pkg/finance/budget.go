package finance

import "github.com/shopspring/decimal"

// Thresholds are utilization percentages above which a budget is flagged.
type Thresholds struct {
	Warning    decimal.Decimal
	OverBudget decimal.Decimal
}

var DefaultThresholds = Thresholds{
	Warning:    decimal.NewFromInt(90),
	OverBudget: decimal.NewFromInt(100),
}

// DeriveBudget marks the cost up by the profit margin percentage: cost x (1 + margin/100).
// Negative margins are allowed and produce a budget below cost.
func DeriveBudget(totalCost decimal.Decimal, profitMarginPercent decimal.Decimal) decimal.Decimal {
	return totalCost.Mul(decimal.NewFromInt(1).Add(profitMarginPercent.Div(hundred)))
}

// RoundedBudget is DeriveBudget rounded to cents, the budget that is stored and reported.
func RoundedBudget(totalCost decimal.Decimal, profitMarginPercent decimal.Decimal) decimal.Decimal {
	return DeriveBudget(totalCost, profitMarginPercent).Round(2)
}

// ComputeVariance returns planned - actual and its share of planned.
// With nothing planned, the percentage is 0 when nothing was spent and -100 otherwise.
func ComputeVariance(planned, actual decimal.Decimal) Variance {
	variance := planned.Sub(actual)
	var percent decimal.Decimal
	switch {
	case !planned.IsZero():
		percent = variance.Div(planned).Mul(hundred)
	case actual.IsZero():
		percent = decimal.Zero
	default:
		percent = hundred.Neg()
	}
	return Variance{Variance: variance, PercentVariance: percent}
}

// ComputeProfitMargin returns revenue - cost and the profit as a percentage of revenue.
// With no revenue, the margin is 0 when there is no cost and -100 otherwise.
func ComputeProfitMargin(revenue, cost decimal.Decimal) Profit {
	profit := revenue.Sub(cost)
	var margin decimal.Decimal
	switch {
	case !revenue.IsZero():
		margin = profit.Div(revenue).Mul(hundred)
	case cost.IsZero():
		margin = decimal.Zero
	default:
		margin = hundred.Neg()
	}
	return Profit{Profit: profit, Margin: margin}
}

// BudgetUtilization uses DefaultThresholds.
func BudgetUtilization(actualCost, budget decimal.Decimal) Utilization {
	return DefaultThresholds.Utilization(actualCost, budget)
}

// Utilization returns actual cost as a percentage of budget, both clamped for display and raw for alerting.
// A zero budget reads as 100% once anything is spent and is then always over budget.
func (t Thresholds) Utilization(actualCost, budget decimal.Decimal) Utilization {
	if budget.IsZero() {
		if actualCost.IsPositive() {
			return Utilization{Display: hundred, Raw: hundred, Level: AlertOverBudget}
		}
		return Utilization{Display: decimal.Zero, Raw: decimal.Zero, Level: AlertNone}
	}

	raw := actualCost.Div(budget).Mul(hundred)
	display := decimal.Min(raw, hundred)
	if display.IsNegative() {
		display = decimal.Zero
	}
	return Utilization{Display: display, Raw: raw, Level: t.Level(raw)}
}

func (t Thresholds) Level(raw decimal.Decimal) AlertLevel {
	switch {
	case raw.GreaterThan(t.OverBudget):
		return AlertOverBudget
	case raw.GreaterThan(t.Warning):
		return AlertWarning
	default:
		return AlertNone
	}
}
