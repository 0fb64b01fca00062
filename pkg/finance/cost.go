package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LaborCost sums resolved rate x hours over the records. In ActualLabor mode only billable records are priced;
// hours of every record are still counted.
func LaborCost(mode LaborMode, projectRate decimal.Decimal, records []LaborRecord) (CostSummary, error) {
	if projectRate.IsNegative() {
		return CostSummary{}, fmt.Errorf("%w: negative project rate %s", ErrInvalidInput, projectRate)
	}
	summary := CostSummary{
		Mode:             mode,
		LaborCost:        decimal.Zero,
		ExpensesCost:     decimal.Zero,
		TotalCost:        decimal.Zero,
		TotalHours:       decimal.Zero,
		BillableHours:    decimal.Zero,
		NonBillableHours: decimal.Zero,
	}
	for i, r := range records {
		if r.Hours.IsNegative() {
			return CostSummary{}, fmt.Errorf("%w: record %d has negative hours %s", ErrInvalidInput, i, r.Hours)
		}
		if r.UserRate.Valid && r.UserRate.Decimal.IsNegative() {
			return CostSummary{}, fmt.Errorf("%w: record %d has negative rate %s", ErrInvalidInput, i, r.UserRate.Decimal)
		}
		summary.TotalHours = summary.TotalHours.Add(r.Hours)

		billable := mode == PlannedLabor || r.Billable
		if !billable {
			summary.NonBillableHours = summary.NonBillableHours.Add(r.Hours)
			continue
		}
		summary.BillableHours = summary.BillableHours.Add(r.Hours)
		summary.LaborCost = summary.LaborCost.Add(ResolveRate(r.UserRate, projectRate).Mul(r.Hours))
	}
	summary.TotalCost = summary.LaborCost
	return summary, nil
}

// ExpensesCost sums expense amounts.
func ExpensesCost(amounts []decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, amount := range amounts {
		if amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: expense %d has negative amount %s", ErrInvalidInput, i, amount)
		}
		total = total.Add(amount)
	}
	return total, nil
}

// TotalCost aggregates labor and expenses into the total cost of a project.
func TotalCost(mode LaborMode, projectRate decimal.Decimal, labor []LaborRecord, expenses []decimal.Decimal) (CostSummary, error) {
	summary, err := LaborCost(mode, projectRate, labor)
	if err != nil {
		return CostSummary{}, err
	}
	expensesCost, err := ExpensesCost(expenses)
	if err != nil {
		return CostSummary{}, err
	}
	summary.ExpensesCost = expensesCost
	summary.TotalCost = summary.LaborCost.Add(expensesCost)
	return summary, nil
}

// PlannedCost is TotalCost in PlannedLabor mode.
func PlannedCost(projectRate decimal.Decimal, members []LaborRecord, expenses []decimal.Decimal) (CostSummary, error) {
	return TotalCost(PlannedLabor, projectRate, members, expenses)
}

// ActualCost is TotalCost in ActualLabor mode.
func ActualCost(projectRate decimal.Decimal, logs []LaborRecord, expenses []decimal.Decimal) (CostSummary, error) {
	return TotalCost(ActualLabor, projectRate, logs, expenses)
}
