package finance

import "github.com/shopspring/decimal"

// ProjectFinancials is the financial summary of a single project.
type ProjectFinancials struct {
	PlannedCost              decimal.Decimal
	TotalLaborCost           decimal.Decimal
	TotalExpenses            decimal.Decimal
	TotalActualCost          decimal.Decimal
	Budget                   decimal.Decimal
	BudgetVariance           decimal.Decimal
	BudgetUtilizationPercent decimal.Decimal
	BudgetUtilizationRaw     decimal.Decimal
	AlertLevel               AlertLevel
	TargetProfitMargin       decimal.Decimal
	TargetProfitAmount       decimal.Decimal
	RevenueTarget            decimal.Decimal
	TotalHours               decimal.Decimal
	BillableHours            decimal.Decimal
	NonBillableHours         decimal.Decimal
}

// Summarize derives the budget, rounded to cents, from the planned cost and compares it with the actual cost.
// The revenue target is the derived budget; the target profit is what it leaves above planned cost.
func (t Thresholds) Summarize(planned, actual CostSummary, profitMarginPercent decimal.Decimal) ProjectFinancials {
	budget := RoundedBudget(planned.TotalCost, profitMarginPercent)
	variance := ComputeVariance(budget, actual.TotalCost)
	utilization := t.Utilization(actual.TotalCost, budget)
	target := ComputeProfitMargin(budget, planned.TotalCost)

	return ProjectFinancials{
		PlannedCost:              planned.TotalCost,
		TotalLaborCost:           actual.LaborCost,
		TotalExpenses:            actual.ExpensesCost,
		TotalActualCost:          actual.TotalCost,
		Budget:                   budget,
		BudgetVariance:           variance.Variance,
		BudgetUtilizationPercent: utilization.Display,
		BudgetUtilizationRaw:     utilization.Raw,
		AlertLevel:               utilization.Level,
		TargetProfitMargin:       profitMarginPercent,
		TargetProfitAmount:       target.Profit,
		RevenueTarget:            budget,
		TotalHours:               actual.TotalHours,
		BillableHours:            actual.BillableHours,
		NonBillableHours:         actual.NonBillableHours,
	}
}
