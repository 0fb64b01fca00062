package report

import (
	"github.com/marginly/marginly/pkg/deliverable"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/project"
	"github.com/shopspring/decimal"
)

const (
	CategoryLabor = "Labor"
	CategoryHours = "Hours"
	CategoryTotal = "Total"

	GroupByProject = "project"
	GroupByClient  = "client"

	// NoClientName labels projects without a client when grouping by client.
	NoClientName = "No client"
)

var hundred = decimal.NewFromInt(100)

type Financials struct {
	ProjectId   int
	ProjectName string
	Status      project.Status
	Planned     finance.CostSummary
	Actual      finance.CostSummary
	finance.ProjectFinancials
}

type VarianceRow struct {
	Category        string
	Budget          decimal.Decimal
	Actual          decimal.Decimal
	Variance        decimal.Decimal
	PercentVariance decimal.Decimal
}

type ProfitabilityRow struct {
	Id      int
	Name    string
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Profit  decimal.Decimal
	Margin  decimal.Decimal
}

type BillableHoursRow struct {
	UserId           int
	UserName         string
	TotalHours       decimal.Decimal
	BillableHours    decimal.Decimal
	NonBillableHours decimal.Decimal
	BillablePercent  decimal.Decimal
	// BillableValue prices billable hours at the resolved rate of each log.
	BillableValue decimal.Decimal
}

type RoleCost struct {
	Role    string
	Members int
	Hours   decimal.Decimal
	Cost    decimal.Decimal
	Share   decimal.Decimal
}

type CostCategory struct {
	Category string
	Amount   decimal.Decimal
	Share    decimal.Decimal
}

type CostBreakdown struct {
	ProjectId  int
	TotalCost  decimal.Decimal
	Categories []CostCategory
}

type ProjectAlert struct {
	ProjectId   int
	ProjectName string
	Utilization decimal.Decimal
	Level       finance.AlertLevel
}

type Dashboard struct {
	TotalProjects    int
	ProjectsByStatus map[project.Status]int
	TotalBudget      decimal.Decimal
	TotalActualCost  decimal.Decimal
	Utilization      finance.Utilization
	WarningCount     int
	OverBudgetCount  int
	Alerts           []ProjectAlert
	Upcoming         []deliverable.Deliverable
}

// varianceRow rounds the percentage to two places; amounts stay exact.
func varianceRow(category string, budget, actual decimal.Decimal) VarianceRow {
	v := finance.ComputeVariance(budget, actual)
	return VarianceRow{
		Category:        category,
		Budget:          budget,
		Actual:          actual,
		Variance:        v.Variance,
		PercentVariance: v.PercentVariance.Round(2),
	}
}

func profitabilityRow(id int, name string, revenue, cost decimal.Decimal) ProfitabilityRow {
	p := finance.ComputeProfitMargin(revenue, cost)
	return ProfitabilityRow{
		Id:      id,
		Name:    name,
		Revenue: revenue,
		Cost:    cost,
		Profit:  p.Profit,
		Margin:  p.Margin.Round(2),
	}
}

// share is part/total in percent; zero when total is zero.
func share(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}
