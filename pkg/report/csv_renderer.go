package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	RenderFinancials(financials Financials) (string, error)
	RenderVariance(rows []VarianceRow) (string, error)
	RenderProfitability(rows []ProfitabilityRow) (string, error)
}

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

func (r *CsvRendererImpl) RenderFinancials(f Financials) (string, error) {
	data := [][]string{
		{"Project", f.ProjectName},
		{"Status", string(f.Status)},
		{"Planned cost", money(f.PlannedCost)},
		{"Budget", money(f.Budget)},
		{"Labor cost", money(f.TotalLaborCost)},
		{"Expenses", money(f.TotalExpenses)},
		{"Actual cost", money(f.TotalActualCost)},
		{"Budget variance", money(f.BudgetVariance)},
		{"Budget utilization", percent(f.BudgetUtilizationRaw)},
		{"Alert", string(f.AlertLevel)},
		{"Target profit margin", percent(f.TargetProfitMargin)},
		{"Target profit", money(f.TargetProfitAmount)},
		{"Total hours", f.TotalHours.String()},
		{"Billable hours", f.BillableHours.String()},
		{"Non-billable hours", f.NonBillableHours.String()},
	}
	return writeCsv(data)
}

func (r *CsvRendererImpl) RenderVariance(rows []VarianceRow) (string, error) {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, []string{"Category", "Budget", "Actual", "Variance", "Variance %"})
	for _, row := range rows {
		amount := money
		if row.Category == CategoryHours {
			amount = func(d decimal.Decimal) string { return d.String() }
		}
		data = append(data, []string{
			row.Category,
			amount(row.Budget),
			amount(row.Actual),
			amount(row.Variance),
			percent(row.PercentVariance),
		})
	}
	return writeCsv(data)
}

func (r *CsvRendererImpl) RenderProfitability(rows []ProfitabilityRow) (string, error) {
	data := make([][]string, 0, len(rows)+2)
	data = append(data, []string{"Id", "Name", "Revenue", "Cost", "Profit", "Margin %"})
	var revenue, cost decimal.Decimal
	for _, row := range rows {
		revenue = revenue.Add(row.Revenue)
		cost = cost.Add(row.Cost)
		data = append(data, []string{
			strconv.Itoa(row.Id),
			row.Name,
			money(row.Revenue),
			money(row.Cost),
			money(row.Profit),
			percent(row.Margin),
		})
	}
	total := profitabilityRow(0, "Total", revenue, cost)
	data = append(data, []string{"", total.Name, money(total.Revenue), money(total.Cost), money(total.Profit), percent(total.Margin)})
	return writeCsv(data)
}

func writeCsv(data [][]string) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.Round(2).String()
}
