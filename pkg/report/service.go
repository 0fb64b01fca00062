package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/marginly/marginly/internal/metrics"
	"github.com/marginly/marginly/pkg/deliverable"
	"github.com/marginly/marginly/pkg/expense"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/project"
	"github.com/marginly/marginly/pkg/timelog"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ProjectReader interface {
	GetProject(ctx context.Context, id int) (project.Project, error)
	ListProjects(ctx context.Context, filter project.Filter) ([]project.Project, error)
	ListTeamMembers(ctx context.Context, projectId int) ([]project.TeamMember, error)
}

type TimeLogReader interface {
	List(ctx context.Context, filter timelog.Filter) ([]timelog.TimeLog, error)
}

type ExpenseReader interface {
	ListByProject(ctx context.Context, projectId int) ([]expense.Expense, error)
}

type DeliverableReader interface {
	Upcoming(ctx context.Context, days int) ([]deliverable.Deliverable, error)
}

type Service interface {
	Financials(ctx context.Context, projectId int) (Financials, error)
	// Variance compares planned and actual figures of one project, or of every project when projectId is 0.
	Variance(ctx context.Context, projectId int) ([]VarianceRow, error)
	Profitability(ctx context.Context, groupBy string) ([]ProfitabilityRow, error)
	BillableHours(ctx context.Context, filter timelog.Filter) ([]BillableHoursRow, error)
	CostByRole(ctx context.Context, projectId int) ([]RoleCost, error)
	CostBreakdown(ctx context.Context, projectId int) (CostBreakdown, error)
	Dashboard(ctx context.Context) (Dashboard, error)
}

type ServiceImpl struct {
	projects     ProjectReader
	timeLogs     TimeLogReader
	expenses     ExpenseReader
	deliverables DeliverableReader
	thresholds   finance.Thresholds
	upcomingDays int
}

func NewService(
	projects ProjectReader,
	timeLogs TimeLogReader,
	expenses ExpenseReader,
	deliverables DeliverableReader,
	thresholds finance.Thresholds,
	upcomingDays int,
) *ServiceImpl {
	return &ServiceImpl{
		projects:     projects,
		timeLogs:     timeLogs,
		expenses:     expenses,
		deliverables: deliverables,
		thresholds:   thresholds,
		upcomingDays: upcomingDays,
	}
}

func (s *ServiceImpl) Financials(ctx context.Context, projectId int) (Financials, error) {
	p, err := s.projects.GetProject(ctx, projectId)
	if err != nil {
		return Financials{}, err
	}
	financials, err := s.financials(ctx, p)
	if err != nil {
		return Financials{}, err
	}
	if financials.AlertLevel != finance.AlertNone {
		log.Infof("project %d is at %s%% of its budget (%s)", p.Id, financials.BudgetUtilizationRaw.Round(2), financials.AlertLevel)
		metrics.RecordBudgetAlert(string(financials.AlertLevel))
	}
	return financials, nil
}

// financials derives the budget from the current allocations instead of trusting the stored column.
func (s *ServiceImpl) financials(ctx context.Context, p project.Project) (Financials, error) {
	members, err := s.projects.ListTeamMembers(ctx, p.Id)
	if err != nil {
		return Financials{}, err
	}
	logs, err := s.timeLogs.List(ctx, timelog.Filter{ProjectId: p.Id})
	if err != nil {
		return Financials{}, err
	}
	expenses, err := s.expenses.ListByProject(ctx, p.Id)
	if err != nil {
		return Financials{}, err
	}
	amounts := expense.Amounts(expenses)

	planned, err := finance.PlannedCost(p.HourlyRate, project.LaborRecords(members), amounts)
	if err != nil {
		return Financials{}, fmt.Errorf("project %d planned cost: %w", p.Id, err)
	}
	actual, err := finance.ActualCost(p.HourlyRate, timelog.LaborRecords(logs), amounts)
	if err != nil {
		return Financials{}, fmt.Errorf("project %d actual cost: %w", p.Id, err)
	}
	return Financials{
		ProjectId:         p.Id,
		ProjectName:       p.Name,
		Status:            p.Status,
		Planned:           planned,
		Actual:            actual,
		ProjectFinancials: s.thresholds.Summarize(planned, actual, p.ProfitMargin),
	}, nil
}

func (s *ServiceImpl) allFinancials(ctx context.Context) ([]Financials, []project.Project, error) {
	projects, err := s.projects.ListProjects(ctx, project.Filter{})
	if err != nil {
		return nil, nil, err
	}
	result := make([]Financials, 0, len(projects))
	for _, p := range projects {
		f, err := s.financials(ctx, p)
		if err != nil {
			return nil, nil, err
		}
		result = append(result, f)
	}
	return result, projects, nil
}

// Variance compares planned and actual labor and hours, and the derived budget against the actual total cost.
// Expenses are recorded once and count the same on both sides, so they only show up in the total.
func (s *ServiceImpl) Variance(ctx context.Context, projectId int) ([]VarianceRow, error) {
	var all []Financials
	if projectId != 0 {
		p, err := s.projects.GetProject(ctx, projectId)
		if err != nil {
			return nil, err
		}
		f, err := s.financials(ctx, p)
		if err != nil {
			return nil, err
		}
		all = []Financials{f}
	} else {
		var err error
		if all, _, err = s.allFinancials(ctx); err != nil {
			return nil, err
		}
	}

	var plannedLabor, actualLabor, plannedHours, actualHours, budget, actualTotal decimal.Decimal
	for _, f := range all {
		plannedLabor = plannedLabor.Add(f.Planned.LaborCost)
		actualLabor = actualLabor.Add(f.Actual.LaborCost)
		plannedHours = plannedHours.Add(f.Planned.TotalHours)
		actualHours = actualHours.Add(f.Actual.TotalHours)
		budget = budget.Add(f.Budget)
		actualTotal = actualTotal.Add(f.TotalActualCost)
	}
	return []VarianceRow{
		varianceRow(CategoryLabor, plannedLabor, actualLabor),
		varianceRow(CategoryHours, plannedHours, actualHours),
		varianceRow(CategoryTotal, budget, actualTotal),
	}, nil
}

// Profitability treats the derived budget as revenue and the actual cost as cost.
func (s *ServiceImpl) Profitability(ctx context.Context, groupBy string) ([]ProfitabilityRow, error) {
	all, projects, err := s.allFinancials(ctx)
	if err != nil {
		return nil, err
	}

	switch groupBy {
	case "", GroupByProject:
		rows := make([]ProfitabilityRow, 0, len(all))
		for _, f := range all {
			rows = append(rows, profitabilityRow(f.ProjectId, f.ProjectName, f.Budget, f.TotalActualCost))
		}
		return rows, nil
	case GroupByClient:
		type totals struct {
			name          string
			revenue, cost decimal.Decimal
		}
		byClient := map[int]*totals{}
		for i, f := range all {
			clientId, name := 0, NoClientName
			if projects[i].ClientId != nil {
				clientId, name = *projects[i].ClientId, projects[i].ClientName
			}
			t, ok := byClient[clientId]
			if !ok {
				t = &totals{name: name}
				byClient[clientId] = t
			}
			t.revenue = t.revenue.Add(f.Budget)
			t.cost = t.cost.Add(f.TotalActualCost)
		}
		rows := make([]ProfitabilityRow, 0, len(byClient))
		for id, t := range byClient {
			rows = append(rows, profitabilityRow(id, t.name, t.revenue, t.cost))
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Id < rows[j].Id })
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: unknown grouping %q", finance.ErrInvalidInput, groupBy)
	}
}

func (s *ServiceImpl) BillableHours(ctx context.Context, filter timelog.Filter) ([]BillableHoursRow, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, fmt.Errorf("%w: to date is before from date", finance.ErrInvalidInput)
	}
	if filter.ProjectId != 0 {
		if _, err := s.projects.GetProject(ctx, filter.ProjectId); err != nil {
			return nil, err
		}
	}
	logs, err := s.timeLogs.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	projectRates := map[int]decimal.Decimal{}
	byUser := map[int]*BillableHoursRow{}
	for _, l := range logs {
		if l.Hours.IsNegative() {
			return nil, fmt.Errorf("%w: time log %d has negative hours", finance.ErrInvalidInput, l.Id)
		}
		row, ok := byUser[l.UserId]
		if !ok {
			row = &BillableHoursRow{UserId: l.UserId, UserName: l.UserName}
			byUser[l.UserId] = row
		}
		row.TotalHours = row.TotalHours.Add(l.Hours)
		if !l.Billable {
			row.NonBillableHours = row.NonBillableHours.Add(l.Hours)
			continue
		}
		rate, ok := projectRates[l.ProjectId]
		if !ok {
			p, err := s.projects.GetProject(ctx, l.ProjectId)
			if err != nil {
				return nil, err
			}
			rate = p.HourlyRate
			projectRates[l.ProjectId] = rate
		}
		row.BillableHours = row.BillableHours.Add(l.Hours)
		row.BillableValue = row.BillableValue.Add(finance.ResolveRate(l.UserRate, rate).Mul(l.Hours))
	}

	rows := make([]BillableHoursRow, 0, len(byUser))
	for _, row := range byUser {
		row.BillablePercent = share(row.BillableHours, row.TotalHours)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserName != rows[j].UserName {
			return rows[i].UserName < rows[j].UserName
		}
		return rows[i].UserId < rows[j].UserId
	})
	return rows, nil
}

func (s *ServiceImpl) CostByRole(ctx context.Context, projectId int) ([]RoleCost, error) {
	p, err := s.projects.GetProject(ctx, projectId)
	if err != nil {
		return nil, err
	}
	members, err := s.projects.ListTeamMembers(ctx, projectId)
	if err != nil {
		return nil, err
	}

	byRole := map[string]*RoleCost{}
	var roles []string
	total := decimal.Zero
	for _, m := range members {
		summary, err := finance.LaborCost(finance.PlannedLabor, p.HourlyRate, project.LaborRecords([]project.TeamMember{m}))
		if err != nil {
			return nil, err
		}
		role, ok := byRole[m.Role]
		if !ok {
			role = &RoleCost{Role: m.Role}
			byRole[m.Role] = role
			roles = append(roles, m.Role)
		}
		role.Members++
		role.Hours = role.Hours.Add(m.Hours)
		role.Cost = role.Cost.Add(summary.LaborCost)
		total = total.Add(summary.LaborCost)
	}

	sort.Strings(roles)
	result := make([]RoleCost, 0, len(roles))
	for _, name := range roles {
		role := byRole[name]
		role.Share = share(role.Cost, total)
		result = append(result, *role)
	}
	return result, nil
}

// CostBreakdown splits the actual cost into labor and one category per expense type.
func (s *ServiceImpl) CostBreakdown(ctx context.Context, projectId int) (CostBreakdown, error) {
	p, err := s.projects.GetProject(ctx, projectId)
	if err != nil {
		return CostBreakdown{}, err
	}
	logs, err := s.timeLogs.List(ctx, timelog.Filter{ProjectId: projectId})
	if err != nil {
		return CostBreakdown{}, err
	}
	expenses, err := s.expenses.ListByProject(ctx, projectId)
	if err != nil {
		return CostBreakdown{}, err
	}
	actual, err := finance.ActualCost(p.HourlyRate, timelog.LaborRecords(logs), expense.Amounts(expenses))
	if err != nil {
		return CostBreakdown{}, err
	}

	byType := map[string]decimal.Decimal{}
	var types []string
	for _, e := range expenses {
		if _, ok := byType[e.Type]; !ok {
			types = append(types, e.Type)
		}
		byType[e.Type] = byType[e.Type].Add(e.Amount)
	}
	sort.Strings(types)

	categories := make([]CostCategory, 0, len(types)+1)
	categories = append(categories, CostCategory{
		Category: CategoryLabor,
		Amount:   actual.LaborCost,
		Share:    share(actual.LaborCost, actual.TotalCost),
	})
	for _, t := range types {
		categories = append(categories, CostCategory{Category: t, Amount: byType[t], Share: share(byType[t], actual.TotalCost)})
	}
	return CostBreakdown{ProjectId: projectId, TotalCost: actual.TotalCost, Categories: categories}, nil
}

func (s *ServiceImpl) Dashboard(ctx context.Context) (Dashboard, error) {
	all, _, err := s.allFinancials(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	dashboard := Dashboard{
		TotalProjects:    len(all),
		ProjectsByStatus: map[project.Status]int{},
		Alerts:           make([]ProjectAlert, 0),
	}
	for _, status := range project.Statuses {
		dashboard.ProjectsByStatus[status] = 0
	}
	for _, f := range all {
		dashboard.ProjectsByStatus[f.Status]++
		dashboard.TotalBudget = dashboard.TotalBudget.Add(f.Budget)
		dashboard.TotalActualCost = dashboard.TotalActualCost.Add(f.TotalActualCost)
		switch f.AlertLevel {
		case finance.AlertWarning:
			dashboard.WarningCount++
		case finance.AlertOverBudget:
			dashboard.OverBudgetCount++
		default:
			continue
		}
		dashboard.Alerts = append(dashboard.Alerts, ProjectAlert{
			ProjectId:   f.ProjectId,
			ProjectName: f.ProjectName,
			Utilization: f.BudgetUtilizationRaw.Round(2),
			Level:       f.AlertLevel,
		})
	}
	dashboard.Utilization = s.thresholds.Utilization(dashboard.TotalActualCost, dashboard.TotalBudget)

	dashboard.Upcoming, err = s.deliverables.Upcoming(ctx, s.upcomingDays)
	if err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}
