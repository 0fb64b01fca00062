package report

import (
	"errors"
	"net/http"

	"github.com/marginly/marginly/internal/rest"
	"github.com/marginly/marginly/pkg/deliverable"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/project"
	"github.com/marginly/marginly/pkg/timelog"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type FinancialsDTO struct {
	ProjectId                int             `json:"projectId"`
	ProjectName              string          `json:"projectName"`
	Status                   string          `json:"status"`
	PlannedCost              decimal.Decimal `json:"plannedCost"`
	PlannedLaborCost         decimal.Decimal `json:"plannedLaborCost"`
	PlannedHours             decimal.Decimal `json:"plannedHours"`
	Budget                   decimal.Decimal `json:"budget"`
	TotalLaborCost           decimal.Decimal `json:"totalLaborCost"`
	TotalExpenses            decimal.Decimal `json:"totalExpenses"`
	TotalActualCost          decimal.Decimal `json:"totalActualCost"`
	BudgetVariance           decimal.Decimal `json:"budgetVariance"`
	BudgetUtilizationPercent decimal.Decimal `json:"budgetUtilizationPercent"`
	BudgetUtilizationRaw     decimal.Decimal `json:"budgetUtilizationRaw"`
	AlertLevel               string          `json:"alertLevel"`
	TargetProfitMargin       decimal.Decimal `json:"targetProfitMargin"`
	TargetProfitAmount       decimal.Decimal `json:"targetProfitAmount"`
	RevenueTarget            decimal.Decimal `json:"revenueTarget"`
	TotalHours               decimal.Decimal `json:"totalHours"`
	BillableHours            decimal.Decimal `json:"billableHours"`
	NonBillableHours         decimal.Decimal `json:"nonBillableHours"`
}

type VarianceRowDTO struct {
	Category        string          `json:"category"`
	Budget          decimal.Decimal `json:"budget"`
	Actual          decimal.Decimal `json:"actual"`
	Variance        decimal.Decimal `json:"variance"`
	PercentVariance decimal.Decimal `json:"percentVariance"`
}

type ProfitabilityRowDTO struct {
	Id      int             `json:"id"`
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Margin  decimal.Decimal `json:"margin"`
}

type BillableHoursRowDTO struct {
	UserId           int             `json:"userId"`
	UserName         string          `json:"userName"`
	TotalHours       decimal.Decimal `json:"totalHours"`
	BillableHours    decimal.Decimal `json:"billableHours"`
	NonBillableHours decimal.Decimal `json:"nonBillableHours"`
	BillablePercent  decimal.Decimal `json:"billablePercent"`
	BillableValue    decimal.Decimal `json:"billableValue"`
}

type RoleCostDTO struct {
	Role    string          `json:"role"`
	Members int             `json:"members"`
	Hours   decimal.Decimal `json:"hours"`
	Cost    decimal.Decimal `json:"cost"`
	Share   decimal.Decimal `json:"share"`
}

type CostCategoryDTO struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Share    decimal.Decimal `json:"share"`
}

type CostBreakdownDTO struct {
	ProjectId  int               `json:"projectId"`
	TotalCost  decimal.Decimal   `json:"totalCost"`
	Categories []CostCategoryDTO `json:"categories"`
}

type ProjectAlertDTO struct {
	ProjectId   int             `json:"projectId"`
	ProjectName string          `json:"projectName"`
	Utilization decimal.Decimal `json:"utilization"`
	Level       string          `json:"level"`
}

type UpcomingDeliverableDTO struct {
	Id          int    `json:"id"`
	ProjectId   int    `json:"projectId"`
	ProjectName string `json:"projectName"`
	Name        string `json:"name"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
}

type DashboardDTO struct {
	TotalProjects       int                      `json:"totalProjects"`
	ProjectsByStatus    map[string]int           `json:"projectsByStatus"`
	TotalBudget         decimal.Decimal          `json:"totalBudget"`
	TotalActualCost     decimal.Decimal          `json:"totalActualCost"`
	BudgetUtilization   decimal.Decimal          `json:"budgetUtilization"`
	AlertLevel          string                   `json:"alertLevel"`
	WarningCount        int                      `json:"warningCount"`
	OverBudgetCount     int                      `json:"overBudgetCount"`
	Alerts              []ProjectAlertDTO        `json:"alerts"`
	UpcomingDeliverable []UpcomingDeliverableDTO `json:"upcomingDeliverables"`
}

type profitabilityQuery struct {
	GroupBy string `json:"groupBy" validate:"omitempty,oneof=project client"`
}

type Handler struct {
	service  Service
	renderer Renderer
}

func NewHandler(service Service, renderer Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// Financials godoc
// @Summary Financial summary of a project
// @Description Budget is derived from the current planned cost, actual cost from billable time logs and expenses
// @Tags Report
// @Produce json,text/csv
// @Param projectId path int true "Project ID"
// @Success 200 {object} FinancialsDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/financials [get]
// @Security XUserId
func (h *Handler) Financials(w http.ResponseWriter, r *http.Request) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return
	}
	financials, err := h.service.Financials(r.Context(), projectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rest.WantsCSV(r) {
		h.writeCsv(w, func() (string, error) { return h.renderer.RenderFinancials(financials) })
		return
	}
	rest.WriteJSON(w, http.StatusOK, NewFinancialsDTO(financials))
}

// Variance godoc
// @Summary Planned versus actual figures by category
// @Description Without projectId the rows cover every project
// @Tags Report
// @Produce json,text/csv
// @Param projectId query int false "Project ID"
// @Success 200 {array} VarianceRowDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/report/variance [get]
// @Security XUserId
func (h *Handler) Variance(w http.ResponseWriter, r *http.Request) {
	projectId, err := rest.OptionalIntQuery(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return
	}
	rows, err := h.service.Variance(r.Context(), projectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rest.WantsCSV(r) {
		h.writeCsv(w, func() (string, error) { return h.renderer.RenderVariance(rows) })
		return
	}
	dtos := make([]VarianceRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, VarianceRowDTO{
			Category:        row.Category,
			Budget:          row.Budget.Round(2),
			Actual:          row.Actual.Round(2),
			Variance:        row.Variance.Round(2),
			PercentVariance: row.PercentVariance,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Profitability godoc
// @Summary Revenue, cost and margin per project or per client
// @Tags Report
// @Produce json,text/csv
// @Param groupBy query string false "project (default) or client"
// @Success 200 {array} ProfitabilityRowDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/report/profitability [get]
// @Security XUserId
func (h *Handler) Profitability(w http.ResponseWriter, r *http.Request) {
	query := profitabilityQuery{GroupBy: r.URL.Query().Get("groupBy")}
	if err := rest.Validate(query); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid groupBy", "groupBy must be project or client")
		return
	}
	rows, err := h.service.Profitability(r.Context(), query.GroupBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rest.WantsCSV(r) {
		h.writeCsv(w, func() (string, error) { return h.renderer.RenderProfitability(rows) })
		return
	}
	rest.WriteJSON(w, http.StatusOK, NewProfitabilityDTOs(rows))
}

// BillableHours godoc
// @Summary Billable and non-billable hours per user
// @Tags Report
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param projectId query int false "Project ID"
// @Success 200 {array} BillableHoursRowDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/report/billable-hours [get]
// @Security XUserId
func (h *Handler) BillableHours(w http.ResponseWriter, r *http.Request) {
	var filter timelog.Filter
	var err error
	if filter.ProjectId, err = rest.OptionalIntQuery(r, "projectId"); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	if filter.From, err = rest.OptionalDateQuery(r, "from"); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	if filter.To, err = rest.OptionalDateQuery(r, "to"); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	rows, err := h.service.BillableHours(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]BillableHoursRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, BillableHoursRowDTO{
			UserId:           row.UserId,
			UserName:         row.UserName,
			TotalHours:       row.TotalHours,
			BillableHours:    row.BillableHours,
			NonBillableHours: row.NonBillableHours,
			BillablePercent:  row.BillablePercent,
			BillableValue:    row.BillableValue.Round(2),
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CostByRole godoc
// @Summary Planned hours and cost per team role
// @Tags Report
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} RoleCostDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/cost-by-role [get]
// @Security XUserId
func (h *Handler) CostByRole(w http.ResponseWriter, r *http.Request) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return
	}
	roles, err := h.service.CostByRole(r.Context(), projectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]RoleCostDTO, 0, len(roles))
	for _, role := range roles {
		dtos = append(dtos, RoleCostDTO{
			Role:    role.Role,
			Members: role.Members,
			Hours:   role.Hours,
			Cost:    role.Cost.Round(2),
			Share:   role.Share,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CostBreakdown godoc
// @Summary Actual cost split into labor and expense types
// @Tags Report
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} CostBreakdownDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/cost-breakdown [get]
// @Security XUserId
func (h *Handler) CostBreakdown(w http.ResponseWriter, r *http.Request) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return
	}
	breakdown, err := h.service.CostBreakdown(r.Context(), projectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	categories := make([]CostCategoryDTO, 0, len(breakdown.Categories))
	for _, c := range breakdown.Categories {
		categories = append(categories, CostCategoryDTO{Category: c.Category, Amount: c.Amount.Round(2), Share: c.Share})
	}
	rest.WriteJSON(w, http.StatusOK, CostBreakdownDTO{
		ProjectId:  breakdown.ProjectId,
		TotalCost:  breakdown.TotalCost.Round(2),
		Categories: categories,
	})
}

// Dashboard godoc
// @Summary Portfolio overview
// @Tags Report
// @Produce json
// @Success 200 {object} DashboardDTO
// @Router /api/dashboard [get]
// @Security XUserId
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	byStatus := make(map[string]int, len(dashboard.ProjectsByStatus))
	for status, count := range dashboard.ProjectsByStatus {
		byStatus[string(status)] = count
	}
	alerts := make([]ProjectAlertDTO, 0, len(dashboard.Alerts))
	for _, a := range dashboard.Alerts {
		alerts = append(alerts, ProjectAlertDTO{
			ProjectId:   a.ProjectId,
			ProjectName: a.ProjectName,
			Utilization: a.Utilization,
			Level:       string(a.Level),
		})
	}
	rest.WriteJSON(w, http.StatusOK, DashboardDTO{
		TotalProjects:       dashboard.TotalProjects,
		ProjectsByStatus:    byStatus,
		TotalBudget:         dashboard.TotalBudget.Round(2),
		TotalActualCost:     dashboard.TotalActualCost.Round(2),
		BudgetUtilization:   dashboard.Utilization.Display.Round(2),
		AlertLevel:          string(dashboard.Utilization.Level),
		WarningCount:        dashboard.WarningCount,
		OverBudgetCount:     dashboard.OverBudgetCount,
		Alerts:              alerts,
		UpcomingDeliverable: toUpcomingDTOs(dashboard.Upcoming),
	})
}

func (h *Handler) writeCsv(w http.ResponseWriter, render func() (string, error)) {
	body, err := render()
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to render CSV", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write csv response: %v", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, finance.ErrInvalidInput):
		rest.WriteError(w, http.StatusBadRequest, "Invalid input", err.Error())
	default:
		log.Errorf("report request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

// NewFinancialsDTO rounds money to cents for presentation.
func NewFinancialsDTO(f Financials) FinancialsDTO {
	return FinancialsDTO{
		ProjectId:                f.ProjectId,
		ProjectName:              f.ProjectName,
		Status:                   string(f.Status),
		PlannedCost:              f.PlannedCost.Round(2),
		PlannedLaborCost:         f.Planned.LaborCost.Round(2),
		PlannedHours:             f.Planned.TotalHours,
		Budget:                   f.Budget.Round(2),
		TotalLaborCost:           f.TotalLaborCost.Round(2),
		TotalExpenses:            f.TotalExpenses.Round(2),
		TotalActualCost:          f.TotalActualCost.Round(2),
		BudgetVariance:           f.BudgetVariance.Round(2),
		BudgetUtilizationPercent: f.BudgetUtilizationPercent.Round(2),
		BudgetUtilizationRaw:     f.BudgetUtilizationRaw.Round(2),
		AlertLevel:               string(f.AlertLevel),
		TargetProfitMargin:       f.TargetProfitMargin,
		TargetProfitAmount:       f.TargetProfitAmount.Round(2),
		RevenueTarget:            f.RevenueTarget.Round(2),
		TotalHours:               f.TotalHours,
		BillableHours:            f.BillableHours,
		NonBillableHours:         f.NonBillableHours,
	}
}

func NewProfitabilityDTOs(rows []ProfitabilityRow) []ProfitabilityRowDTO {
	dtos := make([]ProfitabilityRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ProfitabilityRowDTO{
			Id:      row.Id,
			Name:    row.Name,
			Revenue: row.Revenue.Round(2),
			Cost:    row.Cost.Round(2),
			Profit:  row.Profit.Round(2),
			Margin:  row.Margin,
		})
	}
	return dtos
}

func toUpcomingDTOs(deliverables []deliverable.Deliverable) []UpcomingDeliverableDTO {
	dtos := make([]UpcomingDeliverableDTO, 0, len(deliverables))
	for _, d := range deliverables {
		dtos = append(dtos, UpcomingDeliverableDTO{
			Id:          d.Id,
			ProjectId:   d.ProjectId,
			ProjectName: d.ProjectName,
			Name:        d.Name,
			DueDate:     d.DueDate.Format(rest.DateFormat),
			Status:      string(d.Status),
		})
	}
	return dtos
}
