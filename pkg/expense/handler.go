package expense

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/marginly/marginly/internal/rest"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/project"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ExpenseDTO struct {
	Id          int             `json:"id"`
	ProjectId   int             `json:"projectId"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
	Type        string          `json:"type" validate:"required,max=64"`
	Description string          `json:"description"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
}

type ProjectReader interface {
	GetProject(ctx context.Context, id int) (project.Project, error)
}

type Handler struct {
	service  Service
	projects ProjectReader
}

func NewHandler(service Service, projects ProjectReader) *Handler {
	return &Handler{service: service, projects: projects}
}

// List godoc
// @Summary List expenses of a project, newest first
// @Tags Expense
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} ExpenseDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/expense [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := h.existingProject(w, r)
	if !ok {
		return
	}
	expenses, err := h.service.ListByProject(r.Context(), projectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, toDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Record an expense
// @Description The project budget is recalculated afterwards
// @Tags Expense
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param expense body ExpenseDTO true "Expense"
// @Success 201 {object} ExpenseDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/expense [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return
	}
	var dto ExpenseDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	date, err := time.Parse(rest.DateFormat, dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), Expense{
		ProjectId:   projectId,
		Amount:      dto.Amount,
		Type:        dto.Type,
		Description: dto.Description,
		Date:        date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Delete godoc
// @Summary Delete an expense
// @Description The project budget is recalculated afterwards
// @Tags Expense
// @Param projectId path int true "Project ID"
// @Param expenseId path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/expense/{expenseId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return
	}
	expenseId, err := rest.IntVar(r, "expenseId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid expense id", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), projectId, expenseId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) existingProject(w http.ResponseWriter, r *http.Request) (int, bool) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return 0, false
	}
	if _, err := h.projects.GetProject(r.Context(), projectId); err != nil {
		writeServiceError(w, err)
		return 0, false
	}
	return projectId, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		rest.WriteError(w, http.StatusNotFound, "Expense not found", "")
	case errors.Is(err, project.ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, finance.ErrInvalidInput):
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		log.Errorf("expense request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func toDTO(e Expense) ExpenseDTO {
	return ExpenseDTO{
		Id:          e.Id,
		ProjectId:   e.ProjectId,
		Amount:      e.Amount,
		Type:        e.Type,
		Description: e.Description,
		Date:        e.Date.Format(rest.DateFormat),
	}
}
