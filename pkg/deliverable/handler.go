package deliverable

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/marginly/marginly/internal/rest"
	"github.com/marginly/marginly/pkg/project"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type DeliverableDTO struct {
	Id          int             `json:"id"`
	ProjectId   int             `json:"projectId"`
	ProjectName string          `json:"projectName,omitempty"`
	Name        string          `json:"name" validate:"required,max=255"`
	DueDate     string          `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Hours       decimal.Decimal `json:"hours" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,oneof='Not Started' 'In Progress' Completed"`
}

type ProgressDTO struct {
	ProjectId      int             `json:"projectId"`
	Completed      int             `json:"completed"`
	Total          int             `json:"total"`
	CompletedHours decimal.Decimal `json:"completedHours"`
	TotalHours     decimal.Decimal `json:"totalHours"`
	Progress       decimal.Decimal `json:"progress"`
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
// @Summary List deliverables of a project by due date
// @Tags Deliverable
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} DeliverableDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/deliverable [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := h.existingProject(w, r)
	if !ok {
		return
	}
	deliverables, err := h.service.ListByProject(r.Context(), projectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTOs(deliverables))
}

// Get godoc
// @Summary Get a deliverable
// @Tags Deliverable
// @Produce json
// @Param projectId path int true "Project ID"
// @Param deliverableId path int true "Deliverable ID"
// @Success 200 {object} DeliverableDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/deliverable/{deliverableId} [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, id, ok := pathIds(w, r)
	if !ok {
		return
	}
	found, err := h.service.Get(r.Context(), projectId, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(found))
}

// Create godoc
// @Summary Create a deliverable
// @Description Status defaults to "Not Started"
// @Tags Deliverable
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param deliverable body DeliverableDTO true "Deliverable"
// @Success 201 {object} DeliverableDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/deliverable [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return
	}
	deliverable, ok := decodeDeliverable(w, r)
	if !ok {
		return
	}
	deliverable.ProjectId = projectId
	created, err := h.service.Create(r.Context(), deliverable)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a deliverable
// @Description A missing status keeps the current one
// @Tags Deliverable
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param deliverableId path int true "Deliverable ID"
// @Param deliverable body DeliverableDTO true "Deliverable"
// @Success 200 {object} DeliverableDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/deliverable/{deliverableId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, id, ok := pathIds(w, r)
	if !ok {
		return
	}
	deliverable, ok := decodeDeliverable(w, r)
	if !ok {
		return
	}
	if deliverable.Status == "" {
		existing, err := h.service.Get(r.Context(), projectId, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		deliverable.Status = existing.Status
	}
	deliverable.ProjectId = projectId
	deliverable.Id = id
	updated, err := h.service.Update(r.Context(), deliverable)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a deliverable
// @Tags Deliverable
// @Param projectId path int true "Project ID"
// @Param deliverableId path int true "Deliverable ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/deliverable/{deliverableId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, id, ok := pathIds(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), projectId, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Progress godoc
// @Summary Completion of a project measured in deliverable hours
// @Tags Deliverable
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} ProgressDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/deliverable/progress [get]
// @Security XUserId
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	projectId, ok := h.existingProject(w, r)
	if !ok {
		return
	}
	progress, err := h.service.Progress(r.Context(), projectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProgressDTO{
		ProjectId:      projectId,
		Completed:      progress.Completed,
		Total:          progress.Total,
		CompletedHours: progress.CompletedHours,
		TotalHours:     progress.TotalHours,
		Progress:       progress.Percent,
	})
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

func pathIds(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	projectId, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return 0, 0, false
	}
	id, err := rest.IntVar(r, "deliverableId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid deliverable id", err.Error())
		return 0, 0, false
	}
	return projectId, id, true
}

func decodeDeliverable(w http.ResponseWriter, r *http.Request) (Deliverable, bool) {
	var dto DeliverableDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return Deliverable{}, false
	}
	dueDate, err := time.Parse(rest.DateFormat, dto.DueDate)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return Deliverable{}, false
	}
	return Deliverable{
		Name:    dto.Name,
		DueDate: dueDate,
		Hours:   dto.Hours,
		Status:  Status(dto.Status),
	}, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDeliverableNotFound):
		rest.WriteError(w, http.StatusNotFound, "Deliverable not found", "")
	case errors.Is(err, project.ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, ErrInvalidDeliverable):
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		log.Errorf("deliverable request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func toDTO(d Deliverable) DeliverableDTO {
	return DeliverableDTO{
		Id:          d.Id,
		ProjectId:   d.ProjectId,
		ProjectName: d.ProjectName,
		Name:        d.Name,
		DueDate:     d.DueDate.Format(rest.DateFormat),
		Hours:       d.Hours,
		Status:      string(d.Status),
	}
}

func toDTOs(deliverables []Deliverable) []DeliverableDTO {
	dtos := make([]DeliverableDTO, 0, len(deliverables))
	for _, d := range deliverables {
		dtos = append(dtos, toDTO(d))
	}
	return dtos
}
