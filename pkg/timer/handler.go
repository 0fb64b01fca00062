package timer

import (
	"errors"
	"net/http"
	"time"

	"github.com/marginly/marginly/internal/rest"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/project"
	"github.com/marginly/marginly/pkg/timelog"
	"github.com/marginly/marginly/pkg/user"
	log "github.com/sirupsen/logrus"
)

type TimerDTO struct {
	ProjectId   int       `json:"projectId"`
	ProjectName string    `json:"projectName,omitempty"`
	TaskId      *int      `json:"taskId,omitempty"`
	Description string    `json:"description"`
	Billable    bool      `json:"billable"`
	StartTime   time.Time `json:"startTime"`
}

type StartTimerRequest struct {
	ProjectId   int    `json:"projectId" validate:"required,gt=0"`
	TaskId      *int   `json:"taskId"`
	Description string `json:"description"`
	Billable    *bool  `json:"billable"`
}

type ModifyStartTimeRequest struct {
	StartTime time.Time `json:"startTime" validate:"required"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Current godoc
// @Summary Get the running timer of the current user
// @Tags Timer
// @Produce json
// @Success 200 {object} TimerDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timer [get]
// @Security XUserId
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	timer, err := h.service.Current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(timer))
}

// Start godoc
// @Summary Start a timer on a project
// @Description A running timer is stopped and logged first; billable defaults to true
// @Tags Timer
// @Accept json
// @Produce json
// @Param timer body StartTimerRequest true "Timer"
// @Success 201 {object} TimerDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timer [post]
// @Security XUserId
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartTimerRequest
	if !rest.DecodeAndValidate(w, r, &req) {
		return
	}
	billable := true
	if req.Billable != nil {
		billable = *req.Billable
	}
	started, err := h.service.Start(r.Context(), Timer{
		ProjectId:   req.ProjectId,
		TaskId:      req.TaskId,
		Description: req.Description,
		Billable:    billable,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(started))
}

// Stop godoc
// @Summary Stop the running timer and log the elapsed time
// @Description Responds 204 when the timer ran for less than a minute and nothing was logged
// @Tags Timer
// @Produce json
// @Success 200 {object} timelog.TimeLogDTO
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timer/stop [post]
// @Security XUserId
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	logged, err := h.service.Stop(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if logged == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rest.WriteJSON(w, http.StatusOK, timelog.ToDTO(*logged))
}

// ModifyStartTime godoc
// @Summary Move the start of the running timer
// @Tags Timer
// @Accept json
// @Produce json
// @Param request body ModifyStartTimeRequest true "New start time"
// @Success 200 {object} TimerDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timer/start [patch]
// @Security XUserId
func (h *Handler) ModifyStartTime(w http.ResponseWriter, r *http.Request) {
	var req ModifyStartTimeRequest
	if !rest.DecodeAndValidate(w, r, &req) {
		return
	}
	timer, err := h.service.ModifyStartTime(r.Context(), req.StartTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(timer))
}

// Discard godoc
// @Summary Drop the running timer without logging time
// @Tags Timer
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timer [delete]
// @Security XUserId
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoRunningTimer):
		rest.WriteError(w, http.StatusNotFound, "No running timer", "")
	case errors.Is(err, project.ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrInvalidTimer), errors.Is(err, finance.ErrInvalidInput):
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		log.Errorf("timer request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func toDTO(t Timer) TimerDTO {
	return TimerDTO{
		ProjectId:   t.ProjectId,
		ProjectName: t.ProjectName,
		TaskId:      t.TaskId,
		Description: t.Description,
		Billable:    t.Billable,
		StartTime:   t.StartTime,
	}
}
