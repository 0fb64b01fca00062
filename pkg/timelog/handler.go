package timelog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/marginly/marginly/internal/rest"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/project"
	"github.com/marginly/marginly/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type TimeLogDTO struct {
	Id          int             `json:"id"`
	ProjectId   int             `json:"projectId" validate:"required,gt=0"`
	UserId      int             `json:"userId" validate:"gte=0"`
	UserName    string          `json:"userName,omitempty"`
	TaskId      *int            `json:"taskId,omitempty"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Hours       decimal.Decimal `json:"hours" validate:"gte=0,lte=24"`
	Billable    *bool           `json:"billable"`
	Description string          `json:"description"`
	StartTime   *time.Time      `json:"startTime,omitempty"`
	EndTime     *time.Time      `json:"endTime,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List time logs, newest first
// @Tags TimeLog
// @Produce json
// @Param projectId query int false "Project ID"
// @Param userId query int false "User ID"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param billable query bool false "Only billable or only non-billable"
// @Success 200 {array} TimeLogDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/timelog [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing time logs")
	filter, err := parseFilter(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	logs, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]TimeLogDTO, 0, len(logs))
	for _, l := range logs {
		dtos = append(dtos, ToDTO(l))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a time log
// @Tags TimeLog
// @Produce json
// @Param timeLogId path int true "Time log ID"
// @Success 200 {object} TimeLogDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timelog/{timeLogId} [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "timeLogId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid time log id", err.Error())
		return
	}
	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(l))
}

// Create godoc
// @Summary Log time
// @Description userId defaults to the current user. With start and end time and no hours, hours are derived.
// @Tags TimeLog
// @Accept json
// @Produce json
// @Param timeLog body TimeLogDTO true "Time log"
// @Success 201 {object} TimeLogDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timelog [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto TimeLogDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	l, err := fromDTO(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), l)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(created))
}

// Update godoc
// @Summary Update a time log
// @Tags TimeLog
// @Accept json
// @Produce json
// @Param timeLogId path int true "Time log ID"
// @Param timeLog body TimeLogDTO true "Time log"
// @Success 200 {object} TimeLogDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timelog/{timeLogId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "timeLogId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid time log id", err.Error())
		return
	}
	var dto TimeLogDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	l, err := fromDTO(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	l.Id = id
	updated, err := h.service.Update(r.Context(), l)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(updated))
}

// Delete godoc
// @Summary Delete a time log
// @Tags TimeLog
// @Param timeLogId path int true "Time log ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/timelog/{timeLogId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "timeLogId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid time log id", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseFilter(r *http.Request) (Filter, error) {
	var filter Filter
	var err error
	if filter.ProjectId, err = rest.OptionalIntQuery(r, "projectId"); err != nil {
		return Filter{}, err
	}
	if filter.UserId, err = rest.OptionalIntQuery(r, "userId"); err != nil {
		return Filter{}, err
	}
	if filter.From, err = rest.OptionalDateQuery(r, "from"); err != nil {
		return Filter{}, err
	}
	if filter.To, err = rest.OptionalDateQuery(r, "to"); err != nil {
		return Filter{}, err
	}
	if value := r.URL.Query().Get("billable"); value != "" {
		billable, err := strconv.ParseBool(value)
		if err != nil {
			return Filter{}, errors.New("billable must be true or false")
		}
		filter.Billable = &billable
	}
	return filter, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTimeLogNotFound):
		rest.WriteError(w, http.StatusNotFound, "Time log not found", "")
	case errors.Is(err, project.ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, user.ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, finance.ErrInvalidInput):
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		log.Errorf("time log request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

// ToDTO is shared with the timer endpoints that return the logged time.
func ToDTO(l TimeLog) TimeLogDTO {
	billable := l.Billable
	return TimeLogDTO{
		Id:          l.Id,
		ProjectId:   l.ProjectId,
		UserId:      l.UserId,
		UserName:    l.UserName,
		TaskId:      l.TaskId,
		Date:        l.Date.Format(rest.DateFormat),
		Hours:       l.Hours,
		Billable:    &billable,
		Description: l.Description,
		StartTime:   l.StartTime,
		EndTime:     l.EndTime,
	}
}

// fromDTO treats an omitted billable flag as billable.
func fromDTO(dto TimeLogDTO) (TimeLog, error) {
	date, err := time.Parse(rest.DateFormat, dto.Date)
	if err != nil {
		return TimeLog{}, err
	}
	billable := dto.Billable == nil || *dto.Billable
	return TimeLog{
		Id:          dto.Id,
		ProjectId:   dto.ProjectId,
		UserId:      dto.UserId,
		TaskId:      dto.TaskId,
		Date:        date,
		Hours:       dto.Hours,
		Billable:    billable,
		Description: dto.Description,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
	}, nil
}
