package project

import (
	"errors"
	"net/http"
	"time"

	"github.com/marginly/marginly/internal/rest"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ProjectDTO struct {
	Id             int                 `json:"id"`
	ClientId       *int                `json:"clientId"`
	ClientName     string              `json:"clientName,omitempty"`
	Name           string              `json:"name" validate:"required,max=255"`
	Description    string              `json:"description"`
	Status         string              `json:"status" validate:"omitempty,oneof=Planning Active 'On Hold' Completed Cancelled"`
	StartDate      string              `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string              `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Budget         decimal.Decimal     `json:"budget"`
	HourlyRate     decimal.Decimal     `json:"hourlyRate" validate:"gte=0"`
	EstimatedHours decimal.Decimal     `json:"estimatedHours" validate:"gte=0"`
	ProfitMargin   decimal.NullDecimal `json:"profitMargin" validate:"omitempty,gte=-100"`
}

type TeamMemberDTO struct {
	Id            int                 `json:"id"`
	UserId        int                 `json:"userId" validate:"required,gt=0"`
	UserName      string              `json:"userName"`
	UserRate      decimal.NullDecimal `json:"userRate"`
	EffectiveRate decimal.Decimal     `json:"effectiveRate"`
	Role          string              `json:"role" validate:"max=255"`
	Hours         decimal.Decimal     `json:"hours" validate:"gte=0"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListProjects godoc
// @Summary List projects
// @Tags Project
// @Produce json
// @Param status query string false "Filter by status"
// @Param clientId query int false "Filter by client"
// @Success 200 {array} ProjectDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/project [get]
// @Security XUserId
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing projects")
	clientId, err := rest.OptionalIntQuery(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid clientId", err.Error())
		return
	}
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !validStatus(status) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid status", string(status))
		return
	}

	projects, err := h.service.ListProjects(r.Context(), Filter{Status: status, ClientId: clientId})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toProjectDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetProject godoc
// @Summary Get a project
// @Tags Project
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} ProjectDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId} [get]
// @Security XUserId
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectId(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toProjectDTO(p))
}

// CreateProject godoc
// @Summary Create a project
// @Description Profit margin defaults to the configured default. The budget is derived from team allocations and expenses.
// @Tags Project
// @Accept json
// @Produce json
// @Param project body ProjectDTO true "Project"
// @Success 201 {object} ProjectDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse "Client not found"
// @Router /api/project [post]
// @Security XUserId
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating project")
	var dto ProjectDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	p, err := fromProjectDTO(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	if !dto.ProfitMargin.Valid {
		p.ProfitMargin = h.service.DefaultProfitMargin()
	}
	created, err := h.service.CreateProject(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toProjectDTO(created))
}

// UpdateProject godoc
// @Summary Update a project
// @Description Omitted profit margin keeps the current one. The budget is recalculated.
// @Tags Project
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param project body ProjectDTO true "Project"
// @Success 200 {object} ProjectDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId} [put]
// @Security XUserId
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectId(w, r)
	if !ok {
		return
	}
	var dto ProjectDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	p, err := fromProjectDTO(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	p.Id = id

	existing, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !dto.ProfitMargin.Valid {
		p.ProfitMargin = existing.ProfitMargin
	}
	if dto.Status == "" {
		p.Status = existing.Status
	}

	updated, err := h.service.UpdateProject(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toProjectDTO(updated))
}

// DeleteProject godoc
// @Summary Delete a project with its team, time logs, expenses and deliverables
// @Tags Project
// @Param projectId path int true "Project ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId} [delete]
// @Security XUserId
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectId(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTeamMembers godoc
// @Summary List team members of a project
// @Tags Team
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} TeamMemberDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/team [get]
// @Security XUserId
func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := projectId(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	members, err := h.service.ListTeamMembers(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]TeamMemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toTeamMemberDTO(m, p.HourlyRate))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// AddTeamMember godoc
// @Summary Assign a user to a project
// @Tags Team
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param member body TeamMemberDTO true "Team member"
// @Success 201 {object} TeamMemberDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/team [post]
// @Security XUserId
func (h *Handler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	id, ok := projectId(w, r)
	if !ok {
		return
	}
	var dto TeamMemberDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	added, err := h.service.AddTeamMember(r.Context(), TeamMember{ProjectId: id, UserId: dto.UserId, Role: dto.Role, Hours: dto.Hours})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeMember(w, r, http.StatusCreated, added)
}

// UpdateTeamMember godoc
// @Summary Change role or allocated hours of a team member
// @Tags Team
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param memberId path int true "Team member ID"
// @Param member body TeamMemberDTO true "Team member"
// @Success 200 {object} TeamMemberDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/team/{memberId} [put]
// @Security XUserId
func (h *Handler) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	id, ok := projectId(w, r)
	if !ok {
		return
	}
	memberId, err := rest.IntVar(r, "memberId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid member id", err.Error())
		return
	}
	var dto TeamMemberDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	updated, err := h.service.UpdateTeamMember(r.Context(), TeamMember{Id: memberId, ProjectId: id, UserId: dto.UserId, Role: dto.Role, Hours: dto.Hours})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeMember(w, r, http.StatusOK, updated)
}

// RemoveTeamMember godoc
// @Summary Remove a user from a project
// @Tags Team
// @Param projectId path int true "Project ID"
// @Param memberId path int true "Team member ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/project/{projectId}/team/{memberId} [delete]
// @Security XUserId
func (h *Handler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	id, ok := projectId(w, r)
	if !ok {
		return
	}
	memberId, err := rest.IntVar(r, "memberId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid member id", err.Error())
		return
	}
	if err := h.service.RemoveTeamMember(r.Context(), id, memberId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeMember(w http.ResponseWriter, r *http.Request, status int, m TeamMember) {
	p, err := h.service.GetProject(r.Context(), m.ProjectId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, status, toTeamMemberDTO(m, p.HourlyRate))
}

func projectId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := rest.IntVar(r, "projectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid project id", err.Error())
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, ErrTeamMemberNotFound):
		rest.WriteError(w, http.StatusNotFound, "Team member not found", "")
	case errors.Is(err, ErrClientNotFound):
		rest.WriteError(w, http.StatusNotFound, "Client not found", "")
	case errors.Is(err, ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, ErrMemberAlreadyAssigned):
		rest.WriteError(w, http.StatusConflict, "User is already a member of the project", "")
	case errors.Is(err, ErrInvalidProject), errors.Is(err, finance.ErrInvalidInput):
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		log.Errorf("project request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func toProjectDTO(p Project) ProjectDTO {
	return ProjectDTO{
		Id:             p.Id,
		ClientId:       p.ClientId,
		ClientName:     p.ClientName,
		Name:           p.Name,
		Description:    p.Description,
		Status:         string(p.Status),
		StartDate:      formatDate(p.StartDate),
		EndDate:        formatDate(p.EndDate),
		Budget:         p.Budget,
		HourlyRate:     p.HourlyRate,
		EstimatedHours: p.EstimatedHours,
		ProfitMargin:   decimal.NewNullDecimal(p.ProfitMargin),
	}
}

func fromProjectDTO(dto ProjectDTO) (Project, error) {
	startDate, err := parseDate(dto.StartDate)
	if err != nil {
		return Project{}, err
	}
	endDate, err := parseDate(dto.EndDate)
	if err != nil {
		return Project{}, err
	}
	return Project{
		Id:             dto.Id,
		ClientId:       dto.ClientId,
		Name:           dto.Name,
		Description:    dto.Description,
		Status:         Status(dto.Status),
		StartDate:      startDate,
		EndDate:        endDate,
		HourlyRate:     dto.HourlyRate,
		EstimatedHours: dto.EstimatedHours,
		ProfitMargin:   dto.ProfitMargin.Decimal,
	}, nil
}

func toTeamMemberDTO(m TeamMember, projectRate decimal.Decimal) TeamMemberDTO {
	return TeamMemberDTO{
		Id:            m.Id,
		UserId:        m.UserId,
		UserName:      m.UserName,
		UserRate:      m.UserRate,
		EffectiveRate: finance.ResolveRate(m.UserRate, projectRate),
		Role:          m.Role,
		Hours:         m.Hours,
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(rest.DateFormat, value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func formatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(rest.DateFormat)
}
