package user

import (
	"errors"
	"net/http"

	"github.com/marginly/marginly/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id         int                 `json:"id"`
	Uid        string              `json:"uid"`
	Name       string              `json:"name" validate:"required,max=255"`
	Email      string              `json:"email" validate:"required,email,max=255"`
	HourlyRate decimal.NullDecimal `json:"hourlyRate" validate:"omitempty,gte=0"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListUsers godoc
// @Summary List users
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/user [get]
// @Security XUserId
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to list users", "")
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toDTO(u))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetUser godoc
// @Summary Get a user
// @Tags User
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} UserDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/user/{userId} [get]
// @Security XUserId
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "userId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}
	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(u))
}

// CurrentUser godoc
// @Summary Get the user making the request
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/user/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := CurrentUser(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(u))
}

// CreateUser godoc
// @Summary Create a user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto UserDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	created, err := h.service.CreateUser(r.Context(), fromDTO(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// UpdateUser godoc
// @Summary Update a user
// @Description Changing the hourly rate recalculates budgets of every project the user is a member of
// @Tags User
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param user body UserDTO true "User"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/user/{userId} [put]
// @Security XUserId
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "userId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}
	var dto UserDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	u := fromDTO(dto)
	u.Id = id
	updated, err := h.service.UpdateUser(r.Context(), u)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags User
// @Param userId path int true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/user/{userId} [delete]
// @Security XUserId
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "userId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, ErrEmailTaken):
		rest.WriteError(w, http.StatusConflict, "Email already in use", "")
	default:
		log.Errorf("user request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func toDTO(u User) UserDTO {
	return UserDTO{
		Id:         u.Id,
		Uid:        u.Uid,
		Name:       u.Name,
		Email:      u.Email,
		HourlyRate: u.HourlyRate,
	}
}

func fromDTO(dto UserDTO) User {
	return User{
		Id:         dto.Id,
		Name:       dto.Name,
		Email:      dto.Email,
		HourlyRate: dto.HourlyRate,
	}
}
