package client

import (
	"errors"
	"net/http"

	"github.com/marginly/marginly/internal/rest"
	log "github.com/sirupsen/logrus"
)

type ClientDTO struct {
	Id           int    `json:"id"`
	Name         string `json:"name" validate:"required,max=255"`
	ContactName  string `json:"contactName" validate:"max=255"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	ProjectCount int    `json:"projectCount"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List clients
// @Tags Client
// @Produce json
// @Success 200 {array} ClientDTO
// @Router /api/client [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]ClientDTO, 0, len(clients))
	for _, c := range clients {
		dtos = append(dtos, toDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a client
// @Tags Client
// @Produce json
// @Param clientId path int true "Client ID"
// @Success 200 {object} ClientDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/client/{clientId} [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", err.Error())
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(c))
}

// Create godoc
// @Summary Create a client
// @Tags Client
// @Accept json
// @Produce json
// @Param client body ClientDTO true "Client"
// @Success 201 {object} ClientDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/client [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ClientDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	created, err := h.service.Create(r.Context(), fromDTO(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a client
// @Tags Client
// @Accept json
// @Produce json
// @Param clientId path int true "Client ID"
// @Param client body ClientDTO true "Client"
// @Success 200 {object} ClientDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/client/{clientId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", err.Error())
		return
	}
	var dto ClientDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	c := fromDTO(dto)
	c.Id = id
	updated, err := h.service.Update(r.Context(), c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a client
// @Description Projects of the client are kept without a client
// @Tags Client
// @Param clientId path int true "Client ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/client/{clientId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrClientNotFound) {
		rest.WriteError(w, http.StatusNotFound, "Client not found", "")
		return
	}
	log.Errorf("client request failed: %v", err)
	rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
}

func toDTO(c Client) ClientDTO {
	return ClientDTO{Id: c.Id, Name: c.Name, ContactName: c.ContactName, Email: c.Email, ProjectCount: c.ProjectCount}
}

func fromDTO(dto ClientDTO) Client {
	return Client{Id: dto.Id, Name: dto.Name, ContactName: dto.ContactName, Email: dto.Email}
}
