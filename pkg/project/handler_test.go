package project

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/marginly/marginly/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *RepositoryStub) {
	service, repo, _ := setupService(t)
	handler := NewHandler(service)
	router := mux.NewRouter()
	router.HandleFunc("/api/project", handler.ListProjects).Methods("GET")
	router.HandleFunc("/api/project", handler.CreateProject).Methods("POST")
	router.HandleFunc("/api/project/{projectId}", handler.GetProject).Methods("GET")
	router.HandleFunc("/api/project/{projectId}", handler.UpdateProject).Methods("PUT")
	router.HandleFunc("/api/project/{projectId}", handler.DeleteProject).Methods("DELETE")
	router.HandleFunc("/api/project/{projectId}/team", handler.ListTeamMembers).Methods("GET")
	router.HandleFunc("/api/project/{projectId}/team", handler.AddTeamMember).Methods("POST")
	router.HandleFunc("/api/project/{projectId}/team/{memberId}", handler.UpdateTeamMember).Methods("PUT")
	router.HandleFunc("/api/project/{projectId}/team/{memberId}", handler.RemoveTeamMember).Methods("DELETE")
	return router, repo
}

func serve(router *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestHandler_CreateProject(t *testing.T) {
	t.Run("should apply default margin", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		w := serve(router, http.MethodPost, "/api/project", `{"name":"Website","hourlyRate":100,"startDate":"2026-01-01","endDate":"2026-03-31"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		dto := decode[ProjectDTO](t, w)
		assert.Equal(t, "Planning", dto.Status)
		assert.Equal(t, "20", dto.ProfitMargin.Decimal.String())
		assert.Equal(t, "2026-03-31", dto.EndDate)
	})

	t.Run("should keep explicit zero margin", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		w := serve(router, http.MethodPost, "/api/project", `{"name":"Website","profitMargin":0}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decode[ProjectDTO](t, w).ProfitMargin.Decimal.IsZero())
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"hourlyRate":100}`},
		{"negative rate", `{"name":"Website","hourlyRate":-1}`},
		{"unknown status", `{"name":"Website","status":"Archived"}`},
		{"malformed date", `{"name":"Website","startDate":"01/02/2026"}`},
		{"end before start", `{"name":"Website","startDate":"2026-02-01","endDate":"2026-01-01"}`},
		{"margin below minus one hundred", `{"name":"Website","profitMargin":-150}`},
	}
	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			router, _ := setupHandlerTest(t)

			w := serve(router, http.MethodPost, "/api/project", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Validation failed", decode[rest.ErrorResponse](t, w).Error)
		})
	}

	t.Run("should accept status with a space", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		w := serve(router, http.MethodPost, "/api/project", `{"name":"Website","status":"On Hold"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "On Hold", decode[ProjectDTO](t, w).Status)
	})
}

func TestHandler_ListProjects(t *testing.T) {
	router, _ := setupHandlerTest(t)
	serve(router, http.MethodPost, "/api/project", `{"name":"One","status":"Active"}`)
	serve(router, http.MethodPost, "/api/project", `{"name":"Two","status":"Completed"}`)

	w := serve(router, http.MethodGet, "/api/project?status=Active", "")
	require.Equal(t, http.StatusOK, w.Code)
	projects := decode[[]ProjectDTO](t, w)
	require.Len(t, projects, 1)
	assert.Equal(t, "One", projects[0].Name)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/project?status=Unknown", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/project?clientId=x", "").Code)
}

func TestHandler_UpdateProject_KeepsMarginWhenOmitted(t *testing.T) {
	router, _ := setupHandlerTest(t)
	serve(router, http.MethodPost, "/api/project", `{"name":"Website","profitMargin":35,"status":"Active"}`)

	w := serve(router, http.MethodPut, "/api/project/1", `{"name":"Website v2","hourlyRate":120}`)

	require.Equal(t, http.StatusOK, w.Code)
	dto := decode[ProjectDTO](t, w)
	assert.Equal(t, "Website v2", dto.Name)
	assert.Equal(t, "35", dto.ProfitMargin.Decimal.String())
	assert.Equal(t, "Active", dto.Status)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPut, "/api/project/9", `{"name":"Ghost"}`).Code)
}

func TestHandler_TeamMembers(t *testing.T) {
	router, _ := setupHandlerTest(t)
	serve(router, http.MethodPost, "/api/project", `{"name":"Website","hourlyRate":100}`)

	// add members: Ada falls back to the project rate, Grace has her own
	w := serve(router, http.MethodPost, "/api/project/1/team", `{"userId":1,"role":"Developer","hours":10}`)
	require.Equal(t, http.StatusCreated, w.Code)
	ada := decode[TeamMemberDTO](t, w)
	assert.Equal(t, "100", ada.EffectiveRate.String())
	assert.False(t, ada.UserRate.Valid)

	w = serve(router, http.MethodPost, "/api/project/1/team", `{"userId":2,"role":"Designer","hours":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "150", decode[TeamMemberDTO](t, w).EffectiveRate.String())

	// budget reflects both allocations
	w = serve(router, http.MethodGet, "/api/project/1", "")
	assert.Equal(t, "1560", decode[ProjectDTO](t, w).Budget.String())

	// duplicates and unknown users are rejected
	assert.Equal(t, http.StatusConflict, serve(router, http.MethodPost, "/api/project/1/team", `{"userId":1,"hours":1}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/api/project/1/team", `{"userId":77,"hours":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/api/project/1/team", `{"userId":1,"hours":-3}`).Code)

	// update and remove
	w = serve(router, http.MethodPut, "/api/project/1/team/2", `{"userId":1,"role":"Lead","hours":4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lead", decode[TeamMemberDTO](t, w).Role)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/api/project/1/team/2", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/api/project/1/team/2", "").Code)

	w = serve(router, http.MethodGet, "/api/project/1/team", "")
	require.Equal(t, http.StatusOK, w.Code)
	members := decode[[]TeamMemberDTO](t, w)
	require.Len(t, members, 1)
	assert.Equal(t, "Grace", members[0].UserName)
}

func TestHandler_DeleteProject(t *testing.T) {
	router, _ := setupHandlerTest(t)
	serve(router, http.MethodPost, "/api/project", `{"name":"Website"}`)

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/api/project/1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/project/1", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/project/abc", "").Code)
}
