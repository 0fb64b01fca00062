package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/marginly/marginly/internal/config"
	"github.com/marginly/marginly/internal/rest"
	"github.com/marginly/marginly/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userReaderStub map[string]user.User

func (s userReaderStub) GetUserByUid(ctx context.Context, uid string) (user.User, error) {
	if uid == "broken" {
		return user.User{}, errors.New("connection reset")
	}
	u, ok := s[uid]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func setupRouter(t *testing.T, cfg config.Application) *mux.Router {
	r := mux.NewRouter()
	require.NoError(t, SetupMiddleware(r, userReaderStub{"abc": {Id: 3, Uid: "abc", Name: "Ada"}}, cfg))
	r.HandleFunc("/whoami", func(w http.ResponseWriter, req *http.Request) {
		u, err := user.CurrentUser(req.Context())
		if err != nil {
			rest.WriteError(w, http.StatusUnauthorized, "anonymous", "")
			return
		}
		rest.WriteJSON(w, http.StatusOK, map[string]string{"name": u.Name})
	}).Methods("GET")
	return r
}

func request(r *mux.Router, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_PropagatesUser(t *testing.T) {
	r := setupRouter(t, config.Defaults())

	assert.Equal(t, http.StatusOK, request(r, map[string]string{userIdHeader: "abc"}).Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, nil).Code)
	assert.Equal(t, http.StatusForbidden, request(r, map[string]string{userIdHeader: "nobody"}).Code)
	assert.Equal(t, http.StatusInternalServerError, request(r, map[string]string{userIdHeader: "broken"}).Code)
}

func TestMiddleware_RequestId(t *testing.T) {
	r := setupRouter(t, config.Defaults())

	generated := request(r, nil).Header().Get(requestIdHeader)
	kept := request(r, map[string]string{requestIdHeader: "req-1"}).Header().Get(requestIdHeader)

	assert.Len(t, generated, 36)
	assert.Equal(t, "req-1", kept)
}

func TestMiddleware_SecurityHeaders(t *testing.T) {
	r := setupRouter(t, config.Defaults())

	w := request(r, nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestMiddleware_RateLimit(t *testing.T) {
	cfg := config.Defaults()
	cfg.Http.RateLimit = "2-M"
	r := setupRouter(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, request(r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, request(r, nil).Code)
}

func TestSetupMiddleware_InvalidRate(t *testing.T) {
	cfg := config.Defaults()
	cfg.Http.RateLimit = "often"

	err := SetupMiddleware(mux.NewRouter(), userReaderStub{}, cfg)

	assert.Error(t, err)
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	healthHandler(pingerStub{})(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	healthHandler(pingerStub{err: errors.New("down")})(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
