package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/project/{projectId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods("GET")

	before := testutil.CollectAndCount(httpRequestDuration)
	req := httptest.NewRequest(http.MethodGet, "/api/project/17", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, before+1, testutil.CollectAndCount(httpRequestDuration))
}

func TestRecordBudgetAlert(t *testing.T) {
	before := testutil.ToFloat64(budgetAlerts.WithLabelValues("over_budget"))

	RecordBudgetAlert("over_budget")

	assert.Equal(t, before+1, testutil.ToFloat64(budgetAlerts.WithLabelValues("over_budget")))
}
