package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marginly_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	budgetAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marginly_budget_alerts_total",
			Help: "Project financial summaries that crossed a utilization threshold, by level",
		},
		[]string{"level"},
	)
)

// Middleware records request duration labelled by the matched route template, so that
// ids in paths do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		httpRequestDuration.
			WithLabelValues(r.Method, routeTemplate(r), strconv.Itoa(m.Code)).
			Observe(m.Duration.Seconds())
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBudgetAlert counts a summary whose utilization crossed the warning or over-budget threshold.
func RecordBudgetAlert(level string) {
	budgetAlerts.WithLabelValues(level).Inc()
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return "unmatched"
}
