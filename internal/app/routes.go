package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/marginly/marginly/internal/config"
	"github.com/marginly/marginly/internal/metrics"
	"github.com/marginly/marginly/internal/rest"
	log "github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, db Pinger, cfg config.Application) {

	// Operations
	r.HandleFunc("/health", healthHandler(db)).Methods("GET")
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	// Users
	r.HandleFunc("/api/user", deps.UserHandler.ListUsers).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/{userId:[0-9]+}", deps.UserHandler.GetUser).Methods("GET")
	r.HandleFunc("/api/user/{userId:[0-9]+}", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user/{userId:[0-9]+}", deps.UserHandler.DeleteUser).Methods("DELETE")

	// Clients
	r.HandleFunc("/api/client", deps.ClientHandler.List).Methods("GET")
	r.HandleFunc("/api/client", deps.ClientHandler.Create).Methods("POST")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.Get).Methods("GET")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.Update).Methods("PUT")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.Delete).Methods("DELETE")

	// Projects
	r.HandleFunc("/api/project", deps.ProjectHandler.ListProjects).Methods("GET")
	r.HandleFunc("/api/project", deps.ProjectHandler.CreateProject).Methods("POST")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.GetProject).Methods("GET")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.UpdateProject).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.DeleteProject).Methods("DELETE")

	// Team members
	r.HandleFunc("/api/project/{projectId}/team", deps.ProjectHandler.ListTeamMembers).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/team", deps.ProjectHandler.AddTeamMember).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/team/{memberId}", deps.ProjectHandler.UpdateTeamMember).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/team/{memberId}", deps.ProjectHandler.RemoveTeamMember).Methods("DELETE")

	// Expenses
	r.HandleFunc("/api/project/{projectId}/expense", deps.ExpenseHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/expense", deps.ExpenseHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/expense/{expenseId}", deps.ExpenseHandler.Delete).Methods("DELETE")

	// Deliverables
	r.HandleFunc("/api/project/{projectId}/deliverable", deps.DeliverableHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/deliverable", deps.DeliverableHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/deliverable/progress", deps.DeliverableHandler.Progress).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/deliverable/{deliverableId:[0-9]+}", deps.DeliverableHandler.Get).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/deliverable/{deliverableId:[0-9]+}", deps.DeliverableHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/deliverable/{deliverableId:[0-9]+}", deps.DeliverableHandler.Delete).Methods("DELETE")

	// Time logs
	r.HandleFunc("/api/timelog", deps.TimeLogHandler.List).Methods("GET")
	r.HandleFunc("/api/timelog", deps.TimeLogHandler.Create).Methods("POST")
	r.HandleFunc("/api/timelog/{timeLogId}", deps.TimeLogHandler.Get).Methods("GET")
	r.HandleFunc("/api/timelog/{timeLogId}", deps.TimeLogHandler.Update).Methods("PUT")
	r.HandleFunc("/api/timelog/{timeLogId}", deps.TimeLogHandler.Delete).Methods("DELETE")

	// Timer
	r.HandleFunc("/api/timer", deps.TimerHandler.Current).Methods("GET")
	r.HandleFunc("/api/timer", deps.TimerHandler.Start).Methods("POST")
	r.HandleFunc("/api/timer", deps.TimerHandler.Discard).Methods("DELETE")
	r.HandleFunc("/api/timer/start", deps.TimerHandler.ModifyStartTime).Methods("PATCH")
	r.HandleFunc("/api/timer/stop", deps.TimerHandler.Stop).Methods("POST")

	// Reports
	r.HandleFunc("/api/project/{projectId}/financials", deps.ReportHandler.Financials).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/cost-by-role", deps.ReportHandler.CostByRole).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/cost-breakdown", deps.ReportHandler.CostBreakdown).Methods("GET")
	r.HandleFunc("/api/report/variance", deps.ReportHandler.Variance).Methods("GET")
	r.HandleFunc("/api/report/profitability", deps.ReportHandler.Profitability).Methods("GET")
	r.HandleFunc("/api/report/billable-hours", deps.ReportHandler.BillableHours).Methods("GET")
	r.HandleFunc("/api/dashboard", deps.ReportHandler.Dashboard).Methods("GET")
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			log.Warnf("health check failed: %v", err)
			rest.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
			return
		}
		rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "up"})
	}
}
