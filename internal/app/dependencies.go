package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/config"
	"github.com/marginly/marginly/internal/event_bus"
	"github.com/marginly/marginly/internal/utils"
	"github.com/marginly/marginly/pkg/client"
	"github.com/marginly/marginly/pkg/deliverable"
	"github.com/marginly/marginly/pkg/expense"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/project"
	"github.com/marginly/marginly/pkg/report"
	"github.com/marginly/marginly/pkg/timelog"
	"github.com/marginly/marginly/pkg/timer"
	"github.com/marginly/marginly/pkg/user"
	"github.com/shopspring/decimal"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	ClientService client.Service
	ClientHandler *client.Handler

	ProjectService project.Service
	ProjectHandler *project.Handler

	TimeLogService timelog.Service
	TimeLogHandler *timelog.Handler

	TimerService timer.Service
	TimerHandler *timer.Handler

	ExpenseService expense.Service
	ExpenseHandler *expense.Handler

	DeliverableService deliverable.Service
	DeliverableHandler *deliverable.Handler

	ReportService  report.Service
	ReportRenderer report.Renderer
	ReportHandler  *report.Handler
}

// Thresholds converts the configured utilization percentages.
func Thresholds(cfg config.Finance) finance.Thresholds {
	return finance.Thresholds{
		Warning:    decimal.NewFromFloat(cfg.WarningThreshold),
		OverBudget: decimal.NewFromFloat(cfg.OverBudgetThreshold),
	}
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewService(user.NewRepository(db), deps.EventBus)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.ClientService = client.NewService(client.NewRepository(db))
	deps.ClientHandler = client.NewHandler(deps.ClientService)

	projectService := project.NewService(project.NewRepository(db), deps.EventBus,
		decimal.NewFromFloat(cfg.Finance.DefaultProfitMargin))
	deps.ProjectService = projectService
	deps.ProjectHandler = project.NewHandler(projectService)

	deps.TimeLogService = timelog.NewService(timelog.NewRepository(db))
	deps.TimeLogHandler = timelog.NewHandler(deps.TimeLogService)

	deps.TimerService = timer.NewService(timer.NewRepository(db), deps.TimeLogService, deps.Clock)
	deps.TimerHandler = timer.NewHandler(deps.TimerService)

	deps.ExpenseService = expense.NewService(expense.NewRepository(db), deps.EventBus)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService, projectService)

	deps.DeliverableService = deliverable.NewService(deliverable.NewRepository(db), deps.Clock)
	deps.DeliverableHandler = deliverable.NewHandler(deps.DeliverableService, projectService)

	deps.ReportService = report.NewService(projectService, deps.TimeLogService, deps.ExpenseService,
		deps.DeliverableService, Thresholds(cfg.Finance), cfg.Finance.UpcomingDays)
	deps.ReportRenderer = report.NewCsvRenderer()
	deps.ReportHandler = report.NewHandler(deps.ReportService, deps.ReportRenderer)

	return deps
}
