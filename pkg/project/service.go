package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/marginly/marginly/internal/event_bus"
	"github.com/marginly/marginly/pkg/finance"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidProject = errors.New("invalid project")

var minProfitMargin = decimal.NewFromInt(-100)

type Service interface {
	DefaultProfitMargin() decimal.Decimal
	CreateProject(ctx context.Context, project Project) (Project, error)
	GetProject(ctx context.Context, id int) (Project, error)
	ListProjects(ctx context.Context, filter Filter) ([]Project, error)
	UpdateProject(ctx context.Context, project Project) (Project, error)
	DeleteProject(ctx context.Context, id int) error
	ListTeamMembers(ctx context.Context, projectId int) ([]TeamMember, error)
	AddTeamMember(ctx context.Context, member TeamMember) (TeamMember, error)
	UpdateTeamMember(ctx context.Context, member TeamMember) (TeamMember, error)
	RemoveTeamMember(ctx context.Context, projectId int, memberId int) error
	// RecalculateBudget derives the budget from the current planned cost and persists it.
	RecalculateBudget(ctx context.Context, projectId int) (decimal.Decimal, error)
}

type ServiceImpl struct {
	repo          Repository
	defaultMargin decimal.Decimal
}

func NewService(repo Repository, eventBus *event_bus.EventBus, defaultMargin decimal.Decimal) *ServiceImpl {
	service := &ServiceImpl{repo: repo, defaultMargin: defaultMargin}

	recalculateOnExpense := func(ctx context.Context, projectId int) error {
		if _, err := service.RecalculateBudget(ctx, projectId); err != nil {
			log.Errorf("failed to recalculate budget of project %d: %v", projectId, err)
			return err
		}
		return nil
	}
	event_bus.SubscribeTyped(eventBus, event_bus.ExpenseCreatedType,
		func(e event_bus.EventT[event_bus.ExpenseCreated]) error {
			log.Debugf("received expense created event: %+v", e.Data)
			return recalculateOnExpense(e.Context(), e.Data.ProjectId)
		},
	)
	event_bus.SubscribeTyped(eventBus, event_bus.ExpenseDeletedType,
		func(e event_bus.EventT[event_bus.ExpenseDeleted]) error {
			log.Debugf("received expense deleted event: %+v", e.Data)
			return recalculateOnExpense(e.Context(), e.Data.ProjectId)
		},
	)
	event_bus.SubscribeTyped(eventBus, event_bus.UserRateUpdatedType,
		func(e event_bus.EventT[event_bus.UserRateUpdated]) error {
			log.Debugf("received user rate updated event for user %d", e.Data.UserId)
			return service.recalculateForUser(e.Context(), e.Data.UserId)
		},
	)
	return service
}

func (s *ServiceImpl) DefaultProfitMargin() decimal.Decimal {
	return s.defaultMargin
}

func (s *ServiceImpl) CreateProject(ctx context.Context, project Project) (Project, error) {
	if project.Status == "" {
		project.Status = StatusPlanning
	}
	if err := validate(project); err != nil {
		return Project{}, err
	}
	project.Budget = decimal.Zero

	var created Project
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		created, err = repo.CreateProject(ctx, project)
		if err != nil {
			return err
		}
		created.Budget, err = s.recalculate(ctx, repo, created.Id)
		return err
	})
	if err != nil {
		return Project{}, err
	}
	log.Infof("created project %d (%s)", created.Id, created.Name)
	return created, nil
}

func (s *ServiceImpl) GetProject(ctx context.Context, id int) (Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *ServiceImpl) ListProjects(ctx context.Context, filter Filter) ([]Project, error) {
	return s.repo.ListProjects(ctx, filter)
}

func (s *ServiceImpl) UpdateProject(ctx context.Context, project Project) (Project, error) {
	if err := validate(project); err != nil {
		return Project{}, err
	}
	var updated Project
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		updated, err = repo.UpdateProject(ctx, project)
		if err != nil {
			return err
		}
		updated.Budget, err = s.recalculate(ctx, repo, updated.Id)
		return err
	})
	if err != nil {
		return Project{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteProject(ctx context.Context, id int) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			log.Warnf("project %d not found, nothing deleted", id)
		}
		return err
	}
	return nil
}

func (s *ServiceImpl) ListTeamMembers(ctx context.Context, projectId int) ([]TeamMember, error) {
	if _, err := s.repo.GetProject(ctx, projectId); err != nil {
		return nil, err
	}
	return s.repo.ListTeamMembers(ctx, projectId)
}

func (s *ServiceImpl) AddTeamMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	if member.Hours.IsNegative() {
		return TeamMember{}, fmt.Errorf("%w: allocated hours must not be negative", ErrInvalidProject)
	}
	var added TeamMember
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		added, err = repo.AddTeamMember(ctx, member)
		if err != nil {
			return err
		}
		_, err = s.recalculate(ctx, repo, member.ProjectId)
		return err
	})
	if err != nil {
		return TeamMember{}, err
	}
	return added, nil
}

func (s *ServiceImpl) UpdateTeamMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	if member.Hours.IsNegative() {
		return TeamMember{}, fmt.Errorf("%w: allocated hours must not be negative", ErrInvalidProject)
	}
	var updated TeamMember
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		updated, err = repo.UpdateTeamMember(ctx, member)
		if err != nil {
			return err
		}
		_, err = s.recalculate(ctx, repo, member.ProjectId)
		return err
	})
	if err != nil {
		return TeamMember{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) RemoveTeamMember(ctx context.Context, projectId int, memberId int) error {
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.RemoveTeamMember(ctx, projectId, memberId); err != nil {
			return err
		}
		_, err := s.recalculate(ctx, repo, projectId)
		return err
	})
}

func (s *ServiceImpl) RecalculateBudget(ctx context.Context, projectId int) (decimal.Decimal, error) {
	var budget decimal.Decimal
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		budget, err = s.recalculate(ctx, repo, projectId)
		return err
	})
	return budget, err
}

func (s *ServiceImpl) recalculateForUser(ctx context.Context, userId int) error {
	projectIds, err := s.repo.ProjectIdsWithMember(ctx, userId)
	if err != nil {
		return err
	}
	var errs []error
	for _, projectId := range projectIds {
		if _, err := s.RecalculateBudget(ctx, projectId); err != nil {
			errs = append(errs, fmt.Errorf("project %d: %w", projectId, err))
		}
	}
	log.Debugf("recalculated budgets of %d projects after rate change of user %d", len(projectIds)-len(errs), userId)
	return errors.Join(errs...)
}

// recalculate must run inside a transaction: the project row stays locked until the new budget is written.
func (s *ServiceImpl) recalculate(ctx context.Context, repo Repository, projectId int) (decimal.Decimal, error) {
	project, err := repo.LockProject(ctx, projectId)
	if err != nil {
		return decimal.Zero, err
	}
	members, err := repo.ListTeamMembers(ctx, projectId)
	if err != nil {
		return decimal.Zero, err
	}
	expenses, err := repo.ListExpenseAmounts(ctx, projectId)
	if err != nil {
		return decimal.Zero, err
	}

	budget, err := PlannedBudget(project, members, expenses)
	if err != nil {
		return decimal.Zero, err
	}
	if err := repo.UpdateProjectBudget(ctx, projectId, budget); err != nil {
		return decimal.Zero, err
	}
	log.Debugf("budget of project %d set to %s", projectId, budget)
	return budget, nil
}

// PlannedBudget is the budget derived from team allocations and expenses, rounded to cents.
func PlannedBudget(project Project, members []TeamMember, expenses []decimal.Decimal) (decimal.Decimal, error) {
	planned, err := finance.PlannedCost(project.HourlyRate, LaborRecords(members), expenses)
	if err != nil {
		return decimal.Zero, err
	}
	budget := finance.RoundedBudget(planned.TotalCost, project.ProfitMargin)
	if budget.IsNegative() {
		budget = decimal.Zero
	}
	return budget, nil
}

// LaborRecords converts allocations into planned labor records.
func LaborRecords(members []TeamMember) []finance.LaborRecord {
	records := make([]finance.LaborRecord, 0, len(members))
	for _, m := range members {
		records = append(records, finance.LaborRecord{UserRate: m.UserRate, Hours: m.Hours, Billable: true})
	}
	return records
}

func validate(project Project) error {
	if project.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProject)
	}
	if !validStatus(project.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidProject, project.Status)
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidProject)
	}
	if project.HourlyRate.IsNegative() || project.EstimatedHours.IsNegative() {
		return fmt.Errorf("%w: hourly rate and estimated hours must not be negative", ErrInvalidProject)
	}
	if project.ProfitMargin.LessThan(minProfitMargin) {
		return fmt.Errorf("%w: profit margin must be at least -100", ErrInvalidProject)
	}
	return nil
}

func validStatus(status Status) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
