package expense

import (
	"context"
	"fmt"

	"github.com/marginly/marginly/internal/event_bus"
	"github.com/marginly/marginly/pkg/finance"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, expense Expense) (Expense, error)
	ListByProject(ctx context.Context, projectId int) ([]Expense, error)
	Delete(ctx context.Context, projectId int, id int) error
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

// Create stores the expense and announces it so the stored project budget is recalculated.
// The stored budget is a cache; a failed recalculation is logged and does not fail the write.
func (s *ServiceImpl) Create(ctx context.Context, expense Expense) (Expense, error) {
	if expense.Amount.IsNegative() {
		return Expense{}, fmt.Errorf("%w: expense amount %s is negative", finance.ErrInvalidInput, expense.Amount)
	}
	created, err := s.repo.Create(ctx, expense)
	if err != nil {
		return Expense{}, err
	}

	event := event_bus.NewEvent(ctx, event_bus.ExpenseCreatedType, event_bus.ExpenseCreated{
		Id:        created.Id,
		ProjectId: created.ProjectId,
		Amount:    created.Amount,
		Type:      created.Type,
		Date:      created.Date,
	})
	if err := s.eventBus.Publish(event); err != nil {
		log.Warnf("expense %d created but budget of project %d was not recalculated: %v", created.Id, created.ProjectId, err)
	}
	log.Debugf("created expense %d for project %d", created.Id, created.ProjectId)
	return created, nil
}

func (s *ServiceImpl) ListByProject(ctx context.Context, projectId int) ([]Expense, error) {
	return s.repo.ListByProject(ctx, projectId)
}

func (s *ServiceImpl) Delete(ctx context.Context, projectId int, id int) error {
	if err := s.repo.Delete(ctx, projectId, id); err != nil {
		return err
	}
	event := event_bus.NewEvent(ctx, event_bus.ExpenseDeletedType, event_bus.ExpenseDeleted{Id: id, ProjectId: projectId})
	if err := s.eventBus.Publish(event); err != nil {
		log.Warnf("expense %d deleted but budget of project %d was not recalculated: %v", id, projectId, err)
	}
	return nil
}
