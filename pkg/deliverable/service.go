package deliverable

import (
	"context"
	"errors"
	"fmt"

	"github.com/marginly/marginly/internal/utils"
)

var ErrInvalidDeliverable = errors.New("invalid deliverable")

type Service interface {
	Create(ctx context.Context, deliverable Deliverable) (Deliverable, error)
	Get(ctx context.Context, projectId int, id int) (Deliverable, error)
	ListByProject(ctx context.Context, projectId int) ([]Deliverable, error)
	Update(ctx context.Context, deliverable Deliverable) (Deliverable, error)
	Delete(ctx context.Context, projectId int, id int) error
	Progress(ctx context.Context, projectId int) (Progress, error)
	// Upcoming lists open deliverables due from today up to the given number of days ahead.
	Upcoming(ctx context.Context, days int) ([]Deliverable, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, deliverable Deliverable) (Deliverable, error) {
	if deliverable.Status == "" {
		deliverable.Status = StatusNotStarted
	}
	if err := validate(deliverable); err != nil {
		return Deliverable{}, err
	}
	return s.repo.Create(ctx, deliverable)
}

func (s *ServiceImpl) Get(ctx context.Context, projectId int, id int) (Deliverable, error) {
	return s.repo.Get(ctx, projectId, id)
}

func (s *ServiceImpl) ListByProject(ctx context.Context, projectId int) ([]Deliverable, error) {
	return s.repo.ListByProject(ctx, projectId)
}

func (s *ServiceImpl) Update(ctx context.Context, deliverable Deliverable) (Deliverable, error) {
	if err := validate(deliverable); err != nil {
		return Deliverable{}, err
	}
	return s.repo.Update(ctx, deliverable)
}

func (s *ServiceImpl) Delete(ctx context.Context, projectId int, id int) error {
	return s.repo.Delete(ctx, projectId, id)
}

func (s *ServiceImpl) Progress(ctx context.Context, projectId int) (Progress, error) {
	deliverables, err := s.repo.ListByProject(ctx, projectId)
	if err != nil {
		return Progress{}, err
	}
	return ComputeProgress(deliverables), nil
}

func (s *ServiceImpl) Upcoming(ctx context.Context, days int) ([]Deliverable, error) {
	today := utils.StartOfDay(s.clock.Now())
	return s.repo.ListOpenDueBetween(ctx, today, today.AddDate(0, 0, days))
}

func validate(deliverable Deliverable) error {
	if !deliverable.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidDeliverable, deliverable.Status)
	}
	if deliverable.Hours.IsNegative() {
		return fmt.Errorf("%w: estimated hours must not be negative", ErrInvalidDeliverable)
	}
	if deliverable.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidDeliverable)
	}
	return nil
}
