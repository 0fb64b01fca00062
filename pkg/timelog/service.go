package timelog

import (
	"context"
	"fmt"
	"time"

	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var minutesPerHour = decimal.NewFromInt(60)

type Service interface {
	Create(ctx context.Context, timeLog TimeLog) (TimeLog, error)
	Get(ctx context.Context, id int) (TimeLog, error)
	List(ctx context.Context, filter Filter) ([]TimeLog, error)
	Update(ctx context.Context, timeLog TimeLog) (TimeLog, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

// Create stores the log for the given user, or for the current user when none is set.
func (s *ServiceImpl) Create(ctx context.Context, timeLog TimeLog) (TimeLog, error) {
	timeLog, err := prepare(ctx, timeLog)
	if err != nil {
		return TimeLog{}, err
	}
	created, err := s.repo.Create(ctx, timeLog)
	if err != nil {
		return TimeLog{}, err
	}
	log.Debugf("user %d logged %s hours on project %d", created.UserId, created.Hours, created.ProjectId)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (TimeLog, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]TimeLog, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, fmt.Errorf("%w: date range ends before it starts", finance.ErrInvalidInput)
	}
	return s.repo.List(ctx, filter)
}

func (s *ServiceImpl) Update(ctx context.Context, timeLog TimeLog) (TimeLog, error) {
	timeLog, err := prepare(ctx, timeLog)
	if err != nil {
		return TimeLog{}, err
	}
	return s.repo.Update(ctx, timeLog)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func prepare(ctx context.Context, timeLog TimeLog) (TimeLog, error) {
	if timeLog.UserId == 0 {
		userId, err := user.CurrentId(ctx)
		if err != nil {
			return TimeLog{}, fmt.Errorf("failed to get current user: %w", err)
		}
		timeLog.UserId = userId
	}
	if timeLog.StartTime != nil && timeLog.EndTime != nil {
		if timeLog.EndTime.Before(*timeLog.StartTime) {
			return TimeLog{}, fmt.Errorf("%w: end time is before start time", finance.ErrInvalidInput)
		}
		if timeLog.Hours.IsZero() {
			timeLog.Hours = HoursBetween(*timeLog.StartTime, *timeLog.EndTime)
		}
	}
	if timeLog.Hours.IsNegative() {
		return TimeLog{}, fmt.Errorf("%w: logged hours %s are negative", finance.ErrInvalidInput, timeLog.Hours)
	}
	return timeLog, nil
}

// HoursBetween returns the whole minutes between start and end as hours, rounded to two decimals.
func HoursBetween(start, end time.Time) decimal.Decimal {
	minutes := int64(end.Sub(start) / time.Minute)
	return decimal.NewFromInt(minutes).Div(minutesPerHour).Round(2)
}
