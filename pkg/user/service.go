package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/marginly/marginly/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user.Uid = uuid.NewString()
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = id
	log.Infof("created user %d (%s)", id, user.Email)
	return user, nil
}

func (s *ServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *ServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.repo.GetUserByUid(ctx, uid)
}

func (s *ServiceImpl) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.GetAllUsers(ctx)
}

// UpdateUser stores the new profile. A change of hourly rate is announced on the event bus so project
// budgets that depend on it are recalculated.
func (s *ServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	existing, err := s.repo.GetUser(ctx, user.Id)
	if err != nil {
		return User{}, err
	}

	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return User{}, err
	}

	if !sameRate(existing, updated) {
		log.Debugf("hourly rate of user %d changed", updated.Id)
		event := event_bus.NewEvent(ctx, event_bus.UserRateUpdatedType, event_bus.UserRateUpdated{
			UserId:     updated.Id,
			HourlyRate: updated.HourlyRate,
		})
		if err := s.eventBus.Publish(event); err != nil {
			log.Warnf("user %d updated but dependent project budgets were not recalculated: %v", updated.Id, err)
		}
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteUser(ctx context.Context, id int) error {
	return s.repo.DeleteUser(ctx, id)
}

func sameRate(a, b User) bool {
	if a.HourlyRate.Valid != b.HourlyRate.Valid {
		return false
	}
	return !a.HourlyRate.Valid || a.HourlyRate.Decimal.Equal(b.HourlyRate.Decimal)
}
