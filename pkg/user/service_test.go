package user

import (
	"context"
	"errors"
	"testing"

	"github.com/marginly/marginly/internal/event_bus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func setupService(t *testing.T) (*ServiceImpl, *RepositoryStub, *[]event_bus.UserRateUpdated) {
	repo := NewRepositoryStub()
	bus := event_bus.NewEventBus()
	published := &[]event_bus.UserRateUpdated{}
	event_bus.SubscribeTyped(bus, event_bus.UserRateUpdatedType, func(e event_bus.EventT[event_bus.UserRateUpdated]) error {
		*published = append(*published, e.Data)
		return nil
	})
	t.Cleanup(repo.Reset)
	return NewService(repo, bus), repo, published
}

func hourly(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

func TestServiceImpl_CreateUser(t *testing.T) {
	t.Run("should assign id and uid", func(t *testing.T) {
		service, _, _ := setupService(t)

		created, err := service.CreateUser(ctx, User{Name: "Ada", Email: "ada@example.com"})

		require.NoError(t, err)
		assert.Equal(t, 1, created.Id)
		assert.Len(t, created.Uid, 36)
		stored, err := service.GetUserByUid(ctx, created.Uid)
		require.NoError(t, err)
		assert.Equal(t, created, stored)
	})

	t.Run("should reject duplicated email", func(t *testing.T) {
		service, _, _ := setupService(t)
		_, err := service.CreateUser(ctx, User{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		_, err = service.CreateUser(ctx, User{Name: "Other Ada", Email: "ada@example.com"})

		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestServiceImpl_UpdateUser(t *testing.T) {
	t.Run("should publish event when hourly rate changes", func(t *testing.T) {
		// given
		service, _, published := setupService(t)
		created, err := service.CreateUser(ctx, User{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		// when
		created.HourlyRate = hourly("150")
		updated, err := service.UpdateUser(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, created.Uid, updated.Uid)
		require.Len(t, *published, 1)
		assert.Equal(t, created.Id, (*published)[0].UserId)
		assert.True(t, (*published)[0].HourlyRate.Decimal.Equal(decimal.NewFromInt(150)))
	})

	t.Run("should publish event when hourly rate is cleared", func(t *testing.T) {
		service, _, published := setupService(t)
		created, err := service.CreateUser(ctx, User{Name: "Ada", Email: "ada@example.com", HourlyRate: hourly("150")})
		require.NoError(t, err)

		created.HourlyRate = decimal.NullDecimal{}
		_, err = service.UpdateUser(ctx, created)

		require.NoError(t, err)
		require.Len(t, *published, 1)
		assert.False(t, (*published)[0].HourlyRate.Valid)
	})

	t.Run("should not publish event when only the name changes", func(t *testing.T) {
		service, _, published := setupService(t)
		created, err := service.CreateUser(ctx, User{Name: "Ada", Email: "ada@example.com", HourlyRate: hourly("150")})
		require.NoError(t, err)

		created.Name = "Ada Lovelace"
		created.HourlyRate = hourly("150.00")
		updated, err := service.UpdateUser(ctx, created)

		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", updated.Name)
		assert.Empty(t, *published)
	})

	t.Run("should return not found for unknown user", func(t *testing.T) {
		service, _, _ := setupService(t)

		_, err := service.UpdateUser(ctx, User{Id: 42, Name: "Nobody", Email: "nobody@example.com"})

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("should keep the update when budget recalculation fails", func(t *testing.T) {
		repo := NewRepositoryStub()
		bus := event_bus.NewEventBus()
		bus.Subscribe(event_bus.UserRateUpdatedType, func(e event_bus.Event) error {
			return errors.New("recalculation failed")
		})
		service := NewService(repo, bus)
		created, err := service.CreateUser(ctx, User{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		created.HourlyRate = hourly("90")
		updated, err := service.UpdateUser(ctx, created)

		require.NoError(t, err)
		assert.Equal(t, "90", updated.HourlyRate.Decimal.String())
		stored, err := repo.GetUser(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "90", stored.HourlyRate.Decimal.String())
	})
}

func TestServiceImpl_DeleteUser(t *testing.T) {
	service, _, _ := setupService(t)
	created, err := service.CreateUser(ctx, User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(ctx, created.Id))

	_, err = service.GetUser(ctx, created.Id)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, service.DeleteUser(ctx, created.Id), ErrUserNotFound)
}

func TestCurrentUser(t *testing.T) {
	_, err := CurrentId(ctx)
	assert.ErrorIs(t, err, ErrNoUser)

	id, err := CurrentId(WithUser(ctx, User{Id: 7}))
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}
