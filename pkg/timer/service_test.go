package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marginly/marginly/internal/utils"
	"github.com/marginly/marginly/pkg/timelog"
	"github.com/marginly/marginly/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 7, Name: "Ada"})

var morning = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*ServiceImpl, *RepositoryStub, timelog.Service, *utils.MockClock) {
	repo := NewRepositoryStub()
	timeLogs := timelog.NewService(timelog.NewRepositoryStub())
	clock := &utils.MockClock{FixedNow: morning}
	return NewService(repo, timeLogs, clock), repo, timeLogs, clock
}

func TestServiceImpl_Start(t *testing.T) {
	t.Run("should start a timer for the current user", func(t *testing.T) {
		// given
		service, _, _, _ := setupService(t)

		// when
		started, err := service.Start(ctx, Timer{ProjectId: 1, Description: "Design", Billable: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, 7, started.UserId)
		assert.True(t, morning.Equal(started.StartTime))
		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Design", current.Description)
	})

	t.Run("should require a project", func(t *testing.T) {
		service, _, _, _ := setupService(t)

		_, err := service.Start(ctx, Timer{Description: "Design"})

		assert.ErrorIs(t, err, ErrInvalidTimer)
	})

	t.Run("should log the running timer before starting a new one", func(t *testing.T) {
		// given
		service, _, timeLogs, clock := setupService(t)
		_, err := service.Start(ctx, Timer{ProjectId: 1, Billable: true})
		require.NoError(t, err)
		clock.SetNow(morning.Add(90 * time.Minute))

		// when
		started, err := service.Start(ctx, Timer{ProjectId: 2})

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, started.ProjectId)
		assert.True(t, morning.Add(90*time.Minute).Equal(started.StartTime))
		logs, err := timeLogs.List(ctx, timelog.Filter{})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, 1, logs[0].ProjectId)
		assert.Equal(t, "1.5", logs[0].Hours.String())
		assert.True(t, logs[0].Billable)
	})

	t.Run("should keep start time when replacing a short timer", func(t *testing.T) {
		// given
		service, _, timeLogs, clock := setupService(t)
		_, err := service.Start(ctx, Timer{ProjectId: 1})
		require.NoError(t, err)
		clock.SetNow(morning.Add(30 * time.Second))

		// when
		started, err := service.Start(ctx, Timer{ProjectId: 2})

		// then
		require.NoError(t, err)
		assert.True(t, morning.Equal(started.StartTime))
		logs, err := timeLogs.List(ctx, timelog.Filter{})
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestServiceImpl_Stop(t *testing.T) {
	t.Run("should log elapsed time", func(t *testing.T) {
		// given
		service, _, _, clock := setupService(t)
		_, err := service.Start(ctx, Timer{ProjectId: 1, Description: "Review", Billable: true})
		require.NoError(t, err)
		clock.SetNow(morning.Add(2*time.Hour + 15*time.Minute))

		// when
		logged, err := service.Stop(ctx)

		// then
		require.NoError(t, err)
		require.NotNil(t, logged)
		assert.Equal(t, "2.25", logged.Hours.String())
		assert.Equal(t, "Review", logged.Description)
		assert.Equal(t, 7, logged.UserId)
		assert.True(t, utils.StartOfDay(morning).Equal(logged.Date))
		_, err = service.Current(ctx)
		assert.ErrorIs(t, err, ErrNoRunningTimer)
	})

	t.Run("should discard a short timer", func(t *testing.T) {
		// given
		service, _, _, clock := setupService(t)
		_, err := service.Start(ctx, Timer{ProjectId: 1})
		require.NoError(t, err)
		clock.SetNow(morning.Add(59 * time.Second))

		// when
		logged, err := service.Stop(ctx)

		// then
		require.NoError(t, err)
		assert.Nil(t, logged)
		_, err = service.Current(ctx)
		assert.ErrorIs(t, err, ErrNoRunningTimer)
	})

	t.Run("should fail without a running timer", func(t *testing.T) {
		service, _, _, _ := setupService(t)

		_, err := service.Stop(ctx)

		assert.ErrorIs(t, err, ErrNoRunningTimer)
	})
}

func TestServiceImpl_ModifyStartTime(t *testing.T) {
	t.Run("should move the start time back", func(t *testing.T) {
		// given
		service, _, _, _ := setupService(t)
		_, err := service.Start(ctx, Timer{ProjectId: 1})
		require.NoError(t, err)

		// when
		modified, err := service.ModifyStartTime(ctx, morning.Add(-time.Hour))

		// then
		require.NoError(t, err)
		assert.True(t, morning.Add(-time.Hour).Equal(modified.StartTime))
	})

	t.Run("should reject a start time in the future", func(t *testing.T) {
		service, _, _, _ := setupService(t)
		_, err := service.Start(ctx, Timer{ProjectId: 1})
		require.NoError(t, err)

		_, err = service.ModifyStartTime(ctx, morning.Add(time.Minute))

		assert.ErrorIs(t, err, ErrInvalidTimer)
	})
}

func TestServiceImpl_Discard(t *testing.T) {
	// given
	service, repo, _, _ := setupService(t)
	_, err := service.Start(ctx, Timer{ProjectId: 1})
	require.NoError(t, err)

	// when
	err = service.Discard(ctx)

	// then
	require.NoError(t, err)
	found, err := repo.Find(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found.Running())
	assert.ErrorIs(t, service.Discard(ctx), ErrNoRunningTimer)
}

func TestServiceImpl_NoUser(t *testing.T) {
	service, _, _, _ := setupService(t)

	_, err := service.Current(context.Background())

	assert.ErrorIs(t, err, user.ErrNoUser)
}

type failingDeleteRepository struct {
	*RepositoryStub
}

func (r failingDeleteRepository) Delete(ctx context.Context, userId int) error {
	return errors.New("database unavailable")
}

type failingTimeLogWriter struct{}

func (failingTimeLogWriter) Create(ctx context.Context, timeLog timelog.TimeLog) (timelog.TimeLog, error) {
	return timelog.TimeLog{}, errors.New("database unavailable")
}

func TestServiceImpl_StopFailures(t *testing.T) {
	t.Run("should not log time when the timer cannot be removed", func(t *testing.T) {
		// given
		repo := NewRepositoryStub()
		timeLogs := timelog.NewService(timelog.NewRepositoryStub())
		clock := &utils.MockClock{FixedNow: morning}
		service := NewService(failingDeleteRepository{repo}, timeLogs, clock)
		_, err := service.Start(ctx, Timer{ProjectId: 1})
		require.NoError(t, err)
		clock.SetNow(morning.Add(time.Hour))

		// when
		_, err = service.Stop(ctx)

		// then
		require.Error(t, err)
		logs, err := timeLogs.List(ctx, timelog.Filter{})
		require.NoError(t, err)
		assert.Empty(t, logs)
		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.True(t, morning.Equal(current.StartTime))
	})

	t.Run("should keep the timer running when time cannot be logged", func(t *testing.T) {
		// given
		repo := NewRepositoryStub()
		clock := &utils.MockClock{FixedNow: morning}
		service := NewService(repo, failingTimeLogWriter{}, clock)
		_, err := service.Start(ctx, Timer{ProjectId: 1, Description: "Design"})
		require.NoError(t, err)
		clock.SetNow(morning.Add(time.Hour))

		// when
		_, err = service.Stop(ctx)

		// then
		require.Error(t, err)
		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Design", current.Description)
		assert.True(t, morning.Equal(current.StartTime))
	})

	t.Run("should restore the previous timer when starting a new one fails to log", func(t *testing.T) {
		// given
		repo := NewRepositoryStub()
		clock := &utils.MockClock{FixedNow: morning}
		service := NewService(repo, failingTimeLogWriter{}, clock)
		_, err := service.Start(ctx, Timer{ProjectId: 1})
		require.NoError(t, err)
		clock.SetNow(morning.Add(time.Hour))

		// when
		_, err = service.Start(ctx, Timer{ProjectId: 2})

		// then
		require.Error(t, err)
		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, current.ProjectId)
		assert.True(t, morning.Equal(current.StartTime))
	})
}
