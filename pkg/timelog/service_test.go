package timelog

import (
	"context"
	"testing"
	"time"

	"github.com/marginly/marginly/pkg/finance"
	"github.com/marginly/marginly/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 7, Name: "Ada"})

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func day(n int) time.Time {
	return time.Date(2026, 4, n, 0, 0, 0, 0, time.UTC)
}

func setupService(t *testing.T) (*ServiceImpl, *RepositoryStub) {
	repo := NewRepositoryStub()
	return NewService(repo), repo
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should default user to the current user", func(t *testing.T) {
		service, _ := setupService(t)

		created, err := service.Create(ctx, TimeLog{ProjectId: 1, Date: day(1), Hours: d("2"), Billable: true})

		require.NoError(t, err)
		assert.Equal(t, 7, created.UserId)
	})

	t.Run("should keep an explicit user", func(t *testing.T) {
		service, _ := setupService(t)

		created, err := service.Create(ctx, TimeLog{ProjectId: 1, UserId: 3, Date: day(1), Hours: d("2")})

		require.NoError(t, err)
		assert.Equal(t, 3, created.UserId)
	})

	t.Run("should fail without any user", func(t *testing.T) {
		service, _ := setupService(t)

		_, err := service.Create(context.Background(), TimeLog{ProjectId: 1, Date: day(1), Hours: d("2")})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})

	t.Run("should derive hours from interval", func(t *testing.T) {
		service, _ := setupService(t)
		start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
		end := start.Add(2*time.Hour + 20*time.Minute)

		created, err := service.Create(ctx, TimeLog{ProjectId: 1, Date: day(1), StartTime: &start, EndTime: &end})

		require.NoError(t, err)
		assert.Equal(t, "2.33", created.Hours.String())
	})

	t.Run("should keep explicit hours when interval is given", func(t *testing.T) {
		service, _ := setupService(t)
		start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
		end := start.Add(3 * time.Hour)

		created, err := service.Create(ctx, TimeLog{ProjectId: 1, Date: day(1), Hours: d("2.5"), StartTime: &start, EndTime: &end})

		require.NoError(t, err)
		assert.Equal(t, "2.5", created.Hours.String())
	})

	t.Run("should reject end before start", func(t *testing.T) {
		service, _ := setupService(t)
		start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
		end := start.Add(-time.Minute)

		_, err := service.Create(ctx, TimeLog{ProjectId: 1, Date: day(1), StartTime: &start, EndTime: &end})

		assert.ErrorIs(t, err, finance.ErrInvalidInput)
	})

	t.Run("should reject negative hours", func(t *testing.T) {
		service, _ := setupService(t)

		_, err := service.Create(ctx, TimeLog{ProjectId: 1, Date: day(1), Hours: d("-1")})

		assert.ErrorIs(t, err, finance.ErrInvalidInput)
	})
}

func TestServiceImpl_List(t *testing.T) {
	service, _ := setupService(t)
	for _, l := range []TimeLog{
		{ProjectId: 1, UserId: 1, Date: day(1), Hours: d("1"), Billable: true},
		{ProjectId: 1, UserId: 2, Date: day(5), Hours: d("2"), Billable: false},
		{ProjectId: 2, UserId: 1, Date: day(10), Hours: d("3"), Billable: true},
	} {
		_, err := service.Create(ctx, l)
		require.NoError(t, err)
	}
	billable := true

	byProject, err := service.List(ctx, Filter{ProjectId: 1})
	require.NoError(t, err)
	require.Len(t, byProject, 2)
	assert.True(t, day(5).Equal(byProject[0].Date))

	inRange, err := service.List(ctx, Filter{From: day(2), To: day(10)})
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	billableOfUser, err := service.List(ctx, Filter{UserId: 1, Billable: &billable})
	require.NoError(t, err)
	assert.Len(t, billableOfUser, 2)

	_, err = service.List(ctx, Filter{From: day(10), To: day(1)})
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
}

func TestServiceImpl_UpdateAndDelete(t *testing.T) {
	service, _ := setupService(t)
	created, err := service.Create(ctx, TimeLog{ProjectId: 1, Date: day(1), Hours: d("1")})
	require.NoError(t, err)

	created.Hours = d("4")
	created.Billable = true
	updated, err := service.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "4", updated.Hours.String())

	require.NoError(t, service.Delete(ctx, created.Id))
	_, err = service.Get(ctx, created.Id)
	assert.ErrorIs(t, err, ErrTimeLogNotFound)
	_, err = service.Update(ctx, created)
	assert.ErrorIs(t, err, ErrTimeLogNotFound)
}

func TestLaborRecords_FeedActualCost(t *testing.T) {
	logs := []TimeLog{
		{Hours: d("3"), Billable: true},
		{Hours: d("2"), Billable: true, UserRate: decimal.NewNullDecimal(d("50"))},
		{Hours: d("5"), Billable: false},
	}

	summary, err := finance.ActualCost(d("100"), LaborRecords(logs), nil)

	require.NoError(t, err)
	assert.Equal(t, "400", summary.LaborCost.String())
	assert.Equal(t, "10", summary.TotalHours.String())
}

func TestHoursBetween(t *testing.T) {
	start := time.Date(2026, 4, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "1.5", HoursBetween(start, start.Add(90*time.Minute)).String())
	assert.Equal(t, "0", HoursBetween(start, start.Add(30*time.Second)).String())
}
