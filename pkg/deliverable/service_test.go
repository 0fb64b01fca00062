package deliverable

import (
	"context"
	"testing"
	"time"

	"github.com/marginly/marginly/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func date(day int) time.Time {
	return time.Date(2026, time.May, day, 0, 0, 0, 0, time.UTC)
}

func setupService(t *testing.T) (*ServiceImpl, *RepositoryStub, *utils.MockClock) {
	t.Helper()
	repo := NewRepositoryStub()
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.May, 10, 15, 30, 0, 0, time.UTC)}
	return NewService(repo, clock), repo, clock
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name         string
		deliverables []Deliverable
		expected     string
	}{
		{"no deliverables", nil, "0"},
		{"no hours", []Deliverable{{Status: StatusCompleted}}, "0"},
		{"weighted by hours", []Deliverable{
			{Hours: d("30"), Status: StatusCompleted},
			{Hours: d("50"), Status: StatusInProgress},
			{Hours: d("20"), Status: StatusNotStarted},
		}, "30"},
		{"rounded", []Deliverable{
			{Hours: d("1"), Status: StatusCompleted},
			{Hours: d("2"), Status: StatusNotStarted},
		}, "33.33"},
		{"all completed", []Deliverable{
			{Hours: d("8"), Status: StatusCompleted},
			{Hours: d("4"), Status: StatusCompleted},
		}, "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := ComputeProgress(tt.deliverables)
			assert.Equal(t, tt.expected, progress.Percent.String())
			assert.Equal(t, len(tt.deliverables), progress.Total)
		})
	}
}

func TestService_Create_DefaultsStatus(t *testing.T) {
	// given
	service, _, _ := setupService(t)

	// when
	created, err := service.Create(ctx, Deliverable{ProjectId: 1, Name: "Design", DueDate: date(12), Hours: d("16")})

	// then
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, created.Status)
}

func TestService_Create_Invalid(t *testing.T) {
	service, _, _ := setupService(t)

	_, err := service.Create(ctx, Deliverable{ProjectId: 1, Name: "Design", DueDate: date(12), Status: "Done"})
	assert.ErrorIs(t, err, ErrInvalidDeliverable)

	_, err = service.Create(ctx, Deliverable{ProjectId: 1, Name: "Design", DueDate: date(12), Hours: d("-1")})
	assert.ErrorIs(t, err, ErrInvalidDeliverable)

	_, err = service.Create(ctx, Deliverable{ProjectId: 1, Name: "Design"})
	assert.ErrorIs(t, err, ErrInvalidDeliverable)
}

func TestService_Progress(t *testing.T) {
	// given
	service, _, _ := setupService(t)
	_, _ = service.Create(ctx, Deliverable{ProjectId: 1, Name: "Design", DueDate: date(12), Hours: d("10"), Status: StatusCompleted})
	_, _ = service.Create(ctx, Deliverable{ProjectId: 1, Name: "Build", DueDate: date(20), Hours: d("30")})
	_, _ = service.Create(ctx, Deliverable{ProjectId: 2, Name: "Other", DueDate: date(20), Hours: d("30"), Status: StatusCompleted})

	// when
	progress, err := service.Progress(ctx, 1)

	// then
	require.NoError(t, err)
	assert.Equal(t, "25", progress.Percent.String())
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, 2, progress.Total)
}

func TestService_Upcoming(t *testing.T) {
	// given
	service, _, _ := setupService(t)
	_, _ = service.Create(ctx, Deliverable{ProjectId: 1, Name: "Overdue", DueDate: date(9), Hours: d("1")})
	_, _ = service.Create(ctx, Deliverable{ProjectId: 1, Name: "Today", DueDate: date(10), Hours: d("1")})
	_, _ = service.Create(ctx, Deliverable{ProjectId: 2, Name: "Next week", DueDate: date(17), Hours: d("1")})
	_, _ = service.Create(ctx, Deliverable{ProjectId: 2, Name: "Done", DueDate: date(11), Hours: d("1"), Status: StatusCompleted})
	_, _ = service.Create(ctx, Deliverable{ProjectId: 2, Name: "Later", DueDate: date(18), Hours: d("1")})

	// when
	upcoming, err := service.Upcoming(ctx, 7)

	// then
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "Today", upcoming[0].Name)
	assert.Equal(t, "Next week", upcoming[1].Name)
}

func TestService_UpdateAndDelete_NotFound(t *testing.T) {
	// given
	service, _, _ := setupService(t)
	created, _ := service.Create(ctx, Deliverable{ProjectId: 1, Name: "Design", DueDate: date(12)})

	// when
	_, updateErr := service.Update(ctx, Deliverable{Id: created.Id, ProjectId: 2, Name: "Design", DueDate: date(12), Status: StatusInProgress})
	deleteErr := service.Delete(ctx, 2, created.Id)

	// then
	assert.ErrorIs(t, updateErr, ErrDeliverableNotFound)
	assert.ErrorIs(t, deleteErr, ErrDeliverableNotFound)
}
