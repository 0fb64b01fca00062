package event_bus

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishRunsHandlersInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var calls []int
	for i := 1; i <= 5; i++ {
		i := i
		bus.Subscribe("test", func(e Event) error {
			calls = append(calls, i)
			return nil
		})
	}

	err := bus.Publish(NewEvent(context.Background(), "test", nil))

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
}

func TestEventBus_SubscribeTyped(t *testing.T) {
	bus := NewEventBus()
	var received []ExpenseDeleted
	SubscribeTyped[ExpenseDeleted](bus, ExpenseDeletedType, func(e EventT[ExpenseDeleted]) error {
		received = append(received, e.Data)
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), ExpenseDeletedType, ExpenseDeleted{Id: 1, ProjectId: 7})))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), ExpenseDeletedType, "wrong payload")))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), ExpenseDeletedType, nil)))

	assert.Equal(t, []ExpenseDeleted{{Id: 1, ProjectId: 7}}, received)
}

func TestEventBus_CollectsErrorsAndPanics(t *testing.T) {
	bus := NewEventBus()
	secondCalled := false
	bus.Subscribe("test", func(e Event) error { return errors.New("first failed") })
	bus.Subscribe("test", func(e Event) error { panic("boom") })
	bus.Subscribe("test", func(e Event) error {
		secondCalled = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), "test", nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 handler(s) failed")
	assert.True(t, secondCalled)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.Subscribe("test", func(e Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), "test", nil)))
	unsubscribe()
	require.NoError(t, bus.Publish(NewEvent(context.Background(), "test", nil)))

	assert.Equal(t, 1, calls)
}

func TestEventBus_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe("test", func(e Event) error {
		called = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, "test", nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestEventBus_HandlerErrorsStayMatchable(t *testing.T) {
	bus := NewEventBus()
	errNotFound := errors.New("not found")
	bus.Subscribe("test", func(e Event) error { return fmt.Errorf("handling: %w", errNotFound) })

	err := bus.Publish(NewEvent(context.Background(), "test", nil))

	assert.ErrorIs(t, err, errNotFound)
}
