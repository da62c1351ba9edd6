package platform

import (
	"context"
	"errors"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Attributes(t *testing.T) {
	event := NewEvent(EventTypeConfigChanged, "test.source", map[string]string{"key": "value"})

	assert.Equal(t, EventTypeConfigChanged, event.Type())
	assert.Equal(t, "test.source", event.Source())
	assert.NotEmpty(t, event.ID())
	assert.False(t, event.Time().IsZero())

	var data map[string]string
	require.NoError(t, event.DataAs(&data))
	assert.Equal(t, "value", data["key"])
}

func TestBroker_NotifyAllObservers(t *testing.T) {
	broker := NewBroker(nil)

	var first, second []string
	require.NoError(t, broker.RegisterObserver(ObserverFunc{
		ID: "first",
		Fn: func(ctx context.Context, event cloudevents.Event) error {
			first = append(first, event.Type())
			return nil
		},
	}))
	require.NoError(t, broker.RegisterObserver(ObserverFunc{
		ID: "second",
		Fn: func(ctx context.Context, event cloudevents.Event) error {
			second = append(second, event.Type())
			return nil
		},
	}))

	err := broker.NotifyObservers(context.Background(), NewEvent("test.event", "test", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"test.event"}, first)
	assert.Equal(t, []string{"test.event"}, second)
}

func TestBroker_TypeFiltering(t *testing.T) {
	broker := NewBroker(nil)

	var seen []string
	require.NoError(t, broker.RegisterObserver(ObserverFunc{
		ID: "filtered",
		Fn: func(ctx context.Context, event cloudevents.Event) error {
			seen = append(seen, event.Type())
			return nil
		},
	}, EventTypeModuleFailed))

	ctx := context.Background()
	require.NoError(t, broker.NotifyObservers(ctx, NewEvent(EventTypeModuleRegistered, "test", nil)))
	require.NoError(t, broker.NotifyObservers(ctx, NewEvent(EventTypeModuleFailed, "test", nil)))

	assert.Equal(t, []string{EventTypeModuleFailed}, seen)
}

func TestBroker_DuplicateObserverRejected(t *testing.T) {
	broker := NewBroker(nil)
	observer := ObserverFunc{ID: "dup", Fn: func(ctx context.Context, event cloudevents.Event) error { return nil }}

	require.NoError(t, broker.RegisterObserver(observer))
	err := broker.RegisterObserver(observer)
	require.ErrorIs(t, err, ErrObserverAlreadyRegistered)
}

func TestBroker_UnregisterIsIdempotent(t *testing.T) {
	broker := NewBroker(nil)

	var count int
	observer := ObserverFunc{ID: "gone", Fn: func(ctx context.Context, event cloudevents.Event) error {
		count++
		return nil
	}}
	require.NoError(t, broker.RegisterObserver(observer))
	require.NoError(t, broker.UnregisterObserver(observer))
	require.NoError(t, broker.UnregisterObserver(observer))

	require.NoError(t, broker.NotifyObservers(context.Background(), NewEvent("test.event", "test", nil)))
	assert.Zero(t, count)
}

func TestBroker_ObserverErrorsDoNotShortCircuit(t *testing.T) {
	broker := NewBroker(nil)

	require.NoError(t, broker.RegisterObserver(ObserverFunc{
		ID: "failing",
		Fn: func(ctx context.Context, event cloudevents.Event) error {
			return errors.New("observer broke")
		},
	}))

	delivered := false
	require.NoError(t, broker.RegisterObserver(ObserverFunc{
		ID: "working",
		Fn: func(ctx context.Context, event cloudevents.Event) error {
			delivered = true
			return nil
		},
	}))

	err := broker.NotifyObservers(context.Background(), NewEvent("test.event", "test", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	assert.True(t, delivered, "later observers still notified after an error")
}
