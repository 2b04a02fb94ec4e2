package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mecatos/backend/internal/domain/inventory"
	"github.com/mecatos/backend/internal/domain/shared"
)

// recordingHandler collects the events it receives
type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestCount(t *testing.T) *inventory.InventoryCount {
	t.Helper()
	count, err := inventory.NewInventoryCount(uuid.New(), time.Now(), nil, "Ana", "")
	require.NoError(t, err)
	return count
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers events to subscribed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{inventory.EventTypeCountRecorded}}
		bus.Subscribe(handler)

		event := inventory.NewCountRecordedEvent(newTestCount(t))
		require.NoError(t, bus.Publish(context.Background(), event))

		require.Len(t, handler.received, 1)
		assert.Equal(t, inventory.EventTypeCountRecorded, handler.received[0].EventType())
	})

	t.Run("does not deliver unrelated event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{inventory.EventTypeCountDeleted}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), inventory.NewCountRecordedEvent(newTestCount(t))))

		assert.Empty(t, handler.received)
	})

	t.Run("wildcard handlers receive all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		count := newTestCount(t)
		require.NoError(t, bus.Publish(context.Background(),
			inventory.NewCountRecordedEvent(count),
			inventory.NewStockShortfallEvent(count.ID, count.TenantID, uuid.New(), decimal.NewFromInt(3)),
		))

		assert.Len(t, handler.received, 2)
	})

	t.Run("handler errors do not stop delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{inventory.EventTypeCountRecorded}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{inventory.EventTypeCountRecorded}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), inventory.NewCountRecordedEvent(newTestCount(t)))

		assert.NoError(t, err)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("handler panics are contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{types: []string{inventory.EventTypeCountRecorded}, panics: true}
		healthy := &recordingHandler{types: []string{inventory.EventTypeCountRecorded}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), inventory.NewCountRecordedEvent(newTestCount(t)))
		})
		assert.Len(t, healthy.received, 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{inventory.EventTypeCountRecorded}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), inventory.NewCountRecordedEvent(newTestCount(t))))

	assert.Empty(t, handler.received)
}
