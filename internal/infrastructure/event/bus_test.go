package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) seen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Sale", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to subscribed handlers only", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		saleHandler := &recordingHandler{types: []string{"sale.completed"}}
		transferHandler := &recordingHandler{types: []string{"stock.transferred"}}

		bus.Subscribe(saleHandler)
		bus.Subscribe(transferHandler)

		err := bus.Publish(context.Background(), newTestEvent("sale.completed"))

		require.NoError(t, err)
		assert.Equal(t, 1, saleHandler.seen())
		assert.Equal(t, 0, transferHandler.seen())
	})

	t.Run("wildcard handler receives all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		all := &recordingHandler{}

		bus.Subscribe(all)

		err := bus.Publish(context.Background(),
			newTestEvent("sale.completed"),
			newTestEvent("stock.adjusted"),
		)

		require.NoError(t, err)
		assert.Equal(t, 2, all.seen())
	})

	t.Run("handler error is logged and does not stop delivery", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		failing := &recordingHandler{types: []string{"sale.completed"}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{"sale.completed"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("sale.completed"))

		require.NoError(t, err)
		assert.Equal(t, 1, healthy.seen())
		assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
	})

	t.Run("handler panic is contained", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		bus.Subscribe(&recordingHandler{types: []string{"sale.completed"}, panics: true})

		err := bus.Publish(context.Background(), newTestEvent("sale.completed"))

		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("handler panicked").Len())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"sale.completed"}}

		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("sale.completed"))

		require.NoError(t, err)
		assert.Equal(t, 0, handler.seen())
	})
}

func TestIdempotentHandler_Handle(t *testing.T) {
	newStoreBacked := func(t *testing.T, inner shared.EventHandler) (*IdempotentHandler, shared.IdempotencyStore) {
		store := newFakeIdempotencyStore()
		return NewIdempotentHandler(inner, store, time.Minute, zap.NewNop()), store
	}

	t.Run("processes a new event once", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"sale.completed"}}
		handler, _ := newStoreBacked(t, inner)
		event := newTestEvent("sale.completed")

		require.NoError(t, handler.Handle(context.Background(), event))
		require.NoError(t, handler.Handle(context.Background(), event))

		assert.Equal(t, 1, inner.seen())
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsProcessed)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsDuplicate)
	})

	t.Run("distinct events both process", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"sale.completed"}}
		handler, _ := newStoreBacked(t, inner)

		require.NoError(t, handler.Handle(context.Background(), newTestEvent("sale.completed")))
		require.NoError(t, handler.Handle(context.Background(), newTestEvent("sale.completed")))

		assert.Equal(t, 2, inner.seen())
	})

	t.Run("store failure processes anyway", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"sale.completed"}}
		handler := NewIdempotentHandler(inner, &failingIdempotencyStore{}, time.Minute, zap.NewNop())

		require.NoError(t, handler.Handle(context.Background(), newTestEvent("sale.completed")))

		assert.Equal(t, 1, inner.seen())
	})

	t.Run("handler failure counts and propagates", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"sale.completed"}, err: errors.New("boom")}
		handler, _ := newStoreBacked(t, inner)

		err := handler.Handle(context.Background(), newTestEvent("sale.completed"))

		assert.Error(t, err)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsFailed)
	})
}

// fakeIdempotencyStore is a minimal map-backed store for tests
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

type failingIdempotencyStore struct{}

func (s *failingIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, errors.New("store unavailable")
}

func (s *failingIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	return false, errors.New("store unavailable")
}

func (s *failingIdempotencyStore) Close() error { return nil }
