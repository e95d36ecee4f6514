package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Schedule", uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	entered    chan struct{}
	block      chan struct{}
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.entered != nil {
		close(h.entered)
	}
	if h.block != nil {
		<-h.block
	}
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("routes by event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		claims := newTestHandler("ClaimsRecorded")
		sold := newTestHandler("PropertySold")
		bus.Subscribe(claims)
		bus.Subscribe(sold)

		require.NoError(t, bus.Publish(ctx, newTestEvent("ClaimsRecorded"), newTestEvent("ClaimsRecorded")))

		assert.Equal(t, 2, claims.count())
		assert.Zero(t, sold.count())
	})

	t.Run("explicit types override the handler's", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := newTestHandler("ClaimsRecorded")
		bus.Subscribe(h, "PropertySold")

		require.NoError(t, bus.Publish(ctx, newTestEvent("ClaimsRecorded"), newTestEvent("PropertySold")))

		assert.Equal(t, 1, h.count())
	})

	t.Run("failing and panicking handlers do not stop the others", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		failing := newTestHandler("AssetChanged")
		failing.err = errors.New("redis down")
		panicking := newTestHandler("AssetChanged")
		panicking.panicWith = "boom"
		healthy := newTestHandler("AssetChanged")

		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("AssetChanged")))

		assert.Equal(t, 1, healthy.count())
		assert.Equal(t, 2, recorded.FilterMessage("handler failed to process event").Len())
	})

	t.Run("unsubscribed handlers receive nothing", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("PropertySold")
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("PropertySold")))

		assert.Zero(t, h.count())
	})
}

func TestInMemoryEventBus_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	bus := NewInMemoryEventBus(zap.NewNop())
	ok := newTestHandler("PropertySold")
	failing := newTestHandler("PropertySold")
	failing.err = errors.New("nope")
	bus.Subscribe(ok)
	bus.Subscribe(failing)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PropertySold")))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "event.handle PropertySold", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects events after stop", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		require.NoError(t, bus.Start(ctx))
		require.NoError(t, bus.Stop(ctx))

		assert.ErrorIs(t, bus.Publish(ctx, newTestEvent("PropertySold")), ErrBusStopped)

		require.NoError(t, bus.Start(ctx))
		assert.NoError(t, bus.Publish(ctx, newTestEvent("PropertySold")))
	})

	t.Run("stop waits for in-flight dispatch", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("PropertySold")
		h.entered = make(chan struct{})
		h.block = make(chan struct{})
		bus.Subscribe(h)

		published := make(chan struct{})
		go func() {
			_ = bus.Publish(ctx, newTestEvent("PropertySold"))
			close(published)
		}()

		<-h.entered

		stopCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, bus.Stop(stopCtx), context.DeadlineExceeded)

		close(h.block)
		<-published
		assert.NoError(t, bus.Stop(ctx))
		assert.Equal(t, 1, h.count())
	})
}
