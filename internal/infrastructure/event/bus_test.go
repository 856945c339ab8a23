package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstack/backend/internal/domain/library"
	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/tests/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// panickingHandler records the event and then panics
type panickingHandler struct {
	*testutil.MockEventHandler
	msg string
}

func (h *panickingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	_ = h.MockEventHandler.Handle(ctx, event)
	panic(h.msg)
}

type countingObserver struct {
	published map[string]int
	failed    map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{published: map[string]int{}, failed: map[string]int{}}
}

func (o *countingObserver) EventPublished(eventType string)     { o.published[eventType]++ }
func (o *countingObserver) EventHandlerFailed(eventType string) { o.failed[eventType]++ }

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler(sales.EventTypeCustomerSaved)
	bus.Subscribe(handler)

	event := sales.NewCustomerDeletedEvent(1)
	saved := sales.NewCustomerSavedEvent(&sales.Customer{ID: 1, Name: "Ada"})
	require.NoError(t, bus.Publish(context.Background(), event, saved))

	handled := handler.Handled()
	require.Len(t, handled, 1)
	assert.Equal(t, saved, handled[0])
}

func TestInMemoryEventBus_Publish_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler(sales.EventTypeCustomerSaved)
	bus.Subscribe(handler, library.EventTypeBookSaved)

	require.NoError(t, bus.Publish(context.Background(),
		sales.NewCustomerSavedEvent(&sales.Customer{ID: 2}),
		library.NewBookSavedEvent(&library.Book{ID: "b1", Title: "Dune"}),
	))

	handled := handler.Handled()
	require.Len(t, handled, 1)
	assert.Equal(t, library.EventTypeBookSaved, handled[0].EventType())
}

func TestInMemoryEventBus_Publish_FailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	obs := newCountingObserver()
	bus := NewInMemoryEventBus(zap.New(core), WithObserver(obs))

	failing := testutil.NewMockEventHandler(sales.EventTypeInvoiceSaved)
	failing.SetError(errors.New("handler error"))
	panicking := &panickingHandler{MockEventHandler: testutil.NewMockEventHandler(sales.EventTypeInvoiceSaved), msg: "boom"}
	healthy := testutil.NewMockEventHandler(sales.EventTypeInvoiceSaved)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), sales.NewInvoiceSavedEvent(&sales.Invoice{ID: 9}))
	require.NoError(t, err)

	assert.Equal(t, 1, healthy.HandledCount())
	assert.Equal(t, 1, panicking.HandledCount())
	assert.Equal(t, 1, obs.published[sales.EventTypeInvoiceSaved])
	assert.Equal(t, 2, obs.failed[sales.EventTypeInvoiceSaved])

	entries := logs.FilterMessage("handler failed to process event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "9", entries[0].ContextMap()["aggregate_id"])
	assert.Contains(t, entries[1].ContextMap()["error"], "handler panicked: boom")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler(sales.EventTypeProductDeleted)
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), sales.NewProductDeletedEvent(1))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), sales.NewProductDeletedEvent(2))

	assert.Len(t, handler.Handled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.Running())

	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.Running())
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewAuditLogHandler(zap.New(core)))

	require.NoError(t, bus.Publish(context.Background(),
		sales.NewCustomerSavedEvent(&sales.Customer{ID: 5, Name: "Grace"}),
		library.NewBookDeletedEvent("b7"),
	))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, sales.EventTypeCustomerSaved, fields["event_type"])
	assert.Equal(t, "5", fields["aggregate_id"])
	assert.Contains(t, fields["payload"], `"name":"Grace"`)
	assert.Equal(t, "b7", entries[1].ContextMap()["aggregate_id"])
}
