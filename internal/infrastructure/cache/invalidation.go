package cache

import (
	"context"

	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvalidationHandler drops the customer listing whenever sales data changes.
// Invoices and products are rendered inside customers, so their events count too.
type InvalidationHandler struct {
	cache  Cache
	logger *zap.Logger
}

// NewInvalidationHandler creates the handler
func NewInvalidationHandler(c Cache, logger *zap.Logger) *InvalidationHandler {
	return &InvalidationHandler{cache: c, logger: logger}
}

// Handle deletes the cached listing
func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Delete(ctx, CustomerListKey); err != nil {
		return err
	}
	h.logger.Debug("Invalidated customer list cache",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID()))
	return nil
}

// EventTypes returns every sales event type
func (h *InvalidationHandler) EventTypes() []string {
	return sales.EventTypes
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)
