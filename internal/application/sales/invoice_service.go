package sales

import (
	"context"

	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InvoiceService handles invoice business operations
type InvoiceService struct {
	invoiceRepo    sales.InvoiceRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. publisher may be nil.
func NewInvoiceService(invoiceRepo sales.InvoiceRepository, publisher shared.EventPublisher, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// List returns every invoice
func (s *InvoiceService) List(ctx context.Context) (_ []InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "list")
	defer func() { telemetry.EndSpan(span, err) }()

	invoices, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// ListByCustomer returns the invoices attached to a customer
func (s *InvoiceService) ListByCustomer(ctx context.Context, customerID int64) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// GetByID returns an invoice by id
func (s *InvoiceService) GetByID(ctx context.Context, id int64) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "get", attribute.Int64("invoice.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// Save creates the invoice when the request has no id and updates it otherwise
func (s *InvoiceService) Save(ctx context.Context, req SaveInvoiceRequest) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "save", attribute.Int64("invoice.id", req.ID))
	defer func() { telemetry.EndSpan(span, err) }()

	invoice := req.ToDomain()
	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	publishAll(ctx, s.eventPublisher, s.logger, sales.NewInvoiceSavedEvent(invoice))
	s.logger.Info("invoice saved", zap.Int64("invoice_id", invoice.ID))

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// Delete removes an invoice and its product links
func (s *InvoiceService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete", attribute.Int64("invoice.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := s.invoiceRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	publishAll(ctx, s.eventPublisher, s.logger, sales.NewInvoiceDeletedEvent(id))
	s.logger.Info("invoice deleted", zap.Int64("invoice_id", id))
	return nil
}

func publishAll(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events ...shared.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("failed to publish events", zap.Error(err))
	}
}
