package sales

import (
	"strconv"

	"github.com/webstack/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeCustomerSaved   = "CustomerSaved"
	EventTypeCustomerDeleted = "CustomerDeleted"
	EventTypeInvoiceSaved    = "InvoiceSaved"
	EventTypeInvoiceDeleted  = "InvoiceDeleted"
	EventTypeProductSaved    = "ProductSaved"
	EventTypeProductDeleted  = "ProductDeleted"
)

// EventTypes lists every event the sales context publishes
var EventTypes = []string{
	EventTypeCustomerSaved,
	EventTypeCustomerDeleted,
	EventTypeInvoiceSaved,
	EventTypeInvoiceDeleted,
	EventTypeProductSaved,
	EventTypeProductDeleted,
}

// CustomerSavedEvent is published after a customer upsert
type CustomerSavedEvent struct {
	shared.BaseDomainEvent
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
}

// NewCustomerSavedEvent creates a CustomerSavedEvent
func NewCustomerSavedEvent(c *Customer) *CustomerSavedEvent {
	return &CustomerSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerSaved, AggregateTypeCustomer, formatID(c.ID)),
		CustomerID:      c.ID,
		Name:            c.Name,
	}
}

// CustomerDeletedEvent is published after a customer is removed
type CustomerDeletedEvent struct {
	shared.BaseDomainEvent
	CustomerID int64 `json:"customer_id"`
}

// NewCustomerDeletedEvent creates a CustomerDeletedEvent
func NewCustomerDeletedEvent(id int64) *CustomerDeletedEvent {
	return &CustomerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDeleted, AggregateTypeCustomer, formatID(id)),
		CustomerID:      id,
	}
}

// InvoiceSavedEvent is published after an invoice upsert
type InvoiceSavedEvent struct {
	shared.BaseDomainEvent
	InvoiceID  int64   `json:"invoice_id"`
	CustomerID *int64  `json:"customer_id,omitempty"`
	ProductIDs []int64 `json:"product_ids"`
}

// NewInvoiceSavedEvent creates an InvoiceSavedEvent
func NewInvoiceSavedEvent(inv *Invoice) *InvoiceSavedEvent {
	return &InvoiceSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSaved, AggregateTypeInvoice, formatID(inv.ID)),
		InvoiceID:       inv.ID,
		CustomerID:      inv.CustomerID,
		ProductIDs:      inv.ProductIDs(),
	}
}

// InvoiceDeletedEvent is published after an invoice is removed
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID int64 `json:"invoice_id"`
}

// NewInvoiceDeletedEvent creates an InvoiceDeletedEvent
func NewInvoiceDeletedEvent(id int64) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, AggregateTypeInvoice, formatID(id)),
		InvoiceID:       id,
	}
}

// ProductSavedEvent is published after a product upsert
type ProductSavedEvent struct {
	shared.BaseDomainEvent
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
}

// NewProductSavedEvent creates a ProductSavedEvent
func NewProductSavedEvent(p *Product) *ProductSavedEvent {
	return &ProductSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductSaved, AggregateTypeProduct, formatID(p.ID)),
		ProductID:       p.ID,
		Name:            p.Name,
	}
}

// ProductDeletedEvent is published after a product is removed
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID int64 `json:"product_id"`
}

// NewProductDeletedEvent creates a ProductDeletedEvent
func NewProductDeletedEvent(id int64) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, formatID(id)),
		ProductID:       id,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
