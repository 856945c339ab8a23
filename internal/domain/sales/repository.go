package sales

import (
	"context"

	"github.com/webstack/backend/internal/domain/shared"
)

// CustomerRepository persists customers together with their element
// collections, shipping contact and invoice links.
// Save is an upsert keyed by the customer id and reloads the stored graph
// into the argument.
type CustomerRepository interface {
	shared.CrudRepository[Customer, int64]
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// InvoiceRepository persists invoices and their product links
type InvoiceRepository interface {
	shared.CrudRepository[Invoice, int64]
	FindByCustomerID(ctx context.Context, customerID int64) ([]Invoice, error)
}

// ProductRepository persists products
type ProductRepository interface {
	shared.CrudRepository[Product, int64]
	FindByIDs(ctx context.Context, ids []int64) ([]Product, error)
}
