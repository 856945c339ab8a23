package sales

import (
	"time"

	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/shared"
)

// AggregateTypeInvoice is the aggregate type recorded on invoice events
const AggregateTypeInvoice = "Invoice"

// Invoice bills a customer for a set of products
type Invoice struct {
	ID         int64
	Date       time.Time
	Place      string
	CustomerID *int64
	Products   []Product
}

// NewInvoice creates an invoice issued at place on date
func NewInvoice(date time.Time, place string) *Invoice {
	inv := &Invoice{Date: date, Place: place}
	inv.Normalize()
	return inv
}

// Normalize replaces nil collections with empty ones
func (i *Invoice) Normalize() {
	if i.Products == nil {
		i.Products = []Product{}
	}
}

// Validate checks the invoice fields and its product references
func (i *Invoice) Validate() error {
	if len(i.Place) > MaxNameLength {
		return shared.Errorf(shared.ErrInvalidInput, "invoice place cannot exceed %d characters", MaxNameLength)
	}
	if i.CustomerID != nil && *i.CustomerID <= 0 {
		return shared.Errorf(shared.ErrInvalidInput, "invoice customer id must be positive")
	}
	for _, p := range i.Products {
		if p.ID <= 0 {
			return shared.Errorf(shared.ErrInvalidInput, "products are referenced by id; got product without id")
		}
	}
	return nil
}

// ProductIDs returns the ids of the billed products, deduplicated
func (i *Invoice) ProductIDs() []int64 {
	return lo.Uniq(lo.Map(i.Products, func(p Product, _ int) int64 {
		return p.ID
	}))
}

// AssignTo attaches the invoice to a customer
func (i *Invoice) AssignTo(customerID int64) {
	i.CustomerID = &customerID
}
