package sales

import "github.com/webstack/backend/internal/domain/shared"

// AggregateTypeProduct is the aggregate type recorded on product events
const AggregateTypeProduct = "Product"

// Product is a billable item. InvoiceIDs is the inverse side of the
// invoice/product link and is read-only: it is filled when loading.
type Product struct {
	ID         int64
	Name       string
	Number     int64
	InvoiceIDs []int64
}

// NewProduct creates a product
func NewProduct(name string, number int64) (*Product, error) {
	p := &Product{Name: name, Number: number, InvoiceIDs: []int64{}}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the product fields
func (p *Product) Validate() error {
	if len(p.Name) > MaxNameLength {
		return shared.Errorf(shared.ErrInvalidInput, "product name cannot exceed %d characters", MaxNameLength)
	}
	if p.Number < 0 {
		return shared.Errorf(shared.ErrInvalidInput, "product number cannot be negative")
	}
	return nil
}
