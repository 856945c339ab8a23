package sales

import "github.com/webstack/backend/internal/domain/shared"

// ShippingContact is the person parcels for a customer are addressed to
type ShippingContact struct {
	ID          int64
	Name        string
	PhoneNumber string
	CustomerID  int64
}

// Validate checks the contact fields
func (s *ShippingContact) Validate() error {
	if len(s.Name) > MaxNameLength {
		return shared.Errorf(shared.ErrInvalidInput, "shipping contact name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}
