// Package sales holds the relational side of the store: customers with their
// contact data, and the invoices and products they are billed for.
package sales

import (
	"strings"

	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/shared"
)

// AggregateTypeCustomer is the aggregate type recorded on customer events
const AggregateTypeCustomer = "Customer"

// MaxNameLength bounds every name column of the relational schema
const MaxNameLength = 255

// Customer is the aggregate root of the sales context.
// The ID is chosen by the caller; it is never generated by the store.
type Customer struct {
	ID              int64
	Name            string
	PhoneNumbers    []string
	Addresses       []Address
	MealPreferences map[string]string
	ShippingContact *ShippingContact
	Invoices        []Invoice
}

// NewCustomer creates a customer with empty collections
func NewCustomer(id int64, name string) (*Customer, error) {
	c := &Customer{ID: id, Name: name}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Normalize replaces nil collections with empty ones so that a customer
// always renders [] and {} instead of null.
func (c *Customer) Normalize() {
	if c.PhoneNumbers == nil {
		c.PhoneNumbers = []string{}
	}
	if c.Addresses == nil {
		c.Addresses = []Address{}
	}
	if c.MealPreferences == nil {
		c.MealPreferences = map[string]string{}
	}
	if c.Invoices == nil {
		c.Invoices = []Invoice{}
	}
	for i := range c.Invoices {
		c.Invoices[i].Normalize()
	}
}

// Validate checks the invariants the store relies on
func (c *Customer) Validate() error {
	if c.ID <= 0 {
		return shared.Errorf(shared.ErrInvalidInput, "customer id must be a positive number, got %d", c.ID)
	}
	if len(c.Name) > MaxNameLength {
		return shared.Errorf(shared.ErrInvalidInput, "customer name cannot exceed %d characters", MaxNameLength)
	}
	for i, phone := range c.PhoneNumbers {
		if strings.TrimSpace(phone) == "" {
			return shared.Errorf(shared.ErrInvalidInput, "phone number %d is blank", i)
		}
	}
	for key := range c.MealPreferences {
		if strings.TrimSpace(key) == "" {
			return shared.Errorf(shared.ErrInvalidInput, "meal preference key cannot be blank")
		}
	}
	if c.ShippingContact != nil {
		if err := c.ShippingContact.Validate(); err != nil {
			return err
		}
	}
	for _, inv := range c.Invoices {
		if inv.ID <= 0 {
			return shared.Errorf(shared.ErrInvalidInput, "invoices are referenced by id; got invoice without id")
		}
	}
	return nil
}

// AddPhoneNumber appends a phone number
func (c *Customer) AddPhoneNumber(number string) {
	c.PhoneNumbers = append(c.PhoneNumbers, number)
}

// AddAddress appends an address
func (c *Customer) AddAddress(addr Address) {
	c.Addresses = append(c.Addresses, addr)
}

// SetMealPreference records the preferred dish for a meal
func (c *Customer) SetMealPreference(meal, dish string) {
	if c.MealPreferences == nil {
		c.MealPreferences = map[string]string{}
	}
	c.MealPreferences[meal] = dish
}

// InvoiceIDs returns the ids of the referenced invoices, deduplicated
func (c *Customer) InvoiceIDs() []int64 {
	return lo.Uniq(lo.Map(c.Invoices, func(inv Invoice, _ int) int64 {
		return inv.ID
	}))
}
