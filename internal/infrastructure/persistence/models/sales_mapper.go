package models

import (
	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/sales"
)

// ToDomain converts the model and its loaded associations to a domain Customer
func (m *CustomerModel) ToDomain() *sales.Customer {
	c := &sales.Customer{
		ID:   m.ID,
		Name: m.Name,
		PhoneNumbers: lo.Map(m.PhoneNumbers, func(p CustomerPhoneNumberModel, _ int) string {
			return p.PhoneNumber
		}),
		Addresses: lo.Map(m.Addresses, func(a CustomerAddressModel, _ int) sales.Address {
			return a.ToDomain()
		}),
		MealPreferences: lo.SliceToMap(m.MealPreferences, func(p CustomerMealPreferenceModel) (string, string) {
			return p.Meal, p.Dish
		}),
		Invoices: lo.Map(m.Invoices, func(inv InvoiceModel, _ int) sales.Invoice {
			return *inv.ToDomain()
		}),
	}
	if m.ShippingContact != nil {
		c.ShippingContact = m.ShippingContact.ToDomain()
	}
	c.Normalize()
	return c
}

// CustomerFromDomain converts the scalar columns of a Customer; collections are written separately
func CustomerFromDomain(c *sales.Customer) *CustomerModel {
	m := &CustomerModel{ID: c.ID, Name: c.Name}
	if c.ShippingContact != nil && c.ShippingContact.ID != 0 {
		m.ShippingContactID = lo.ToPtr(c.ShippingContact.ID)
	}
	return m
}

// PhoneNumbersFromDomain converts an ordered phone list to rows keyed by position
func PhoneNumbersFromDomain(customerID int64, phones []string) []CustomerPhoneNumberModel {
	return lo.Map(phones, func(phone string, i int) CustomerPhoneNumberModel {
		return CustomerPhoneNumberModel{CustomerID: customerID, Position: i, PhoneNumber: phone}
	})
}

// MealPreferencesFromDomain converts the meal map to rows
func MealPreferencesFromDomain(customerID int64, prefs map[string]string) []CustomerMealPreferenceModel {
	return lo.MapToSlice(prefs, func(meal, dish string) CustomerMealPreferenceModel {
		return CustomerMealPreferenceModel{CustomerID: customerID, Meal: meal, Dish: dish}
	})
}

// ToDomain converts the model to a domain Address
func (m *CustomerAddressModel) ToDomain() sales.Address {
	a := sales.Address{
		AddressLine1: m.AddressLine1,
		AddressLine2: m.AddressLine2,
		City:         m.City,
		PostalCode:   m.PostalCode,
	}
	if m.HighRiseExtension != nil {
		a.HighRiseExtension = m.HighRiseExtension.ToDomain()
	}
	return a
}

// AddressFromDomain converts an address at the given list position; the extension link is set by the caller
func AddressFromDomain(customerID int64, position int, a sales.Address) CustomerAddressModel {
	return CustomerAddressModel{
		CustomerID:   customerID,
		Position:     position,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		PostalCode:   a.PostalCode,
	}
}

// ToDomain converts the model to a domain HighRiseAddressExtension
func (m *HighRiseAddressExtensionModel) ToDomain() *sales.HighRiseAddressExtension {
	return &sales.HighRiseAddressExtension{
		ID:         m.ID,
		Suite:      m.Suite,
		Floor:      m.Floor,
		BuzzerCode: m.BuzzerCode,
	}
}

// HighRiseExtensionFromDomain converts a domain HighRiseAddressExtension
func HighRiseExtensionFromDomain(e *sales.HighRiseAddressExtension) *HighRiseAddressExtensionModel {
	return &HighRiseAddressExtensionModel{
		ID:         e.ID,
		Suite:      e.Suite,
		Floor:      e.Floor,
		BuzzerCode: e.BuzzerCode,
	}
}

// ToDomain converts the model to a domain ShippingContact
func (m *ShippingContactModel) ToDomain() *sales.ShippingContact {
	return &sales.ShippingContact{
		ID:          m.ID,
		Name:        m.Name,
		PhoneNumber: m.PhoneNumber,
		CustomerID:  lo.FromPtr(m.CustomerID),
	}
}

// ShippingContactFromDomain converts a domain ShippingContact
func ShippingContactFromDomain(s *sales.ShippingContact) *ShippingContactModel {
	m := &ShippingContactModel{
		ID:          s.ID,
		Name:        s.Name,
		PhoneNumber: s.PhoneNumber,
	}
	if s.CustomerID != 0 {
		m.CustomerID = lo.ToPtr(s.CustomerID)
	}
	return m
}

// ToDomain converts the model and its loaded products to a domain Invoice
func (m *InvoiceModel) ToDomain() *sales.Invoice {
	inv := &sales.Invoice{
		ID:         m.ID,
		Date:       m.Date,
		Place:      m.Place,
		CustomerID: m.CustomerID,
		Products: lo.Map(m.Products, func(p ProductModel, _ int) sales.Product {
			return *p.ToDomain()
		}),
	}
	inv.Normalize()
	return inv
}

// InvoiceFromDomain converts the scalar columns of an Invoice
func InvoiceFromDomain(inv *sales.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:         inv.ID,
		Date:       inv.Date,
		Place:      inv.Place,
		CustomerID: inv.CustomerID,
	}
}

// ToDomain converts the model to a domain Product without invoice links
func (m *ProductModel) ToDomain() *sales.Product {
	return &sales.Product{
		ID:         m.ID,
		Name:       m.Name,
		Number:     m.Number,
		InvoiceIDs: []int64{},
	}
}

// ProductFromDomain converts a domain Product
func ProductFromDomain(p *sales.Product) *ProductModel {
	return &ProductModel{
		ID:     p.ID,
		Name:   p.Name,
		Number: p.Number,
	}
}
