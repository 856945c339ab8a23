package sales

import (
	"time"

	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/sales"
)

// ==================== Customer DTOs ====================

// SaveCustomerRequest is the body of PUT /customer
type SaveCustomerRequest struct {
	ID              int64                   `json:"id" binding:"required,gt=0"`
	Name            string                  `json:"name" binding:"max=255"`
	PhoneNumbers    []string                `json:"phoneNumbers" binding:"omitempty,dive,required,max=255"`
	Addresses       []AddressRequest        `json:"addresses" binding:"omitempty,dive"`
	MealPreferences map[string]string       `json:"mealPreferences"`
	ShippingContact *ShippingContactRequest `json:"shippingContact"`
	Invoices        []InvoiceRef            `json:"invoices" binding:"omitempty,dive"`
}

// AddressRequest is one entry of a customer's address collection
type AddressRequest struct {
	AddressLine1      string                   `json:"addressLine1" binding:"max=255"`
	AddressLine2      string                   `json:"addressLine2" binding:"max=255"`
	City              string                   `json:"city" binding:"max=255"`
	PostalCode        string                   `json:"postalCode" binding:"max=255"`
	HighRiseExtension *HighRiseExtensionRequest `json:"highRiseExtension"`
}

// HighRiseExtensionRequest carries the high-rise details of an address.
// An extension without id is created.
type HighRiseExtensionRequest struct {
	ID         int64  `json:"id" binding:"gte=0"`
	Suite      string `json:"suite" binding:"max=255"`
	Floor      string `json:"floor" binding:"max=255"`
	BuzzerCode string `json:"buzzerCode" binding:"max=255"`
}

// ShippingContactRequest is the customer's shipping contact.
// A contact without id is created.
type ShippingContactRequest struct {
	ID          int64  `json:"id" binding:"gte=0"`
	Name        string `json:"name" binding:"max=255"`
	PhoneNumber string `json:"phoneNumber" binding:"max=255"`
}

// InvoiceRef references an existing invoice by id
type InvoiceRef struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}

// ToDomain converts the request into a customer aggregate
func (r SaveCustomerRequest) ToDomain() *sales.Customer {
	c := &sales.Customer{
		ID:              r.ID,
		Name:            r.Name,
		PhoneNumbers:    r.PhoneNumbers,
		MealPreferences: r.MealPreferences,
		Addresses: lo.Map(r.Addresses, func(a AddressRequest, _ int) sales.Address {
			return a.toDomain()
		}),
		Invoices: lo.Map(r.Invoices, func(ref InvoiceRef, _ int) sales.Invoice {
			return sales.Invoice{ID: ref.ID}
		}),
	}
	if r.ShippingContact != nil {
		c.ShippingContact = &sales.ShippingContact{
			ID:          r.ShippingContact.ID,
			Name:        r.ShippingContact.Name,
			PhoneNumber: r.ShippingContact.PhoneNumber,
			CustomerID:  r.ID,
		}
	}
	c.Normalize()
	return c
}

func (a AddressRequest) toDomain() sales.Address {
	addr := sales.Address{
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		PostalCode:   a.PostalCode,
	}
	if a.HighRiseExtension != nil {
		addr.HighRiseExtension = &sales.HighRiseAddressExtension{
			ID:         a.HighRiseExtension.ID,
			Suite:      a.HighRiseExtension.Suite,
			Floor:      a.HighRiseExtension.Floor,
			BuzzerCode: a.HighRiseExtension.BuzzerCode,
		}
	}
	return addr
}

// CustomerResponse is the JSON form of a stored customer
type CustomerResponse struct {
	ID              int64                    `json:"id"`
	Name            string                   `json:"name"`
	PhoneNumbers    []string                 `json:"phoneNumbers"`
	Addresses       []AddressResponse        `json:"addresses"`
	MealPreferences map[string]string        `json:"mealPreferences"`
	ShippingContact *ShippingContactResponse `json:"shippingContact"`
	Invoices        []InvoiceResponse        `json:"invoices"`
}

// AddressResponse is the JSON form of an address
type AddressResponse struct {
	AddressLine1      string                     `json:"addressLine1"`
	AddressLine2      string                     `json:"addressLine2"`
	City              string                     `json:"city"`
	PostalCode        string                     `json:"postalCode"`
	HighRiseExtension *HighRiseExtensionResponse `json:"highRiseExtension"`
}

// HighRiseExtensionResponse is the JSON form of a high-rise extension
type HighRiseExtensionResponse struct {
	ID         int64  `json:"id"`
	Suite      string `json:"suite"`
	Floor      string `json:"floor"`
	BuzzerCode string `json:"buzzerCode"`
}

// ShippingContactResponse is the JSON form of a shipping contact
type ShippingContactResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	CustomerID  int64  `json:"customerId,omitempty"`
}

// ToCustomerResponse converts a domain customer to its response
func ToCustomerResponse(c *sales.Customer) CustomerResponse {
	c.Normalize()
	resp := CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		PhoneNumbers:    c.PhoneNumbers,
		MealPreferences: c.MealPreferences,
		Addresses:       lo.Map(c.Addresses, func(a sales.Address, _ int) AddressResponse { return toAddressResponse(a) }),
		Invoices: lo.Map(c.Invoices, func(inv sales.Invoice, _ int) InvoiceResponse {
			return ToInvoiceResponse(&inv)
		}),
	}
	if sc := c.ShippingContact; sc != nil {
		resp.ShippingContact = &ShippingContactResponse{
			ID:          sc.ID,
			Name:        sc.Name,
			PhoneNumber: sc.PhoneNumber,
			CustomerID:  sc.CustomerID,
		}
	}
	return resp
}

// ToCustomerResponses converts a list of domain customers
func ToCustomerResponses(customers []sales.Customer) []CustomerResponse {
	return lo.Map(customers, func(c sales.Customer, _ int) CustomerResponse {
		return ToCustomerResponse(&c)
	})
}

func toAddressResponse(a sales.Address) AddressResponse {
	resp := AddressResponse{
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		PostalCode:   a.PostalCode,
	}
	if ext := a.HighRiseExtension; ext != nil {
		resp.HighRiseExtension = &HighRiseExtensionResponse{
			ID:         ext.ID,
			Suite:      ext.Suite,
			Floor:      ext.Floor,
			BuzzerCode: ext.BuzzerCode,
		}
	}
	return resp
}

// ==================== Invoice DTOs ====================

// SaveInvoiceRequest is the body of PUT /invoice. Without id a new invoice is created.
type SaveInvoiceRequest struct {
	ID         int64     `json:"id" binding:"gte=0"`
	Date       time.Time `json:"date" binding:"required"`
	Place      string    `json:"place" binding:"max=255"`
	CustomerID *int64    `json:"customerId" binding:"omitempty,gt=0"`
	ProductIDs []int64   `json:"productIds" binding:"omitempty,dive,gt=0"`
}

// ToDomain converts the request into an invoice
func (r SaveInvoiceRequest) ToDomain() *sales.Invoice {
	inv := sales.NewInvoice(r.Date, r.Place)
	inv.ID = r.ID
	inv.CustomerID = r.CustomerID
	inv.Products = lo.Map(lo.Uniq(r.ProductIDs), func(id int64, _ int) sales.Product {
		return sales.Product{ID: id}
	})
	return inv
}

// InvoiceResponse is the JSON form of an invoice
type InvoiceResponse struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	Place      string    `json:"place"`
	CustomerID *int64    `json:"customerId"`
	ProductIDs []int64   `json:"productIds"`
}

// ToInvoiceResponse converts a domain invoice to its response
func ToInvoiceResponse(inv *sales.Invoice) InvoiceResponse {
	inv.Normalize()
	return InvoiceResponse{
		ID:         inv.ID,
		Date:       inv.Date,
		Place:      inv.Place,
		CustomerID: inv.CustomerID,
		ProductIDs: inv.ProductIDs(),
	}
}

// ToInvoiceResponses converts a list of domain invoices
func ToInvoiceResponses(invoices []sales.Invoice) []InvoiceResponse {
	return lo.Map(invoices, func(inv sales.Invoice, _ int) InvoiceResponse {
		return ToInvoiceResponse(&inv)
	})
}

// ==================== Product DTOs ====================

// SaveProductRequest is the body of PUT /product. Without id a new product is created.
type SaveProductRequest struct {
	ID     int64  `json:"id" binding:"gte=0"`
	Name   string `json:"name" binding:"required,max=255"`
	Number int64  `json:"number" binding:"gte=0"`
}

// ToDomain converts the request into a product
func (r SaveProductRequest) ToDomain() *sales.Product {
	return &sales.Product{ID: r.ID, Name: r.Name, Number: r.Number, InvoiceIDs: []int64{}}
}

// ProductResponse is the JSON form of a product
type ProductResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Number     int64   `json:"number"`
	InvoiceIDs []int64 `json:"invoiceIds"`
}

// ToProductResponse converts a domain product to its response
func ToProductResponse(p *sales.Product) ProductResponse {
	ids := p.InvoiceIDs
	if ids == nil {
		ids = []int64{}
	}
	return ProductResponse{ID: p.ID, Name: p.Name, Number: p.Number, InvoiceIDs: ids}
}

// ToProductResponses converts a list of domain products
func ToProductResponses(products []sales.Product) []ProductResponse {
	return lo.Map(products, func(p sales.Product, _ int) ProductResponse {
		return ToProductResponse(&p)
	})
}
