package handler

import (
	"github.com/gin-gonic/gin"
	salesapp "github.com/webstack/backend/internal/application/sales"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *salesapp.CustomerService
	invoiceService  *salesapp.InvoiceService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *salesapp.CustomerService, invoiceService *salesapp.InvoiceService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		invoiceService:  invoiceService,
	}
}

// List returns every customer with its associations.
// GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customerService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customers)
}

// GetByID returns one customer.
// GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// ListInvoices returns the invoices of a customer.
// GET /customers/:id/invoices
func (h *CustomerHandler) ListInvoices(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListByCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Save creates or replaces the customer identified by the body id.
// PUT /customer
func (h *CustomerHandler) Save(c *gin.Context) {
	var req salesapp.SaveCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete removes a customer.
// DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
