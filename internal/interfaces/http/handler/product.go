package handler

import (
	"github.com/gin-gonic/gin"
	salesapp "github.com/webstack/backend/internal/application/sales"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	productService *salesapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *salesapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns every product with the ids of the invoices listing it.
// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetByID returns one product.
// GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Save creates a product, or replaces the one identified by the body id.
// PUT /product
func (h *ProductHandler) Save(c *gin.Context) {
	var req salesapp.SaveProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product.
// DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
