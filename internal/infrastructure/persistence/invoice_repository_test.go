package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
)

func seedProducts(t *testing.T, repo *GormProductRepository, names ...string) []sales.Product {
	t.Helper()
	products := make([]sales.Product, 0, len(names))
	for i, name := range names {
		p, err := sales.NewProduct(name, int64(i+1))
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), p))
		products = append(products, *p)
	}
	return products
}

func TestGormInvoiceRepository_Save(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	invoices := NewGormInvoiceRepository(db.DB)
	products := seedProducts(t, NewGormProductRepository(db.DB), "pen", "ink", "paper")

	invoice := sales.NewInvoice(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Oslo")
	invoice.Products = []sales.Product{{ID: products[2].ID}, {ID: products[0].ID}}

	t.Run("creates with products", func(t *testing.T) {
		require.NoError(t, invoices.Save(ctx, invoice))
		assert.NotZero(t, invoice.ID)
		require.Len(t, invoice.Products, 2)
		assert.Equal(t, "pen", invoice.Products[0].Name)
		assert.Equal(t, "paper", invoice.Products[1].Name)
	})

	t.Run("update replaces products", func(t *testing.T) {
		invoice.Place = "Bergen"
		invoice.Products = []sales.Product{{ID: products[1].ID}}
		require.NoError(t, invoices.Save(ctx, invoice))

		found, err := invoices.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bergen", found.Place)
		assert.Equal(t, []int64{products[1].ID}, found.ProductIDs())
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		bad := sales.NewInvoice(time.Now().UTC(), "Rome")
		bad.Products = []sales.Product{{ID: 404}}
		err := invoices.Save(ctx, bad)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects unknown customer", func(t *testing.T) {
		bad := sales.NewInvoice(time.Now().UTC(), "Rome")
		bad.AssignTo(77)
		err := invoices.Save(ctx, bad)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("update of missing invoice is not found", func(t *testing.T) {
		missing := &sales.Invoice{ID: 12345, Date: time.Now().UTC(), Place: "Nowhere"}
		err := invoices.Save(ctx, missing)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormInvoiceRepository_FindByCustomerID(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	invoices := NewGormInvoiceRepository(db.DB)
	customers := NewGormCustomerRepository(db.DB)

	require.NoError(t, customers.Save(ctx, &sales.Customer{ID: 1, Name: "Linus"}))

	for _, place := range []string{"Helsinki", "Espoo", "Turku"} {
		inv := sales.NewInvoice(time.Now().UTC(), place)
		if place != "Turku" {
			inv.AssignTo(1)
		}
		require.NoError(t, invoices.Save(ctx, inv))
	}

	owned, err := invoices.FindByCustomerID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Helsinki", "Espoo"}, lo.Map(owned, func(inv sales.Invoice, _ int) string {
		return inv.Place
	}))

	all, err := invoices.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := invoices.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormInvoiceRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	invoices := NewGormInvoiceRepository(db.DB)
	productRepo := NewGormProductRepository(db.DB)
	products := seedProducts(t, productRepo, "stapler")

	inv := sales.NewInvoice(time.Now().UTC(), "Lyon")
	inv.Products = []sales.Product{{ID: products[0].ID}}
	require.NoError(t, invoices.Save(ctx, inv))

	require.NoError(t, invoices.DeleteByID(ctx, inv.ID))

	_, err := invoices.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	product, err := productRepo.FindByID(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Empty(t, product.InvoiceIDs)

	assert.ErrorIs(t, invoices.DeleteByID(ctx, inv.ID), shared.ErrNotFound)
}
