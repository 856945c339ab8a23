package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements sales.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadInvoice(db *gorm.DB) *gorm.DB {
	return db.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

func invoicesToDomain(rows []models.InvoiceModel) []sales.Invoice {
	return lo.Map(rows, func(m models.InvoiceModel, _ int) sales.Invoice {
		return *m.ToDomain()
	})
}

// FindAll returns every invoice ordered by id
func (r *GormInvoiceRepository) FindAll(ctx context.Context) ([]sales.Invoice, error) {
	var rows []models.InvoiceModel
	if err := preloadInvoice(r.db.WithContext(ctx)).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoicesToDomain(rows), nil
}

// FindByCustomerID returns the invoices linked to a customer
func (r *GormInvoiceRepository) FindByCustomerID(ctx context.Context, customerID int64) ([]sales.Invoice, error) {
	var rows []models.InvoiceModel
	if err := preloadInvoice(r.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list customer invoices: %w", err)
	}
	return invoicesToDomain(rows), nil
}

// FindByID finds an invoice by id
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id int64) (*sales.Invoice, error) {
	return findInvoice(preloadInvoice(r.db.WithContext(ctx)), id)
}

func findInvoice(db *gorm.DB, id int64) (*sales.Invoice, error) {
	var row models.InvoiceModel
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Count returns the number of invoices
func (r *GormInvoiceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates the invoice when it has no id and updates it otherwise.
// Referenced products and customer must exist. The product set is replaced.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *sales.Invoice) error {
	invoice.Normalize()

	var stored *sales.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productIDs := invoice.ProductIDs()
		if err := requireProducts(tx, productIDs); err != nil {
			return err
		}
		if invoice.CustomerID != nil {
			var count int64
			if err := tx.Model(&models.CustomerModel{}).Where("id = ?", *invoice.CustomerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.Errorf(shared.ErrInvalidInput, "customer %d does not exist", *invoice.CustomerID)
			}
		}

		row := models.InvoiceFromDomain(invoice)
		if row.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
				return fmt.Errorf("failed to create invoice: %w", err)
			}
		} else {
			result := tx.Model(&models.InvoiceModel{}).
				Where("id = ?", row.ID).
				Select("date", "place", "customer_id").
				Updates(row)
			if result.Error != nil {
				return fmt.Errorf("failed to update invoice: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}

		if err := tx.Where("invoice_id = ?", row.ID).Delete(&models.InvoiceProductModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear invoice products: %w", err)
		}
		if len(productIDs) > 0 {
			links := lo.Map(productIDs, func(productID int64, _ int) models.InvoiceProductModel {
				return models.InvoiceProductModel{InvoiceID: row.ID, ProductID: productID}
			})
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("failed to link invoice products: %w", err)
			}
		}

		var err error
		stored, err = findInvoice(preloadInvoice(tx), row.ID)
		return err
	})
	if err != nil {
		return err
	}

	*invoice = *stored
	return nil
}

func requireProducts(tx *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var existing []int64
	if err := tx.Model(&models.ProductModel{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	if missing := lo.Without(ids, existing...); len(missing) > 0 {
		return shared.Errorf(shared.ErrInvalidInput, "product %d does not exist", missing[0])
	}
	return nil
}

// DeleteByID removes the invoice and its product links
func (r *GormInvoiceRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceProductModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear invoice products: %w", err)
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete invoice: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ sales.InvoiceRepository = (*GormInvoiceRepository)(nil)
