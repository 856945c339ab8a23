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
)

// GormProductRepository implements sales.ProductRepository using GORM.
// Invoice links are read from the join table owned by invoices.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindAll returns every product ordered by id
func (r *GormProductRepository) FindAll(ctx context.Context) ([]sales.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return r.withInvoiceIDs(r.db.WithContext(ctx), rows)
}

// FindByIDs returns the products among ids that exist, ordered by id
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]sales.Product, error) {
	if len(ids) == 0 {
		return []sales.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", lo.Uniq(ids)).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return r.withInvoiceIDs(r.db.WithContext(ctx), rows)
}

// FindByID finds a product by id
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*sales.Product, error) {
	return r.findProduct(r.db.WithContext(ctx), id)
}

func (r *GormProductRepository) findProduct(db *gorm.DB, id int64) (*sales.Product, error) {
	var row models.ProductModel
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	products, err := r.withInvoiceIDs(db, []models.ProductModel{row})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *GormProductRepository) withInvoiceIDs(db *gorm.DB, rows []models.ProductModel) ([]sales.Product, error) {
	products := lo.Map(rows, func(m models.ProductModel, _ int) sales.Product {
		return *m.ToDomain()
	})
	if len(rows) == 0 {
		return products, nil
	}

	var links []models.InvoiceProductModel
	ids := lo.Map(rows, func(m models.ProductModel, _ int) int64 { return m.ID })
	if err := db.Where("product_id IN ?", ids).Order("invoice_id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to load product invoices: %w", err)
	}
	byProduct := lo.GroupBy(links, func(l models.InvoiceProductModel) int64 { return l.ProductID })
	for i := range products {
		products[i].InvoiceIDs = lo.Map(byProduct[products[i].ID], func(l models.InvoiceProductModel, _ int) int64 {
			return l.InvoiceID
		})
	}
	return products, nil
}

// Count returns the number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates the product when it has no id and updates it otherwise.
// Invoice links are owned by invoices and are not written here.
func (r *GormProductRepository) Save(ctx context.Context, product *sales.Product) error {
	var stored *sales.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.ProductFromDomain(product)
		if row.ID == 0 {
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
		} else {
			result := tx.Model(&models.ProductModel{}).
				Where("id = ?", row.ID).
				Select("name", "number").
				Updates(row)
			if result.Error != nil {
				return fmt.Errorf("failed to update product: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}

		var err error
		stored, err = r.findProduct(tx, row.ID)
		return err
	})
	if err != nil {
		return err
	}

	*product = *stored
	return nil
}

// DeleteByID removes the product and its invoice links
func (r *GormProductRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.InvoiceProductModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear product invoices: %w", err)
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ sales.ProductRepository = (*GormProductRepository)(nil)
