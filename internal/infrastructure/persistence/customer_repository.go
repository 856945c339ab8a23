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

// GormCustomerRepository implements sales.CustomerRepository using GORM.
// A customer is stored across several tables; Save rewrites them in one transaction.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func preloadCustomer(db *gorm.DB) *gorm.DB {
	return db.
		Preload("ShippingContact").
		Preload("PhoneNumbers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Addresses.HighRiseExtension").
		Preload("MealPreferences").
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Invoices.Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		})
}

// FindAll returns every customer ordered by id
func (r *GormCustomerRepository) FindAll(ctx context.Context) ([]sales.Customer, error) {
	var rows []models.CustomerModel
	if err := preloadCustomer(r.db.WithContext(ctx)).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return lo.Map(rows, func(m models.CustomerModel, _ int) sales.Customer {
		return *m.ToDomain()
	}), nil
}

// FindByID finds a customer by id
func (r *GormCustomerRepository) FindByID(ctx context.Context, id int64) (*sales.Customer, error) {
	return findCustomer(preloadCustomer(r.db.WithContext(ctx)), id)
}

func findCustomer(db *gorm.DB, id int64) (*sales.Customer, error) {
	var row models.CustomerModel
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// ExistsByID reports whether a customer row exists
func (r *GormCustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of customers
func (r *GormCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts or replaces the customer with the same id, including its owned
// collections, and links the referenced invoices. Invoices previously linked and
// absent from the customer are unlinked. On success customer is replaced with
// the stored state.
func (r *GormCustomerRepository) Save(ctx context.Context, customer *sales.Customer) error {
	customer.Normalize()

	var stored *sales.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.CustomerFromDomain(customer)

		if customer.ShippingContact != nil {
			contact := models.ShippingContactFromDomain(customer.ShippingContact)
			contact.CustomerID = lo.ToPtr(customer.ID)
			if err := tx.Save(contact).Error; err != nil {
				return fmt.Errorf("failed to save shipping contact: %w", err)
			}
			row.ShippingContactID = lo.ToPtr(contact.ID)

			// a contact belongs to one customer; taking it over detaches the previous owner
			if err := tx.Model(&models.CustomerModel{}).
				Where("shipping_contact_id = ? AND id <> ?", contact.ID, customer.ID).
				Update("shipping_contact_id", nil).Error; err != nil {
				return fmt.Errorf("failed to detach shipping contact: %w", err)
			}
		}

		previousContacts := tx.Model(&models.ShippingContactModel{}).Where("customer_id = ?", customer.ID)
		if row.ShippingContactID != nil {
			previousContacts = previousContacts.Where("id <> ?", *row.ShippingContactID)
		}
		if err := previousContacts.Update("customer_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink shipping contact: %w", err)
		}

		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "shipping_contact_id"}),
		}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to save customer: %w", err)
		}

		if err := replacePhoneNumbers(tx, customer.ID, customer.PhoneNumbers); err != nil {
			return err
		}
		if err := replaceAddresses(tx, customer.ID, customer.Addresses); err != nil {
			return err
		}
		if err := replaceMealPreferences(tx, customer.ID, customer.MealPreferences); err != nil {
			return err
		}
		if err := linkInvoices(tx, customer.ID, customer.InvoiceIDs()); err != nil {
			return err
		}

		var err error
		stored, err = findCustomer(preloadCustomer(tx), customer.ID)
		return err
	})
	if err != nil {
		return err
	}

	*customer = *stored
	return nil
}

func replacePhoneNumbers(tx *gorm.DB, customerID int64, phones []string) error {
	if err := tx.Where("customer_id = ?", customerID).Delete(&models.CustomerPhoneNumberModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear phone numbers: %w", err)
	}
	if len(phones) == 0 {
		return nil
	}
	rows := models.PhoneNumbersFromDomain(customerID, phones)
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save phone numbers: %w", err)
	}
	return nil
}

func replaceMealPreferences(tx *gorm.DB, customerID int64, prefs map[string]string) error {
	if err := tx.Where("customer_id = ?", customerID).Delete(&models.CustomerMealPreferenceModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear meal preferences: %w", err)
	}
	if len(prefs) == 0 {
		return nil
	}
	rows := models.MealPreferencesFromDomain(customerID, prefs)
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save meal preferences: %w", err)
	}
	return nil
}

func replaceAddresses(tx *gorm.DB, customerID int64, addresses []sales.Address) error {
	previous, err := extensionIDsOf(tx, customerID)
	if err != nil {
		return err
	}
	if err := tx.Where("customer_id = ?", customerID).Delete(&models.CustomerAddressModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear addresses: %w", err)
	}

	kept := make([]int64, 0, len(addresses))
	rows := make([]models.CustomerAddressModel, 0, len(addresses))
	for i, addr := range addresses {
		row := models.AddressFromDomain(customerID, i, addr)
		if addr.HighRiseExtension != nil {
			ext := models.HighRiseExtensionFromDomain(addr.HighRiseExtension)
			if err := tx.Save(ext).Error; err != nil {
				return fmt.Errorf("failed to save high-rise extension: %w", err)
			}
			row.HighRiseExtensionID = lo.ToPtr(ext.ID)
			kept = append(kept, ext.ID)
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save addresses: %w", err)
		}
	}

	return deleteOrphanExtensions(tx, lo.Without(previous, kept...))
}

func extensionIDsOf(tx *gorm.DB, customerID int64) ([]int64, error) {
	var ids []int64
	if err := tx.Model(&models.CustomerAddressModel{}).
		Where("customer_id = ? AND high_rise_extension_id IS NOT NULL", customerID).
		Pluck("high_rise_extension_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load high-rise extensions: %w", err)
	}
	return ids, nil
}

// deleteOrphanExtensions removes the candidates no address references anymore
func deleteOrphanExtensions(tx *gorm.DB, candidates []int64) error {
	if len(candidates) == 0 {
		return nil
	}
	referenced := tx.Model(&models.CustomerAddressModel{}).
		Select("high_rise_extension_id").
		Where("high_rise_extension_id IS NOT NULL")
	if err := tx.Where("id IN ? AND id NOT IN (?)", candidates, referenced).
		Delete(&models.HighRiseAddressExtensionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete high-rise extensions: %w", err)
	}
	return nil
}

func linkInvoices(tx *gorm.DB, customerID int64, invoiceIDs []int64) error {
	if len(invoiceIDs) > 0 {
		var existing []int64
		if err := tx.Model(&models.InvoiceModel{}).Where("id IN ?", invoiceIDs).Pluck("id", &existing).Error; err != nil {
			return fmt.Errorf("failed to load invoices: %w", err)
		}
		if missing := lo.Without(invoiceIDs, existing...); len(missing) > 0 {
			return shared.Errorf(shared.ErrInvalidInput, "invoice %d does not exist", missing[0])
		}
		if err := tx.Model(&models.InvoiceModel{}).Where("id IN ?", invoiceIDs).
			Update("customer_id", customerID).Error; err != nil {
			return fmt.Errorf("failed to link invoices: %w", err)
		}
	}

	detach := tx.Model(&models.InvoiceModel{}).Where("customer_id = ?", customerID)
	if len(invoiceIDs) > 0 {
		detach = detach.Where("id NOT IN ?", invoiceIDs)
	}
	if err := detach.Update("customer_id", nil).Error; err != nil {
		return fmt.Errorf("failed to unlink invoices: %w", err)
	}
	return nil
}

// DeleteByID removes the customer and its owned collections. Linked invoices
// and the shipping contact survive with their customer reference cleared.
func (r *GormCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.CustomerModel
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.InvoiceModel{}).Where("customer_id = ?", id).
			Update("customer_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink invoices: %w", err)
		}
		if err := tx.Model(&models.ShippingContactModel{}).Where("customer_id = ?", id).
			Update("customer_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink shipping contact: %w", err)
		}

		extensions, err := extensionIDsOf(tx, id)
		if err != nil {
			return err
		}
		for _, owned := range []any{
			&models.CustomerPhoneNumberModel{},
			&models.CustomerAddressModel{},
			&models.CustomerMealPreferenceModel{},
		} {
			if err := tx.Where("customer_id = ?", id).Delete(owned).Error; err != nil {
				return fmt.Errorf("failed to delete customer collections: %w", err)
			}
		}
		if err := deleteOrphanExtensions(tx, extensions); err != nil {
			return err
		}

		if err := tx.Delete(&models.CustomerModel{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}
		return nil
	})
}

var _ sales.CustomerRepository = (*GormCustomerRepository)(nil)
