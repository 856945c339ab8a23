// Package models holds the GORM persistence models and their domain mappers.
package models

import (
	"time"
)

// SalesModels returns every model owned by the relational schema, in dependency order
func SalesModels() []any {
	return []any{
		&HighRiseAddressExtensionModel{},
		&ShippingContactModel{},
		&CustomerModel{},
		&CustomerPhoneNumberModel{},
		&CustomerAddressModel{},
		&CustomerMealPreferenceModel{},
		&ProductModel{},
		&InvoiceModel{},
	}
}

// CustomerModel is the persistence model for the customers table.
// The id is assigned by the caller.
type CustomerModel struct {
	ID                int64                         `gorm:"primaryKey;autoIncrement:false"`
	Name              string                        `gorm:"type:varchar(255)"`
	ShippingContactID *int64                        `gorm:"index"`
	ShippingContact   *ShippingContactModel         `gorm:"foreignKey:ShippingContactID"`
	PhoneNumbers      []CustomerPhoneNumberModel    `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Addresses         []CustomerAddressModel        `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	MealPreferences   []CustomerMealPreferenceModel `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Invoices          []InvoiceModel                `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// CustomerPhoneNumberModel stores one entry of a customer's ordered phone list
type CustomerPhoneNumberModel struct {
	CustomerID  int64  `gorm:"primaryKey;autoIncrement:false"`
	Position    int    `gorm:"primaryKey;autoIncrement:false"`
	PhoneNumber string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (CustomerPhoneNumberModel) TableName() string {
	return "customer_phone_numbers"
}

// CustomerAddressModel stores one embedded address of a customer
type CustomerAddressModel struct {
	CustomerID          int64                          `gorm:"primaryKey;autoIncrement:false"`
	Position            int                            `gorm:"primaryKey;autoIncrement:false"`
	AddressLine1        string                         `gorm:"type:varchar(255)"`
	AddressLine2        string                         `gorm:"type:varchar(255)"`
	City                string                         `gorm:"type:varchar(255)"`
	PostalCode          string                         `gorm:"type:varchar(64)"`
	HighRiseExtensionID *int64                         `gorm:"index"`
	HighRiseExtension   *HighRiseAddressExtensionModel `gorm:"foreignKey:HighRiseExtensionID"`
}

// TableName returns the table name for GORM
func (CustomerAddressModel) TableName() string {
	return "customer_addresses"
}

// CustomerMealPreferenceModel stores one meal to dish entry of a customer
type CustomerMealPreferenceModel struct {
	CustomerID int64  `gorm:"primaryKey;autoIncrement:false"`
	Meal       string `gorm:"primaryKey;type:varchar(255)"`
	Dish       string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CustomerMealPreferenceModel) TableName() string {
	return "customer_meal_preferences"
}

// ShippingContactModel is the persistence model for shipping contacts.
// CustomerID is the inverse side of CustomerModel.ShippingContactID and carries no constraint.
type ShippingContactModel struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(255)"`
	PhoneNumber string `gorm:"type:varchar(255)"`
	CustomerID  *int64 `gorm:"index"`
}

// TableName returns the table name for GORM
func (ShippingContactModel) TableName() string {
	return "shipping_contacts"
}

// HighRiseAddressExtensionModel is the persistence model for high-rise address details
type HighRiseAddressExtensionModel struct {
	ID         int64  `gorm:"primaryKey"`
	Suite      string `gorm:"type:varchar(64)"`
	Floor      string `gorm:"type:varchar(64)"`
	BuzzerCode string `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (HighRiseAddressExtensionModel) TableName() string {
	return "high_rise_address_extensions"
}

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	ID         int64          `gorm:"primaryKey"`
	Date       time.Time      `gorm:"not null"`
	Place      string         `gorm:"type:varchar(255)"`
	CustomerID *int64         `gorm:"index"`
	Products   []ProductModel `gorm:"many2many:invoice_products;joinForeignKey:InvoiceID;joinReferences:ProductID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ProductModel is the persistence model for products
type ProductModel struct {
	ID     int64  `gorm:"primaryKey"`
	Name   string `gorm:"type:varchar(255)"`
	Number int64
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// InvoiceProductModel is one row of the invoice/product join table
type InvoiceProductModel struct {
	InvoiceID int64 `gorm:"primaryKey;autoIncrement:false"`
	ProductID int64 `gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the table name for GORM
func (InvoiceProductModel) TableName() string {
	return "invoice_products"
}
