package entity

import "github.com/shopspring/decimal"

// CatalogItem is an entry of the services catalog that line items are
// usually priced from.
type CatalogItem struct {
	Base
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Rate        decimal.Decimal `gorm:"type:numeric;default:0" json:"rate"`
	Unit        string          `gorm:"size:50" json:"unit,omitempty"`
	Active      bool            `gorm:"not null" json:"active"`
}

// TableName returns the table name for the CatalogItem model
func (CatalogItem) TableName() string {
	return "services"
}
