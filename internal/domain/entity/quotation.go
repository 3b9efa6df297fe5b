package entity

import (
	"time"

	"github.com/sangkips/bizdesk-api/internal/domain/enum"
)

// Quotation represents a price quotation for a client
type Quotation struct {
	Base
	QuotationNumber string               `gorm:"size:50;index" json:"quotation_number"`
	ClientID        string               `gorm:"size:64;index" json:"client_id"`
	ClientName      string               `gorm:"size:255" json:"client_name,omitempty"`
	Date            time.Time            `gorm:"type:date;not null" json:"date"`
	ValidUntil      *time.Time           `gorm:"type:date" json:"valid_until,omitempty"`
	Pricing         `gorm:"embedded"`
	Notes           string               `gorm:"type:text" json:"notes,omitempty"`
	Status          enum.QuotationStatus `gorm:"default:0;index" json:"status"`
	InvoiceID       string               `gorm:"size:64" json:"invoice_id,omitempty"`
	CreatedBy       string               `gorm:"size:64" json:"created_by,omitempty"`
}

// TableName returns the table name for the Quotation model
func (Quotation) TableName() string {
	return "quotations"
}
