package request

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/enum"
)

// LineItemRequest is one row of a quotation or invoice.
type LineItemRequest struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"service_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Unit        string          `json:"unit" binding:"max=32"`
}

// PricingRequest is the priced part of a quotation or invoice.
type PricingRequest struct {
	Items         []LineItemRequest `json:"items" binding:"dive"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	DiscountType  enum.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal   `json:"discount_value"`
}

// CreateQuotationRequest represents the create quotation request body.
// Dates use the YYYY-MM-DD format.
type CreateQuotationRequest struct {
	PricingRequest
	ClientID   string               `json:"client_id" binding:"required"`
	Date       string               `json:"date"`
	ValidUntil string               `json:"valid_until"`
	Notes      string               `json:"notes"`
	Status     enum.QuotationStatus `json:"status"`
}

// UpdateQuotationRequest represents the update quotation request body.
// When items is present the pricing is replaced as a whole.
type UpdateQuotationRequest struct {
	ClientID      *string            `json:"client_id"`
	Date          *string            `json:"date"`
	ValidUntil    *string            `json:"valid_until"`
	Items         []LineItemRequest  `json:"items" binding:"omitempty,dive"`
	TaxRate       *decimal.Decimal   `json:"tax_rate"`
	DiscountType  *enum.DiscountType `json:"discount_type"`
	DiscountValue *decimal.Decimal   `json:"discount_value"`
	Notes         *string            `json:"notes"`
}

// UpdateQuotationStatusRequest moves a quotation between statuses.
type UpdateQuotationStatusRequest struct {
	Status *enum.QuotationStatus `json:"status"`
}

// CreateInvoiceRequest represents the create invoice request body
type CreateInvoiceRequest struct {
	PricingRequest
	ClientID string `json:"client_id" binding:"required"`
	Date     string `json:"date"`
	DueDate  string `json:"due_date"`
	Notes    string `json:"notes"`
}

// UpdateInvoiceRequest represents the update invoice request body
type UpdateInvoiceRequest struct {
	DueDate       *string            `json:"due_date"`
	Items         []LineItemRequest  `json:"items" binding:"omitempty,dive"`
	TaxRate       *decimal.Decimal   `json:"tax_rate"`
	DiscountType  *enum.DiscountType `json:"discount_type"`
	DiscountValue *decimal.Decimal   `json:"discount_value"`
	Notes         *string            `json:"notes"`
}

// ChangePaymentStatusRequest sets an invoice's payment status by hand.
type ChangePaymentStatusRequest struct {
	Status *enum.PaymentStatus `json:"payment_status"`
	Notes  string              `json:"notes"`
}

// RecordPaymentRequest records a payment against an invoice.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" binding:"required,max=64"`
	Notes  string          `json:"notes"`
}

// CatalogItemRequest creates or updates a catalog service.
type CatalogItemRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Rate        *decimal.Decimal `json:"rate"`
	Unit        *string          `json:"unit" binding:"omitempty,max=32"`
	Active      *bool            `json:"active"`
}
