package entity

import (
	"github.com/shopspring/decimal"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
)

// LineItem is one billable row of a quotation or invoice. Amount is always
// derived from Quantity and Rate and is never trusted from input.
type LineItem struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"service_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Unit        string          `json:"unit,omitempty"`
}

// Pricing is the priced body shared by quotations and invoices: the items,
// the discount and tax inputs, and the totals computed from them.
type Pricing struct {
	Items          []LineItem        `gorm:"serializer:json;type:jsonb" json:"items"`
	Subtotal       decimal.Decimal   `gorm:"type:numeric;default:0" json:"subtotal"`
	TaxRate        decimal.Decimal   `gorm:"type:numeric;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal   `gorm:"type:numeric;default:0" json:"tax_amount"`
	DiscountType   enum.DiscountType `gorm:"default:0" json:"discount_type"`
	DiscountValue  decimal.Decimal   `gorm:"type:numeric;default:0" json:"discount_value"`
	DiscountAmount decimal.Decimal   `gorm:"type:numeric;default:0" json:"discount_amount"`
	Total          decimal.Decimal   `gorm:"type:numeric;default:0" json:"total"`
}

// Clone returns a copy whose Items slice does not alias p's.
func (p Pricing) Clone() Pricing {
	out := p
	if p.Items != nil {
		out.Items = make([]LineItem, len(p.Items))
		copy(out.Items, p.Items)
	}
	return out
}
