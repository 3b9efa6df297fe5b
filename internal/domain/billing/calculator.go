// Package billing holds the pure money and numbering rules shared by
// quotations and invoices. Nothing here performs I/O.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
)

var hundred = decimal.NewFromInt(100)

// Discount is either a percentage of the subtotal or a fixed amount.
type Discount struct {
	Type  enum.DiscountType
	Value decimal.Decimal
}

// Percentage returns a discount of v percent of the subtotal.
func Percentage(v decimal.Decimal) Discount {
	return Discount{Type: enum.DiscountTypePercentage, Value: v}
}

// Fixed returns a discount of a flat amount.
func Fixed(v decimal.Decimal) Discount {
	return Discount{Type: enum.DiscountTypeFixed, Value: v}
}

// Totals are the derived figures of a document.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// LineAmount is quantity times rate. Signs are not clamped.
func LineAmount(item entity.LineItem) decimal.Decimal {
	return item.Quantity.Mul(item.Rate)
}

// NormalizeItems returns a copy of items with every Amount recomputed.
func NormalizeItems(items []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, len(items))
	for i, item := range items {
		item.Amount = LineAmount(item)
		out[i] = item
	}
	return out
}

// Calculate derives the document totals. Amounts supplied on the items are
// ignored; the discount is clamped to [0, subtotal] and tax is charged on
// what remains after the discount.
func Calculate(items []entity.LineItem, taxRatePercent decimal.Decimal, discount Discount) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineAmount(item))
	}

	discountAmount := discount.Value
	if discount.Type == enum.DiscountTypePercentage {
		discountAmount = subtotal.Mul(discount.Value).Div(hundred)
	}
	discountAmount = decimal.Max(decimal.Zero, decimal.Min(discountAmount, subtotal))

	taxable := subtotal.Sub(discountAmount)
	tax := taxable.Mul(taxRatePercent).Div(hundred)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// Price builds a Pricing with normalized items and freshly computed totals.
func Price(items []entity.LineItem, taxRatePercent decimal.Decimal, discount Discount) entity.Pricing {
	totals := Calculate(items, taxRatePercent, discount)
	return entity.Pricing{
		Items:          NormalizeItems(items),
		Subtotal:       totals.Subtotal,
		TaxRate:        taxRatePercent,
		TaxAmount:      totals.TaxAmount,
		DiscountType:   discount.Type,
		DiscountValue:  discount.Value,
		DiscountAmount: totals.DiscountAmount,
		Total:          totals.Total,
	}
}

// Reprice recomputes p from its own inputs.
func Reprice(p entity.Pricing) entity.Pricing {
	return Price(p.Items, p.TaxRate, Discount{Type: p.DiscountType, Value: p.DiscountValue})
}

// TotalsOf reads the stored totals of p.
func TotalsOf(p entity.Pricing) Totals {
	return Totals{
		Subtotal:       p.Subtotal,
		DiscountAmount: p.DiscountAmount,
		TaxAmount:      p.TaxAmount,
		Total:          p.Total,
	}
}

// Equal reports whether two totals carry the same figures.
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) &&
		t.DiscountAmount.Equal(o.DiscountAmount) &&
		t.TaxAmount.Equal(o.TaxAmount) &&
		t.Total.Equal(o.Total)
}
