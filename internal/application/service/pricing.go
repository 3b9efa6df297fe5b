package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/billing"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

// BillingOptions configures document numbering and payment terms.
type BillingOptions struct {
	InvoicePrefix   string
	QuotationPrefix string
	DueDays         int
}

func (o BillingOptions) withDefaults() BillingOptions {
	if strings.TrimSpace(o.InvoicePrefix) == "" {
		o.InvoicePrefix = "INV"
	}
	if strings.TrimSpace(o.QuotationPrefix) == "" {
		o.QuotationPrefix = "QT"
	}
	if o.DueDays <= 0 {
		o.DueDays = billing.DefaultDueDays
	}
	return o
}

// PricingInput is the priced part of a quotation or invoice as submitted.
type PricingInput struct {
	Items         []LineItemInput
	TaxRate       decimal.Decimal
	DiscountType  enum.DiscountType
	DiscountValue decimal.Decimal
}

// buildPricing validates the input and computes the totals. Quantities and
// rates are taken as given; only the discount is clamped.
func buildPricing(in PricingInput) (entity.Pricing, []apperror.FieldError) {
	items, errs := toLineItems(in.Items)
	if in.TaxRate.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "tax_rate", Message: "Tax rate cannot be negative"})
	}
	if in.DiscountValue.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "discount_value", Message: "Discount cannot be negative"})
	}
	if in.DiscountType != enum.DiscountTypePercentage && in.DiscountType != enum.DiscountTypeFixed {
		errs = append(errs, apperror.FieldError{Field: "discount_type", Message: "Unknown discount type"})
	}
	if len(errs) > 0 {
		return entity.Pricing{}, errs
	}
	return billing.Price(items, in.TaxRate, billing.Discount{Type: in.DiscountType, Value: in.DiscountValue}), nil
}

// pricingFields is the partial record that replaces a document's pricing.
func pricingFields(p entity.Pricing) map[string]any {
	return map[string]any{
		"items":           p.Items,
		"subtotal":        p.Subtotal,
		"tax_rate":        p.TaxRate,
		"tax_amount":      p.TaxAmount,
		"discount_type":   p.DiscountType,
		"discount_value":  p.DiscountValue,
		"discount_amount": p.DiscountAmount,
		"total":           p.Total,
	}
}

// CalculateTotals prices a draft without storing anything.
func CalculateTotals(in PricingInput) (*entity.Pricing, error) {
	p, errs := buildPricing(in)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	return &p, nil
}

// numberSource adapts a listing of documents to a billing.NumberSource.
func numberSource[T any](list func(ctx context.Context) ([]T, error), number func(T) string) billing.NumberSource {
	return func(ctx context.Context) ([]string, error) {
		docs, err := list(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(docs))
		for i, d := range docs {
			out[i] = number(d)
		}
		return out, nil
	}
}
