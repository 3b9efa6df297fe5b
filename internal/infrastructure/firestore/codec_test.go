package firestore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
)

func TestDocumentCodec(t *testing.T) {
	due := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	inv := entity.Invoice{
		Base:          entity.Base{ID: "I1"},
		InvoiceNumber: "INV-2024-0001",
		DueDate:       due,
		Pricing: entity.Pricing{
			Items: []entity.LineItem{{Description: "Hosting", Quantity: decimal.NewFromInt(1), Rate: decimal.RequireFromString("19.99")}},
			Total: decimal.RequireFromString("19.99"),
		},
		PaymentStatus: enum.PaymentStatusPartiallyPaid,
	}

	doc, err := toDocument(&inv)
	require.NoError(t, err)
	assert.NotContains(t, doc, "id")
	assert.Equal(t, "Partially Paid", doc["payment_status"])
	assert.Equal(t, "19.99", doc["total"])

	var back entity.Invoice
	require.NoError(t, fromDocument("I1", doc, &back))
	assert.Equal(t, "I1", back.ID)
	assert.Equal(t, inv.InvoiceNumber, back.InvoiceNumber)
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, back.PaymentStatus)
	assert.True(t, back.Total.Equal(inv.Total))
	assert.True(t, back.DueDate.Equal(due))
	require.Len(t, back.Items, 1)
	assert.Equal(t, "Hosting", back.Items[0].Description)
}

func TestFromDocumentAcceptsNumericEnums(t *testing.T) {
	var lead entity.Lead
	require.NoError(t, fromDocument("L1", map[string]any{"company_name": "Acme", "progress": int64(3)}, &lead))
	assert.Equal(t, enum.LeadProgressConfirm, lead.Progress)
	assert.Equal(t, "L1", lead.ID)
}
