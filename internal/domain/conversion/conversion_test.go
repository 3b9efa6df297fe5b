package conversion

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

func TestLeadToClient(t *testing.T) {
	lead := entity.Lead{
		Base:              entity.Base{ID: "L1"},
		CompanyName:       "Acme Ltd",
		ContactPersonName: "Wanjiru",
		BusinessType:      "Retail",
		Email:             "ops@acme.co.ke",
		PhoneNumber:       "0711222333",
		Notes:             "met at expo",
		HandledBy:         "otieno",
		Progress:          enum.LeadProgressInProgress,
	}

	client := LeadToClient(lead)

	assert.Empty(t, client.ID)
	assert.Equal(t, "L1", client.LeadID)
	assert.Equal(t, enum.ClientStatusActive, client.Status)
	assert.Equal(t, lead.CompanyName, client.CompanyName)
	assert.Equal(t, lead.ContactPersonName, client.ContactPersonName)
	assert.Equal(t, lead.BusinessType, client.BusinessType)
	assert.Equal(t, lead.Email, client.Email)
	assert.Equal(t, lead.PhoneNumber, client.PhoneNumber)
	assert.Equal(t, lead.Notes, client.Notes)
	assert.Equal(t, lead.HandledBy, client.HandledBy)
}

func TestConfirmedLead(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	lead := entity.Lead{Notes: "first call\n", Progress: enum.LeadProgressKnocked}
	got := ConfirmedLead(lead, "C9", now)
	assert.Equal(t, enum.LeadProgressConfirm, got.Progress)
	assert.Equal(t, "first call\nConverted to client C9 on 2024-05-02", got.Notes)
	assert.Equal(t, enum.LeadProgressKnocked, lead.Progress)

	empty := ConfirmedLead(entity.Lead{}, "C9", now)
	assert.Equal(t, "Converted to client C9 on 2024-05-02", empty.Notes)
}

func TestQuotationToInvoice(t *testing.T) {
	items := []entity.LineItem{
		{ID: "1", Description: "Design", Quantity: decimal.NewFromInt(5), Rate: decimal.NewFromInt(100), Amount: decimal.NewFromInt(500)},
	}
	q := entity.Quotation{
		Base:     entity.Base{ID: "Q1"},
		ClientID: "C1",
		Pricing: entity.Pricing{
			Items:     items,
			Subtotal:  decimal.NewFromInt(500),
			TaxRate:   decimal.NewFromInt(10),
			TaxAmount: decimal.NewFromInt(50),
			Total:     decimal.NewFromInt(550),
		},
		Notes:  "net 30",
		Status: enum.QuotationStatusSent,
	}
	today := time.Date(2024, 1, 15, 16, 45, 0, 0, time.UTC)

	inv := QuotationToInvoice(q, "INV-2024-0007", today, 30)

	assert.Equal(t, "Q1", inv.QuotationID)
	assert.Equal(t, "C1", inv.ClientID)
	assert.Equal(t, "INV-2024-0007", inv.InvoiceNumber)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(550)))
	assert.True(t, inv.TaxRate.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, enum.PaymentStatusUnpaid, inv.PaymentStatus)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), inv.Date)
	assert.Equal(t, inv.Date.AddDate(0, 0, 30), inv.DueDate)
	assert.Equal(t, "net 30", inv.Notes)
	require.Len(t, inv.Items, 1)

	inv.Items[0].Description = "changed"
	assert.Equal(t, "Design", q.Items[0].Description, "items must not alias")
}

func TestQuotationToInvoiceDefaultsDueDays(t *testing.T) {
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	inv := QuotationToInvoice(entity.Quotation{}, "INV-1", today, 0)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), inv.DueDate)
}

func TestOutcome(t *testing.T) {
	complete := Outcome{Created: Done("C1"), SourceUpdated: Done("L1")}
	assert.True(t, complete.Complete())
	assert.False(t, complete.Partial())
	assert.NoError(t, complete.Err())

	storeErr := apperror.NewPersistenceError("update", errors.New("connection reset"))
	partial := Outcome{Created: Done("C1"), SourceUpdated: Failed(storeErr)}
	assert.False(t, partial.Complete())
	assert.True(t, partial.Partial())
	assert.ErrorIs(t, partial.Err(), apperror.ErrPersistence)
	assert.Contains(t, partial.SourceUpdated.Error, "connection reset")

	failed := Outcome{Created: Failed(storeErr)}
	assert.False(t, failed.Partial())
	assert.ErrorIs(t, failed.Err(), apperror.ErrPersistence)
}
