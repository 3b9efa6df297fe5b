package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/payment"
)

func TestGetDashboardStats(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	clientID := seedClient(t, store)

	_, err := store.Leads.Create(ctx, &entity.Lead{CompanyName: "A"})
	require.NoError(t, err)
	_, err = store.Leads.Create(ctx, &entity.Lead{CompanyName: "B", Progress: enum.LeadProgressConfirm})
	require.NoError(t, err)

	quotes := newQuotationService(store)
	createQuote(t, quotes, clientID)

	old := NewInvoiceService(store.Invoices, store.Clients, nil, BillingOptions{DueDays: 5}).
		WithClock(clockAt(fixedNow.AddDate(0, 0, -10)))
	late := createInvoice(t, old, clientID, "300")

	invoices := newInvoiceService(store)
	inv := createInvoice(t, invoices, clientID, "1000")
	_, err = invoices.RecordPayment(ctx, admin, inv.ID, payment.PaymentInput{Amount: dec("400"), Method: "cash"})
	require.NoError(t, err)

	stats, err := NewDashboardService(store.Leads, store.Clients, store.Quotations, store.Invoices).
		WithClock(clockAt(fixedNow)).
		GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalLeads)
	assert.Equal(t, 1, stats.LeadsByProgress[enum.LeadProgressConfirm.String()])
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 1, stats.OpenQuotations)
	assert.True(t, stats.OpenQuoteValue.Equal(dec("550")))

	assert.Equal(t, 2, stats.TotalInvoices)
	assert.Equal(t, 1, stats.InvoicesByStatus["Partially Paid"])
	assert.Equal(t, 1, stats.InvoicesByStatus["Unpaid"])
	assert.Equal(t, 0, stats.InvoicesByStatus["Overdue"])
	assert.True(t, stats.Outstanding.Equal(dec("900")))
	assert.True(t, stats.PaidTotal.Equal(dec("400")))
	assert.True(t, stats.MonthlyReceived.Equal(dec("400")))

	assert.Equal(t, 1, stats.OverdueCount, "unpaid past due counts before the sweep runs")
	assert.True(t, stats.OverdueAmount.Equal(dec("300")))
	assert.NotEmpty(t, late.ID)

	require.Len(t, stats.DailyPayments, 7)
	assert.Equal(t, "Mar 09", stats.DailyPayments[0].Date)
	assert.Equal(t, "Mar 15", stats.DailyPayments[6].Date)
	assert.True(t, stats.DailyPayments[6].Amount.Equal(dec("400")))
	assert.True(t, stats.DailyPayments[0].Amount.IsZero())
}

func TestDashboardManuallyPaidInvoiceOwesNothing(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	clientID := seedClient(t, store)

	invoices := newInvoiceService(store)
	inv := createInvoice(t, invoices, clientID, "1000")
	_, err := invoices.ChangePaymentStatus(ctx, staff, inv.ID, enum.PaymentStatusPaid, "paid at the counter")
	require.NoError(t, err)

	stats, err := NewDashboardService(store.Leads, store.Clients, store.Quotations, store.Invoices).
		WithClock(clockAt(fixedNow)).
		GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.InvoicesByStatus["Paid"])
	assert.True(t, stats.Outstanding.IsZero(), stats.Outstanding.String())
	assert.True(t, stats.OverdueAmount.IsZero())
	assert.Equal(t, 0, stats.OverdueCount)
}
