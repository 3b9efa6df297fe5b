package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

func seedClient(t *testing.T, store *repository.Store) string {
	t.Helper()
	id, err := store.Clients.Create(context.Background(), &entity.Client{CompanyName: "C1 Ltd"})
	require.NoError(t, err)
	return id
}

func newQuotationService(store *repository.Store) *QuotationService {
	return NewQuotationService(store.Quotations, store.Clients, store.Invoices, nil, BillingOptions{}).
		WithClock(clockAt(fixedNow))
}

func createQuote(t *testing.T, svc *QuotationService, clientID string) *entity.Quotation {
	t.Helper()
	q, err := svc.CreateQuotation(context.Background(), staff, &CreateQuotationInput{
		ClientID: clientID,
		Pricing: PricingInput{
			Items:   items([3]string{"Design", "2", "250"}),
			TaxRate: dec("10"),
		},
		Notes: "Phase one",
	})
	require.NoError(t, err)
	return q
}

func TestCreateQuotation(t *testing.T) {
	store := newStore()
	clientID := seedClient(t, store)
	svc := newQuotationService(store)

	q := createQuote(t, svc, clientID)
	assert.Equal(t, "QT-2024-0001", q.QuotationNumber)
	assert.Equal(t, "C1 Ltd", q.ClientName)
	assert.Equal(t, enum.QuotationStatusDraft, q.Status)
	assert.True(t, q.Subtotal.Equal(dec("500")))
	assert.True(t, q.TaxAmount.Equal(dec("50")))
	assert.True(t, q.Total.Equal(dec("550")))
	require.Len(t, q.Items, 1)
	assert.True(t, q.Items[0].Amount.Equal(dec("500")))

	second := createQuote(t, svc, clientID)
	assert.Equal(t, "QT-2024-0002", second.QuotationNumber)
}

func TestCreateQuotationValidation(t *testing.T) {
	store := newStore()
	svc := newQuotationService(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreateQuotationInput
		wantErr error
	}{
		{name: "no client", input: CreateQuotationInput{}, wantErr: apperror.ErrValidation},
		{name: "unknown client", input: CreateQuotationInput{ClientID: "missing"}, wantErr: apperror.ErrNotFound},
		{name: "accepted on create", input: CreateQuotationInput{ClientID: "x", Status: enum.QuotationStatusAccepted}, wantErr: apperror.ErrValidation},
		{
			name: "blank description",
			input: CreateQuotationInput{
				ClientID: "x",
				Pricing:  PricingInput{Items: items([3]string{" ", "1", "1"})},
			},
			wantErr: apperror.ErrValidation,
		},
		{
			name:    "negative tax",
			input:   CreateQuotationInput{ClientID: "x", Pricing: PricingInput{TaxRate: dec("-1")}},
			wantErr: apperror.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuotation(ctx, staff, &tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateQuotationRecomputesTotals(t *testing.T) {
	store := newStore()
	svc := newQuotationService(store)
	q := createQuote(t, svc, seedClient(t, store))

	updated, err := svc.UpdateQuotation(context.Background(), staff, q.ID, &UpdateQuotationInput{
		Pricing: &PricingInput{
			Items:         items([3]string{"Design", "4", "250"}),
			TaxRate:       dec("10"),
			DiscountType:  enum.DiscountTypeFixed,
			DiscountValue: dec("5000"),
		},
	})
	require.NoError(t, err)
	assert.True(t, updated.Subtotal.Equal(dec("1000")))
	assert.True(t, updated.DiscountAmount.Equal(dec("1000")))
	assert.True(t, updated.Total.IsZero())
	assert.Equal(t, "Phase one", updated.Notes)
}

func TestUpdateQuotationStatus(t *testing.T) {
	store := newStore()
	svc := newQuotationService(store)
	ctx := context.Background()
	q := createQuote(t, svc, seedClient(t, store))

	sent, err := svc.UpdateQuotationStatus(ctx, staff, q.ID, enum.QuotationStatusSent)
	require.NoError(t, err)
	assert.Equal(t, enum.QuotationStatusSent, sent.Status)

	_, err = svc.UpdateQuotationStatus(ctx, staff, q.ID, enum.QuotationStatusAccepted)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestConvertToInvoice(t *testing.T) {
	store := newStore()
	clientID := seedClient(t, store)
	svc := newQuotationService(store)
	ctx := context.Background()
	q := createQuote(t, svc, clientID)

	res, err := svc.ConvertToInvoice(ctx, staff, q.ID)
	require.NoError(t, err)
	require.True(t, res.Outcome.Complete())

	inv := res.Invoice
	assert.Equal(t, q.ID, inv.QuotationID)
	assert.Equal(t, clientID, inv.ClientID)
	assert.Equal(t, "INV-2024-0001", inv.InvoiceNumber)
	assert.True(t, inv.Total.Equal(dec("550")))
	assert.True(t, inv.TaxRate.Equal(dec("10")))
	assert.Equal(t, enum.PaymentStatusUnpaid, inv.PaymentStatus)
	assert.Equal(t, inv.Date.AddDate(0, 0, 30), inv.DueDate)
	assert.Equal(t, "Phase one", inv.Notes)

	stored, err := svc.GetQuotation(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuotationStatusAccepted, stored.Status)
	assert.Equal(t, inv.ID, stored.InvoiceID)

	_, err = svc.ConvertToInvoice(ctx, staff, q.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	_, err = svc.UpdateQuotation(ctx, staff, q.ID, &UpdateQuotationInput{})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	_, err = svc.UpdateQuotationStatus(ctx, staff, q.ID, enum.QuotationStatusDraft)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestConvertToInvoiceReportsPartialFailure(t *testing.T) {
	store := newStore()
	clientID := seedClient(t, store)
	ctx := context.Background()

	q := createQuote(t, newQuotationService(store), clientID)
	svc := NewQuotationService(failingUpdates[entity.Quotation]{store.Quotations}, store.Clients, store.Invoices, nil, BillingOptions{})

	res, err := svc.ConvertToInvoice(ctx, staff, q.ID)
	require.NoError(t, err)
	assert.True(t, res.Outcome.Partial())
	assert.NotEmpty(t, res.Outcome.SourceUpdated.Error)
	assert.Equal(t, enum.QuotationStatusDraft, res.Quotation.Status)

	invoices, err := store.Invoices.List(ctx)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestNextNumberPreview(t *testing.T) {
	store := newStore()
	svc := newQuotationService(store)
	ctx := context.Background()
	createQuote(t, svc, seedClient(t, store))

	n, err := svc.NextNumber(ctx, DocumentKindQuotation)
	require.NoError(t, err)
	assert.Equal(t, "QT-2024-0002", n)

	n, err = svc.NextNumber(ctx, DocumentKindInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-0001", n)

	_, err = svc.NextNumber(ctx, "receipt")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCalculateTotals(t *testing.T) {
	p, err := CalculateTotals(PricingInput{
		Items:         items([3]string{"A", "1", "100"}, [3]string{"B", "3", "50"}),
		TaxRate:       dec("16"),
		DiscountType:  enum.DiscountTypePercentage,
		DiscountValue: dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, p.Subtotal.Equal(dec("250")))
	assert.True(t, p.DiscountAmount.Equal(dec("25")))
	assert.True(t, p.TaxAmount.Equal(dec("36")))
	assert.True(t, p.Total.Equal(dec("261")))
}
