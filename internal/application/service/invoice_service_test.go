package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/payment"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

func newInvoiceService(store *repository.Store) *InvoiceService {
	return NewInvoiceService(store.Invoices, store.Clients, nil, BillingOptions{}).WithClock(clockAt(fixedNow))
}

func createInvoice(t *testing.T, svc *InvoiceService, clientID, rate string) *entity.Invoice {
	t.Helper()
	inv, err := svc.CreateInvoice(context.Background(), staff, &CreateInvoiceInput{
		ClientID: clientID,
		Pricing:  PricingInput{Items: items([3]string{"Retainer", "1", rate})},
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoice(t *testing.T) {
	store := newStore()
	clientID := seedClient(t, store)
	svc := newInvoiceService(store)

	inv := createInvoice(t, svc, clientID, "1000")
	assert.Equal(t, "INV-2024-0001", inv.InvoiceNumber)
	assert.Equal(t, enum.PaymentStatusUnpaid, inv.PaymentStatus)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), inv.Date)
	assert.Equal(t, time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC), inv.DueDate)
	assert.True(t, inv.Balance().Equal(dec("1000")))

	due := fixedNow.AddDate(0, 0, -1)
	_, err := svc.CreateInvoice(context.Background(), staff, &CreateInvoiceInput{ClientID: clientID, DueDate: &due})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRecordPayment(t *testing.T) {
	store := newStore()
	svc := newInvoiceService(store)
	ctx := context.Background()
	inv := createInvoice(t, svc, seedClient(t, store), "1000")

	_, err := svc.RecordPayment(ctx, staff, inv.ID, payment.PaymentInput{Amount: dec("400"), Method: "cash"})
	require.ErrorIs(t, err, apperror.ErrForbidden)

	partial, err := svc.RecordPayment(ctx, admin, inv.ID, payment.PaymentInput{Amount: dec("400"), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, partial.PaymentStatus)
	assert.Nil(t, partial.PaymentDate)
	assert.True(t, partial.Balance().Equal(dec("600")))

	paid, err := svc.RecordPayment(ctx, admin, inv.ID, payment.PaymentInput{Amount: dec("700"), Method: "bank transfer"})
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *paid.PaymentDate)
	assert.True(t, paid.TotalPaid.Equal(dec("1100")))

	stored, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.PaymentHistory, 2)
	assert.Equal(t, admin.ID, stored.PaymentHistory[1].RecordedBy)
	require.Len(t, stored.PaymentStatusHistory, 2)
	assert.Equal(t, enum.PaymentStatusUnpaid, stored.PaymentStatusHistory[0].PreviousStatus)
	assert.Equal(t, enum.PaymentStatusPaid, stored.PaymentStatusHistory[1].NewStatus)
}

func TestChangePaymentStatus(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		steps   []enum.PaymentStatus
		wantErr error
	}{
		{name: "unpaid to overdue", actor: staff, steps: []enum.PaymentStatus{enum.PaymentStatusOverdue}},
		{name: "overdue to paid", actor: staff, steps: []enum.PaymentStatus{enum.PaymentStatusOverdue, enum.PaymentStatusPaid}},
		{
			name:    "paid is terminal for staff",
			actor:   staff,
			steps:   []enum.PaymentStatus{enum.PaymentStatusPaid, enum.PaymentStatusUnpaid},
			wantErr: apperror.ErrInvalidTransition,
		},
		{name: "administrator reverts paid", actor: admin, steps: []enum.PaymentStatus{enum.PaymentStatusPaid, enum.PaymentStatusUnpaid}},
		{
			name:    "unknown status",
			actor:   admin,
			steps:   []enum.PaymentStatus{enum.PaymentStatus(42)},
			wantErr: apperror.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			svc := newInvoiceService(store)
			ctx := context.Background()
			inv := createInvoice(t, svc, seedClient(t, store), "250")

			var err error
			var last *entity.Invoice
			for _, status := range tt.steps {
				last, err = svc.ChangePaymentStatus(ctx, tt.actor, inv.ID, status, "manual")
				if err != nil {
					break
				}
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.steps[len(tt.steps)-1], last.PaymentStatus)
			assert.Len(t, last.PaymentStatusHistory, len(tt.steps))
		})
	}
}

func TestChangePaymentStatusAfterPayments(t *testing.T) {
	store := newStore()
	svc := newInvoiceService(store)
	ctx := context.Background()
	inv := createInvoice(t, svc, seedClient(t, store), "1000")

	_, err := svc.RecordPayment(ctx, admin, inv.ID, payment.PaymentInput{Amount: dec("100"), Method: "cash"})
	require.NoError(t, err)

	_, err = svc.ChangePaymentStatus(ctx, staff, inv.ID, enum.PaymentStatusPaid, "")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	forced, err := svc.ChangePaymentStatus(ctx, admin, inv.ID, enum.PaymentStatusPaid, "written off")
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, forced.PaymentStatus)

	rederived, err := svc.RecordPayment(ctx, admin, inv.ID, payment.PaymentInput{Amount: dec("100"), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, rederived.PaymentStatus)
}

func TestUpdateInvoicePricingFrozenAfterPayment(t *testing.T) {
	store := newStore()
	svc := newInvoiceService(store)
	ctx := context.Background()
	inv := createInvoice(t, svc, seedClient(t, store), "1000")

	repriced, err := svc.UpdateInvoice(ctx, staff, inv.ID, &UpdateInvoiceInput{
		Pricing: &PricingInput{Items: items([3]string{"Retainer", "2", "500"}), TaxRate: dec("16")},
	})
	require.NoError(t, err)
	assert.True(t, repriced.Total.Equal(dec("1160")))

	_, err = svc.RecordPayment(ctx, admin, inv.ID, payment.PaymentInput{Amount: dec("10"), Method: "cash"})
	require.NoError(t, err)

	_, err = svc.UpdateInvoice(ctx, staff, inv.ID, &UpdateInvoiceInput{
		Pricing: &PricingInput{Items: items([3]string{"Retainer", "1", "1"})},
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	notes := "Net 30"
	updated, err := svc.UpdateInvoice(ctx, staff, inv.ID, &UpdateInvoiceInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "Net 30", updated.Notes)
}

func TestMarkOverdue(t *testing.T) {
	store := newStore()
	clientID := seedClient(t, store)
	ctx := context.Background()

	issued := NewInvoiceService(store.Invoices, store.Clients, nil, BillingOptions{DueDays: 10}).
		WithClock(clockAt(fixedNow.AddDate(0, 0, -20)))
	late := createInvoice(t, issued, clientID, "100")
	paid := createInvoice(t, issued, clientID, "100")
	svc := newInvoiceService(store)
	current := createInvoice(t, svc, clientID, "100")

	_, err := svc.RecordPayment(ctx, admin, paid.ID, payment.PaymentInput{Amount: dec("100"), Method: "cash"})
	require.NoError(t, err)

	n, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.GetInvoice(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusOverdue, got.PaymentStatus)
	assert.Equal(t, payment.SystemActor.ID, got.PaymentStatusHistory[0].ChangedBy)

	got, err = svc.GetInvoice(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusUnpaid, got.PaymentStatus)

	n, err = svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkOverdueRereadsInvoice(t *testing.T) {
	store := newStore()
	clientID := seedClient(t, store)
	ctx := context.Background()

	issued := NewInvoiceService(store.Invoices, store.Clients, nil, BillingOptions{DueDays: 10}).
		WithClock(clockAt(fixedNow.AddDate(0, 0, -20)))
	late := createInvoice(t, issued, clientID, "100")

	snapshot, err := store.Invoices.List(ctx)
	require.NoError(t, err)

	svc := newInvoiceService(store)
	_, err = svc.RecordPayment(ctx, admin, late.ID, payment.PaymentInput{Amount: dec("40"), Method: "cash"})
	require.NoError(t, err)

	sweeper := NewInvoiceService(staleList[entity.Invoice]{store.Invoices, snapshot}, store.Clients, nil, BillingOptions{}).
		WithClock(clockAt(fixedNow))
	n, err := sweeper.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := svc.GetInvoice(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, got.PaymentStatus)
	assert.Len(t, got.PaymentHistory, 1)
}

func TestListInvoicesFilters(t *testing.T) {
	store := newStore()
	clientID := seedClient(t, store)
	svc := newInvoiceService(store)
	ctx := context.Background()

	first := createInvoice(t, svc, clientID, "100")
	createInvoice(t, svc, clientID, "200")
	_, err := svc.ChangePaymentStatus(ctx, staff, first.ID, enum.PaymentStatusOverdue, "")
	require.NoError(t, err)

	overdue := enum.PaymentStatusOverdue
	page, err := svc.ListInvoices(ctx, &ListInvoicesInput{PaymentStatus: &overdue})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	all, err := svc.FilterInvoices(ctx, &ListInvoicesInput{Search: "inv-2024"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "INV-2024-0002", all[0].InvoiceNumber)
}

func TestDeleteInvoiceRequiresAdministrator(t *testing.T) {
	store := newStore()
	svc := newInvoiceService(store)
	ctx := context.Background()
	inv := createInvoice(t, svc, seedClient(t, store), "100")

	require.ErrorIs(t, svc.DeleteInvoice(ctx, staff, inv.ID), apperror.ErrForbidden)
	require.NoError(t, svc.DeleteInvoice(ctx, admin, inv.ID))
	assert.ErrorIs(t, svc.DeleteInvoice(ctx, admin, inv.ID), apperror.ErrNotFound)
}
