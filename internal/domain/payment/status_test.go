package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

var (
	admin = Actor{ID: "admin-1", Privileged: true}
	staff = Actor{ID: "staff-1"}
	now   = time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)
	today = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
)

func invoice(total int64) entity.Invoice {
	return entity.Invoice{
		Base:          entity.Base{ID: "I1"},
		InvoiceNumber: "INV-2024-0001",
		Pricing:       entity.Pricing{Total: decimal.NewFromInt(total)},
		DueDate:       time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCanTransitionTable(t *testing.T) {
	allowed := map[[2]enum.PaymentStatus]bool{
		{enum.PaymentStatusUnpaid, enum.PaymentStatusPartiallyPaid}:  true,
		{enum.PaymentStatusUnpaid, enum.PaymentStatusPaid}:           true,
		{enum.PaymentStatusUnpaid, enum.PaymentStatusOverdue}:        true,
		{enum.PaymentStatusPartiallyPaid, enum.PaymentStatusPaid}:    true,
		{enum.PaymentStatusOverdue, enum.PaymentStatusPartiallyPaid}: true,
		{enum.PaymentStatusOverdue, enum.PaymentStatusPaid}:          true,
	}

	for _, from := range enum.PaymentStatuses() {
		for _, to := range enum.PaymentStatuses() {
			want := allowed[[2]enum.PaymentStatus{from, to}]
			assert.Equal(t, want, CanTransition(false, from, to), "%s -> %s", from, to)
			assert.True(t, CanTransition(true, from, to), "privileged %s -> %s", from, to)
		}
	}
}

func TestApplyStatusChangeRecordsHistory(t *testing.T) {
	inv := invoice(1000)

	out, err := ApplyStatusChange(inv, enum.PaymentStatusOverdue, staff, "chased by phone", now)
	require.NoError(t, err)

	assert.Equal(t, enum.PaymentStatusOverdue, out.PaymentStatus)
	require.Len(t, out.PaymentStatusHistory, 1)
	change := out.PaymentStatusHistory[0]
	assert.Equal(t, enum.PaymentStatusUnpaid, change.PreviousStatus)
	assert.Equal(t, enum.PaymentStatusOverdue, change.NewStatus)
	assert.Equal(t, "staff-1", change.ChangedBy)
	assert.Equal(t, "chased by phone", change.Notes)
	assert.Equal(t, now, change.Date)
	assert.Nil(t, out.PaymentDate)

	assert.Equal(t, enum.PaymentStatusUnpaid, inv.PaymentStatus, "input must not change")
	assert.Empty(t, inv.PaymentStatusHistory)
}

func TestApplyStatusChangeToPaidSetsPaymentDate(t *testing.T) {
	out, err := ApplyStatusChange(invoice(1000), enum.PaymentStatusPaid, staff, "", now)
	require.NoError(t, err)
	require.NotNil(t, out.PaymentDate)
	assert.Equal(t, today, *out.PaymentDate)
}

func TestLeavingPaidClearsPaymentDate(t *testing.T) {
	paid, err := ApplyStatusChange(invoice(1000), enum.PaymentStatusPaid, admin, "", now)
	require.NoError(t, err)
	require.NotNil(t, paid.PaymentDate)

	reverted, err := ApplyStatusChange(paid, enum.PaymentStatusUnpaid, admin, "bounced cheque", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, reverted.PaymentDate)
	assert.NotNil(t, paid.PaymentDate, "the original invoice is left untouched")
	assert.Len(t, reverted.PaymentStatusHistory, 2)
}

func TestApplyStatusChangeRejectsInvalidTransition(t *testing.T) {
	paid := invoice(1000)
	paid.PaymentStatus = enum.PaymentStatusPaid

	_, err := ApplyStatusChange(paid, enum.PaymentStatusUnpaid, staff, "", now)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.NotErrorIs(t, err, apperror.ErrForbidden)

	out, err := ApplyStatusChange(paid, enum.PaymentStatusUnpaid, admin, "reopened", now)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusUnpaid, out.PaymentStatus)
}

func TestManualChangeBlockedOnceHistoryExists(t *testing.T) {
	inv, err := RecordPayment(invoice(1000), PaymentInput{Amount: decimal.NewFromInt(400), Method: "bank"}, admin, now)
	require.NoError(t, err)
	require.Equal(t, enum.PaymentStatusPartiallyPaid, inv.PaymentStatus)

	_, err = ApplyStatusChange(inv, enum.PaymentStatusPaid, staff, "", now)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	_, err = ApplyStatusChange(inv, enum.PaymentStatusPaid, admin, "write-off", now)
	assert.NoError(t, err)
}

func TestRecordPaymentDerivesStatus(t *testing.T) {
	inv := invoice(1000)

	first, err := RecordPayment(inv, PaymentInput{Amount: decimal.NewFromInt(400), Method: "M-Pesa"}, admin, now)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, first.PaymentStatus)
	assert.True(t, first.TotalPaid.Equal(decimal.NewFromInt(400)))
	assert.Nil(t, first.PaymentDate)

	later := now.Add(48 * time.Hour)
	second, err := RecordPayment(first, PaymentInput{Amount: decimal.NewFromInt(700), Method: "M-Pesa"}, admin, later)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, second.PaymentStatus)
	assert.True(t, second.TotalPaid.Equal(decimal.NewFromInt(1100)))
	require.NotNil(t, second.PaymentDate)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), *second.PaymentDate)

	require.Len(t, second.PaymentHistory, 2)
	assert.Equal(t, "admin-1", second.PaymentHistory[1].RecordedBy)
	require.Len(t, second.PaymentStatusHistory, 2)
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, second.PaymentStatusHistory[1].PreviousStatus)
	assert.Equal(t, enum.PaymentStatusPaid, second.PaymentStatusHistory[1].NewStatus)
}

func TestRecordPaymentRequiresPrivilege(t *testing.T) {
	_, err := RecordPayment(invoice(1000), PaymentInput{Amount: decimal.NewFromInt(10), Method: "cash"}, staff, now)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.NotErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestRecordPaymentValidatesInput(t *testing.T) {
	_, err := RecordPayment(invoice(1000), PaymentInput{Amount: decimal.Zero}, admin, now)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Len(t, apperror.GetAppError(err).Errors, 2)
}

func TestDeriveStatus(t *testing.T) {
	total := decimal.NewFromInt(1000)
	assert.Equal(t, enum.PaymentStatusUnpaid, DeriveStatus(decimal.Zero, total))
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, DeriveStatus(decimal.NewFromInt(1), total))
	assert.Equal(t, enum.PaymentStatusPaid, DeriveStatus(total, total))
	assert.Equal(t, enum.PaymentStatusPaid, DeriveStatus(decimal.NewFromInt(1500), total))
}

func TestMarkOverdue(t *testing.T) {
	inv := invoice(500)

	_, changed := MarkOverdue(inv, now)
	assert.False(t, changed, "not yet due")

	afterDue := time.Date(2024, 7, 11, 8, 0, 0, 0, time.UTC)
	out, changed := MarkOverdue(inv, afterDue)
	require.True(t, changed)
	assert.Equal(t, enum.PaymentStatusOverdue, out.PaymentStatus)
	assert.Equal(t, "system", out.PaymentStatusHistory[0].ChangedBy)

	_, changed = MarkOverdue(out, afterDue)
	assert.False(t, changed, "already overdue")
}

func TestAllowedTargetsIsACopy(t *testing.T) {
	targets := AllowedTargets(enum.PaymentStatusUnpaid)
	require.Len(t, targets, 3)
	targets[0] = enum.PaymentStatusPaid
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, AllowedTargets(enum.PaymentStatusUnpaid)[0])
}
