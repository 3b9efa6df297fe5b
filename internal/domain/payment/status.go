// Package payment governs how an invoice's payment status may change.
//
// There are two ways a status moves. A manual change is checked against a
// fixed adjacency table that administrators may bypass. Recording a payment
// derives the status from the payment history instead. Once an invoice has
// payments, the history is authoritative: only an administrator may set the
// status by hand, and the next recorded payment derives it again.
package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/billing"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

// Actor is whoever asks for a change.
type Actor struct {
	ID         string
	Privileged bool
}

// SystemActor is used for changes made by background jobs.
var SystemActor = Actor{ID: "system"}

var transitions = map[enum.PaymentStatus][]enum.PaymentStatus{
	enum.PaymentStatusUnpaid:        {enum.PaymentStatusPartiallyPaid, enum.PaymentStatusPaid, enum.PaymentStatusOverdue},
	enum.PaymentStatusPartiallyPaid: {enum.PaymentStatusPaid},
	enum.PaymentStatusPaid:          {},
	enum.PaymentStatusOverdue:       {enum.PaymentStatusPartiallyPaid, enum.PaymentStatusPaid},
}

// CanTransition reports whether an actor may move an invoice from one
// status to another. Privileged actors may make any change.
func CanTransition(privileged bool, from, to enum.PaymentStatus) bool {
	if privileged {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTargets lists the statuses a non-privileged actor may pick next.
func AllowedTargets(from enum.PaymentStatus) []enum.PaymentStatus {
	out := make([]enum.PaymentStatus, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// ApplyStatusChange returns a copy of inv moved to status to, with the
// change appended to its status history. Moving to Paid stamps the payment
// date with today's date.
func ApplyStatusChange(inv entity.Invoice, to enum.PaymentStatus, actor Actor, notes string, now time.Time) (entity.Invoice, error) {
	if !to.IsValid() {
		return inv, apperror.NewFieldError("payment_status", "Unknown payment status")
	}
	if len(inv.PaymentHistory) > 0 && !actor.Privileged {
		return inv, apperror.NewInvalidStateError(
			"Payment status is derived from recorded payments and cannot be changed by hand")
	}
	if !CanTransition(actor.Privileged, inv.PaymentStatus, to) {
		return inv, apperror.NewInvalidTransitionError(inv.PaymentStatus, to)
	}

	out := inv.Clone()
	setStatus(&out, to, actor.ID, notes, now)
	return out, nil
}

// PaymentInput describes a payment being recorded.
type PaymentInput struct {
	Amount decimal.Decimal
	Method string
	Notes  string
}

// RecordPayment appends a payment and re-derives the status from the
// total paid. Only privileged actors may record payments.
func RecordPayment(inv entity.Invoice, in PaymentInput, actor Actor, now time.Time) (entity.Invoice, error) {
	if !actor.Privileged {
		return inv, apperror.NewPermissionError("Only administrators can record payments")
	}

	var fieldErrors []apperror.FieldError
	if !in.Amount.IsPositive() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "Amount must be greater than zero"})
	}
	if strings.TrimSpace(in.Method) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "method", Message: "Payment method is required"})
	}
	if len(fieldErrors) > 0 {
		return inv, apperror.NewValidationError(fieldErrors)
	}

	out := inv.Clone()
	out.PaymentHistory = append(out.PaymentHistory, entity.PaymentRecord{
		Date:       now,
		Amount:     in.Amount,
		Method:     strings.TrimSpace(in.Method),
		Notes:      in.Notes,
		RecordedBy: actor.ID,
	})
	out.TotalPaid = TotalPaid(out.PaymentHistory)

	derived := DeriveStatus(out.TotalPaid, out.Total)
	if derived != out.PaymentStatus {
		setStatus(&out, derived, actor.ID, fmt.Sprintf("Payment of %s recorded", in.Amount.StringFixed(2)), now)
	}
	return out, nil
}

// TotalPaid sums a payment history.
func TotalPaid(history []entity.PaymentRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range history {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// DeriveStatus maps the amount paid against the invoice total to a status.
func DeriveStatus(totalPaid, total decimal.Decimal) enum.PaymentStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(total):
		return enum.PaymentStatusPaid
	case totalPaid.IsPositive():
		return enum.PaymentStatusPartiallyPaid
	default:
		return enum.PaymentStatusUnpaid
	}
}

// IsPastDue reports whether an unpaid invoice has passed its due date.
func IsPastDue(inv entity.Invoice, now time.Time) bool {
	if inv.PaymentStatus != enum.PaymentStatusUnpaid || inv.DueDate.IsZero() {
		return false
	}
	return billing.DateOf(inv.DueDate).Before(billing.DateOf(now))
}

// MarkOverdue moves an unpaid, past-due invoice to Overdue on behalf of the
// system. ok is false when the invoice was left as it was.
func MarkOverdue(inv entity.Invoice, now time.Time) (entity.Invoice, bool) {
	if !IsPastDue(inv, now) {
		return inv, false
	}
	updated, err := ApplyStatusChange(inv, enum.PaymentStatusOverdue, SystemActor, "Past due date", now)
	if err != nil {
		return inv, false
	}
	return updated, true
}

func setStatus(inv *entity.Invoice, to enum.PaymentStatus, changedBy, notes string, now time.Time) {
	inv.PaymentStatusHistory = append(inv.PaymentStatusHistory, entity.StatusChange{
		Date:           now,
		PreviousStatus: inv.PaymentStatus,
		NewStatus:      to,
		ChangedBy:      changedBy,
		Notes:          notes,
	})
	from := inv.PaymentStatus
	inv.PaymentStatus = to
	switch {
	case to == enum.PaymentStatusPaid:
		today := billing.DateOf(now)
		inv.PaymentDate = &today
	case from == enum.PaymentStatusPaid:
		inv.PaymentDate = nil
	}
}
