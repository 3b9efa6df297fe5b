// Package conversion turns leads into clients and quotations into invoices.
//
// A conversion is two writes: create the new record, then mark the source
// as converted. The store offers no transaction spanning both, so the
// result of a conversion is an Outcome that reports each step separately.
package conversion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/bizdesk-api/internal/domain/billing"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
)

// LeadToClient builds the client record for a converted lead.
func LeadToClient(lead entity.Lead) entity.Client {
	return entity.Client{
		CompanyName:       lead.CompanyName,
		ContactPersonName: lead.ContactPersonName,
		BusinessType:      lead.BusinessType,
		Email:             lead.Email,
		PhoneNumber:       lead.PhoneNumber,
		Address:           lead.Address,
		Notes:             lead.Notes,
		HandledBy:         lead.HandledBy,
		Status:            enum.ClientStatusActive,
		LeadID:            lead.ID,
	}
}

// ConversionNote is appended to a lead's notes once it became a client.
func ConversionNote(clientID string, now time.Time) string {
	return fmt.Sprintf("Converted to client %s on %s", clientID, now.Format("2006-01-02"))
}

// ConfirmedLead returns lead marked as confirmed, with the conversion
// recorded in its notes.
func ConfirmedLead(lead entity.Lead, clientID string, now time.Time) entity.Lead {
	out := lead
	out.Progress = enum.LeadProgressConfirm
	out.Notes = appendNote(lead.Notes, ConversionNote(clientID, now))
	return out
}

// QuotationToInvoice builds the invoice for an accepted quotation. The
// invoice is dated today and falls due dueDays later.
func QuotationToInvoice(q entity.Quotation, number string, today time.Time, dueDays int) entity.Invoice {
	if dueDays <= 0 {
		dueDays = billing.DefaultDueDays
	}
	date := billing.DateOf(today)
	return entity.Invoice{
		InvoiceNumber: number,
		ClientID:      q.ClientID,
		ClientName:    q.ClientName,
		QuotationID:   q.ID,
		Date:          date,
		DueDate:       billing.DueDate(date, dueDays),
		Pricing:       q.Pricing.Clone(),
		Notes:         q.Notes,
		PaymentStatus: enum.PaymentStatusUnpaid,
	}
}

func appendNote(notes, note string) string {
	notes = strings.TrimRight(notes, "\n ")
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}

// Step is the result of one write of a conversion.
type Step struct {
	Applied bool   `json:"applied"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`

	err error
}

// Done records a successful step.
func Done(id string) Step {
	return Step{Applied: true, ID: id}
}

// Failed records a step that did not happen.
func Failed(err error) Step {
	return Step{Error: err.Error(), err: err}
}

// Err returns the error the step failed with, if any.
func (s Step) Err() error { return s.err }

// Outcome reports both writes of a conversion. When Created is applied but
// SourceUpdated is not, the new record exists while the source still looks
// unconverted; callers must surface that rather than retry silently.
type Outcome struct {
	Created       Step `json:"created"`
	SourceUpdated Step `json:"source_updated"`
}

// Complete reports whether both steps were applied.
func (o Outcome) Complete() bool {
	return o.Created.Applied && o.SourceUpdated.Applied
}

// Partial reports whether the new record exists but the source was not
// updated.
func (o Outcome) Partial() bool {
	return o.Created.Applied && !o.SourceUpdated.Applied
}

// Err joins the errors of the failed steps.
func (o Outcome) Err() error {
	var errs []error
	if err := o.Created.Err(); err != nil {
		errs = append(errs, fmt.Errorf("create: %w", err))
	}
	if err := o.SourceUpdated.Err(); err != nil {
		errs = append(errs, fmt.Errorf("update source: %w", err))
	}
	return errors.Join(errs...)
}
