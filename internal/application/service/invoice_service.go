package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/billing"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/payment"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/events"
	"github.com/sangkips/bizdesk-api/pkg/pagination"
)

// InvoiceService handles invoice-related operations
type InvoiceService struct {
	clock
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	publisher   events.Publisher
	opts        BillingOptions
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	publisher events.Publisher,
	opts BillingOptions,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		publisher:   publisher,
		opts:        opts.withDefaults(),
	}
}

// WithClock replaces the clock used for dates, numbers and the audit trail.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// CreateInvoiceInput represents the input for creating an invoice
type CreateInvoiceInput struct {
	ClientID string
	Date     time.Time
	DueDate  *time.Time
	Pricing  PricingInput
	Notes    string
}

// CreateInvoice numbers, prices and stores a new unpaid invoice
func (s *InvoiceService) CreateInvoice(ctx context.Context, actor Actor, input *CreateInvoiceInput) (*entity.Invoice, error) {
	var errs []apperror.FieldError
	if strings.TrimSpace(input.ClientID) == "" {
		errs = append(errs, apperror.FieldError{Field: "client_id", Message: "Client is required"})
	}
	pricing, pricingErrs := buildPricing(input.Pricing)
	errs = append(errs, pricingErrs...)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	client, err := s.clientRepo.Get(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	now := s.timeNow()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	date = billing.DateOf(date)
	due := billing.DueDate(date, s.opts.DueDays)
	if input.DueDate != nil {
		due = billing.DateOf(*input.DueDate)
		if due.Before(date) {
			return nil, apperror.NewFieldError("due_date", "Due date cannot be before the invoice date")
		}
	}

	src := numberSource(s.invoiceRepo.List, func(i entity.Invoice) string { return i.InvoiceNumber })
	invoice := &entity.Invoice{
		InvoiceNumber: billing.GenerateNumber(ctx, src, s.opts.InvoicePrefix, now),
		ClientID:      client.ID,
		ClientName:    client.CompanyName,
		Date:          date,
		DueDate:       due,
		Pricing:       pricing,
		Notes:         input.Notes,
		PaymentStatus: enum.PaymentStatusUnpaid,
		TotalPaid:     decimal.Zero,
		CreatedBy:     actor.ID,
	}

	id, err := s.invoiceRepo.Create(ctx, invoice)
	if err != nil {
		return nil, err
	}
	invoice.ID = id

	metrics.IncDocumentCreated(string(repository.CollectionInvoices))
	publish(ctx, s.publisher, events.New(events.InvoiceCreated, string(repository.CollectionInvoices), id, actor.ID, invoice))
	return invoice, nil
}

// GetInvoice retrieves an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoicesInput represents the input for listing invoices
type ListInvoicesInput struct {
	Pagination    *pagination.PaginationParams
	Search        string
	PaymentStatus *enum.PaymentStatus
	ClientID      string
}

// ListInvoices lists invoices with filtering, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	filtered, err := s.FilterInvoices(ctx, input)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate(filtered, input.Pagination), nil
}

// FilterInvoices returns every invoice matching input, newest first,
// ignoring pagination.
func (s *InvoiceService) FilterInvoices(ctx context.Context, input *ListInvoicesInput) ([]entity.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]entity.Invoice, 0, len(invoices))
	for _, inv := range newestFirst(invoices) {
		if input.PaymentStatus != nil && inv.PaymentStatus != *input.PaymentStatus {
			continue
		}
		if input.ClientID != "" && inv.ClientID != input.ClientID {
			continue
		}
		if !matchesSearch(input.Search, inv.InvoiceNumber, inv.ClientName, inv.Notes) {
			continue
		}
		filtered = append(filtered, inv)
	}
	return filtered, nil
}

// UpdateInvoiceInput represents the input for updating an invoice
type UpdateInvoiceInput struct {
	DueDate *time.Time
	Pricing *PricingInput
	Notes   *string
}

// UpdateInvoice updates the editable fields of an invoice. The priced part
// is frozen once a payment has been recorded.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, actor Actor, id string, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Pricing != nil {
		if len(invoice.PaymentHistory) > 0 {
			return nil, apperror.NewInvalidStateError("Items and totals cannot change once payments are recorded")
		}
		pricing, errs := buildPricing(*input.Pricing)
		if len(errs) > 0 {
			return nil, apperror.NewValidationError(errs)
		}
		for k, v := range pricingFields(pricing) {
			fields[k] = v
		}
	}
	if input.DueDate != nil {
		due := billing.DateOf(*input.DueDate)
		if due.Before(billing.DateOf(invoice.Date)) {
			return nil, apperror.NewFieldError("due_date", "Due date cannot be before the invoice date")
		}
		fields["due_date"] = due
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}

	if len(fields) == 0 {
		return invoice, nil
	}
	if err := s.invoiceRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.New(events.InvoiceUpdated, string(repository.CollectionInvoices), id, actor.ID, fields))
	return s.GetInvoice(ctx, id)
}

// ChangePaymentStatus sets the payment status by hand, subject to the
// transition table for non-administrators.
func (s *InvoiceService) ChangePaymentStatus(ctx context.Context, actor Actor, id string, status enum.PaymentStatus, notes string) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := payment.ApplyStatusChange(*invoice, status, actor, notes, s.timeNow())
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, id, statusFields(updated)); err != nil {
		return nil, err
	}

	metrics.IncStatusChange(status.String())
	publish(ctx, s.publisher, events.New(events.InvoiceStatusChanged, string(repository.CollectionInvoices), id, actor.ID,
		map[string]string{"from": invoice.PaymentStatus.String(), "to": status.String()}))
	return &updated, nil
}

// RecordPayment appends a payment and lets the payment total decide the
// status.
func (s *InvoiceService) RecordPayment(ctx context.Context, actor Actor, id string, input payment.PaymentInput) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := payment.RecordPayment(*invoice, input, actor, s.timeNow())
	if err != nil {
		return nil, err
	}

	fields := statusFields(updated)
	fields["payment_history"] = updated.PaymentHistory
	fields["total_paid"] = updated.TotalPaid
	if err := s.invoiceRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	metrics.IncPaymentRecorded()
	if updated.PaymentStatus != invoice.PaymentStatus {
		metrics.IncStatusChange(updated.PaymentStatus.String())
	}
	publish(ctx, s.publisher, events.New(events.InvoicePaymentRecorded, string(repository.CollectionInvoices), id, actor.ID,
		updated.PaymentHistory[len(updated.PaymentHistory)-1]))
	return &updated, nil
}

// MarkOverdue moves every unpaid invoice past its due date to Overdue and
// returns how many were moved. Invoices that fail to save are logged and
// skipped. Each candidate is read again before it is changed so a payment
// recorded since the listing is not overwritten; a payment landing between
// that read and the write can still be lost, like the numbering race.
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.timeNow()
	marked := 0
	for _, listed := range invoices {
		if !payment.IsPastDue(listed, now) {
			continue
		}
		current, err := s.invoiceRepo.Get(ctx, listed.ID)
		if err != nil {
			log.Printf("Warning: failed to reload invoice %s: %v", listed.InvoiceNumber, err)
			continue
		}
		if current == nil {
			continue
		}
		inv := *current
		updated, ok := payment.MarkOverdue(inv, now)
		if !ok {
			continue
		}
		if err := s.invoiceRepo.Update(ctx, inv.ID, statusFields(updated)); err != nil {
			log.Printf("Warning: failed to mark invoice %s overdue: %v", inv.InvoiceNumber, err)
			continue
		}
		marked++
		publish(ctx, s.publisher, events.New(events.InvoiceStatusChanged, string(repository.CollectionInvoices), inv.ID, payment.SystemActor.ID,
			map[string]string{"from": inv.PaymentStatus.String(), "to": updated.PaymentStatus.String()}))
	}

	metrics.AddOverdueMarked(marked)
	return marked, nil
}

// StartOverdueSweep runs MarkOverdue every interval until ctx is done.
func (s *InvoiceService) StartOverdueSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := s.MarkOverdue(ctx); err != nil {
			log.Printf("Warning: overdue sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("Overdue sweep marked %d invoices", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DeleteInvoice deletes an invoice. Only administrators may delete.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, actor Actor, id string) error {
	if err := requirePrivileged(actor, "delete invoices"); err != nil {
		return err
	}
	if _, err := s.GetInvoice(ctx, id); err != nil {
		return err
	}
	if err := s.invoiceRepo.Remove(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.InvoiceDeleted, string(repository.CollectionInvoices), id, actor.ID, nil))
	return nil
}

func statusFields(inv entity.Invoice) map[string]any {
	return map[string]any{
		"payment_status":         inv.PaymentStatus,
		"payment_status_history": inv.PaymentStatusHistory,
		"payment_date":           inv.PaymentDate,
	}
}
