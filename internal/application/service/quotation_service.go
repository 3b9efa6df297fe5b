package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/sangkips/bizdesk-api/internal/domain/billing"
	"github.com/sangkips/bizdesk-api/internal/domain/conversion"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/events"
	"github.com/sangkips/bizdesk-api/pkg/pagination"
)

// QuotationService handles quotation-related operations
type QuotationService struct {
	clock
	quotationRepo repository.QuotationRepository
	clientRepo    repository.ClientRepository
	invoiceRepo   repository.InvoiceRepository
	publisher     events.Publisher
	opts          BillingOptions
}

// NewQuotationService creates a new quotation service
func NewQuotationService(
	quotationRepo repository.QuotationRepository,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	publisher events.Publisher,
	opts BillingOptions,
) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		clientRepo:    clientRepo,
		invoiceRepo:   invoiceRepo,
		publisher:     publisher,
		opts:          opts.withDefaults(),
	}
}

// WithClock replaces the clock used for document dates and numbers.
func (s *QuotationService) WithClock(now func() time.Time) *QuotationService {
	s.now = now
	return s
}

// CreateQuotationInput represents the input for creating a quotation
type CreateQuotationInput struct {
	ClientID   string
	Date       time.Time
	ValidUntil *time.Time
	Pricing    PricingInput
	Notes      string
	Status     enum.QuotationStatus
}

// CreateQuotation numbers, prices and stores a new quotation
func (s *QuotationService) CreateQuotation(ctx context.Context, actor Actor, input *CreateQuotationInput) (*entity.Quotation, error) {
	var errs []apperror.FieldError
	if strings.TrimSpace(input.ClientID) == "" {
		errs = append(errs, apperror.FieldError{Field: "client_id", Message: "Client is required"})
	}
	if input.Status == enum.QuotationStatusAccepted {
		errs = append(errs, apperror.FieldError{Field: "status", Message: "A quotation is accepted by converting it to an invoice"})
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

	quotation := &entity.Quotation{
		QuotationNumber: s.nextQuotationNumber(ctx, now),
		ClientID:        client.ID,
		ClientName:      client.CompanyName,
		Date:            billing.DateOf(date),
		ValidUntil:      input.ValidUntil,
		Pricing:         pricing,
		Notes:           input.Notes,
		Status:          input.Status,
		CreatedBy:       actor.ID,
	}

	id, err := s.quotationRepo.Create(ctx, quotation)
	if err != nil {
		return nil, err
	}
	quotation.ID = id

	metrics.IncDocumentCreated(string(repository.CollectionQuotations))
	publish(ctx, s.publisher, events.New(events.QuotationCreated, string(repository.CollectionQuotations), id, actor.ID, quotation))
	return quotation, nil
}

// GetQuotation retrieves a quotation by ID
func (s *QuotationService) GetQuotation(ctx context.Context, id string) (*entity.Quotation, error) {
	quotation, err := s.quotationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, apperror.NewNotFoundError("Quotation")
	}
	return quotation, nil
}

// ListQuotationsInput represents the input for listing quotations
type ListQuotationsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.QuotationStatus
	ClientID   string
}

// ListQuotations lists quotations with filtering, newest first
func (s *QuotationService) ListQuotations(ctx context.Context, input *ListQuotationsInput) (*pagination.PaginatedResult[entity.Quotation], error) {
	quotations, err := s.quotationRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]entity.Quotation, 0, len(quotations))
	for _, q := range newestFirst(quotations) {
		if input.Status != nil && q.Status != *input.Status {
			continue
		}
		if input.ClientID != "" && q.ClientID != input.ClientID {
			continue
		}
		if !matchesSearch(input.Search, q.QuotationNumber, q.ClientName, q.Notes) {
			continue
		}
		filtered = append(filtered, q)
	}
	return pagination.Paginate(filtered, input.Pagination), nil
}

// UpdateQuotationInput represents the input for updating a quotation.
// Pricing, when given, replaces the items, tax and discount as a whole.
type UpdateQuotationInput struct {
	ClientID   *string
	Date       *time.Time
	ValidUntil *time.Time
	Pricing    *PricingInput
	Notes      *string
}

// UpdateQuotation updates an existing quotation. Totals are recomputed
// whenever the priced part changes.
func (s *QuotationService) UpdateQuotation(ctx context.Context, actor Actor, id string, input *UpdateQuotationInput) (*entity.Quotation, error) {
	quotation, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status == enum.QuotationStatusAccepted {
		return nil, apperror.NewInvalidStateError("An accepted quotation can no longer be edited")
	}

	fields := map[string]any{}
	if input.Pricing != nil {
		pricing, errs := buildPricing(*input.Pricing)
		if len(errs) > 0 {
			return nil, apperror.NewValidationError(errs)
		}
		for k, v := range pricingFields(pricing) {
			fields[k] = v
		}
	}
	if input.ClientID != nil && *input.ClientID != quotation.ClientID {
		client, err := s.clientRepo.Get(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperror.NewNotFoundError("Client")
		}
		fields["client_id"] = client.ID
		fields["client_name"] = client.CompanyName
	}
	if input.Date != nil {
		fields["date"] = billing.DateOf(*input.Date)
	}
	if input.ValidUntil != nil {
		fields["valid_until"] = input.ValidUntil
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}

	if len(fields) == 0 {
		return quotation, nil
	}
	if err := s.quotationRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.New(events.QuotationUpdated, string(repository.CollectionQuotations), id, actor.ID, fields))
	return s.GetQuotation(ctx, id)
}

// UpdateQuotationStatus moves a quotation between Draft, Sent and
// Declined. Accepted is only reached by conversion and is never left.
func (s *QuotationService) UpdateQuotationStatus(ctx context.Context, actor Actor, id string, status enum.QuotationStatus) (*entity.Quotation, error) {
	quotation, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status == status {
		return quotation, nil
	}
	if quotation.Status == enum.QuotationStatusAccepted || status == enum.QuotationStatusAccepted {
		return nil, apperror.NewInvalidTransitionError(quotation.Status, status)
	}

	if err := s.quotationRepo.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.New(events.QuotationStatusChanged, string(repository.CollectionQuotations), id, actor.ID,
		map[string]string{"from": quotation.Status.String(), "to": status.String()}))
	quotation.Status = status
	return quotation, nil
}

// DeleteQuotation deletes a quotation. Only administrators may delete.
func (s *QuotationService) DeleteQuotation(ctx context.Context, actor Actor, id string) error {
	if err := requirePrivileged(actor, "delete quotations"); err != nil {
		return err
	}
	if _, err := s.GetQuotation(ctx, id); err != nil {
		return err
	}
	if err := s.quotationRepo.Remove(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.QuotationDeleted, string(repository.CollectionQuotations), id, actor.ID, nil))
	return nil
}

// QuotationConversion is the result of converting a quotation. Invoice is
// set once the invoice was created, even when the quotation itself could
// not be marked accepted.
type QuotationConversion struct {
	Invoice   *entity.Invoice    `json:"invoice,omitempty"`
	Quotation *entity.Quotation  `json:"quotation"`
	Outcome   conversion.Outcome `json:"outcome"`
}

// ConvertToInvoice creates an invoice from a quotation and then marks the
// quotation accepted. An error is returned only when nothing was written.
func (s *QuotationService) ConvertToInvoice(ctx context.Context, actor Actor, id string) (*QuotationConversion, error) {
	quotation, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status == enum.QuotationStatusAccepted || quotation.InvoiceID != "" {
		return nil, apperror.NewInvalidStateError("Quotation has already been converted to an invoice")
	}
	if quotation.Status == enum.QuotationStatusDeclined {
		return nil, apperror.NewInvalidTransitionError(quotation.Status, enum.QuotationStatusAccepted)
	}

	now := s.timeNow()
	result := &QuotationConversion{Quotation: quotation}

	invoice := conversion.QuotationToInvoice(*quotation, s.nextInvoiceNumber(ctx, now), now, s.opts.DueDays)
	invoice.CreatedBy = actor.ID
	invoiceID, err := s.invoiceRepo.Create(ctx, &invoice)
	if err != nil {
		result.Outcome.Created = conversion.Failed(err)
		metrics.ObserveConversion("quotation", false, false)
		return nil, err
	}
	invoice.ID = invoiceID
	result.Invoice = &invoice
	result.Outcome.Created = conversion.Done(invoiceID)
	metrics.IncDocumentCreated(string(repository.CollectionInvoices))
	publish(ctx, s.publisher, events.New(events.InvoiceCreated, string(repository.CollectionInvoices), invoiceID, actor.ID, invoice))

	err = s.quotationRepo.Update(ctx, id, map[string]any{
		"status":     enum.QuotationStatusAccepted,
		"invoice_id": invoiceID,
	})
	if err != nil {
		log.Printf("Warning: invoice %s created but quotation %s not updated: %v", invoiceID, id, err)
		result.Outcome.SourceUpdated = conversion.Failed(err)
	} else {
		accepted := *quotation
		accepted.Status = enum.QuotationStatusAccepted
		accepted.InvoiceID = invoiceID
		result.Quotation = &accepted
		result.Outcome.SourceUpdated = conversion.Done(id)
	}

	metrics.ObserveConversion("quotation", true, err == nil)
	publish(ctx, s.publisher, events.New(events.QuotationConverted, string(repository.CollectionQuotations), id, actor.ID, result.Outcome))
	return result, nil
}

// DocumentKind selects a numbering sequence.
type DocumentKind string

const (
	DocumentKindQuotation DocumentKind = "quotation"
	DocumentKindInvoice   DocumentKind = "invoice"
)

// NextNumber previews the number the next document of kind would get.
// Nothing is reserved.
func (s *QuotationService) NextNumber(ctx context.Context, kind DocumentKind) (string, error) {
	now := s.timeNow()
	switch kind {
	case DocumentKindQuotation:
		return s.nextQuotationNumber(ctx, now), nil
	case DocumentKindInvoice:
		return s.nextInvoiceNumber(ctx, now), nil
	}
	return "", apperror.NewFieldError("type", "Type must be quotation or invoice")
}

func (s *QuotationService) nextQuotationNumber(ctx context.Context, now time.Time) string {
	src := numberSource(s.quotationRepo.List, func(q entity.Quotation) string { return q.QuotationNumber })
	return billing.GenerateNumber(ctx, src, s.opts.QuotationPrefix, now)
}

func (s *QuotationService) nextInvoiceNumber(ctx context.Context, now time.Time) string {
	src := numberSource(s.invoiceRepo.List, func(i entity.Invoice) string { return i.InvoiceNumber })
	return billing.GenerateNumber(ctx, src, s.opts.InvoicePrefix, now)
}
