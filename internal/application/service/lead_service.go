package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/sangkips/bizdesk-api/internal/domain/contact"
	"github.com/sangkips/bizdesk-api/internal/domain/conversion"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/events"
	"github.com/sangkips/bizdesk-api/pkg/pagination"
)

// LeadService handles lead-related operations
type LeadService struct {
	clock
	leadRepo   repository.LeadRepository
	clientRepo repository.ClientRepository
	publisher  events.Publisher
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadRepo repository.LeadRepository,
	clientRepo repository.ClientRepository,
	publisher events.Publisher,
) *LeadService {
	return &LeadService{
		leadRepo:   leadRepo,
		clientRepo: clientRepo,
		publisher:  publisher,
	}
}

// CreateLeadInput represents the create lead input
type CreateLeadInput struct {
	CompanyName       string
	ContactPersonName string
	BusinessType      string
	Email             string
	PhoneNumber       string
	Address           string
	Progress          enum.LeadProgress
	Notes             string
	HandledBy         string
}

// CreateLead validates the contact details, refuses a lead whose email or
// phone is already on file and stores it.
func (s *LeadService) CreateLead(ctx context.Context, actor Actor, input *CreateLeadInput) (*entity.Lead, error) {
	var errs []apperror.FieldError
	if strings.TrimSpace(input.CompanyName) == "" {
		errs = append(errs, apperror.FieldError{Field: "company_name", Message: "Company name is required"})
	}
	errs = append(errs, contact.ValidateContact(input.Email, input.PhoneNumber)...)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	if err := s.ensureUnique(ctx, input.Email, input.PhoneNumber, ""); err != nil {
		return nil, err
	}

	lead := &entity.Lead{
		CompanyName:       strings.TrimSpace(input.CompanyName),
		ContactPersonName: strings.TrimSpace(input.ContactPersonName),
		BusinessType:      strings.TrimSpace(input.BusinessType),
		Email:             contact.NormalizeEmail(input.Email),
		PhoneNumber:       strings.TrimSpace(input.PhoneNumber),
		Address:           input.Address,
		Progress:          input.Progress,
		Notes:             input.Notes,
		HandledBy:         input.HandledBy,
		CreatedBy:         actor.ID,
	}

	id, err := s.leadRepo.Create(ctx, lead)
	if err != nil {
		return nil, err
	}
	lead.ID = id

	metrics.IncDocumentCreated(string(repository.CollectionLeads))
	publish(ctx, s.publisher, events.New(events.LeadCreated, string(repository.CollectionLeads), id, actor.ID, lead))
	return lead, nil
}

// GetLead retrieves a lead by ID
func (s *LeadService) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := s.leadRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, apperror.NewNotFoundError("Lead")
	}
	return lead, nil
}

// ListLeadsInput represents the list leads input
type ListLeadsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Progress   *enum.LeadProgress
	HandledBy  string
}

// ListLeads lists leads, newest first
func (s *LeadService) ListLeads(ctx context.Context, input *ListLeadsInput) (*pagination.PaginatedResult[entity.Lead], error) {
	leads, err := s.leadRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]entity.Lead, 0, len(leads))
	for _, l := range newestFirst(leads) {
		if input.Progress != nil && l.Progress != *input.Progress {
			continue
		}
		if input.HandledBy != "" && !strings.EqualFold(l.HandledBy, input.HandledBy) {
			continue
		}
		if !matchesSearch(input.Search, l.CompanyName, l.ContactPersonName, l.Email, l.PhoneNumber, l.ContactInfo) {
			continue
		}
		filtered = append(filtered, l)
	}

	return pagination.Paginate(filtered, input.Pagination), nil
}

// UpdateLeadInput represents the update lead input
type UpdateLeadInput struct {
	CompanyName       *string
	ContactPersonName *string
	BusinessType      *string
	Email             *string
	PhoneNumber       *string
	Address           *string
	Progress          *enum.LeadProgress
	Notes             *string
	HandledBy         *string
}

// UpdateLead applies the given fields. Changed contact details are checked
// against every other lead.
func (s *LeadService) UpdateLead(ctx context.Context, actor Actor, id string, input *UpdateLeadInput) (*entity.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.CompanyName != nil {
		if strings.TrimSpace(*input.CompanyName) == "" {
			return nil, apperror.NewFieldError("company_name", "Company name is required")
		}
		fields["company_name"] = strings.TrimSpace(*input.CompanyName)
	}
	if input.ContactPersonName != nil {
		fields["contact_person_name"] = strings.TrimSpace(*input.ContactPersonName)
	}
	if input.BusinessType != nil {
		fields["business_type"] = strings.TrimSpace(*input.BusinessType)
	}
	if input.Address != nil {
		fields["address"] = *input.Address
	}
	if input.Progress != nil {
		fields["progress"] = *input.Progress
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.HandledBy != nil {
		fields["handled_by"] = *input.HandledBy
	}

	if input.Email != nil || input.PhoneNumber != nil {
		email, phone := lead.Email, lead.PhoneNumber
		if input.Email != nil {
			email = contact.NormalizeEmail(*input.Email)
			fields["email"] = email
		}
		if input.PhoneNumber != nil {
			phone = strings.TrimSpace(*input.PhoneNumber)
			fields["phone_number"] = phone
		}
		if errs := contact.ValidateContact(email, phone); len(errs) > 0 {
			return nil, apperror.NewValidationError(errs)
		}
		if err := s.ensureUnique(ctx, email, phone, id); err != nil {
			return nil, err
		}
	}

	if len(fields) == 0 {
		return lead, nil
	}
	if err := s.leadRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, events.New(events.LeadUpdated, string(repository.CollectionLeads), id, actor.ID, fields))
	return updated, nil
}

// DeleteLead deletes a lead. Only administrators may delete.
func (s *LeadService) DeleteLead(ctx context.Context, actor Actor, id string) error {
	if err := requirePrivileged(actor, "delete leads"); err != nil {
		return err
	}
	if _, err := s.GetLead(ctx, id); err != nil {
		return err
	}
	if err := s.leadRepo.Remove(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.LeadDeleted, string(repository.CollectionLeads), id, actor.ID, nil))
	return nil
}

// CheckDuplicate returns the first lead sharing email or phone, or nil.
func (s *LeadService) CheckDuplicate(ctx context.Context, email, phone, excludeID string) (*entity.Lead, error) {
	leads, err := s.leadRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return contact.FindDuplicate(leads, email, phone, excludeID), nil
}

func (s *LeadService) ensureUnique(ctx context.Context, email, phone, excludeID string) error {
	dup, err := s.CheckDuplicate(ctx, email, phone, excludeID)
	if err != nil {
		return err
	}
	if dup != nil {
		return apperror.NewDuplicateError("A lead with this contact information", dup.DisplayName())
	}
	return nil
}

// StandardizeResult reports a contact-info migration run.
type StandardizeResult struct {
	Scanned int      `json:"scanned"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}

// StandardizeAll moves legacy contact info of every lead into the email
// and phone fields. Only administrators may run it.
func (s *LeadService) StandardizeAll(ctx context.Context, actor Actor) (*StandardizeResult, error) {
	if err := requirePrivileged(actor, "standardize contact information"); err != nil {
		return nil, err
	}

	leads, err := s.leadRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &StandardizeResult{Scanned: len(leads)}
	for _, l := range leads {
		if !contact.NeedsStandardizing(l) {
			continue
		}
		std := contact.StandardizeContactInfo(l)
		err := s.leadRepo.Update(ctx, l.ID, map[string]any{
			"email":        std.Email,
			"phone_number": std.PhoneNumber,
			"contact_info": std.ContactInfo,
		})
		if err != nil {
			log.Printf("Warning: failed to standardize lead %s: %v", l.ID, err)
			result.Failed = append(result.Failed, l.ID)
			continue
		}
		result.Updated++
	}

	log.Printf("Standardized contact info: %d of %d leads updated", result.Updated, result.Scanned)
	return result, nil
}

// LeadConversion is the result of converting a lead. Client is set once
// the client was created, even when the lead itself could not be updated.
type LeadConversion struct {
	Client  *entity.Client     `json:"client,omitempty"`
	Lead    *entity.Lead       `json:"lead"`
	Outcome conversion.Outcome `json:"outcome"`
}

// ConvertToClient creates a client from a lead and then marks the lead
// confirmed. The two writes are not atomic: if the second fails the client
// still exists and the returned Outcome says so. An error is returned only
// when nothing was written.
func (s *LeadService) ConvertToClient(ctx context.Context, actor Actor, id string) (*LeadConversion, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Progress == enum.LeadProgressCanceled {
		return nil, apperror.NewInvalidTransitionError(lead.Progress, enum.LeadProgressConfirm)
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		if c.LeadID == id {
			return nil, apperror.NewDuplicateError("A client for this lead", c.CompanyName)
		}
	}

	now := s.timeNow()
	result := &LeadConversion{Lead: lead}

	client := conversion.LeadToClient(*lead)
	client.CreatedBy = actor.ID
	clientID, err := s.clientRepo.Create(ctx, &client)
	if err != nil {
		result.Outcome.Created = conversion.Failed(err)
		metrics.ObserveConversion("lead", false, false)
		return nil, err
	}
	client.ID = clientID
	result.Client = &client
	result.Outcome.Created = conversion.Done(clientID)
	metrics.IncDocumentCreated(string(repository.CollectionClients))
	publish(ctx, s.publisher, events.New(events.ClientCreated, string(repository.CollectionClients), clientID, actor.ID, client))

	confirmed := conversion.ConfirmedLead(*lead, clientID, now)
	err = s.leadRepo.Update(ctx, id, map[string]any{
		"progress": confirmed.Progress,
		"notes":    confirmed.Notes,
	})
	if err != nil {
		log.Printf("Warning: client %s created but lead %s not updated: %v", clientID, id, err)
		result.Outcome.SourceUpdated = conversion.Failed(err)
	} else {
		result.Lead = &confirmed
		result.Outcome.SourceUpdated = conversion.Done(id)
	}

	metrics.ObserveConversion("lead", true, err == nil)
	publish(ctx, s.publisher, events.New(events.LeadConverted, string(repository.CollectionLeads), id, actor.ID, result.Outcome))
	return result, nil
}

// WithClock replaces the clock used to date conversion notes.
func (s *LeadService) WithClock(now func() time.Time) *LeadService {
	s.now = now
	return s
}
