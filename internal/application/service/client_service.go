package service

import (
	"context"
	"strings"

	"github.com/sangkips/bizdesk-api/internal/domain/contact"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/events"
	"github.com/sangkips/bizdesk-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo repository.ClientRepository
	publisher  events.Publisher
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, publisher events.Publisher) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		publisher:  publisher,
	}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	CompanyName       string
	ContactPersonName string
	BusinessType      string
	Email             string
	PhoneNumber       string
	Address           string
	Notes             string
	HandledBy         string
	Status            enum.ClientStatus
}

// CreateClient creates a client directly, without a lead
func (s *ClientService) CreateClient(ctx context.Context, actor Actor, input *CreateClientInput) (*entity.Client, error) {
	var errs []apperror.FieldError
	if strings.TrimSpace(input.CompanyName) == "" {
		errs = append(errs, apperror.FieldError{Field: "company_name", Message: "Company name is required"})
	}
	errs = append(errs, contact.ValidateContact(input.Email, input.PhoneNumber)...)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	client := &entity.Client{
		CompanyName:       strings.TrimSpace(input.CompanyName),
		ContactPersonName: strings.TrimSpace(input.ContactPersonName),
		BusinessType:      strings.TrimSpace(input.BusinessType),
		Email:             contact.NormalizeEmail(input.Email),
		PhoneNumber:       strings.TrimSpace(input.PhoneNumber),
		Address:           input.Address,
		Notes:             input.Notes,
		HandledBy:         input.HandledBy,
		Status:            input.Status,
		CreatedBy:         actor.ID,
	}

	id, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		return nil, err
	}
	client.ID = id

	metrics.IncDocumentCreated(string(repository.CollectionClients))
	publish(ctx, s.publisher, events.New(events.ClientCreated, string(repository.CollectionClients), id, actor.ID, client))
	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id string) (*entity.Client, error) {
	client, err := s.clientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClientsInput represents the list clients input
type ListClientsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.ClientStatus
}

// ListClients lists clients, newest first
func (s *ClientService) ListClients(ctx context.Context, input *ListClientsInput) (*pagination.PaginatedResult[entity.Client], error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]entity.Client, 0, len(clients))
	for _, c := range newestFirst(clients) {
		if input.Status != nil && c.Status != *input.Status {
			continue
		}
		if !matchesSearch(input.Search, c.CompanyName, c.ContactPersonName, c.Email, c.PhoneNumber) {
			continue
		}
		filtered = append(filtered, c)
	}
	return pagination.Paginate(filtered, input.Pagination), nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	CompanyName       *string
	ContactPersonName *string
	BusinessType      *string
	Email             *string
	PhoneNumber       *string
	Address           *string
	Notes             *string
	HandledBy         *string
	Status            *enum.ClientStatus
}

// UpdateClient updates a client
func (s *ClientService) UpdateClient(ctx context.Context, actor Actor, id string, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.GetClient(ctx, id)
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
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.HandledBy != nil {
		fields["handled_by"] = *input.HandledBy
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Email != nil || input.PhoneNumber != nil {
		email, phone := client.Email, client.PhoneNumber
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
	}

	if len(fields) == 0 {
		return client, nil
	}
	if err := s.clientRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.New(events.ClientUpdated, string(repository.CollectionClients), id, actor.ID, fields))
	return s.GetClient(ctx, id)
}

// DeleteClient deletes a client. Only administrators may delete.
func (s *ClientService) DeleteClient(ctx context.Context, actor Actor, id string) error {
	if err := requirePrivileged(actor, "delete clients"); err != nil {
		return err
	}
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}
	if err := s.clientRepo.Remove(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.ClientDeleted, string(repository.CollectionClients), id, actor.ID, nil))
	return nil
}
