package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/events"
)

// CatalogService manages the services catalog
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	publisher   events.Publisher
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepository, publisher events.Publisher) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		publisher:   publisher,
	}
}

// CatalogItemInput represents the create/update service input
type CatalogItemInput struct {
	Name        *string
	Description *string
	Rate        *decimal.Decimal
	Unit        *string
	Active      *bool
}

// CreateService adds a service to the catalog
func (s *CatalogService) CreateService(ctx context.Context, actor Actor, input *CatalogItemInput) (*entity.CatalogItem, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}
	if input.Rate != nil && input.Rate.IsNegative() {
		return nil, apperror.NewFieldError("rate", "Rate cannot be negative")
	}

	name := strings.TrimSpace(*input.Name)
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	item := &entity.CatalogItem{Name: name, Active: true}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Rate != nil {
		item.Rate = *input.Rate
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.Active != nil {
		item.Active = *input.Active
	}

	id, err := s.catalogRepo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id

	metrics.IncDocumentCreated(string(repository.CollectionServices))
	publish(ctx, s.publisher, events.New(events.ServiceCreated, string(repository.CollectionServices), id, actor.ID, item))
	return item, nil
}

// GetService retrieves a catalog service by ID
func (s *CatalogService) GetService(ctx context.Context, id string) (*entity.CatalogItem, error) {
	item, err := s.catalogRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	return item, nil
}

// ListServices lists the catalog in insertion order
func (s *CatalogService) ListServices(ctx context.Context, search string, activeOnly bool) ([]entity.CatalogItem, error) {
	items, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entity.CatalogItem, 0, len(items))
	for _, item := range items {
		if activeOnly && !item.Active {
			continue
		}
		if !matchesSearch(search, item.Name, item.Description) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// UpdateService updates a catalog service
func (s *CatalogService) UpdateService(ctx context.Context, actor Actor, id string, input *CatalogItemInput) (*entity.CatalogItem, error) {
	if _, err := s.GetService(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "Name is required")
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Rate != nil {
		if input.Rate.IsNegative() {
			return nil, apperror.NewFieldError("rate", "Rate cannot be negative")
		}
		fields["rate"] = *input.Rate
	}
	if input.Unit != nil {
		fields["unit"] = strings.TrimSpace(*input.Unit)
	}
	if input.Active != nil {
		fields["active"] = *input.Active
	}

	if len(fields) > 0 {
		if err := s.catalogRepo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
		publish(ctx, s.publisher, events.New(events.ServiceUpdated, string(repository.CollectionServices), id, actor.ID, fields))
	}
	return s.GetService(ctx, id)
}

// DeleteService removes a service. Only administrators may delete.
func (s *CatalogService) DeleteService(ctx context.Context, actor Actor, id string) error {
	if err := requirePrivileged(actor, "delete services"); err != nil {
		return err
	}
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	if err := s.catalogRepo.Remove(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.ServiceDeleted, string(repository.CollectionServices), id, actor.ID, nil))
	return nil
}

func (s *CatalogService) ensureNameFree(ctx context.Context, name, excludeID string) error {
	items, err := s.catalogRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID != excludeID && strings.EqualFold(item.Name, name) {
			return apperror.NewDuplicateError("A service with this name", item.Name)
		}
	}
	return nil
}
