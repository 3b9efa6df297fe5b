package repository

import (
	"context"
	"strings"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

// Collection names a stored document collection.
type Collection string

const (
	CollectionLeads      Collection = "leads"
	CollectionClients    Collection = "clients"
	CollectionQuotations Collection = "quotations"
	CollectionInvoices   Collection = "invoices"
	CollectionServices   Collection = "services"
)

// Collections lists every collection the application stores.
func Collections() []Collection {
	return []Collection{
		CollectionLeads,
		CollectionClients,
		CollectionQuotations,
		CollectionInvoices,
		CollectionServices,
	}
}

// IsValid reports whether c is a known collection.
func (c Collection) IsValid() bool {
	for _, known := range Collections() {
		if c == known {
			return true
		}
	}
	return false
}

// DocumentRepository is the storage contract shared by every collection.
// All failures are reported with the persistence error kind.
type DocumentRepository[T any] interface {
	// Subscribe calls onData with the full collection now and again after
	// every change, until the returned unsubscribe func is called or ctx
	// ends. Errors after the initial read go to onError.
	Subscribe(ctx context.Context, onData func([]T), onError func(error)) (func(), error)
	// Create stores a new record and returns its ID.
	Create(ctx context.Context, record *T) (string, error)
	// Update overlays fields, keyed by JSON field name, onto the record.
	Update(ctx context.Context, id string, fields map[string]any) error
	Remove(ctx context.Context, id string) error
	// Get returns nil, nil when the record does not exist.
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context) ([]T, error)
}

type (
	LeadRepository      = DocumentRepository[entity.Lead]
	ClientRepository    = DocumentRepository[entity.Client]
	QuotationRepository = DocumentRepository[entity.Quotation]
	InvoiceRepository   = DocumentRepository[entity.Invoice]
	CatalogRepository   = DocumentRepository[entity.CatalogItem]
)

// Store groups the repositories of every collection.
type Store struct {
	Leads       LeadRepository
	Clients     ClientRepository
	Quotations  QuotationRepository
	Invoices    InvoiceRepository
	Services    CatalogRepository
	Idempotency IdempotencyRepository
	Close       func() error
}

// ParsePath splits a document path such as "invoices/abc123" into its
// collection and ID.
func ParsePath(path string) (Collection, string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		return "", "", apperror.NewBadRequestError("Document path must look like collection/id")
	}
	c := Collection(parts[0])
	if !c.IsValid() {
		return "", "", apperror.NewBadRequestError("Unknown collection: " + parts[0])
	}
	return c, parts[1], nil
}
