package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	gfs "cloud.google.com/go/firestore"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/sangkips/bizdesk-api/internal/config"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
)

const datastoreScope = "https://www.googleapis.com/auth/datastore"

// NewClient connects to Firestore. Without a credentials file the client
// falls back to application default credentials.
func NewClient(ctx context.Context, cfg *config.FirestoreConfig) (*gfs.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read firestore credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, datastoreScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse firestore credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	client, err := gfs.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}

	log.Printf("Connected to Firestore project %s", cfg.ProjectID)
	return client, nil
}

// NewStore wires a Firestore-backed repository for every collection.
// Idempotency keys are not a document collection and live in idem.
func NewStore(client *gfs.Client, idem domainRepo.IdempotencyRepository) *domainRepo.Store {
	return &domainRepo.Store{
		Leads:       NewDocumentRepository[entity.Lead](client, domainRepo.CollectionLeads),
		Clients:     NewDocumentRepository[entity.Client](client, domainRepo.CollectionClients),
		Quotations:  NewDocumentRepository[entity.Quotation](client, domainRepo.CollectionQuotations),
		Invoices:    NewDocumentRepository[entity.Invoice](client, domainRepo.CollectionInvoices),
		Services:    NewDocumentRepository[entity.CatalogItem](client, domainRepo.CollectionServices),
		Idempotency: idem,
		Close:       client.Close,
	}
}
