// Package store opens the document store named by the configuration.
package store

import (
	"context"
	"fmt"
	"log"

	"github.com/sangkips/bizdesk-api/internal/config"
	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/changefeed"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/database"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/firestore"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/memory"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/repository"
)

const (
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

// Open connects the configured backend and returns its repositories.
func Open(ctx context.Context, cfg *config.Config) (*domainRepo.Store, error) {
	switch cfg.Store.Driver {
	case DriverPostgres, "":
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
		return repository.NewStore(db, changefeed.New()), nil

	case DriverFirestore:
		client, err := firestore.NewClient(ctx, &cfg.Firestore)
		if err != nil {
			return nil, err
		}
		// Idempotency keys are short-lived; they are kept per process.
		return firestore.NewStore(client, memory.NewIdempotencyRepository()), nil

	case DriverMemory:
		log.Println("Warning: using in-memory store, data is lost on restart")
		return memory.NewStore(changefeed.New()), nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}
