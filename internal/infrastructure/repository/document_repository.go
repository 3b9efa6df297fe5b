package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/changefeed"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

type documentRepository[T any, PT entity.Record[T]] struct {
	db         *gorm.DB
	feed       *changefeed.Feed
	collection domainRepo.Collection
}

// NewDocumentRepository creates a postgres-backed repository for one
// collection. Writes are announced on feed so Subscribe can refresh.
func NewDocumentRepository[T any, PT entity.Record[T]](db *gorm.DB, feed *changefeed.Feed, collection domainRepo.Collection) domainRepo.DocumentRepository[T] {
	return &documentRepository[T, PT]{db: db, feed: feed, collection: collection}
}

func (r *documentRepository[T, PT]) Subscribe(ctx context.Context, onData func([]T), onError func(error)) (func(), error) {
	return changefeed.Subscribe(ctx, r.feed, string(r.collection), r.List, onData, onError)
}

func (r *documentRepository[T, PT]) Create(ctx context.Context, record *T) (string, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", apperror.NewPersistenceError("create "+string(r.collection), err)
	}
	r.feed.Publish(string(r.collection))
	return PT(record).GetID(), nil
}

// Update reads the row under a lock, overlays fields and saves it back.
func (r *documentRepository[T, PT]) Update(ctx context.Context, id string, fields map[string]any) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record T
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error
		if err != nil {
			return err
		}
		if err := entity.ApplyFields(&record, fields); err != nil {
			return apperror.NewBadRequestError("Invalid update: " + err.Error())
		}
		PT(&record).SetID(id)
		return tx.Save(&record).Error
	})

	switch {
	case err == nil:
		r.feed.Publish(string(r.collection))
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NewNotFoundError(string(r.collection) + "/" + id)
	case apperror.IsAppError(err):
		return err
	default:
		return apperror.NewPersistenceError("update "+string(r.collection), err)
	}
}

func (r *documentRepository[T, PT]) Remove(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return apperror.NewPersistenceError("remove "+string(r.collection), result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError(string(r.collection) + "/" + id)
	}
	r.feed.Publish(string(r.collection))
	return nil
}

func (r *documentRepository[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewPersistenceError("get "+string(r.collection), err)
	}
	return &record, nil
}

func (r *documentRepository[T, PT]) List(ctx context.Context) ([]T, error) {
	var records []T
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, apperror.NewPersistenceError("list "+string(r.collection), err)
	}
	return records, nil
}

// NewStore wires a postgres-backed repository for every collection.
func NewStore(db *gorm.DB, feed *changefeed.Feed) *domainRepo.Store {
	return &domainRepo.Store{
		Leads:       NewDocumentRepository[entity.Lead](db, feed, domainRepo.CollectionLeads),
		Clients:     NewDocumentRepository[entity.Client](db, feed, domainRepo.CollectionClients),
		Quotations:  NewDocumentRepository[entity.Quotation](db, feed, domainRepo.CollectionQuotations),
		Invoices:    NewDocumentRepository[entity.Invoice](db, feed, domainRepo.CollectionInvoices),
		Services:    NewDocumentRepository[entity.CatalogItem](db, feed, domainRepo.CollectionServices),
		Idempotency: NewIdempotencyRepository(db),
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
