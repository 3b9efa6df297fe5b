// Package memory holds map-backed repositories for tests and local runs.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/changefeed"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

// DocumentRepository keeps records in insertion order. Records are copied
// in and out through their JSON encoding so callers never share slices with
// the stored value.
type DocumentRepository[T any, PT entity.Record[T]] struct {
	mu         sync.RWMutex
	ids        []string
	records    map[string][]byte
	feed       *changefeed.Feed
	collection domainRepo.Collection
	now        func() time.Time
}

// NewDocumentRepository creates an empty repository for collection.
func NewDocumentRepository[T any, PT entity.Record[T]](feed *changefeed.Feed, collection domainRepo.Collection) *DocumentRepository[T, PT] {
	if feed == nil {
		feed = changefeed.New()
	}
	return &DocumentRepository[T, PT]{
		records:    make(map[string][]byte),
		feed:       feed,
		collection: collection,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for CreatedAt and UpdatedAt.
func (r *DocumentRepository[T, PT]) WithClock(now func() time.Time) *DocumentRepository[T, PT] {
	r.now = now
	return r
}

func (r *DocumentRepository[T, PT]) Subscribe(ctx context.Context, onData func([]T), onError func(error)) (func(), error) {
	return changefeed.Subscribe(ctx, r.feed, string(r.collection), r.List, onData, onError)
}

func (r *DocumentRepository[T, PT]) Create(ctx context.Context, record *T) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperror.NewPersistenceError("create "+string(r.collection), err)
	}

	rec := PT(record)
	if rec.GetID() == "" {
		rec.SetID(uuid.NewString())
	}
	rec.Stamp(r.now())

	data, err := json.Marshal(record)
	if err != nil {
		return "", apperror.NewPersistenceError("create "+string(r.collection), err)
	}

	r.mu.Lock()
	id := rec.GetID()
	if _, exists := r.records[id]; exists {
		r.mu.Unlock()
		return "", apperror.NewDuplicateError(string(r.collection), id)
	}
	r.records[id] = data
	r.ids = append(r.ids, id)
	r.mu.Unlock()

	r.feed.Publish(string(r.collection))
	return id, nil
}

func (r *DocumentRepository[T, PT]) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return apperror.NewPersistenceError("update "+string(r.collection), err)
	}

	r.mu.Lock()
	data, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return apperror.NewNotFoundError(string(r.collection) + "/" + id)
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		r.mu.Unlock()
		return apperror.NewPersistenceError("update "+string(r.collection), err)
	}
	if err := entity.ApplyFields(&record, fields); err != nil {
		r.mu.Unlock()
		return apperror.NewBadRequestError("Invalid update: " + err.Error())
	}
	PT(&record).SetID(id)
	PT(&record).Stamp(r.now())

	data, err := json.Marshal(&record)
	if err != nil {
		r.mu.Unlock()
		return apperror.NewPersistenceError("update "+string(r.collection), err)
	}
	r.records[id] = data
	r.mu.Unlock()

	r.feed.Publish(string(r.collection))
	return nil
}

func (r *DocumentRepository[T, PT]) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return apperror.NewPersistenceError("remove "+string(r.collection), err)
	}

	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return apperror.NewNotFoundError(string(r.collection) + "/" + id)
	}
	delete(r.records, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.feed.Publish(string(r.collection))
	return nil
}

func (r *DocumentRepository[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.NewPersistenceError("get "+string(r.collection), err)
	}

	r.mu.RLock()
	data, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperror.NewPersistenceError("get "+string(r.collection), err)
	}
	return &record, nil
}

func (r *DocumentRepository[T, PT]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.NewPersistenceError("list "+string(r.collection), err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]T, 0, len(r.ids))
	for _, id := range r.ids {
		var record T
		if err := json.Unmarshal(r.records[id], &record); err != nil {
			return nil, apperror.NewPersistenceError("list "+string(r.collection), err)
		}
		records = append(records, record)
	}
	return records, nil
}

// NewStore wires an in-memory repository for every collection.
func NewStore(feed *changefeed.Feed) *domainRepo.Store {
	return &domainRepo.Store{
		Leads:       NewDocumentRepository[entity.Lead](feed, domainRepo.CollectionLeads),
		Clients:     NewDocumentRepository[entity.Client](feed, domainRepo.CollectionClients),
		Quotations:  NewDocumentRepository[entity.Quotation](feed, domainRepo.CollectionQuotations),
		Invoices:    NewDocumentRepository[entity.Invoice](feed, domainRepo.CollectionInvoices),
		Services:    NewDocumentRepository[entity.CatalogItem](feed, domainRepo.CollectionServices),
		Idempotency: NewIdempotencyRepository(),
		Close:       func() error { return nil },
	}
}
