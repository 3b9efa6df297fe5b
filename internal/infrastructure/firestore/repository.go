// Package firestore stores documents in Cloud Firestore and streams
// collection snapshots through realtime listeners.
package firestore

import (
	"context"
	"errors"
	"time"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

type documentRepository[T any, PT entity.Record[T]] struct {
	client     *gfs.Client
	collection domainRepo.Collection
	now        func() time.Time
}

// NewDocumentRepository creates a Firestore-backed repository for one
// collection.
func NewDocumentRepository[T any, PT entity.Record[T]](client *gfs.Client, collection domainRepo.Collection) domainRepo.DocumentRepository[T] {
	return &documentRepository[T, PT]{client: client, collection: collection, now: time.Now}
}

func (r *documentRepository[T, PT]) ref() *gfs.CollectionRef {
	return r.client.Collection(string(r.collection))
}

func (r *documentRepository[T, PT]) fail(op string, err error) error {
	return apperror.NewPersistenceError(op+" "+string(r.collection), err)
}

// Subscribe attaches a realtime listener to the collection. The listener
// delivers the current documents first and then every later change.
func (r *documentRepository[T, PT]) Subscribe(ctx context.Context, onData func([]T), onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	it := r.ref().OrderBy("created_at", gfs.Asc).Snapshots(ctx)

	first, err := it.Next()
	if err != nil {
		it.Stop()
		cancel()
		return nil, r.fail("subscribe", err)
	}
	records, err := r.decodeAll(first.Documents)
	if err != nil {
		it.Stop()
		cancel()
		return nil, err
	}
	onData(records)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if isClosed(err) || ctx.Err() != nil {
					return
				}
				if onError != nil {
					onError(r.fail("subscribe", err))
				}
				return
			}
			records, err := r.decodeAll(snap.Documents)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onData(records)
		}
	}()

	return cancel, nil
}

func (r *documentRepository[T, PT]) Create(ctx context.Context, record *T) (string, error) {
	rec := PT(record)
	doc := r.ref().NewDoc()
	if rec.GetID() != "" {
		doc = r.ref().Doc(rec.GetID())
	}
	rec.SetID(doc.ID)
	rec.Stamp(r.now())

	data, err := toDocument(record)
	if err != nil {
		return "", r.fail("create", err)
	}
	if _, err := doc.Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", apperror.NewDuplicateError(string(r.collection), doc.ID)
		}
		return "", r.fail("create", err)
	}
	return doc.ID, nil
}

// Update reads, merges and writes the document in one transaction.
func (r *documentRepository[T, PT]) Update(ctx context.Context, id string, fields map[string]any) error {
	doc := r.ref().Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gfs.Transaction) error {
		snap, err := tx.Get(doc)
		if err != nil {
			return err
		}

		var record T
		if err := fromDocument(id, snap.Data(), &record); err != nil {
			return err
		}
		if err := entity.ApplyFields(&record, fields); err != nil {
			return apperror.NewBadRequestError("Invalid update: " + err.Error())
		}
		PT(&record).SetID(id)
		PT(&record).Stamp(r.now())

		data, err := toDocument(&record)
		if err != nil {
			return err
		}
		return tx.Set(doc, data)
	})

	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return apperror.NewNotFoundError(string(r.collection) + "/" + id)
	case apperror.IsAppError(err):
		return err
	default:
		return r.fail("update", err)
	}
}

func (r *documentRepository[T, PT]) Remove(ctx context.Context, id string) error {
	if _, err := r.ref().Doc(id).Delete(ctx, gfs.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return apperror.NewNotFoundError(string(r.collection) + "/" + id)
		}
		return r.fail("remove", err)
	}
	return nil
}

func (r *documentRepository[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	snap, err := r.ref().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("get", err)
	}

	var record T
	if err := fromDocument(snap.Ref.ID, snap.Data(), &record); err != nil {
		return nil, r.fail("get", err)
	}
	return &record, nil
}

func (r *documentRepository[T, PT]) List(ctx context.Context) ([]T, error) {
	it := r.ref().OrderBy("created_at", gfs.Asc).Documents(ctx)
	defer it.Stop()

	var records []T
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, r.fail("list", err)
		}
		var record T
		if err := fromDocument(snap.Ref.ID, snap.Data(), &record); err != nil {
			return nil, r.fail("list", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *documentRepository[T, PT]) decodeAll(docs *gfs.DocumentIterator) ([]T, error) {
	snaps, err := docs.GetAll()
	if err != nil {
		return nil, r.fail("subscribe", err)
	}
	records := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		var record T
		if err := fromDocument(snap.Ref.ID, snap.Data(), &record); err != nil {
			return nil, r.fail("subscribe", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func isClosed(err error) bool {
	return errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled
}
