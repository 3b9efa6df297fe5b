package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

type idempotencyKey struct {
	key     string
	actorID string
}

// IdempotencyRepository stores idempotency keys in a map.
type IdempotencyRepository struct {
	mu   sync.Mutex
	keys map[idempotencyKey]entity.IdempotencyKey
}

// NewIdempotencyRepository creates an empty idempotency key store.
func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{keys: make(map[idempotencyKey]entity.IdempotencyKey)}
}

func (r *IdempotencyRepository) GetByKey(_ context.Context, key, actorID string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ikey, ok := r.keys[idempotencyKey{key: key, actorID: actorID}]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *IdempotencyRepository) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := idempotencyKey{key: ikey.Key, actorID: ikey.ActorID}
	if existing, exists := r.keys[k]; exists && !existing.IsExpired() {
		return apperror.NewDuplicateError("Idempotency key", ikey.Key)
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = time.Now()
	}
	r.keys[k] = *ikey
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range r.keys {
		if v.IsExpired() {
			delete(r.keys, k)
		}
	}
	return nil
}
