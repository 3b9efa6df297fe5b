package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/changefeed"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/memory"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/events"
)

var (
	admin = Actor{ID: "admin-1", Privileged: true}
	staff = Actor{ID: "staff-1"}

	fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore() *repository.Store {
	return memory.NewStore(changefeed.New())
}

// failingUpdates wraps a repository so that every Update fails.
type failingUpdates[T any] struct {
	repository.DocumentRepository[T]
}

func (f failingUpdates[T]) Update(context.Context, string, map[string]any) error {
	return apperror.NewPersistenceError("update", errors.New("connection reset"))
}

// failingCreates wraps a repository so that every Create fails.
type failingCreates[T any] struct {
	repository.DocumentRepository[T]
}

func (f failingCreates[T]) Create(context.Context, *T) (string, error) {
	return "", apperror.NewPersistenceError("create", errors.New("quota exceeded"))
}

// staleList wraps a repository so that List returns a fixed snapshot.
type staleList[T any] struct {
	repository.DocumentRepository[T]
	snapshot []T
}

func (s staleList[T]) List(context.Context) ([]T, error) {
	return s.snapshot, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func items(rows ...[3]string) []LineItemInput {
	out := make([]LineItemInput, len(rows))
	for i, r := range rows {
		out[i] = LineItemInput{Description: r[0], Quantity: dec(r[1]), Rate: dec(r[2])}
	}
	return out
}
