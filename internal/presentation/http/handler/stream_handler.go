package handler

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
)

// Subscriber starts a live view of one collection. onData receives the
// whole collection each time it changes.
type Subscriber func(ctx context.Context, onData func(any), onError func(error)) (func(), error)

// SubscriberFor adapts a typed repository to a Subscriber.
func SubscriberFor[T any](repo domainRepo.DocumentRepository[T]) Subscriber {
	return func(ctx context.Context, onData func(any), onError func(error)) (func(), error) {
		return repo.Subscribe(ctx, func(items []T) { onData(items) }, onError)
	}
}

// StreamHandler pushes collection snapshots to the browser as Server-Sent
// Events.
type StreamHandler struct {
	subscribers map[domainRepo.Collection]Subscriber
	keepAlive   time.Duration
}

// NewStreamHandler creates a stream handler over every collection of store.
func NewStreamHandler(store *domainRepo.Store) *StreamHandler {
	return &StreamHandler{
		subscribers: map[domainRepo.Collection]Subscriber{
			domainRepo.CollectionLeads:      SubscriberFor(store.Leads),
			domainRepo.CollectionClients:    SubscriberFor(store.Clients),
			domainRepo.CollectionQuotations: SubscriberFor(store.Quotations),
			domainRepo.CollectionInvoices:   SubscriberFor(store.Invoices),
			domainRepo.CollectionServices:   SubscriberFor(store.Services),
		},
		keepAlive: 25 * time.Second,
	}
}

// Stream sends a "snapshot" event with the full collection on connect and
// after every change, and an "error" event when a refresh fails.
// @Summary Stream Collection
// @Tags stream
// @Security BearerAuth
// @Produce text/event-stream
// @Param collection path string true "leads, clients, quotations, invoices or services"
// @Router /stream/{collection} [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	subscribe, ok := h.subscribers[domainRepo.Collection(c.Param("collection"))]
	if !ok {
		response.NotFound(c, "Unknown collection")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Only the latest snapshot matters to a slow reader.
	snapshots := make(chan any, 1)
	errs := make(chan error, 1)
	onData := func(items any) {
		select {
		case <-snapshots:
		default:
		}
		snapshots <- items
	}
	onError := func(err error) {
		select {
		case errs <- err:
		default:
		}
	}

	unsubscribe, err := subscribe(ctx, onData, onError)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case items := <-snapshots:
			c.SSEvent("snapshot", items)
		case err := <-errs:
			c.SSEvent("error", gin.H{"message": err.Error()})
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
		}
		return true
	})
}
