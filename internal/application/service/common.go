package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/payment"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/events"
)

// Actor is the authenticated user a service call is made for.
type Actor = payment.Actor

// publish sends an event and only logs when the bus is unavailable; the
// record change it describes has already been stored.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	err := p.Publish(ctx, e)
	metrics.IncEventPublished(e.Type, err)
	if err != nil {
		log.Printf("Warning: failed to publish %s for %s/%s: %v", e.Type, e.Collection, e.DocumentID, err)
	}
}

// requirePrivileged rejects non-administrators.
func requirePrivileged(actor Actor, action string) error {
	if !actor.Privileged {
		return apperror.NewPermissionError("Only administrators can " + action)
	}
	return nil
}

// matchesSearch reports whether any of fields contains search, ignoring case.
func matchesSearch(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// newestFirst returns records, which repositories list oldest first, in
// reverse order.
func newestFirst[T any](records []T) []T {
	out := make([]T, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}

// LineItemInput is one row of a quotation or invoice as submitted.
type LineItemInput struct {
	ID          string
	ServiceID   string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Unit        string
}

func toLineItems(inputs []LineItemInput) ([]entity.LineItem, []apperror.FieldError) {
	var errs []apperror.FieldError
	items := make([]entity.LineItem, 0, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in.Description) == "" {
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "Description is required",
			})
		}
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, entity.LineItem{
			ID:          id,
			ServiceID:   in.ServiceID,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			Unit:        in.Unit,
		})
	}
	return items, errs
}

// clock is embedded by services that stamp dates.
type clock struct {
	now func() time.Time
}

func (c *clock) timeNow() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
