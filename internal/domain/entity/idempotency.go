package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey remembers the response to a keyed request so a retried
// conversion or payment replays the first result instead of running twice.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_actor_key;size:255;not null"`
	ActorID      string    `gorm:"uniqueIndex:idx_idempotency_actor_key;size:64;not null"`
	Endpoint     string    `gorm:"size:255;not null"` // e.g. "POST /api/v1/invoices/:id/payments"
	RequestHash  string    `gorm:"size:64"`           // blake2b-256 of method, path and body
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
