package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every stored document.
type Base struct {
	ID        string         `gorm:"type:varchar(64);primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates an ID when the caller did not assign one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b *Base) GetID() string { return b.ID }

func (b *Base) SetID(id string) { b.ID = id }

// Stamp sets CreatedAt on first write and UpdatedAt on every write. The
// postgres backend leaves this to gorm.
func (b *Base) Stamp(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Record is the constraint document repositories are generic over: a
// pointer to an entity struct that embeds Base.
type Record[T any] interface {
	*T
	GetID() string
	SetID(id string)
	Stamp(now time.Time)
}

// immutableFields are never overwritten by a partial update.
var immutableFields = []string{"id", "created_at", "updated_at"}

// ApplyFields overlays a partial record onto rec. Keys are JSON field names
// and values go through the same encoding the entity uses on the wire, so
// enums may be given either as names or as numbers.
func ApplyFields(rec any, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	patch := make(map[string]any, len(fields))
	for k, v := range fields {
		patch[k] = v
	}
	for _, k := range immutableFields {
		delete(patch, k)
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, rec)
}
