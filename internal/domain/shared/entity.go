package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything in the ledger with its own identity
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity carries the identity and audit timestamps every ledger record has.
// Timestamps are UTC.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch records a modification at the given time
func (e *BaseEntity) Touch(at time.Time) {
	e.UpdatedAt = at.UTC()
}

func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
