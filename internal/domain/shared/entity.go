package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now is the clock used for entity timestamps. Timestamps are kept in UTC.
var Now = func() time.Time { return time.Now().UTC() }

// BaseEntity carries the identity and timestamps every stored record has
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns a BaseEntity with a fresh id stamped with Now
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch marks the entity as modified
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}
