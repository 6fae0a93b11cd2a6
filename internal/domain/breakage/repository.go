package breakage

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists breakages. Breakages are append-only.
type Repository interface {
	Create(ctx context.Context, b *Breakage) error
	FindByID(ctx context.Context, id uuid.UUID) (*Breakage, error)
	FindAll(ctx context.Context, filter Filter) ([]Breakage, int64, error)
	AttachPhoto(ctx context.Context, id uuid.UUID, key string) error
}
