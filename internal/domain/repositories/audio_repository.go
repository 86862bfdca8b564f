package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
)

// AudioRepository defines audio record persistence operations.
// Lookup methods return (nil, nil) when no row exists; callers decide whether
// that is a 404 or something else.
type AudioRepository interface {
	Create(ctx context.Context, audio *entities.Audio) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Audio, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Audio, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
