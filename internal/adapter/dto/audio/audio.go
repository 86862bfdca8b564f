package audio

import (
	"time"

	"github.com/google/uuid"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
)

// AudioResponse is the API shape of an uploaded audio file. The object key is
// internal and never exposed.
type AudioResponse struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Duration    *float64  `json:"duration,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromEntity converts an audio entity to its response shape
func FromEntity(a *entities.Audio) *AudioResponse {
	return &AudioResponse{
		ID:          a.ID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		Duration:    a.Duration,
		CreatedAt:   a.CreatedAt,
	}
}

// FromEntities converts a slice of audio entities
func FromEntities(list []*entities.Audio) []*AudioResponse {
	out := make([]*AudioResponse, 0, len(list))
	for _, a := range list {
		out = append(out, FromEntity(a))
	}
	return out
}
