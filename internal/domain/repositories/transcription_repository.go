package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
)

// TranscriptionRepository defines transcription job persistence operations.
// Lookup methods return (nil, nil) when no row exists.
//
// Status mutations are single-statement field-set updates guarded by the
// current status in the WHERE clause, so concurrent writers cannot interleave
// a read-modify-write on the same row.
type TranscriptionRepository interface {
	Create(ctx context.Context, job *entities.TranscriptionJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TranscriptionJob, error)
	GetByAudioID(ctx context.Context, audioID uuid.UUID) (*entities.TranscriptionJob, error)

	// ClaimForProcessing transitions pending|failed -> in_progress atomically.
	// Returns false when the job is missing or not in a claimable state.
	ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	MarkCompleted(ctx context.Context, id uuid.UUID, content entities.SpeakerSegments, wordCount int, confidence float64, raw map[string]interface{}) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	UpdateContent(ctx context.Context, id uuid.UUID, content entities.SpeakerSegments, wordCount int) error

	// ResetForRetry returns a job that is not in_progress to pending,
	// clearing content, results, error and timestamps.
	ResetForRetry(ctx context.Context, id uuid.UUID) error
	DeleteByAudioID(ctx context.Context, audioID uuid.UUID) error

	// FailStale marks in_progress jobs started before the cutoff as failed.
	// Returns the number of jobs swept.
	FailStale(ctx context.Context, cutoff time.Time, errMsg string) (int64, error)
}
