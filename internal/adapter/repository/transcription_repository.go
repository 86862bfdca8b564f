package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
)

// TranscriptionRepository handles transcription job data operations
type TranscriptionRepository struct {
	db *gorm.DB
}

// NewTranscriptionRepository creates a new transcription repository
func NewTranscriptionRepository(db *gorm.DB) *TranscriptionRepository {
	return &TranscriptionRepository{db: db}
}

// Create creates a new transcription job
func (r *TranscriptionRepository) Create(ctx context.Context, job *entities.TranscriptionJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a transcription job by ID
func (r *TranscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TranscriptionJob, error) {
	var job entities.TranscriptionJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetByAudioID retrieves the transcription job for an audio file
func (r *TranscriptionRepository) GetByAudioID(ctx context.Context, audioID uuid.UUID) (*entities.TranscriptionJob, error) {
	var job entities.TranscriptionJob
	if err := r.db.WithContext(ctx).Where("audio_id = ?", audioID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ClaimForProcessing transitions pending|failed -> in_progress in a single
// guarded UPDATE. RowsAffected tells whether this caller won the claim.
func (r *TranscriptionRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ? AND status IN ?", id, []entities.TranscriptionStatus{
			entities.TranscriptionStatusPending,
			entities.TranscriptionStatusFailed,
		}).
		Updates(map[string]interface{}{
			"status":     entities.TranscriptionStatusInProgress,
			"started_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCompleted stores results and diagnostics, and stamps completed_at
func (r *TranscriptionRepository) MarkCompleted(ctx context.Context, id uuid.UUID, content entities.SpeakerSegments, wordCount int, confidence float64, raw map[string]interface{}) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ? AND status = ?", id, entities.TranscriptionStatusInProgress).
		Updates(map[string]interface{}{
			"status":           entities.TranscriptionStatusCompleted,
			"content":          content,
			"word_count":       wordCount,
			"confidence_score": confidence,
			"raw_data":         datatypes.NewJSONType(raw),
			"error_message":    nil,
			"completed_at":     now,
			"updated_at":       now,
		}).Error
}

// MarkFailed records the failure message; completed_at stays unset
func (r *TranscriptionRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        entities.TranscriptionStatusFailed,
			"error_message": errMsg,
			"updated_at":    now,
		}).Error
}

// UpdateContent replaces the content of a completed job
func (r *TranscriptionRepository) UpdateContent(ctx context.Context, id uuid.UUID, content entities.SpeakerSegments, wordCount int) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ? AND status = ?", id, entities.TranscriptionStatusCompleted).
		Updates(map[string]interface{}{
			"content":    content,
			"word_count": wordCount,
			"updated_at": now,
		}).Error
}

// ResetForRetry returns a job to pending, clearing prior results. Guarded so
// a job currently being processed cannot be reset out from under its worker.
func (r *TranscriptionRepository) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ? AND status <> ?", id, entities.TranscriptionStatusInProgress).
		Updates(map[string]interface{}{
			"status":           entities.TranscriptionStatusPending,
			"content":          nil,
			"word_count":       nil,
			"confidence_score": nil,
			"raw_data":         nil,
			"error_message":    nil,
			"started_at":       nil,
			"completed_at":     nil,
			"updated_at":       now,
		}).Error
}

// DeleteByAudioID removes the job attached to an audio file
func (r *TranscriptionRepository) DeleteByAudioID(ctx context.Context, audioID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("audio_id = ?", audioID).
		Delete(&entities.TranscriptionJob{}).Error
}

// FailStale marks in_progress jobs started before the cutoff as failed.
// Recovers jobs orphaned by a process crash mid-inference.
func (r *TranscriptionRepository) FailStale(ctx context.Context, cutoff time.Time, errMsg string) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("status = ? AND started_at < ?", entities.TranscriptionStatusInProgress, cutoff).
		Updates(map[string]interface{}{
			"status":        entities.TranscriptionStatusFailed,
			"error_message": errMsg,
			"updated_at":    now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
