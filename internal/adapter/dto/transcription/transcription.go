package transcription

import (
	"time"

	"github.com/google/uuid"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
)

// CreateRequest starts a transcription job for an audio file
type CreateRequest struct {
	Language string `json:"language" validate:"omitempty,max=10"`
	Retry    bool   `json:"retry"`
}

// SegmentRequest is one speaker segment in a manual content edit
type SegmentRequest struct {
	Speaker   string  `json:"speaker" validate:"required"`
	StartTime float64 `json:"start_time" validate:"gte=0"`
	EndTime   float64 `json:"end_time" validate:"gtefield=StartTime"`
	Text      string  `json:"text"`
}

// UpdateContentRequest replaces the content of a completed job
type UpdateContentRequest struct {
	Content []SegmentRequest `json:"content" validate:"required,dive"`
}

// ToSegments converts the request content to the entity shape
func (r *UpdateContentRequest) ToSegments() entities.SpeakerSegments {
	segments := make(entities.SpeakerSegments, 0, len(r.Content))
	for _, s := range r.Content {
		segments = append(segments, entities.SpeakerSegment{
			Speaker:   s.Speaker,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Text:      s.Text,
		})
	}
	return segments
}

// JobResponse is the API shape of a transcription job. Result fields are
// present only for completed jobs; the error message only for failed ones.
type JobResponse struct {
	ID        uuid.UUID                    `json:"id"`
	AudioID   uuid.UUID                    `json:"audio_id"`
	Language  string                       `json:"language"`
	Status    entities.TranscriptionStatus `json:"status"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`

	Content         entities.SpeakerSegments `json:"content,omitempty"`
	WordCount       *int                     `json:"word_count,omitempty"`
	ConfidenceScore *float64                 `json:"confidence_score,omitempty"`
	CompletedAt     *time.Time               `json:"completed_at,omitempty"`

	ErrorMessage *string `json:"error_message,omitempty"`
}

// FromEntity converts a job entity to its response shape, redacting fields
// that do not belong to the current status
func FromEntity(job *entities.TranscriptionJob) *JobResponse {
	resp := &JobResponse{
		ID:        job.ID,
		AudioID:   job.AudioID,
		Language:  job.Language,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}

	switch job.Status {
	case entities.TranscriptionStatusCompleted:
		resp.Content = job.Content
		resp.WordCount = job.WordCount
		resp.ConfidenceScore = job.ConfidenceScore
		resp.CompletedAt = job.CompletedAt
	case entities.TranscriptionStatusFailed:
		resp.ErrorMessage = job.ErrorMessage
	}

	return resp
}
