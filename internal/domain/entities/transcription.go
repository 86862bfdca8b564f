package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptionStatus represents the status of a transcription job
type TranscriptionStatus string

const (
	TranscriptionStatusPending    TranscriptionStatus = "pending"     // Created, waiting for a worker
	TranscriptionStatusInProgress TranscriptionStatus = "in_progress" // Inference running
	TranscriptionStatusCompleted  TranscriptionStatus = "completed"   // Results stored
	TranscriptionStatusFailed     TranscriptionStatus = "failed"      // Inference or processing failed
)

// IsTerminal reports whether the status is a terminal state
func (s TranscriptionStatus) IsTerminal() bool {
	return s == TranscriptionStatusCompleted || s == TranscriptionStatusFailed
}

// SpeakerSegment is one speaker-attributed stretch of transcript. Text may be
// empty when no transcription segment fell inside the speaker interval.
type SpeakerSegment struct {
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

// SpeakerSegments is the JSONB content column of a transcription job
type SpeakerSegments []SpeakerSegment

// Scan implements sql.Scanner interface for GORM
func (s *SpeakerSegments) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Value implements driver.Valuer interface for GORM
func (s SpeakerSegments) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// TranscriptionJob represents a transcription + diarization job for one audio
// file. At most one live job exists per audio_id (enforced by a unique index).
type TranscriptionJob struct {
	ID       uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AudioID  uuid.UUID           `json:"audio_id" gorm:"type:uuid;not null;uniqueIndex"`
	Language string              `json:"language" gorm:"type:varchar(10);not null;default:'en'"`
	Status   TranscriptionStatus `json:"status" gorm:"type:varchar(20);not null;index;default:'pending'"`

	// Results, set only on completion
	Content         SpeakerSegments `json:"content,omitempty" gorm:"type:jsonb"`
	WordCount       *int            `json:"word_count,omitempty"`
	ConfidenceScore *float64        `json:"confidence_score,omitempty"`

	// Provider diagnostics captured alongside the results, for debugging
	RawData datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb;serializer:json"`

	// Failure detail, set only on failure
	ErrorMessage *string `json:"error_message,omitempty" gorm:"type:text"`

	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptionJob) TableName() string {
	return "transcriptions"
}

// NewTranscriptionJob creates a new pending job
func NewTranscriptionJob(audioID uuid.UUID, language string) *TranscriptionJob {
	if language == "" {
		language = "en"
	}
	now := time.Now()
	return &TranscriptionJob{
		ID:        uuid.New(),
		AudioID:   audioID,
		Language:  language,
		Status:    TranscriptionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanStart reports whether a worker may pick the job up
func (j *TranscriptionJob) CanStart() bool {
	return j.Status == TranscriptionStatusPending || j.Status == TranscriptionStatusFailed
}

// MarkAsInProgress marks the job as picked up by a worker
func (j *TranscriptionJob) MarkAsInProgress() {
	j.Status = TranscriptionStatusInProgress
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted stores results and stamps the completion time
func (j *TranscriptionJob) MarkAsCompleted(content SpeakerSegments, wordCount int, confidence float64) {
	j.Status = TranscriptionStatusCompleted
	j.Content = content
	j.WordCount = &wordCount
	j.ConfidenceScore = &confidence
	j.ErrorMessage = nil
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed records the failure; completed_at stays unset
func (j *TranscriptionJob) MarkAsFailed(errMsg string) {
	j.Status = TranscriptionStatusFailed
	j.ErrorMessage = &errMsg
	j.UpdatedAt = time.Now()
}

// ResetForRetry returns a failed job to pending, clearing prior results
func (j *TranscriptionJob) ResetForRetry() {
	j.Status = TranscriptionStatusPending
	j.Content = nil
	j.WordCount = nil
	j.ConfidenceScore = nil
	j.RawData = datatypes.JSONType[map[string]interface{}]{}
	j.ErrorMessage = nil
	j.StartedAt = nil
	j.CompletedAt = nil
	j.UpdatedAt = time.Now()
}
