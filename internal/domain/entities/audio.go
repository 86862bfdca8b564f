package entities

import (
	"time"

	"github.com/google/uuid"
)

// Audio represents an uploaded audio file. Rows are immutable after creation
// except for deletion; the object itself lives in MinIO under ObjectKey.
type Audio struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Filename    string    `json:"filename" gorm:"type:varchar(255);not null"`
	ObjectKey   string    `json:"object_key" gorm:"type:varchar(500);not null"`
	ContentType string    `json:"content_type" gorm:"type:varchar(100)"`
	SizeBytes   int64     `json:"size_bytes"`
	Duration    *float64  `json:"duration,omitempty"` // seconds, best-effort probe

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Audio) TableName() string {
	return "audio_files"
}

// NewAudio creates a new audio record
func NewAudio(userID uuid.UUID, filename, objectKey, contentType string, sizeBytes int64) *Audio {
	now := time.Now()
	return &Audio{
		ID:          uuid.New(),
		UserID:      userID,
		Filename:    filename,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOwnedBy reports whether the audio belongs to the given user
func (a *Audio) IsOwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}
