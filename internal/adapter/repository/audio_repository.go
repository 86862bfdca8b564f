package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
)

// AudioRepository handles audio record data operations
type AudioRepository struct {
	db *gorm.DB
}

// NewAudioRepository creates a new audio repository
func NewAudioRepository(db *gorm.DB) *AudioRepository {
	return &AudioRepository{db: db}
}

// Create creates a new audio record
func (r *AudioRepository) Create(ctx context.Context, audio *entities.Audio) error {
	if audio == nil {
		return errors.New("audio cannot be nil")
	}
	return r.db.WithContext(ctx).Create(audio).Error
}

// FindByID retrieves an audio record by ID
func (r *AudioRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Audio, error) {
	var audio entities.Audio
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&audio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

// FindByUserID retrieves all audio records owned by a user, newest first
func (r *AudioRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Audio, int64, error) {
	var audios []*entities.Audio
	var total int64

	if limit == 0 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&entities.Audio{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&audios).Error; err != nil {
		return nil, 0, err
	}
	return audios, total, nil
}

// Delete removes an audio record
func (r *AudioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.Audio{}, id).Error
}
