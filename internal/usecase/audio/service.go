package audio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/audiolab-dev/audioscribe/errors"
	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/domain/repositories"
)

// allowedExtensions is the upload allowlist, lowercase with leading dot
var allowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
}

// ObjectStore is the storage surface the audio service needs
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	DeleteFile(ctx context.Context, objectName string) error
}

// Service handles audio upload, listing and deletion
type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, size int64, r io.Reader) (*entities.Audio, error)
	Get(ctx context.Context, userID, audioID uuid.UUID) (*entities.Audio, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Audio, int64, error)
	Delete(ctx context.Context, userID, audioID uuid.UUID) error
}

type service struct {
	audioRepo repositories.AudioRepository
	jobRepo   repositories.TranscriptionRepository
	storage   ObjectStore
	logger    *zap.Logger
}

// NewService creates the audio service
func NewService(
	audioRepo repositories.AudioRepository,
	jobRepo repositories.TranscriptionRepository,
	storage ObjectStore,
	logger *zap.Logger,
) Service {
	return &service{
		audioRepo: audioRepo,
		jobRepo:   jobRepo,
		storage:   storage,
		logger:    logger,
	}
}

// Upload validates the file, stores the object under a generated key and
// records the row. The object key is a fresh UUID plus the original
// extension, so uploaded filenames never collide or leak into storage paths.
func (s *service) Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, size int64, r io.Reader) (*entities.Audio, error) {
	if !strings.HasPrefix(contentType, "audio/") {
		return nil, apperrors.ErrUnsupportedAudioType(contentType)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, apperrors.ErrUnsupportedAudioType(ext)
	}

	objectKey := fmt.Sprintf("%s/%s%s", userID, uuid.New(), ext)
	if err := s.storage.UploadFile(ctx, objectKey, r, size, contentType); err != nil {
		return nil, apperrors.ErrAudioUploadFailed(err)
	}

	audio := entities.NewAudio(userID, filename, objectKey, contentType, size)
	if err := s.audioRepo.Create(ctx, audio); err != nil {
		if delErr := s.storage.DeleteFile(ctx, objectKey); delErr != nil {
			s.logger.Warn("failed to clean up orphaned object",
				zap.String("object_key", objectKey), zap.Error(delErr))
		}
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("audio uploaded",
		zap.String("audio_id", audio.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("filename", filename),
		zap.Int64("size_bytes", size))

	return audio, nil
}

// Get fetches one audio record, enforcing ownership
func (s *service) Get(ctx context.Context, userID, audioID uuid.UUID) (*entities.Audio, error) {
	audio, err := s.audioRepo.FindByID(ctx, audioID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if audio == nil {
		return nil, apperrors.ErrAudioNotFound(audioID.String())
	}
	if !audio.IsOwnedBy(userID) {
		return nil, apperrors.ErrPermissionDenied("audio belongs to another user")
	}
	return audio, nil
}

// List returns the user's audio files, newest first
func (s *service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Audio, int64, error) {
	files, total, err := s.audioRepo.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.ErrDBQueryFailed(err)
	}
	return files, total, nil
}

// Delete removes the audio row, its transcription job and the stored object
func (s *service) Delete(ctx context.Context, userID, audioID uuid.UUID) error {
	audio, err := s.Get(ctx, userID, audioID)
	if err != nil {
		return err
	}

	if err := s.jobRepo.DeleteByAudioID(ctx, audioID); err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}
	if err := s.audioRepo.Delete(ctx, audioID); err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}

	if err := s.storage.DeleteFile(ctx, audio.ObjectKey); err != nil {
		// Row is gone; the orphaned object is logged, not fatal.
		s.logger.Warn("failed to delete stored object",
			zap.String("object_key", audio.ObjectKey), zap.Error(err))
	}

	s.logger.Info("audio deleted",
		zap.String("audio_id", audioID.String()),
		zap.String("user_id", userID.String()))

	return nil
}
