package transcription

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/audiolab-dev/audioscribe/errors"
	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/domain/repositories"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/external/speech"
	"github.com/audiolab-dev/audioscribe/pkg/config"
	"github.com/audiolab-dev/audioscribe/pkg/jobcontext"
)

const maxInferenceRetries = 3

// JobLocker serializes job execution across processes. TryLock returns false
// without error when another holder owns the key.
type JobLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// ObjectStore fetches uploaded audio for inference
type ObjectStore interface {
	DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
}

// Service manages transcription jobs: creation, background execution,
// retrieval, access checks, manual edits and retries.
type Service interface {
	CreateJob(ctx context.Context, userID, audioID uuid.UUID, language string, retry bool) (*entities.TranscriptionJob, error)
	RunJob(ctx context.Context, jobID uuid.UUID, workerID int) error
	GetJob(ctx context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error)
	HasAccess(ctx context.Context, job *entities.TranscriptionJob, userID uuid.UUID) (bool, error)
	UpdateContent(ctx context.Context, jobID uuid.UUID, segments entities.SpeakerSegments) (*entities.TranscriptionJob, error)
	Retry(ctx context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error)

	StartWorkers(ctx context.Context)
	Stop()
}

type service struct {
	jobRepo     repositories.TranscriptionRepository
	audioRepo   repositories.AudioRepository
	locker      JobLocker
	storage     ObjectStore
	transcriber speech.Transcriber
	diarizer    speech.Diarizer
	logger      *zap.Logger
	cfg         *config.JobsConfig

	queue chan uuid.UUID
	quit  chan struct{}
	wg    sync.WaitGroup
}

// NewService creates the transcription job service
func NewService(
	jobRepo repositories.TranscriptionRepository,
	audioRepo repositories.AudioRepository,
	locker JobLocker,
	storage ObjectStore,
	transcriber speech.Transcriber,
	diarizer speech.Diarizer,
	logger *zap.Logger,
	cfg *config.JobsConfig,
) Service {
	return &service{
		jobRepo:     jobRepo,
		audioRepo:   audioRepo,
		locker:      locker,
		storage:     storage,
		transcriber: transcriber,
		diarizer:    diarizer,
		logger:      logger,
		cfg:         cfg,
		queue:       make(chan uuid.UUID, cfg.QueueSize),
		quit:        make(chan struct{}),
	}
}

// CreateJob creates a pending job for the audio and submits it for
// processing. When a job already exists the call conflicts, unless retry is
// set and the existing job is not currently being processed, in which case it
// is reset to pending and resubmitted.
func (s *service) CreateJob(ctx context.Context, userID, audioID uuid.UUID, language string, retry bool) (*entities.TranscriptionJob, error) {
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

	existing, err := s.jobRepo.GetByAudioID(ctx, audioID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	if existing != nil {
		if !retry || existing.Status == entities.TranscriptionStatusInProgress {
			return nil, apperrors.ErrJobConflict(audioID.String())
		}
		if err := s.jobRepo.ResetForRetry(ctx, existing.ID); err != nil {
			return nil, apperrors.ErrDBQueryFailed(err)
		}
		job, err := s.jobRepo.GetByID(ctx, existing.ID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed(err)
		}
		if err := s.enqueue(job.ID); err != nil {
			return nil, err
		}
		return job, nil
	}

	if language == "" {
		language = s.cfg.DefaultLanguage
	}
	job := entities.NewTranscriptionJob(audioID, language)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("transcription job created",
		zap.String("job_id", job.ID.String()),
		zap.String("audio_id", audioID.String()),
		zap.String("language", job.Language))

	if err := s.enqueue(job.ID); err != nil {
		return nil, err
	}
	return job, nil
}

// enqueue submits a job ID to the worker queue without blocking. A full
// queue surfaces as an error; the job row stays pending.
func (s *service) enqueue(jobID uuid.UUID) error {
	select {
	case s.queue <- jobID:
		return nil
	default:
		s.logger.Warn("transcription queue full", zap.String("job_id", jobID.String()))
		return apperrors.ErrQueueFull()
	}
}

// RunJob executes one transcription job. The claim is a distributed lock
// followed by a guarded status UPDATE; a losing concurrent call returns
// without side effects. Every failure path, panics included, lands the job
// in failed with a message.
func (s *service) RunJob(ctx context.Context, jobID uuid.UUID, workerID int) error {
	lockTTL := s.cfg.InferenceTimeout + time.Minute
	locked, err := s.locker.TryLock(ctx, jobID.String(), lockTTL)
	if err != nil {
		return apperrors.ErrCacheFailed("acquire job lock", err)
	}
	if !locked {
		s.logger.Debug("job already locked", zap.String("job_id", jobID.String()))
		return nil
	}
	defer func() {
		if err := s.locker.Unlock(context.Background(), jobID.String()); err != nil {
			s.logger.Warn("failed to release job lock",
				zap.String("job_id", jobID.String()), zap.Error(err))
		}
	}()

	claimed, err := s.jobRepo.ClaimForProcessing(ctx, jobID)
	if err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}
	if !claimed {
		// Missing, already running, or already terminal.
		return nil
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}
	if job == nil {
		return apperrors.ErrJobNotFound(jobID.String())
	}

	s.logger.Info("transcription job started",
		zap.String("job_id", jobID.String()),
		zap.Int("worker_id", workerID))

	jctx, cancel := jobcontext.Begin(ctx, jobID, workerID, s.cfg.InferenceTimeout)
	defer cancel()

	runErr := jobcontext.Run(jctx, func(jc context.Context) error {
		return s.process(jc, job)
	})
	if runErr != nil {
		msg := fmt.Sprintf("Transcription failed: %v", runErr)
		if err := s.jobRepo.MarkFailed(ctx, jobID, msg); err != nil {
			s.logger.Error("failed to mark job failed",
				zap.String("job_id", jobID.String()), zap.Error(err))
			return apperrors.ErrDBQueryFailed(err)
		}
		s.logger.Warn("transcription job failed",
			zap.String("job_id", jobID.String()),
			zap.Error(runErr))
		return nil
	}

	s.logger.Info("transcription job completed", zap.String("job_id", jobID.String()))
	return nil
}

// process runs both inference passes, combines the results and stores them
func (s *service) process(ctx context.Context, job *entities.TranscriptionJob) error {
	audio, err := s.audioRepo.FindByID(ctx, job.AudioID)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}
	if audio == nil {
		return fmt.Errorf("audio file %s no longer exists", job.AudioID)
	}

	var result *speech.TranscriptionResult
	err = s.withRetry(ctx, func() error {
		rc, err := s.storage.DownloadFile(ctx, audio.ObjectKey)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("download audio: %w", err))
		}
		defer rc.Close()

		res, err := s.transcriber.Transcribe(ctx, rc, audio.Filename, job.Language)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return fmt.Errorf("speech to text: %w", err)
	}

	var turns []speech.SpeakerTurn
	err = s.withRetry(ctx, func() error {
		rc, err := s.storage.DownloadFile(ctx, audio.ObjectKey)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("download audio: %w", err))
		}
		defer rc.Close()

		t, err := s.diarizer.Diarize(ctx, rc, audio.Filename)
		if err != nil {
			return err
		}
		turns = t
		return nil
	})
	if err != nil {
		return fmt.Errorf("speaker diarization: %w", err)
	}

	segments := Combine(turns, result.Segments)
	wordCount := WordCount(segments)
	confidence := ConfidenceScore(result.Segments)

	raw := map[string]interface{}{
		"transcript_text": result.Text,
		"segment_count":   len(result.Segments),
		"speaker_turns":   len(turns),
	}

	if err := s.jobRepo.MarkCompleted(ctx, job.ID, segments, wordCount, confidence, raw); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	return nil
}

// withRetry wraps an inference call in exponential backoff, retrying only
// transient provider errors
func (s *service) withRetry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if _, permanent := err.(*backoff.PermanentError); permanent {
			return err
		}
		if !jobcontext.IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxInferenceRetries), ctx)
	return backoff.Retry(wrapped, policy)
}

// GetJob retrieves a job by ID
func (s *service) GetJob(ctx context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if job == nil {
		return nil, apperrors.ErrJobNotFound(jobID.String())
	}
	return job, nil
}

// HasAccess reports whether userID owns the audio behind the job. A job
// whose audio row has vanished yields ErrAudioNotFound so callers can map it
// to a 404 rather than a 403.
func (s *service) HasAccess(ctx context.Context, job *entities.TranscriptionJob, userID uuid.UUID) (bool, error) {
	audio, err := s.audioRepo.FindByID(ctx, job.AudioID)
	if err != nil {
		return false, apperrors.ErrDBQueryFailed(err)
	}
	if audio == nil {
		return false, apperrors.ErrAudioNotFound(job.AudioID.String())
	}
	return audio.IsOwnedBy(userID), nil
}

// UpdateContent replaces the segments of a completed job and recomputes the
// word count. The confidence score is left as the model reported it.
func (s *service) UpdateContent(ctx context.Context, jobID uuid.UUID, segments entities.SpeakerSegments) (*entities.TranscriptionJob, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != entities.TranscriptionStatusCompleted {
		return nil, apperrors.ErrJobNotEditable(jobID.String(), string(job.Status))
	}

	if err := s.jobRepo.UpdateContent(ctx, jobID, segments, WordCount(segments)); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	return s.GetJob(ctx, jobID)
}

// Retry resets a failed job to pending and resubmits it
func (s *service) Retry(ctx context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != entities.TranscriptionStatusFailed {
		return nil, apperrors.ErrJobNotRetryable(jobID.String(), string(job.Status))
	}

	if err := s.jobRepo.ResetForRetry(ctx, jobID); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("transcription job reset for retry", zap.String("job_id", jobID.String()))

	if err := s.enqueue(jobID); err != nil {
		return nil, err
	}
	return s.GetJob(ctx, jobID)
}

// StartWorkers launches the worker pool and the staleness sweeper
func (s *service) StartWorkers(ctx context.Context) {
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.wg.Add(1)
	go s.sweeper(ctx)

	s.logger.Info("transcription workers started",
		zap.Int("workers", s.cfg.Workers),
		zap.Int("queue_size", s.cfg.QueueSize))
}

// Stop shuts the workers down and waits for in-flight jobs to finish
func (s *service) Stop() {
	close(s.quit)
	s.wg.Wait()
	s.logger.Info("transcription workers stopped")
}

func (s *service) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.quit:
			return
		case <-ctx.Done():
			return
		case jobID := <-s.queue:
			if err := s.RunJob(ctx, jobID, id); err != nil {
				s.logger.Error("job execution error",
					zap.String("job_id", jobID.String()),
					zap.Int("worker_id", id),
					zap.Error(err))
			}
		}
	}
}

// sweeper periodically fails in_progress jobs whose worker died mid-run, so
// they become retryable instead of hanging forever
func (s *service) sweeper(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.cfg.StaleAfter)
			swept, err := s.jobRepo.FailStale(ctx, cutoff, "Transcription failed: processing timed out")
			if err != nil {
				s.logger.Error("staleness sweep failed", zap.Error(err))
				continue
			}
			if swept > 0 {
				s.logger.Warn("swept stale transcription jobs", zap.Int64("count", swept))
			}
		}
	}
}
