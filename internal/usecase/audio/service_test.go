package audio

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/audiolab-dev/audioscribe/errors"
	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
)

type memAudioRepo struct {
	mu    sync.Mutex
	files map[uuid.UUID]*entities.Audio
}

func newMemAudioRepo() *memAudioRepo {
	return &memAudioRepo{files: make(map[uuid.UUID]*entities.Audio)}
}

func (r *memAudioRepo) Create(_ context.Context, audio *entities.Audio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *audio
	r.files[audio.ID] = &cp
	return nil
}

func (r *memAudioRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.files[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memAudioRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Audio, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Audio
	for _, a := range r.files {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memAudioRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

type memJobRepo struct {
	mu      sync.Mutex
	byAudio map[uuid.UUID]*entities.TranscriptionJob
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{byAudio: make(map[uuid.UUID]*entities.TranscriptionJob)}
}

func (r *memJobRepo) Create(_ context.Context, job *entities.TranscriptionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAudio[job.AudioID] = job
	return nil
}

func (r *memJobRepo) GetByID(context.Context, uuid.UUID) (*entities.TranscriptionJob, error) {
	return nil, nil
}

func (r *memJobRepo) GetByAudioID(_ context.Context, audioID uuid.UUID) (*entities.TranscriptionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byAudio[audioID], nil
}

func (r *memJobRepo) ClaimForProcessing(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (r *memJobRepo) MarkCompleted(context.Context, uuid.UUID, entities.SpeakerSegments, int, float64, map[string]interface{}) error {
	return nil
}

func (r *memJobRepo) MarkFailed(context.Context, uuid.UUID, string) error { return nil }

func (r *memJobRepo) UpdateContent(context.Context, uuid.UUID, entities.SpeakerSegments, int) error {
	return nil
}

func (r *memJobRepo) ResetForRetry(context.Context, uuid.UUID) error { return nil }

func (r *memJobRepo) DeleteByAudioID(_ context.Context, audioID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byAudio, audioID)
	return nil
}

func (r *memJobRepo) FailStale(context.Context, time.Time, string) (int64, error) { return 0, nil }

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data
	return nil
}

func (s *memStore) DeleteFile(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func newTestService(t *testing.T) (Service, *memAudioRepo, *memJobRepo, *memStore) {
	t.Helper()
	audioRepo := newMemAudioRepo()
	jobRepo := newMemJobRepo()
	store := newMemStore()
	svc := NewService(audioRepo, jobRepo, store, zap.NewNop())
	return svc, audioRepo, jobRepo, store
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.HTTPCode
}

func TestUpload(t *testing.T) {
	svc, _, _, store := newTestService(t)
	userID := uuid.New()

	record, err := svc.Upload(context.Background(), userID, "meeting.mp3", "audio/mpeg",
		11, strings.NewReader("audio-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "meeting.mp3", record.Filename)
	assert.Equal(t, userID, record.UserID)
	assert.NotEmpty(t, record.ObjectKey)
	assert.NotEqual(t, "meeting.mp3", record.ObjectKey)
	assert.True(t, strings.HasSuffix(record.ObjectKey, ".mp3"))
	assert.Equal(t, 1, store.count())
}

func TestUpload_RejectsNonAudioContentType(t *testing.T) {
	svc, _, _, store := newTestService(t)

	_, err := svc.Upload(context.Background(), uuid.New(), "notes.mp3", "text/plain",
		4, strings.NewReader("text"))
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	assert.Equal(t, 0, store.count())
}

func TestUpload_RejectsUnknownExtension(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), uuid.New(), "clip.aiff", "audio/aiff",
		4, strings.NewReader("data"))
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestGet_Ownership(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	userID := uuid.New()

	record, err := svc.Upload(context.Background(), userID, "a.wav", "audio/wav",
		4, strings.NewReader("data"))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), userID, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), record.ID)
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))

	_, err = svc.Get(context.Background(), userID, uuid.New())
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestDelete_CascadesJobAndObject(t *testing.T) {
	svc, audioRepo, jobRepo, store := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	record, err := svc.Upload(ctx, userID, "a.ogg", "audio/ogg", 4, strings.NewReader("data"))
	require.NoError(t, err)

	job := entities.NewTranscriptionJob(record.ID, "en")
	require.NoError(t, jobRepo.Create(ctx, job))

	require.NoError(t, svc.Delete(ctx, userID, record.ID))

	gone, err := audioRepo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	goneJob, err := jobRepo.GetByAudioID(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, goneJob)

	assert.Equal(t, 0, store.count())
}
