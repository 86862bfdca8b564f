package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/audiolab-dev/audioscribe/errors"
	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/http/middleware"
	pkgvalidator "github.com/audiolab-dev/audioscribe/pkg/validator"
)

// fakeTxService implements transcription.Service for handler tests
type fakeTxService struct {
	jobs   map[uuid.UUID]*entities.TranscriptionJob
	owners map[uuid.UUID]uuid.UUID // audioID -> userID
}

func newFakeTxService() *fakeTxService {
	return &fakeTxService{
		jobs:   make(map[uuid.UUID]*entities.TranscriptionJob),
		owners: make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeTxService) addJob(job *entities.TranscriptionJob, owner uuid.UUID) {
	f.jobs[job.ID] = job
	f.owners[job.AudioID] = owner
}

func (f *fakeTxService) CreateJob(_ context.Context, _, audioID uuid.UUID, language string, _ bool) (*entities.TranscriptionJob, error) {
	return entities.NewTranscriptionJob(audioID, language), nil
}

func (f *fakeTxService) RunJob(context.Context, uuid.UUID, int) error { return nil }

func (f *fakeTxService) GetJob(_ context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, apperrors.ErrJobNotFound(jobID.String())
	}
	return job, nil
}

func (f *fakeTxService) HasAccess(_ context.Context, job *entities.TranscriptionJob, userID uuid.UUID) (bool, error) {
	owner, ok := f.owners[job.AudioID]
	if !ok {
		return false, apperrors.ErrAudioNotFound(job.AudioID.String())
	}
	return owner == userID, nil
}

func (f *fakeTxService) UpdateContent(_ context.Context, jobID uuid.UUID, segments entities.SpeakerSegments) (*entities.TranscriptionJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, apperrors.ErrJobNotFound(jobID.String())
	}
	wc := 0
	job.Content = segments
	job.WordCount = &wc
	return job, nil
}

func (f *fakeTxService) Retry(_ context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, apperrors.ErrJobNotFound(jobID.String())
	}
	job.ResetForRetry()
	return job, nil
}

func (f *fakeTxService) StartWorkers(context.Context) {}
func (f *fakeTxService) Stop()                       {}

func getContext(t *testing.T, user *entities.User, jobID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/"+jobID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/transcriptions/:id")
	c.SetParamNames("id")
	c.SetParamValues(jobID.String())
	c.Set(middleware.UserContextKey, user)
	return c, rec
}

func responseData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestTranscriptionGet_CompletedExposesResults(t *testing.T) {
	svc := newFakeTxService()
	user := entities.NewUser("a@b.c", "A", "hash")

	job := entities.NewTranscriptionJob(uuid.New(), "en")
	job.MarkAsCompleted(entities.SpeakerSegments{
		{Speaker: "spk1", StartTime: 0, EndTime: 3, Text: "test"},
	}, 1, 0.9)
	svc.addJob(job, user.ID)

	h := NewTranscription(svc, zap.NewNop())
	c, rec := getContext(t, user, job.ID)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := responseData(t, rec)
	assert.Equal(t, "completed", data["status"])
	assert.Contains(t, data, "content")
	assert.Contains(t, data, "word_count")
	assert.Contains(t, data, "confidence_score")
	assert.Contains(t, data, "completed_at")
	assert.NotContains(t, data, "error_message")
}

func TestTranscriptionGet_PendingRedactsResults(t *testing.T) {
	svc := newFakeTxService()
	user := entities.NewUser("a@b.c", "A", "hash")

	job := entities.NewTranscriptionJob(uuid.New(), "en")
	svc.addJob(job, user.ID)

	h := NewTranscription(svc, zap.NewNop())
	c, rec := getContext(t, user, job.ID)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := responseData(t, rec)
	assert.Equal(t, "pending", data["status"])
	assert.NotContains(t, data, "content")
	assert.NotContains(t, data, "word_count")
	assert.NotContains(t, data, "confidence_score")
	assert.NotContains(t, data, "completed_at")
	assert.NotContains(t, data, "error_message")
}

func TestTranscriptionGet_FailedExposesErrorOnly(t *testing.T) {
	svc := newFakeTxService()
	user := entities.NewUser("a@b.c", "A", "hash")

	job := entities.NewTranscriptionJob(uuid.New(), "en")
	job.MarkAsFailed("Transcription failed: model rejected input")
	svc.addJob(job, user.ID)

	h := NewTranscription(svc, zap.NewNop())
	c, rec := getContext(t, user, job.ID)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := responseData(t, rec)
	assert.Equal(t, "failed", data["status"])
	assert.Contains(t, data, "error_message")
	assert.NotContains(t, data, "content")
	assert.NotContains(t, data, "word_count")
}

func TestTranscriptionGet_Missing404(t *testing.T) {
	svc := newFakeTxService()
	user := entities.NewUser("a@b.c", "A", "hash")

	h := NewTranscription(svc, zap.NewNop())
	c, rec := getContext(t, user, uuid.New())

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscriptionGet_ForeignOwner403(t *testing.T) {
	svc := newFakeTxService()
	owner := entities.NewUser("owner@b.c", "Owner", "hash")
	intruder := entities.NewUser("other@b.c", "Other", "hash")

	job := entities.NewTranscriptionJob(uuid.New(), "en")
	svc.addJob(job, owner.ID)

	h := NewTranscription(svc, zap.NewNop())
	c, rec := getContext(t, intruder, job.ID)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTranscriptionGet_AudioGone404(t *testing.T) {
	svc := newFakeTxService()
	user := entities.NewUser("a@b.c", "A", "hash")

	job := entities.NewTranscriptionJob(uuid.New(), "en")
	svc.jobs[job.ID] = job // no owner entry: audio row is gone

	h := NewTranscription(svc, zap.NewNop())
	c, rec := getContext(t, user, job.ID)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscriptionGet_InvalidID400(t *testing.T) {
	svc := newFakeTxService()
	user := entities.NewUser("a@b.c", "A", "hash")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/transcriptions/:id")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	c.Set(middleware.UserContextKey, user)

	h := NewTranscription(svc, zap.NewNop())
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
