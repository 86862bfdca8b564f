package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/audiolab-dev/audioscribe/errors"
	txdto "github.com/audiolab-dev/audioscribe/internal/adapter/dto/transcription"
	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/usecase/transcription"
)

// Transcription handles transcription job endpoints
type Transcription struct {
	txService transcription.Service
	logger    *zap.Logger
}

// NewTranscription creates the transcription handler
func NewTranscription(txService transcription.Service, logger *zap.Logger) *Transcription {
	return &Transcription{
		txService: txService,
		logger:    logger,
	}
}

// Create starts a transcription job for an audio file
// POST /v1/transcriptions/:id (id is the audio ID)
func (h *Transcription) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	audioID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid audio id"))
	}

	var req txdto.CreateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	retry := req.Retry || c.QueryParam("retry") == "true"
	job, err := h.txService.CreateJob(c.Request().Context(), user.ID, audioID, req.Language, retry)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusAccepted, txdto.FromEntity(job))
}

// Get returns one transcription job with status-dependent fields
// GET /v1/transcriptions/:id
func (h *Transcription) Get(c echo.Context) error {
	job, err := h.authorize(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, txdto.FromEntity(job))
}

// UpdateContent replaces the content of a completed job
// PUT /v1/transcriptions/:id
func (h *Transcription) UpdateContent(c echo.Context) error {
	job, err := h.authorize(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req txdto.UpdateContentRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	updated, err := h.txService.UpdateContent(c.Request().Context(), job.ID, req.ToSegments())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, txdto.FromEntity(updated))
}

// Retry resets a failed job and resubmits it
// POST /v1/transcriptions/:id/retry
func (h *Transcription) Retry(c echo.Context) error {
	job, err := h.authorize(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	updated, err := h.txService.Retry(c.Request().Context(), job.ID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusAccepted, txdto.FromEntity(updated))
}

// authorize loads the job from the :id param and enforces ownership. A
// missing job or audio maps to 404; a foreign owner to 403.
func (h *Transcription) authorize(c echo.Context) (*entities.TranscriptionJob, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, errors.ErrInvalidArgument("invalid transcription id")
	}

	job, err := h.txService.GetJob(c.Request().Context(), jobID)
	if err != nil {
		return nil, err
	}

	ok, err := h.txService.HasAccess(c.Request().Context(), job, user.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrPermissionDenied("transcription belongs to another user")
	}

	return job, nil
}
