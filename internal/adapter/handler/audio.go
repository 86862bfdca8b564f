package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/audiolab-dev/audioscribe/errors"
	audiodto "github.com/audiolab-dev/audioscribe/internal/adapter/dto/audio"
	"github.com/audiolab-dev/audioscribe/internal/adapter/dto/common"
	"github.com/audiolab-dev/audioscribe/internal/usecase/audio"
)

// Audio handles audio file upload, listing and deletion
type Audio struct {
	audioService audio.Service
	logger       *zap.Logger
}

// NewAudio creates the audio handler
func NewAudio(audioService audio.Service, logger *zap.Logger) *Audio {
	return &Audio{
		audioService: audioService,
		logger:       logger,
	}
}

// Upload stores an audio file for the authenticated user
// POST /v1/audio (multipart, field "file")
func (h *Audio) Upload(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing file field"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("unreadable file"))
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	record, err := h.audioService.Upload(c.Request().Context(), user.ID,
		fileHeader.Filename, contentType, fileHeader.Size, src)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, audiodto.FromEntity(record))
}

// Get returns one audio record
// GET /v1/audio/:id
func (h *Audio) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	audioID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid audio id"))
	}

	record, err := h.audioService.Get(c.Request().Context(), user.ID, audioID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, audiodto.FromEntity(record))
}

// List returns the authenticated user's audio files
// GET /v1/audio?page=&page_size=
func (h *Audio) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	page, pageSize := pageParams(c)
	files, total, err := h.audioService.List(c.Request().Context(), user.ID,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := common.ListResponse{
		Data:       audiodto.FromEntities(files),
		Pagination: common.NewPagination(page, pageSize, total),
	}
	return HandleSuccess(h.logger, c, http.StatusOK, resp)
}

// Delete removes an audio file and its transcription job
// DELETE /v1/audio/:id
func (h *Audio) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	audioID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid audio id"))
	}

	if err := h.audioService.Delete(c.Request().Context(), user.ID, audioID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, nil)
}
