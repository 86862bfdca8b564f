package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/audiolab-dev/audioscribe/errors"
	"github.com/audiolab-dev/audioscribe/internal/adapter/dto/common"
	userdto "github.com/audiolab-dev/audioscribe/internal/adapter/dto/user"
	"github.com/audiolab-dev/audioscribe/internal/domain/repositories"
)

// User handles profile endpoints
type User struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUser creates the user handler
func NewUser(userRepo repositories.UserRepository, logger *zap.Logger) *User {
	return &User{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Me returns the authenticated user's profile
// GET /v1/users/me
func (h *User) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, user.ToPublic())
}

// List returns registered users with pagination
// GET /v1/users?page=&page_size=
func (h *User) List(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return HandleError(h.logger, c, err)
	}

	page, pageSize := pageParams(c)
	users, total, err := h.userRepo.List(c.Request().Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	public := make([]interface{}, 0, len(users))
	for _, u := range users {
		public = append(public, u.ToPublic())
	}

	resp := common.ListResponse{
		Data:       public,
		Pagination: common.NewPagination(page, pageSize, total),
	}
	return HandleSuccess(h.logger, c, http.StatusOK, resp)
}

// UpdateMe edits the authenticated user's name and preferred language
// PUT /v1/users/me
func (h *User) UpdateMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req userdto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Language != "" {
		user.Language = req.Language
	}

	if err := h.userRepo.Update(c.Request().Context(), user); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, user.ToPublic())
}
