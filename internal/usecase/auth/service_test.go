package auth

import (
	"context"
	stdErrors "errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/audiolab-dev/audioscribe/errors"
	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/pkg/jwt"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entities.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.UpdateLastLogin()
	}
	return nil
}

func (r *memUserRepo) List(context.Context, int, int) ([]*entities.User, int64, error) {
	return nil, 0, nil
}

func newTestAuth() (Service, *memUserRepo) {
	repo := newMemUserRepo()
	jwtManager := jwt.NewManager("access", "refresh", 15*time.Minute, time.Hour)
	return NewService(repo, jwtManager, zap.NewNop()), repo
}

func appStatus(t *testing.T, err error) int {
	t.Helper()
	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.HTTPCode
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newTestAuth()
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@b.c", "Alice", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	pair, got, err := svc.Login(ctx, "a@b.c", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "Alice", "supersecret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@b.c", "Alice Again", "othersecret")
	assert.Equal(t, http.StatusConflict, appStatus(t, err))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "Alice", "supersecret")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@b.c", "wrong")
	assert.Equal(t, http.StatusUnauthorized, appStatus(t, err))

	_, _, err = svc.Login(ctx, "nobody@b.c", "supersecret")
	assert.Equal(t, http.StatusUnauthorized, appStatus(t, err))
}

func TestValidateAccess(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@b.c", "Alice", "supersecret")
	require.NoError(t, err)

	pair, _, err := svc.Login(ctx, "a@b.c", "supersecret")
	require.NoError(t, err)

	got, err := svc.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.ValidateAccess(ctx, "garbage")
	assert.Equal(t, http.StatusUnauthorized, appStatus(t, err))
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "Alice", "supersecret")
	require.NoError(t, err)

	pair, _, err := svc.Login(ctx, "a@b.c", "supersecret")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, appStatus(t, err))
}
