package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/audiolab-dev/audioscribe/errors"
	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/domain/repositories"
	"github.com/audiolab-dev/audioscribe/pkg/jwt"
)

// TokenPair carries the tokens issued on login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service handles registration, login and token validation
type Service interface {
	Register(ctx context.Context, email, name, password string) (*entities.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *entities.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateAccess(ctx context.Context, token string) (*entities.User, error)
}

type service struct {
	userRepo   repositories.UserRepository
	jwtManager *jwt.Manager
	logger     *zap.Logger
}

// NewService creates the auth service
func NewService(userRepo repositories.UserRepository, jwtManager *jwt.Manager, logger *zap.Logger) Service {
	return &service{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Register creates a new user with a bcrypt-hashed password
func (s *service) Register(ctx context.Context, email, name, password string) (*entities.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if existing != nil {
		return nil, apperrors.ErrUserAlreadyExists(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	user := entities.NewUser(email, name, string(hash))
	if err := user.Validate(); err != nil {
		return nil, apperrors.ErrInvalidArgument(err.Error())
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return user, nil
}

// Login verifies credentials and issues a token pair
func (s *service) Login(ctx context.Context, email, password string) (*TokenPair, *entities.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials()
		}
		return nil, nil, apperrors.ErrDBQueryFailed(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials()
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrPermissionDenied("account is disabled")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, apperrors.ErrInternal(err)
	}

	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken()
		}
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrPermissionDenied("account is disabled")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	return pair, nil
}

// ValidateAccess resolves an access token to its user. Used by the auth
// middleware on every protected request.
func (s *service) ValidateAccess(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken()
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken()
		}
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrPermissionDenied("account is disabled")
	}

	return user, nil
}

func (s *service) issueTokens(user *entities.User) (*TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}
