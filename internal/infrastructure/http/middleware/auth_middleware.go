package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/usecase/auth"
)

const (
	// UserContextKey is the Echo context key for the authenticated user
	UserContextKey = "user"
	// UserIDContextKey is the Echo context key for the authenticated user's ID
	UserIDContextKey = "user_id"
)

// EchoAuth returns an Echo middleware that validates the bearer token and sets
// "user" (*entities.User) and "user_id" (uuid.UUID) into the Echo context
func EchoAuth(authService auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			user, err := authService.ValidateAccess(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(UserContextKey, user)
			c.Set(UserIDContextKey, user.ID)

			return next(c)
		}
	}
}

// GetUserFromContext retrieves the authenticated user from the Echo context
func GetUserFromContext(c echo.Context) (*entities.User, bool) {
	user, ok := c.Get(UserContextKey).(*entities.User)
	return user, ok
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the access_token cookie
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}
