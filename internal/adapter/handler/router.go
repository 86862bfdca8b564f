package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all API routes onto the Echo instance. Everything
// under /v1 except auth requires a valid access token.
func RegisterRoutes(
	e *echo.Echo,
	authHandler *Auth,
	audioHandler *Audio,
	txHandler *Transcription,
	userHandler *User,
	authMW echo.MiddlewareFunc,
) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)

	users := v1.Group("/users", authMW)
	users.GET("", userHandler.List)
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)

	audioGroup := v1.Group("/audio", authMW)
	audioGroup.POST("", audioHandler.Upload)
	audioGroup.GET("", audioHandler.List)
	audioGroup.GET("/:id", audioHandler.Get)
	audioGroup.DELETE("/:id", audioHandler.Delete)

	// The path param is the audio ID on create and the job ID elsewhere.
	tx := v1.Group("/transcriptions", authMW)
	tx.POST("/:id", txHandler.Create)
	tx.GET("/:id", txHandler.Get)
	tx.PUT("/:id", txHandler.UpdateContent)
	tx.POST("/:id/retry", txHandler.Retry)
}
