package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/audiolab-dev/audioscribe/internal/adapter/handler"
	"github.com/audiolab-dev/audioscribe/internal/adapter/repository"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/cache"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/database"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/external/speech"
	httpmw "github.com/audiolab-dev/audioscribe/internal/infrastructure/http/middleware"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/storage"
	audiouse "github.com/audiolab-dev/audioscribe/internal/usecase/audio"
	"github.com/audiolab-dev/audioscribe/internal/usecase/auth"
	txuse "github.com/audiolab-dev/audioscribe/internal/usecase/transcription"
	"github.com/audiolab-dev/audioscribe/pkg/config"
	"github.com/audiolab-dev/audioscribe/pkg/jwt"
	pkgvalidator "github.com/audiolab-dev/audioscribe/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Migrations run on boot only when explicitly enabled; production schema
	// changes go through sql-migrate in CI/CD.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production. Manage schema with sql-migrate instead.")
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	// Job locker: Redis when enabled so claims hold across processes,
	// otherwise a per-process in-memory fallback.
	var locker txuse.JobLocker
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		locker = cache.NewRedisLocker(redisClient)
	} else {
		locker = cache.NewMemoryLocker()
	}

	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	audioRepo := repository.NewAudioRepository(db)
	txRepo := repository.NewTranscriptionRepository(db)

	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	transcriber := speech.NewWhisperTranscriber(&cfg.Speech)
	diarizer := speech.NewAssemblyAIDiarizer(&cfg.Speech)

	authService := auth.NewService(userRepo, jwtManager, logger)
	audioService := audiouse.NewService(audioRepo, txRepo, minioClient, logger)
	txService := txuse.NewService(txRepo, audioRepo, locker, minioClient,
		transcriber, diarizer, logger, &cfg.Jobs)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	txService.StartWorkers(workerCtx)

	authHandler := handler.NewAuth(authService, logger)
	audioHandler := handler.NewAudio(audioService, logger)
	txHandler := handler.NewTranscription(txService, logger)
	userHandler := handler.NewUser(userRepo, logger)

	authMW := httpmw.EchoAuth(authService)
	handler.RegisterRoutes(e, authHandler, audioHandler, txHandler, userHandler, authMW)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s (%s)", addr, cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Let in-flight transcription jobs finish before exit.
	txService.Stop()

	log.Println("Server stopped gracefully")
}
