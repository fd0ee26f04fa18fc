package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/bookreview/config"
	"github.com/kevinaaaquil/bookreview/handlers"
	"github.com/kevinaaaquil/bookreview/logging"
	"github.com/kevinaaaquil/bookreview/service"
	"github.com/kevinaaaquil/bookreview/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		logging.Fatal().Err(err).Msg("mongodb")
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			logging.Error().Err(err).Msg("mongodb disconnect")
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		logging.Fatal().Err(err).Msg("mongodb indexes")
	}

	// A nil *S3Service must not reach the interface, or the "not configured" checks never fire.
	var covers service.CoverStorage
	if cfg.S3Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			logging.Fatal().Err(err).Msg("s3")
		}
		covers = s3Service
	} else {
		logging.Warn().Msg("AWS_S3_BUCKET not set; cover uploads are disabled")
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	bookService := service.NewBookService(db, db, db, covers, service.NewMetadataClient(cfg.GoogleBooksURL))
	reviewService := service.NewReviewService(db, bookService, db)

	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logging.Fatal().Err(err).Msg("seed admin")
	}
	if n, err := db.UsersCount(ctx); err == nil {
		logging.Info().Int64("users", n).Msg("user store ready")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:          authService,
		Books:         bookService,
		Reviews:       reviewService,
		Ping:          db.Ping,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
		MaxCoverBytes: cfg.MaxUploadMB * 1024 * 1024,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
}
