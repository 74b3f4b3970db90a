package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/msomdec/art-market/internal/config"
	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/handler"
	"github.com/msomdec/art-market/internal/repository/s3"
	"github.com/msomdec/art-market/internal/repository/sqlite"
	"github.com/msomdec/art-market/internal/service"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if envErr != nil {
		slog.Debug("no .env file loaded", "error", envErr)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	blobs, blobReader, err := openBlobStore(context.Background(), cfg, db)
	if err != nil {
		slog.Error("failed to open blob store", "backend", cfg.Blob.Backend, "error", err)
		os.Exit(1)
	}
	slog.Info("blob store ready", "backend", cfg.Blob.Backend)

	authService := service.NewAuthService(db.Identities(), cfg.Auth.JWTSecret, cfg.Auth.BcryptCost)
	gateway := service.NewGateway(authService, db.Accounts(), db.Artworks(), blobs)

	// 5 attempts per minute per client IP, burst of 5.
	limiter := service.NewTokenBucket(5.0/60, 5)
	defer limiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:         authService,
		Gateway:      gateway,
		Blobs:        blobReader,
		Limiter:      limiter,
		DB:           db.SqlDB,
		CookieSecure: cfg.Server.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "public_url", cfg.Server.PublicURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openBlobStore builds the configured blob backend. The returned reader is
// non-nil only when this server serves the download URLs itself.
func openBlobStore(ctx context.Context, cfg config.Config, db *sqlite.DB) (domain.BlobStore, domain.BlobReader, error) {
	if cfg.Blob.Backend == config.BlobBackendS3 {
		store, err := s3.NewStore(ctx, s3.Options{
			Bucket:        cfg.Blob.S3.Bucket,
			Region:        cfg.Blob.S3.Region,
			Endpoint:      cfg.Blob.S3.Endpoint,
			PublicBaseURL: cfg.Blob.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}

	store, err := db.Blobs(cfg.Server.PublicURL)
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}
