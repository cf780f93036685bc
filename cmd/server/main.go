package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ricemill/backend/internal/attachments"
	"ricemill/backend/internal/config"
	"ricemill/backend/internal/httpapi"
	"ricemill/backend/internal/logger"
	"ricemill/backend/internal/scheduler"
	"ricemill/backend/internal/service"
	"ricemill/backend/internal/snapshot"
	"ricemill/backend/internal/store"
	"ricemill/backend/internal/store/memory"
	pgstore "ricemill/backend/internal/store/postgres"
)

func main() {
	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal("invalid security configuration", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 3)

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("repository unavailable", zap.Error(err))
	}
	if closeRepo != nil {
		closers = append(closers, closeRepo)
	}

	files, closeFiles, err := openAttachments(ctx, cfg, log)
	if err != nil {
		log.Fatal("attachment store unavailable", zap.Error(err))
	}
	if closeFiles != nil {
		closers = append(closers, closeFiles)
	}

	svc := service.New(repo, service.Options{
		MillName:    cfg.MillName,
		Tariff:      cfg.Tariff,
		AckTarget:   cfg.AckTarget,
		Attachments: files,
		Logger:      logger.Named(log, "svc"),
	})

	location, err := time.LoadLocation(cfg.DigestTimezone)
	if err != nil {
		log.Warn("unknown digest timezone, using local time", zap.String("timezone", cfg.DigestTimezone), zap.Error(err))
		location = time.Local
	}
	digests := scheduler.New(svc, cfg.DigestSchedule, location, logger.Named(log, "scheduler"))
	if err := digests.Start(); err != nil {
		log.Fatal("scheduler unavailable", zap.Error(err))
	}

	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.OperatorUsername, cfg.OperatorPassword)
	if err != nil {
		log.Fatal("auth unavailable", zap.Error(err))
	}
	api := httpapi.New(svc, auth, httpapi.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		Digests:       digests,
		Logger:        logger.Named(log, "http"),
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("rice mill backend listening", zap.String("addr", cfg.Address()), zap.String("mill", cfg.MillName))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	digests.Stop()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("close error", zap.Error(err))
		}
	}

	log.Info("server stopped")
}

// openRepository picks postgres when DATABASE_URL is set, otherwise the
// in-memory store mirrored to redis, a snapshot directory, or nothing.
func openRepository(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Repository, func() error, error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		seeded, err := pg.Seed(ctx)
		if err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		log.Info("repository: postgres", zap.Int("seeded_intakes", seeded))
		return pg, pg.Close, nil
	}

	var (
		backend snapshot.Backend = snapshot.NoopBackend{}
		closer  func() error
	)
	switch {
	case cfg.RedisAddr != "":
		redisBackend := snapshot.NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "ricemill:")
		if err := redisBackend.Ping(ctx); err != nil {
			_ = redisBackend.Close()
			return nil, nil, fmt.Errorf("redis unavailable and REDIS_ADDR is set: %w", err)
		}
		backend, closer = redisBackend, redisBackend.Close
		log.Info("snapshot backend: redis", zap.String("addr", cfg.RedisAddr))
	case cfg.SnapshotDir != "":
		fileBackend, err := snapshot.NewFileBackend(cfg.SnapshotDir)
		if err != nil {
			return nil, nil, err
		}
		backend = fileBackend
		log.Info("snapshot backend: file", zap.String("dir", cfg.SnapshotDir))
	default:
		log.Warn("snapshot backend: none, records are lost on restart")
	}

	repo, err := memory.NewSeeded(ctx, backend, logger.Named(log, "store.memory"))
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, nil, err
	}
	log.Info("repository: in-memory")
	return repo, closer, nil
}

func openAttachments(ctx context.Context, cfg config.Config, log *zap.Logger) (attachments.Store, func() error, error) {
	if cfg.GCSBucket != "" {
		gcs, err := attachments.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Info("attachments: gcs", zap.String("bucket", cfg.GCSBucket))
		return gcs, gcs.Close, nil
	}

	local, err := attachments.NewLocalStore(cfg.AttachmentDir)
	if err != nil {
		return nil, nil, err
	}
	log.Info("attachments: local", zap.String("dir", cfg.AttachmentDir))
	return local, nil, nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.OperatorPassword) < 10 {
		return fmt.Errorf("OPERATOR_PASSWORD must be set and at least 10 characters")
	}
	if err := validatePasswordStrength(cfg.OperatorPassword); err != nil {
		return fmt.Errorf("OPERATOR_PASSWORD is too weak: %w", err)
	}
	return nil
}

// validatePasswordStrength rejects passwords that are one repeated character
// or come from a known-weak list.
func validatePasswordStrength(password string) error {
	known := map[string]bool{
		"1234567890": true, "password12": true, "password123": true, "ricemill123": true,
		"operator123": true, "qwertyuiop": true, "0987654321": true, "admin12345": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("single repeated character not allowed")
	}

	return nil
}
