// cmd/onboarding-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marvetti-onboarding/internal/ai"
	"marvetti-onboarding/internal/archive"
	"marvetti-onboarding/internal/audit"
	"marvetti-onboarding/internal/common/aws"
	"marvetti-onboarding/internal/common/config"
	"marvetti-onboarding/internal/common/database"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/common/observability"
	"marvetti-onboarding/internal/notify"
	"marvetti-onboarding/internal/orchestrator"
	"marvetti-onboarding/internal/server"
	"marvetti-onboarding/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting onboarding server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("onboarding-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	trail := audit.NewTrail(pg.GetDB(), log)
	if err := trail.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("audit schema setup failed", zap.Error(err))
	}

	// --- Session store ---
	store := session.NewRedisStore(
		rdb.GetClient(),
		cfg.Session.KeyPrefix,
		config.GetDuration(cfg.Session.TTL),
		log,
	)

	// --- Gemini client ---
	gemini := ai.NewClient(cfg.APIs.Gemini, log)

	// --- Orchestrator options ---
	opts := []orchestrator.Option{
		orchestrator.WithAuditTrail(trail),
	}

	readiness := []server.ReadinessCheck{
		rdb.Ping,
		pg.Ping,
	}

	// --- Elasticsearch, only when archiving is on ---
	if cfg.Archive.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		opts = append(opts, orchestrator.WithArchiver(
			archive.NewIndexer(esClient.Client, cfg.Archive.Index, log),
		))
		readiness = append(readiness, func(context.Context) error { return esClient.Ping() })
	}

	// --- AWS notification channels ---
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		opts = append(opts, orchestrator.WithNotifier(
			notify.NewNotifier(cfg.Notifications, sesClient, snsClient, log),
		))
		zapLog.Info("Operations notifications enabled")
	}

	orch := orchestrator.New(store, gemini, gemini, log, opts...)

	srv := server.New(orch, cfg.Server, log, readiness...)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	zapLog.Info("Onboarding server started", zap.String("address", cfg.Server.Address))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP shutdown failed", zap.Error(err))
	}

	// Let in-flight artifact generation land before the stores close.
	orch.Wait()

	zapLog.Info("Onboarding server stopped")
}
