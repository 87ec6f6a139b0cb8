// Server entrypoint. Wires configuration, backing stores, services, and the
// HTTP router, then runs until interrupted. Stores degrade to in-memory
// implementations when their backing service is not configured, so a bare
// `go run ./cmd/server` brings up a working instance for local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vouch/internal/audit"
	"vouch/internal/jwtauth"
	"vouch/internal/platform/config"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/postgres"
	platformredis "vouch/internal/platform/redis"
	"vouch/internal/storage"
	httptransport "vouch/internal/transport/http"
	"vouch/internal/verification/form"
	"vouch/internal/verification/handler"
	"vouch/internal/verification/metrics"
	"vouch/internal/verification/service"
	submissionStore "vouch/internal/verification/store/submission"
	"vouch/internal/verification/upload"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	if cfg.JWTSigningKey == "" {
		log.Error("JWT_SIGNING_KEY is required")
		os.Exit(1)
	}

	health := map[string]httptransport.HealthChecker{}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	pgPool, err := postgres.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	var draftStore form.Store
	if redisClient != nil {
		draftStore = form.NewRedisStore(redisClient.Client, config.DraftTTL)
		health["redis"] = redisClient
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL not set, wizard drafts held in memory")
		draftStore = form.NewInMemoryStore()
	}

	var submissions service.SubmissionStore
	if pgPool != nil {
		submissions = submissionStore.NewPostgres(pgPool.Pool)
		health["postgres"] = pgPool
		defer pgPool.Close()
	} else {
		log.Warn("POSTGRES_URL not set, submissions held in memory")
		submissions = submissionStore.NewInMemoryStore()
	}

	var uploader storage.Uploader
	var docChecker service.DocumentChecker
	if client := storage.NewClient(cfg.Storage); client != nil {
		uploader = client
		docChecker = client
	} else {
		log.Warn("STORAGE_ENDPOINT not set, documents held in memory")
		mem := storage.NewInMemory()
		uploader = mem
		docChecker = mem
	}

	kafkaSink, err := audit.NewKafkaSink(cfg.Kafka, log)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	var auditSink audit.Sink
	if kafkaSink != nil {
		auditSink = kafkaSink
		defer kafkaSink.Close()
	}
	auditPublisher := audit.NewPublisher(audit.NewInMemoryStore(), auditSink, log)

	m := metrics.New()

	forms, err := form.New(draftStore, log)
	if err != nil {
		log.Error("form service init failed", "error", err)
		os.Exit(1)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(auditPublisher),
		service.WithDocumentChecker(docChecker),
	}
	if redisClient != nil {
		opts = append(opts, service.WithStatusCache(
			service.NewRedisStatusCache(redisClient.Client, config.StatusCacheTTL, log)))
	}
	submissionSvc, err := service.New(submissions, draftStore, opts...)
	if err != nil {
		log.Error("submission service init failed", "error", err)
		os.Exit(1)
	}

	pipeline := upload.New(uploader, cfg.MaxUploadBytes)
	verificationHandler := handler.New(forms, submissionSvc, pipeline, auditPublisher, log, m)

	router := httptransport.NewRouter(httptransport.Deps{
		Verification:   verificationHandler,
		Auth:           jwtauth.New(cfg.JWTSigningKey, "vouch", "vouch"),
		AdminTokenHash: cfg.AdminTokenHash,
		Health:         health,
		Logger:         log,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
