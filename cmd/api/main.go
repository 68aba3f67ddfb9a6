package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	"github.com/BruksfildServices01/micro8gents-api/internal/config"
	dbpkg "github.com/BruksfildServices01/micro8gents-api/internal/db"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	infraRepo "github.com/BruksfildServices01/micro8gents-api/internal/infra/repository"
	"github.com/BruksfildServices01/micro8gents-api/internal/logger"
	"github.com/BruksfildServices01/micro8gents-api/internal/routes"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/billing"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/mailer"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/objectstore"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/telephony"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/voice"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/workflow"
	"github.com/BruksfildServices01/micro8gents-api/internal/session"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage/memory"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)
	httperr.UseJSONFieldNames()

	// ======================================================
	// STORAGE
	// ======================================================
	store, err := openStorage(cfg, log)
	if err != nil {
		return err
	}

	revocations, err := openRevocations(ctx, cfg, log)
	if err != nil {
		return err
	}

	// ======================================================
	// SERVICES
	// ======================================================
	httpClient := &http.Client{Timeout: 20 * time.Second}

	workflows := workflow.NewAsync(
		workflow.New(cfg.N8nWebhookURL, cfg.N8nWebhookSecret, httpClient, log),
		log,
	)

	dispatcher := audit.NewDispatcher(audit.New(store), log)

	deps := routes.Deps{
		Config:      cfg,
		Store:       store,
		Log:         log,
		Sessions:    session.NewManager(cfg.JWTSecret, cfg.SessionTTL),
		Revocations: revocations,
		Billing:     billing.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, log),
		Mailer:      mailer.New(cfg.SendGridAPIKey, cfg.SendGridFromEmail, log),
		Telephony: telephony.New(telephony.Options{
			AccountSID:     cfg.TwilioAccountSID,
			AuthToken:      cfg.TwilioAuthToken,
			FallbackNumber: cfg.TwilioFallbackNumber,
			HTTPClient:     httpClient,
		}, log),
		Voice:     voice.New(cfg.ElevenLabsAPIKey, "", httpClient, log),
		Workflows: workflows,
		Objects: objectstore.New(objectstore.Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		}),
		Audit: dispatcher,
		Done:  ctx.Done(),
	}
	if cfg.EmailDomainCheck {
		deps.Resolver = net.DefaultResolver
	}

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)

	// In-flight requests are done; flush what they queued.
	workflows.Wait()
	dispatcher.Close()

	return err
}

func openStorage(cfg *config.Config, log *zap.Logger) (storage.Storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return memory.New(), nil
	}

	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}
	return infraRepo.NewGormStorage(db), nil
}

func openRevocations(ctx context.Context, cfg *config.Config, log *zap.Logger) (session.Revocations, error) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryRevocations(), nil
	}

	client, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	log.Info("session revocations backed by redis", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisRevocations(client), nil
}
