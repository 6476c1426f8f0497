package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/kiosk-complaint-api/api/swagger"
	"github.com/noah-isme/kiosk-complaint-api/internal/access"
	"github.com/noah-isme/kiosk-complaint-api/internal/handler"
	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	"github.com/noah-isme/kiosk-complaint-api/internal/repository"
	"github.com/noah-isme/kiosk-complaint-api/internal/server"
	"github.com/noah-isme/kiosk-complaint-api/internal/service"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	"github.com/noah-isme/kiosk-complaint-api/pkg/cache"
	"github.com/noah-isme/kiosk-complaint-api/pkg/config"
	"github.com/noah-isme/kiosk-complaint-api/pkg/database"
	"github.com/noah-isme/kiosk-complaint-api/pkg/logger"
)

// @title Kiosk Complaint API
// @version 1.0.0
// @description Complaint intake and administrator review for public kiosks
// @BasePath /api/v1
// @schemes http

type complaintStore interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	List(ctx context.Context) ([]models.Complaint, error)
	Update(ctx context.Context, id string, update models.ComplaintUpdate) error
}

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type otpStore interface {
	Save(ctx context.Context, handle string, entry repository.OTPEntry, ttl time.Duration) error
	Get(ctx context.Context, handle string) (*repository.OTPEntry, error)
	Delete(ctx context.Context, handle string) error
}

type attemptStore interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	checks := map[string]handler.Pinger{}

	var db *sqlx.DB
	if cfg.Store.Driver == config.StoreDriverPostgres {
		conn, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer conn.Close()
		if err := database.Migrate(ctx, conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		db = conn
		checks["postgres"] = conn.PingContext
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	registry := session.NewRegistry()
	codec := session.NewHandleCodec(cfg.Session.SigningSecret)
	metrics := service.NewMetricsService(registry.Len)
	validate, err := service.NewValidator()
	if err != nil {
		return fmt.Errorf("configure validation: %w", err)
	}

	audit := service.NewAuditService(auditRepository(db), cfg.Audit.Workers, cfg.Audit.Retries, logr)
	audit.Start(ctx)
	defer audit.Stop()

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	complaints := service.NewComplaintService(complaintRepository(db), validate, cacheSvc, metrics, logr)
	review := service.NewReviewService(complaints, audit, logr)
	gates := access.NewGates()

	elevation, err := service.NewElevationService(service.ElevationConfig{
		Secret:      cfg.Admin.Secret,
		SecretHash:  cfg.Admin.SecretHash,
		MaxAttempts: cfg.Admin.MaxAttempts,
		Window:      cfg.Admin.AttemptWindow,
	}, attemptRepository(redisClient), audit, metrics, logr)
	if err != nil {
		return fmt.Errorf("configure elevation: %w", err)
	}

	otp := service.NewOTPProvider(otpRepository(redisClient), service.LogCodeSender{Logger: logr}, cfg.OTP.TTL, cfg.OTP.Length)
	verification := service.NewVerificationService(otp, validate, metrics, logr)

	router := server.NewRouter(server.Dependencies{
		Config:   cfg,
		Logger:   logr,
		Registry: registry,
		Codec:    codec,
		Gates:    gates,
		Metrics:  metrics,
		Handlers: server.Handlers{
			Session:   handler.NewSessionHandler(registry, codec, cfg.Session.Header, review, verification, gates),
			Auth:      handler.NewAuthHandler(verification, elevation),
			Complaint: handler.NewComplaintHandler(complaints),
			Admin:     handler.NewAdminHandler(review, service.NewExportService(cfg.Export.PDFFontPath, logr)),
			Metrics:   handler.NewMetricsHandler(metrics, checks),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logr.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func complaintRepository(db *sqlx.DB) complaintStore {
	if db == nil {
		return repository.NewMemoryComplaintRepository()
	}
	return repository.NewComplaintRepository(db)
}

func auditRepository(db *sqlx.DB) auditStore {
	if db == nil {
		return repository.NewMemoryAuditRepository()
	}
	return repository.NewAuditRepository(db)
}

func otpRepository(client *redis.Client) otpStore {
	if client == nil {
		return repository.NewMemoryOTPRepository()
	}
	return repository.NewRedisOTPRepository(client)
}

func attemptRepository(client *redis.Client) attemptStore {
	if client == nil {
		return repository.NewMemoryAttemptRepository()
	}
	return repository.NewRedisAttemptRepository(client)
}
