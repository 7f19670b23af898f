package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bureau-service/internal/bureau"
	"github.com/Dan9191/bureau-service/internal/cache"
	"github.com/Dan9191/bureau-service/internal/config"
	"github.com/Dan9191/bureau-service/internal/handler"
	"github.com/Dan9191/bureau-service/internal/logger"
	"github.com/Dan9191/bureau-service/internal/repository"
	"github.com/Dan9191/bureau-service/internal/scheduler"
	"github.com/Dan9191/bureau-service/internal/service"
	"github.com/Dan9191/bureau-service/internal/utils/email"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	log, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize source tables
	source, closeSource, err := newFeedSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize feed: %v", err)
	}
	defer closeSource()

	store := repository.NewStore(source, log)
	if err := store.Reload(ctx); err != nil {
		log.Fatalf("Initial load failed: %v", err)
	}

	// Initialize layers
	opts := []service.Option{service.WithRiskAlerts(newAlerter(cfg, log))}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		reportCache := cache.NewReportCache(client, cfg.ReportCacheTTL)
		if err := reportCache.Ping(ctx); err != nil {
			log.Warnf("Redis unavailable, report cache disabled: %v", err)
		} else {
			opts = append(opts, service.WithCache(reportCache))
		}
	}
	svc := service.NewService(store, log, cfg, opts...)
	defer svc.Close()
	h := handler.NewHandler(svc, log)

	sched, err := scheduler.New(cfg.ReloadSchedule, svc, log)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Server shutdown failed: %v", err)
		}
	}()

	log.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Info("Server stopped")
}

// newFeedSource builds the configured source-table backend. The returned
// func releases backend resources.
func newFeedSource(ctx context.Context, cfg *config.Config) (repository.FeedSource, func(), error) {
	noop := func() {}

	switch cfg.FeedBackend {
	case config.BackendS3:
		opener, err := repository.NewS3Opener(ctx, repository.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, noop, err
		}
		return repository.NewDelimitedFeed(opener, cfg.TradelineFeed, cfg.FeatureFeed, cfg.Delimiter()), noop, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("failed to ping database: %w", err)
		}
		return repository.NewPostgresFeed(db, bureau.FeatureColumns()), func() { db.Close() }, nil

	default:
		return repository.NewDelimitedFeed(repository.FileOpener{}, cfg.TradelineFeed, cfg.FeatureFeed, cfg.Delimiter()), noop, nil
	}
}

func newAlerter(cfg *config.Config, log *logrus.Logger) service.RiskAlerter {
	if cfg.SMTPHost == "" || cfg.RiskAlertEmail == "" {
		return nil
	}
	return email.NewSender(cfg, log)
}
