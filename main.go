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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anandpskerala/ArticleHubBackend/internal/di"
	"github.com/anandpskerala/ArticleHubBackend/internal/media"
	"github.com/anandpskerala/ArticleHubBackend/internal/service"
	"github.com/anandpskerala/ArticleHubBackend/pkg/config"
	"github.com/anandpskerala/ArticleHubBackend/pkg/database"
	"github.com/anandpskerala/ArticleHubBackend/pkg/kafka"
	"github.com/anandpskerala/ArticleHubBackend/pkg/logger"
	"github.com/anandpskerala/ArticleHubBackend/pkg/redis"
	"github.com/anandpskerala/ArticleHubBackend/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting ArticleHub API...", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	if cfg.OTel.Enabled {
		_, err := telemetry.Init(ctx, &telemetry.Config{
			Enabled:        true,
			ServiceName:    cfg.OTel.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			CollectorAddr:  cfg.OTel.CollectorAddr,
			SampleRatio:    cfg.OTel.SampleRatio,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Failed to initialize tracer (continuing without tracing): %v", err))
		} else {
			defer telemetry.Shutdown(context.Background())
			appLog.Info("OpenTelemetry tracing initialized")
		}
	}

	// Initialize database connection
	dbCfg := database.FromConfig(&cfg.Database, cfg.OTel.Enabled)
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Redis backs idempotent article creation; the API runs without it
	rdb, err := redis.NewClient(ctx, redis.FromConfig(&cfg.Redis))
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis unavailable, idempotency disabled: %v", err))
		rdb = nil
	} else {
		defer rdb.Close()
		appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Article events
	var publisher service.EventPublisher = service.NoopEventPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.Kafka.ClientID,
			MaxRetries:    3,
			RetryInterval: 2 * time.Second,
			Linger:        5 * time.Millisecond,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka unavailable, article events disabled: %v", err))
		} else {
			defer producer.Close()
			publisher = service.NewKafkaEventPublisher(producer, cfg.Kafka.ArticleTopic)
			appLog.Info("Kafka producer connected", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	}

	// Media storage
	store, err := media.NewStore(ctx, &cfg.Media)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Media store init failed: %v", err))
	}
	appLog.Info("Media store ready", zap.String("provider", cfg.Media.Provider))

	// Build dependency injection container
	container, err := di.NewContainer(&di.ContainerConfig{
		Config:    cfg,
		Logger:    appLog,
		DB:        db,
		Redis:     rdb,
		Media:     store,
		Publisher: publisher,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Container init failed: %v", err))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           container.Router(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("ArticleHub API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
