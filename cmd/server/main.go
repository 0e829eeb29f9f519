package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Mtaasisi/POS-sub062/internal/api"
	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/config"
	"github.com/Mtaasisi/POS-sub062/internal/events"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
	"github.com/Mtaasisi/POS-sub062/internal/repository/memory"
	"github.com/Mtaasisi/POS-sub062/internal/repository/postgres"
	"github.com/Mtaasisi/POS-sub062/internal/service"
	"github.com/Mtaasisi/POS-sub062/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting shipment tracking server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
	)

	// Initialize storage
	var repos *repository.Repositories
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		repos = memory.NewRepositories(memory.NewStore())
	default:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		// Run migrations
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = postgres.ApplySchema(migrateCtx, db, migrations.InitSchema)
		cancel()
		if err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		repos = postgres.NewRepositories(db, logger)
	}

	// Status change events
	var publisher events.Publisher = events.NopPublisher{}
	if brokers := events.ParseBrokers(cfg.Kafka.Brokers); len(brokers) > 0 {
		publisher = events.NewKafkaProducer(brokers, cfg.Kafka.Topic, logger)
		logger.Info("Publishing status changes to Kafka",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	tracking, err := service.NewSnowflakeTracking(cfg.TrackingNodeID)
	if err != nil {
		logger.Fatal("Failed to create tracking number generator", zap.Error(err))
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if !tokens.Enabled() {
		logger.Warn("JWT_SECRET is not set; only API keys will authenticate")
	}

	// Initialize router
	router := api.NewRouter(cfg, api.Dependencies{
		Repos:     repos,
		Shipments: service.NewShipmentService(repos, publisher, tracking, logger),
		Cargo:     service.NewCargoService(repos, logger),
		Tokens:    tokens,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
