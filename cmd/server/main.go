package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"pastebin-lite/config"
	appmodel "pastebin-lite/internal/app/model"
	apprepository "pastebin-lite/internal/app/repository"
	appserver "pastebin-lite/internal/app/server"
	appservice "pastebin-lite/internal/app/service"
	"pastebin-lite/internal/id"
	"pastebin-lite/internal/infra/logger"
	infraNATS "pastebin-lite/internal/infra/nats"
	infraPostgres "pastebin-lite/internal/infra/postgres"
	infraPrometheus "pastebin-lite/internal/infra/prometheus"
	"pastebin-lite/internal/storage"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("store_backend", cfg.Store.Backend),
		zap.Int("server_port", serverPort(cfg)),
		zap.Bool("events_enabled", cfg.Events.Enabled),
	)

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer store.Close()
	log.Info("Connected to store successfully")

	var events *appservice.EventPublisher
	if cfg.Events.Enabled {
		gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
		if err != nil {
			log.Fatal("Failed to open GORM connection", zap.Error(err))
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
		}
		defer sqlDB.Close()

		if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.PasteEvent{}); err != nil {
			log.Fatal("Failed to run database migrations", zap.Error(err))
		}

		pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			log.Fatal("Failed to connect to Postgres", zap.Error(err))
		}
		defer pool.Close()
		log.Info("Connected to Postgres successfully")

		natsConn, js, err := infraNATS.Connect(cfg.NATS)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Drain()
		log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

		eventRepo := apprepository.NewEventRepository(pool)

		consumer := appservice.NewEventConsumer(js, log, eventRepo)
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start paste event consumer", zap.Error(err))
		}

		retention := appservice.NewEventRetention(log, eventRepo, eventRetention(cfg))
		retention.Start()
		defer retention.Stop()

		events = appservice.NewEventPublisher(js, log)
	} else {
		log.Info("Paste event pipeline disabled")
	}

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	pastes := appservice.NewPasteService(store, id.New(cfg.Paste.IDLength), events, nil)

	server := appserver.New(appserver.Dependencies{
		Logger:  log,
		Pastes:  pastes,
		BaseURL: cfg.Server.BaseURL,
	})

	if err := server.Listen(fmt.Sprintf(":%d", serverPort(cfg))); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}

func serverPort(cfg *config.Config) int {
	if cfg.Server.Port > 0 {
		return cfg.Server.Port
	}
	return 8080
}

func eventRetention(cfg *config.Config) time.Duration {
	if cfg.Events.Retention != "" {
		if d, err := time.ParseDuration(cfg.Events.Retention); err == nil && d > 0 {
			return d
		}
	}
	return 24 * time.Hour
}
