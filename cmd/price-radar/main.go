package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ankitdev/price-radar/internal/api"
	"github.com/ankitdev/price-radar/internal/browser"
	"github.com/ankitdev/price-radar/internal/config"
	"github.com/ankitdev/price-radar/internal/database"
	"github.com/ankitdev/price-radar/internal/events"
	"github.com/ankitdev/price-radar/internal/input"
	"github.com/ankitdev/price-radar/internal/models"
	"github.com/ankitdev/price-radar/internal/normalize"
	"github.com/ankitdev/price-radar/internal/pipeline"
	"github.com/ankitdev/price-radar/internal/scrape"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database connection
	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	records := database.NewRecordRepository(db)
	if err := records.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Redis client for the outbox relay
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	relay := database.NewRelay(db, redisClient, logger, database.RelayConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
	})
	go func() {
		if err := relay.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("relay stopped with error", "error", err)
		}
	}()

	// Browser setup
	b, err := browser.New(&browser.Options{
		Headless: cfg.Browser.Headless,
		Timeout:  cfg.Browser.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	// Per-source extractors
	amazonCfg := scrape.AmazonConfig{
		BaseURL:     cfg.Amazon.BaseURL,
		WaitTimeout: cfg.Amazon.WaitTimeout,
	}
	if cfg.Amazon.AssumeRating {
		amazonCfg.AssumedRating = &cfg.Amazon.AssumedRating
	}

	extractors := []scrape.Extractor{
		scrape.NewAmazonExtractor(b, amazonCfg, logger),
		scrape.NewFlipkartExtractor(b, scrape.FlipkartConfig{
			BaseURL:     cfg.Flipkart.BaseURL,
			WaitTimeout: cfg.Flipkart.WaitTimeout,
			OverlayWait: cfg.Flipkart.OverlayWait,
		}, logger),
	}

	normalizer := normalize.New(normalize.Config{
		Currencies: map[models.Source]string{
			models.SourceAmazon:   cfg.Normalizer.AmazonCurrency,
			models.SourceFlipkart: cfg.Normalizer.FlipkartCurrency,
		},
		TitleFallbackToTarget: cfg.Normalizer.TitleFallbackToTarget,
	}, logger)

	writer := events.NewRecordWriter(db, records, logger)
	metrics := pipeline.NewMetrics()

	p := pipeline.New(extractors, normalizer, writer, metrics, logger, pipeline.Config{
		Workers:        cfg.Pipeline.Workers,
		AttemptTimeout: cfg.Pipeline.AttemptTimeout,
		CacheSize:      cfg.Pipeline.CacheSize,
	})

	// Load targets and run the ingestion pass in the background; the
	// query surface serves whatever has been stored so far.
	go func() {
		loader := input.NewLoader(logger)
		targets, err := loader.Load(cfg.Input.CSVPath)
		if err != nil {
			logger.Error("failed to load scrape targets", "error", err, "path", cfg.Input.CSVPath)
			return
		}
		if len(targets) == 0 {
			logger.Warn("no scrape targets in input", "path", cfg.Input.CSVPath)
			return
		}

		outcomes := p.Run(ctx, targets)

		stored, failed := 0, 0
		for _, o := range outcomes {
			if o.State == models.OutcomeStored {
				stored++
			} else {
				failed++
			}
		}
		logger.Info("ingestion pass finished",
			"targets", len(targets),
			"stored", stored,
			"failed", failed)
	}()

	// Query surface
	handlers := api.NewHandlers(records, relay, logger)
	router := api.NewRouter(handlers, metrics.Registry)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
