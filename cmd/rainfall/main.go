package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rainfall-forecast/internal/adapter/bom"
	httpadapter "github.com/couchcryptid/rainfall-forecast/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/rainfall-forecast/internal/adapter/kafka"
	"github.com/couchcryptid/rainfall-forecast/internal/adapter/model"
	"github.com/couchcryptid/rainfall-forecast/internal/adapter/postgres"
	"github.com/couchcryptid/rainfall-forecast/internal/config"
	"github.com/couchcryptid/rainfall-forecast/internal/features"
	"github.com/couchcryptid/rainfall-forecast/internal/observability"
	"github.com/couchcryptid/rainfall-forecast/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := bom.NewClient(cfg.BOMBaseURL, cfg.FetchedDataDir, cfg.FetchTimeout, metrics, logger)
	builder := features.NewBuilder(metrics, logger)
	predictor := model.NewPredictor(model.FileLoader(cfg.ModelPath), metrics, logger)

	var opts []pipeline.Option

	// Observation archive (feature-flagged via DATABASE_URL).
	var store *postgres.Store
	if cfg.ArchiveEnabled() {
		store, err = postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open observation archive", "error", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithArchive(store))
		logger.Info("observation archive enabled")
	} else {
		logger.Info("observation archive disabled")
	}

	// Prediction events (feature-flagged via KAFKA_BROKERS / PREDICTION_EVENTS_ENABLED).
	var writer *kafkaadapter.Writer
	if cfg.PredictionEventsEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("prediction events enabled", "topic", cfg.KafkaPredictionTopic)
	} else {
		logger.Info("prediction events disabled")
	}

	p := pipeline.New(fetcher, pipeline.CleanFunc(bom.Clean), builder, predictor, logger, metrics, opts...)

	var observations httpadapter.ObservationStore
	if store != nil {
		observations = store
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, observations, logger)

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if store != nil {
		store.Close()
	}

	logger.Info("shutdown complete")
}
