package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/adapter/httpapi"
	kafkaadapter "github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/adapter/kafka"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/adapter/mapbox"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/audit"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/config"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/observability"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/resolve"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	resolver := resolve.New(geocoder, logger, metrics)
	engine := domain.NewEngine(logger)

	// Audit trail is optional: without brokers, predictions are served but
	// not recorded.
	var (
		recorder *audit.Recorder
		writer   *kafkaadapter.Writer
		auditRec httpapi.AuditRecorder
		ready    httpapi.ReadinessChecker
	)
	if cfg.AuditEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		recorder = audit.NewRecorder(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		auditRec = recorder
		ready = recorder
		logger.Info("audit trail enabled", "topic", cfg.KafkaAuditTopic, "batch_size", cfg.BatchSize)
	} else {
		logger.Info("audit trail disabled")
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, engine, resolver, auditRec, ready, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start audit recorder.
	if recorder != nil {
		go func() {
			if err := recorder.Run(ctx); err != nil {
				logger.Error("audit recorder error", "error", err)
			}
		}()
	}

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

	logger.Info("shutdown complete")
}
