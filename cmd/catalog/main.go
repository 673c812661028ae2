package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/psdplots/plot-catalog-service/internal/adapter/http"
	kafkaadapter "github.com/psdplots/plot-catalog-service/internal/adapter/kafka"
	"github.com/psdplots/plot-catalog-service/internal/archive"
	"github.com/psdplots/plot-catalog-service/internal/catalog"
	"github.com/psdplots/plot-catalog-service/internal/config"
	"github.com/psdplots/plot-catalog-service/internal/metadata"
	"github.com/psdplots/plot-catalog-service/internal/observability"
	"github.com/psdplots/plot-catalog-service/internal/search"
	"github.com/psdplots/plot-catalog-service/internal/thumbnail"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := metadata.Load(cfg.SiteNamesFile, cfg.StationMetaFile, logger)
	if err != nil {
		logger.Error("failed to load station metadata", "error", err)
		os.Exit(1)
	}
	metrics.MetadataRecords.Set(float64(store.Len()))

	plots := archive.New(cfg.PlotsDir)
	plots.MaxFiles = cfg.ScanMaxFiles

	resolver := thumbnail.NewCachedResolver(
		thumbnail.NewScanResolver(plots, cfg.ScanTimeout, logger, metrics),
		thumbnail.CacheOptions{
			MaxEntries: cfg.ThumbnailCacheSize,
			TTL:        cfg.ThumbnailCacheTTL,
		},
		metrics,
	)
	index := search.New(store, resolver, plots, logger, metrics)
	cat := catalog.New(plots, store, resolver, index, cfg.NetworkOrder, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cat, cat, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the plot change feed (feature-flagged via KAFKA_ENABLED).
	var listener *kafkaadapter.Listener
	if cfg.KafkaEnabled {
		listener = kafkaadapter.NewListener(cfg, resolver, plots, logger, metrics)
		go func() {
			if err := listener.Run(ctx); err != nil {
				logger.Error("change feed error", "error", err)
			}
		}()
		logger.Info("change feed enabled", "topic", cfg.KafkaTopic, "group_id", cfg.KafkaGroupID)
	} else {
		logger.Info("change feed disabled")
	}

	logger.Info("catalog ready",
		"plots_dir", cfg.PlotsDir,
		"stations", store.Len(),
		"cache_size", cfg.ThumbnailCacheSize,
		"cache_ttl", cfg.ThumbnailCacheTTL,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if listener != nil {
		if err := listener.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
