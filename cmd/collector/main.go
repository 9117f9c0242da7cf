package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/uscrn-etl/internal/adapter/http"
	"github.com/couchcryptid/uscrn-etl/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/uscrn-etl/internal/adapter/kafka"
	"github.com/couchcryptid/uscrn-etl/internal/adapter/uscrn"
	"github.com/couchcryptid/uscrn-etl/internal/config"
	"github.com/couchcryptid/uscrn-etl/internal/observability"
	"github.com/couchcryptid/uscrn-etl/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	fetcher := uscrn.NewFetcher(cfg, logger, metrics)
	defer fetcher.Close()
	client := uscrn.NewClient(fetcher, cfg.SourceBaseURL, cfg.StationMarker)

	store := jsonfile.NewStore(cfg.DataPath, logger)
	sinks := []pipeline.Sink{store}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	collector := pipeline.New(client, pipeline.SettingsFromConfig(cfg), logger, metrics, pipeline.WithSinks(sinks...))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, collector, collector, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	code := collect(ctx, cfg, collector, store, logger)

	if srv != nil {
		if code == 0 {
			<-ctx.Done()
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return code
}

// collect performs one run and logs its summary. It returns the process exit code.
func collect(ctx context.Context, cfg *config.Config, collector *pipeline.Collector, store *jsonfile.Store, logger *slog.Logger) int {
	var (
		res pipeline.Result
		err error
	)
	switch {
	case cfg.SkipFetch:
		data, loadErr := store.Load(ctx)
		if loadErr != nil {
			logger.Error("failed to load persisted data", "path", store.Path(), "error", loadErr)
			return 1
		}
		res, err = collector.ReconcileLoaded(ctx, data)
	case cfg.FetchMode == config.FetchSerial:
		res, err = collector.RunSerial(ctx, cfg.Years)
	default:
		res, err = collector.Run(ctx, cfg.Years)
	}
	if err != nil {
		logger.Error("collection failed", "error", err)
		return 1
	}

	succeeded, failed := res.Stations()
	for year, yerr := range res.YearErrors {
		logger.Warn("year skipped", "year", year, "error", yerr)
	}
	logger.Info("collection summary",
		"stations_succeeded", succeeded,
		"stations_failed", failed,
		"years_failed", len(res.YearErrors),
		"common_stations", res.Stats.CommonCount,
		"removed_stations", res.Stats.RemovedCount,
		"total_unique", res.Stats.TotalUnique,
		"duration", res.Duration,
	)
	return 0
}
