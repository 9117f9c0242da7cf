package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/uscrn-etl/internal/config"
	"github.com/couchcryptid/uscrn-etl/internal/domain"
	"github.com/couchcryptid/uscrn-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Source enumerates and downloads station files.
type Source interface {
	ListStationFiles(ctx context.Context, year int) ([]string, error)
	FetchStation(ctx context.Context, year int, file string) (string, error)
}

// Sink stores a reconciled run.
type Sink interface {
	Save(ctx context.Context, data domain.AllYearsData) error
}

// Settings controls how a Collector schedules and post-processes stations.
type Settings struct {
	Schema         domain.Schema
	BatchSize      int
	BatchPause     time.Duration
	CleanSentinels bool
}

// SettingsFromConfig maps service configuration onto collector settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Schema:         domain.HourlySchema,
		BatchSize:      cfg.BatchSize,
		BatchPause:     cfg.BatchPause,
		CleanSentinels: cfg.CleanSentinels,
	}
}

// Collector gathers station data for a set of years, reconciles it, and
// hands the result to its sinks.
type Collector struct {
	source   Source
	sinks    []Sink
	settings Settings
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	ready     atomic.Bool
	lastStats atomic.Pointer[domain.ReconciliationStats]
}

// Option customizes a Collector.
type Option func(*Collector)

// WithClock sets the clock used for the inter-batch pause and durations.
func WithClock(c clockwork.Clock) Option {
	return func(col *Collector) { col.clock = c }
}

// WithSinks sets the sinks written after every fetched run.
func WithSinks(sinks ...Sink) Option {
	return func(col *Collector) { col.sinks = sinks }
}

// New creates a Collector reading from src.
func New(src Source, settings Settings, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Collector {
	if len(settings.Schema) == 0 {
		settings.Schema = domain.HourlySchema
	}
	if settings.BatchSize < 1 {
		settings.BatchSize = 1
	}
	c := &Collector{
		source:   src,
		settings: settings,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckReadiness returns nil once a run has completed.
func (c *Collector) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("collector has not completed a run yet")
	}
	return nil
}

// LastStats returns the statistics of the most recent reconciliation.
func (c *Collector) LastStats() (domain.ReconciliationStats, bool) {
	s := c.lastStats.Load()
	if s == nil {
		return domain.ReconciliationStats{}, false
	}
	return *s, true
}

// Run collects every year concurrently. A year whose enumeration fails is
// recorded in Result.YearErrors and contributes an empty station set. The
// returned error is non-nil only when a sink fails, and wraps
// domain.ErrPersistence; Result is populated either way.
func (c *Collector) Run(ctx context.Context, years []int) (Result, error) {
	return c.run(ctx, years, false)
}

// RunSerial performs the same steps as Run one year and one station at a
// time, without pauses. For the same upstream content it yields the same
// Data and Stats as Run.
func (c *Collector) RunSerial(ctx context.Context, years []int) (Result, error) {
	return c.run(ctx, years, true)
}

// ReconcileLoaded reconciles previously persisted data in place of fetching.
// Sinks are not written.
func (c *Collector) ReconcileLoaded(ctx context.Context, data domain.AllYearsData) (Result, error) {
	start := c.clock.Now()
	c.metrics.RunRunning.Set(1)
	defer c.metrics.RunRunning.Set(0)

	res := Result{YearErrors: map[string]error{}}
	return c.finish(ctx, data, res, start, false)
}

func (c *Collector) run(ctx context.Context, years []int, serial bool) (Result, error) {
	start := c.clock.Now()
	c.metrics.RunRunning.Set(1)
	defer c.metrics.RunRunning.Set(0)
	c.logger.Info("collection started", "years", years, "serial", serial, "batch_size", c.settings.BatchSize)

	datas := make([]domain.YearData, len(years))
	reports := make([]YearReport, len(years))
	errs := make([]error, len(years))

	if serial {
		for i, year := range years {
			datas[i], reports[i], errs[i] = c.collectYear(ctx, year, true)
		}
	} else {
		var g errgroup.Group
		for i, year := range years {
			g.Go(func() error {
				datas[i], reports[i], errs[i] = c.collectYear(ctx, year, false)
				return nil
			})
		}
		_ = g.Wait()
	}

	all := make(domain.AllYearsData, len(years))
	res := Result{Years: reports, YearErrors: map[string]error{}}
	for i, year := range years {
		label := domain.YearLabel(year)
		if errs[i] != nil {
			c.metrics.Years.WithLabelValues("failure").Inc()
			c.logger.Error("year failed", "year", year, "error", errs[i])
			res.YearErrors[label] = errs[i]
			all[label] = domain.YearData{}
			continue
		}
		c.metrics.Years.WithLabelValues("success").Inc()
		all[label] = datas[i]
	}

	return c.finish(ctx, all, res, start, true)
}

// finish cleans and reconciles all, then writes sinks when persist is set.
func (c *Collector) finish(ctx context.Context, all domain.AllYearsData, res Result, start time.Time, persist bool) (Result, error) {
	if c.settings.CleanSentinels {
		all = domain.CleanSentinels(all)
	}
	res.Data, res.Stats = domain.Reconcile(all)

	stats := res.Stats
	c.lastStats.Store(&stats)
	c.metrics.CommonStations.Set(float64(stats.CommonCount))
	c.logger.Info("reconciliation complete",
		"years", stats.YearsProcessed,
		"original_counts", stats.OriginalCounts,
		"total_unique", stats.TotalUnique,
		"common", stats.CommonCount,
		"removed", stats.RemovedCount,
	)

	if persist {
		for _, sink := range c.sinks {
			if err := sink.Save(ctx, res.Data); err != nil {
				res.Duration = c.clock.Since(start)
				if !errors.Is(err, domain.ErrPersistence) {
					err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
				}
				c.logger.Error("sink failed", "sink", fmt.Sprintf("%T", sink), "error", err)
				return res, err
			}
		}
	}

	res.Duration = c.clock.Since(start)
	c.metrics.RunDuration.Observe(res.Duration.Seconds())
	c.ready.Store(true)
	return res, nil
}
