package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
	"golang.org/x/sync/errgroup"
)

// CollectYear enumerates the station files of year and fetches them in
// consecutive batches of the configured size. Each batch runs concurrently
// and completes before the next one starts. Failed stations are dropped and
// reported; only a failed enumeration fails the year.
func (c *Collector) CollectYear(ctx context.Context, year int) (domain.YearData, YearReport, error) {
	return c.collectYear(ctx, year, false)
}

func (c *Collector) collectYear(ctx context.Context, year int, serial bool) (domain.YearData, YearReport, error) {
	start := c.clock.Now()
	report := YearReport{Year: year}

	files, err := c.source.ListStationFiles(ctx, year)
	if err != nil {
		report.Duration = c.clock.Since(start)
		return nil, report, fmt.Errorf("collect year %d: %w", year, err)
	}
	report.Files = len(files)
	c.logger.Info("year enumerated", "year", year, "files", len(files), "serial", serial)

	results := make([]StationResult, len(files))
	if serial {
		report.Batches = c.runSerial(ctx, year, files, results)
	} else {
		report.Batches = c.runBatches(ctx, year, files, results)
	}

	data := c.merge(year, results, &report)
	report.Duration = c.clock.Since(start)
	c.logger.Info("year collected",
		"year", year,
		"stations", len(data),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"collisions", len(report.Collisions),
		"duration", report.Duration,
	)
	return data, report, nil
}

// runBatches fills results batch by batch, pausing between batches.
func (c *Collector) runBatches(ctx context.Context, year int, files []string, results []StationResult) []BatchReport {
	batches := domain.Partition(files, c.settings.BatchSize)
	reports := make([]BatchReport, 0, len(batches))

	offset := 0
	for i, batch := range batches {
		if i > 0 {
			if err := c.pause(ctx); err != nil {
				c.abandon(year, files, results, offset, err)
				break
			}
		}
		reports = append(reports, c.runBatch(ctx, year, i, offset, batch, results))
		offset += len(batch)
	}
	return reports
}

func (c *Collector) runBatch(ctx context.Context, year, index, offset int, files []string, results []StationResult) BatchReport {
	start := c.clock.Now()

	// Each goroutine writes only its own slot, so no lock is needed.
	var g errgroup.Group
	for i, file := range files {
		g.Go(func() error {
			results[offset+i] = c.processStation(ctx, year, offset+i, file)
			return nil
		})
	}
	_ = g.Wait()

	br := c.batchReport(index, results[offset:offset+len(files)], start)
	c.logger.Info("batch complete",
		"year", year,
		"batch", index,
		"size", br.Size,
		"succeeded", br.Succeeded,
		"failed", br.Failed,
		"duration", br.Duration,
	)
	return br
}

// runSerial fills results one station at a time. The whole year is reported
// as a single batch.
func (c *Collector) runSerial(ctx context.Context, year int, files []string, results []StationResult) []BatchReport {
	if len(files) == 0 {
		return []BatchReport{}
	}
	start := c.clock.Now()
	for i, file := range files {
		results[i] = c.processStation(ctx, year, i, file)
	}
	return []BatchReport{c.batchReport(0, results, start)}
}

func (c *Collector) batchReport(index int, results []StationResult, start time.Time) BatchReport {
	br := BatchReport{Index: index, Size: len(results)}
	for _, r := range results {
		if r.Err != nil {
			br.Failed++
		} else {
			br.Succeeded++
		}
	}
	br.Duration = c.clock.Since(start)
	c.metrics.BatchSize.Observe(float64(br.Size))
	c.metrics.BatchDuration.Observe(br.Duration.Seconds())
	return br
}

// abandon marks every station from offset on as failed without fetching it.
func (c *Collector) abandon(year int, files []string, results []StationResult, offset int, err error) {
	c.logger.Warn("year interrupted", "year", year, "remaining", len(files)-offset, "error", err)
	for i := offset; i < len(files); i++ {
		results[i] = StationResult{Index: i, File: files[i], Err: fmt.Errorf("fetch %s: %w", files[i], err)}
	}
}

// pause waits out the inter-batch throttle.
func (c *Collector) pause(ctx context.Context) error {
	if c.settings.BatchPause <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(c.settings.BatchPause):
		return nil
	}
}

// merge folds results into YearData in listing order, so the outcome does
// not depend on which goroutine finished first.
func (c *Collector) merge(year int, results []StationResult, report *YearReport) domain.YearData {
	data := make(domain.YearData, len(results))
	owner := make(map[string]string, len(results))

	for _, r := range results {
		if r.Err != nil {
			report.Failed++
			report.Failures = append(report.Failures, StationFailure{File: r.File, Err: r.Err})
			continue
		}
		report.Succeeded++
		if prev, ok := owner[r.Label]; ok {
			report.Collisions = append(report.Collisions, Collision{Label: r.Label, Kept: r.File, Replaced: prev})
			c.metrics.LabelCollisions.Inc()
			c.logger.Warn("station label collision", "year", year, "label", r.Label, "kept", r.File, "replaced", prev)
		}
		owner[r.Label] = r.File
		data[r.Label] = r.Dataset
	}
	return data
}
