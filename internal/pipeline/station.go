package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
)

// StationResult is the outcome of fetching and parsing one station file.
// Exactly one of Dataset and Err is set.
type StationResult struct {
	Index   int
	File    string
	Label   string
	Dataset domain.StationDataset
	Err     error
}

// processStation fetches and parses one station file. Failures are returned
// in the result, never as a separate error.
func (c *Collector) processStation(ctx context.Context, year, index int, file string) StationResult {
	res := StationResult{Index: index, File: file}

	text, err := c.source.FetchStation(ctx, year, file)
	if err != nil {
		res.Err = fmt.Errorf("fetch %s: %w", file, err)
	} else {
		res.Label, res.Dataset, res.Err = domain.ParseStation(text, c.settings.Schema, year, file)
	}

	if res.Err != nil {
		res.Dataset = nil
		c.metrics.Stations.WithLabelValues("failure").Inc()
		c.logger.Warn("station failed", "year", year, "file", file, "error", res.Err)
		return res
	}
	c.metrics.Stations.WithLabelValues("success").Inc()
	c.logger.Debug("station parsed", "year", year, "file", file, "label", res.Label, "rows", res.Dataset.Rows())
	return res
}
