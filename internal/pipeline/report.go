package pipeline

import (
	"time"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
)

// BatchReport summarizes one batch of station fetches.
type BatchReport struct {
	Index     int
	Size      int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// StationFailure records a station file that was dropped from its year.
type StationFailure struct {
	File string
	Err  error
}

// Collision records two station files whose truncated labels are equal.
// The later file in listing order replaces the earlier one.
type Collision struct {
	Label    string
	Kept     string
	Replaced string
}

// YearReport summarizes the collection of one year.
type YearReport struct {
	Year       int
	Files      int
	Batches    []BatchReport
	Succeeded  int
	Failed     int
	Failures   []StationFailure
	Collisions []Collision
	Duration   time.Duration
}

// Result is the outcome of a collection run. Data is reconciled, so every
// year holds the same station labels.
type Result struct {
	Data  domain.AllYearsData
	Stats domain.ReconciliationStats

	// Years holds one report per requested year, in request order. It is
	// empty when the data was loaded instead of fetched.
	Years []YearReport

	// YearErrors maps a year label to the reason the whole year failed.
	YearErrors map[string]error

	Duration time.Duration
}

// Stations returns the total number of station files fetched and parsed
// successfully, and the number dropped, across all years.
func (r Result) Stations() (succeeded, failed int) {
	for _, y := range r.Years {
		succeeded += y.Succeeded
		failed += y.Failed
	}
	return succeeded, failed
}
