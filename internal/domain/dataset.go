package domain

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// StationDataset is one station's data in columnar form: field name to the
// ordered values of that column. All columns have the same length.
type StationDataset map[string][]Value

// YearData maps a station label to its dataset for one year.
type YearData map[string]StationDataset

// AllYearsData maps a year label ("2018") to that year's stations.
type AllYearsData map[string]YearData

// YearLabel is the key used for a year in AllYearsData.
func YearLabel(year int) string { return strconv.Itoa(year) }

// Rows returns the number of rows, taken from an arbitrary column. Call
// Validate first when the dataset did not come from ParseStation.
func (d StationDataset) Rows() int {
	for _, col := range d {
		return len(col)
	}
	return 0
}

// Validate checks that every column has the same length.
func (d StationDataset) Validate() error {
	want := -1
	for _, name := range slices.Sorted(maps.Keys(d)) {
		n := len(d[name])
		if want == -1 {
			want = n
			continue
		}
		if n != want {
			return fmt.Errorf("column %s has %d values, expected %d", name, n, want)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d StationDataset) Clone() StationDataset {
	if d == nil {
		return nil
	}
	out := make(StationDataset, len(d))
	for name, col := range d {
		out[name] = slices.Clone(col)
	}
	return out
}

// Labels returns the station labels in sorted order.
func (y YearData) Labels() []string {
	return slices.Sorted(maps.Keys(y))
}

// Years returns the year labels in sorted order.
func (a AllYearsData) Years() []string {
	return slices.Sorted(maps.Keys(a))
}

// Validate checks every dataset in every year.
func (a AllYearsData) Validate() error {
	for _, year := range a.Years() {
		for _, label := range a[year].Labels() {
			if err := a[year][label].Validate(); err != nil {
				return fmt.Errorf("year %s station %s: %w", year, label, err)
			}
		}
	}
	return nil
}
