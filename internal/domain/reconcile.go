package domain

import (
	"maps"
	"slices"
)

// ReconciliationStats summarizes one reconciliation. It is computed once and
// not modified afterwards.
type ReconciliationStats struct {
	YearsProcessed int            `json:"years_processed"`
	OriginalCounts map[string]int `json:"original_counts"`
	TotalUnique    int            `json:"total_unique"`
	CommonCount    int            `json:"common_count"`
	Common         []string       `json:"common"`
	Removed        []string       `json:"removed"`
	RemovedCount   int            `json:"removed_count"`
}

// Reconcile restricts every year to the stations present in all years. It
// returns a new structure and leaves in untouched. Removed is the union of all
// year key sets minus their intersection. With no years every count is zero.
func Reconcile(in AllYearsData) (AllYearsData, ReconciliationStats) {
	stats := ReconciliationStats{
		YearsProcessed: len(in),
		OriginalCounts: make(map[string]int, len(in)),
		Common:         []string{},
		Removed:        []string{},
	}

	seen := make(map[string]int)
	for year, stations := range in {
		stats.OriginalCounts[year] = len(stations)
		for label := range stations {
			seen[label]++
		}
	}

	common := make(map[string]struct{})
	for label, n := range seen {
		if n == len(in) {
			common[label] = struct{}{}
			stats.Common = append(stats.Common, label)
		} else {
			stats.Removed = append(stats.Removed, label)
		}
	}
	slices.Sort(stats.Common)
	slices.Sort(stats.Removed)
	stats.TotalUnique = len(seen)
	stats.CommonCount = len(stats.Common)
	stats.RemovedCount = len(stats.Removed)

	out := make(AllYearsData, len(in))
	for year, stations := range in {
		pruned := make(YearData, len(common))
		for label, dataset := range stations {
			if _, ok := common[label]; ok {
				pruned[label] = dataset.Clone()
			}
		}
		out[year] = pruned
	}
	return out, stats
}

// CommonStations returns the sorted labels present in every year of data.
func CommonStations(data AllYearsData) []string {
	_, stats := Reconcile(data)
	return stats.Common
}

// SameStations reports whether every year in data has the same label set.
func SameStations(data AllYearsData) bool {
	var want []string
	for i, year := range data.Years() {
		labels := slices.Sorted(maps.Keys(data[year]))
		if i == 0 {
			want = labels
			continue
		}
		if !slices.Equal(want, labels) {
			return false
		}
	}
	return true
}
