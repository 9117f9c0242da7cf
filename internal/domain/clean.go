package domain

// Sentinel values USCRN uses for missing numeric measurements.
var missingSentinels = []float64{-99, -9999}

// CleanSentinels returns a copy of data in which numeric cells holding a
// missing-data sentinel are replaced with null. String cells are unchanged.
func CleanSentinels(data AllYearsData) AllYearsData {
	out := make(AllYearsData, len(data))
	for year, stations := range data {
		cleaned := make(YearData, len(stations))
		for label, dataset := range stations {
			cleaned[label] = cleanDataset(dataset)
		}
		out[year] = cleaned
	}
	return out
}

func cleanDataset(d StationDataset) StationDataset {
	out := d.Clone()
	for _, col := range out {
		for i, v := range col {
			if isSentinel(v) {
				col[i] = Null()
			}
		}
	}
	return out
}

func isSentinel(v Value) bool {
	f, ok := v.Float()
	if !ok {
		return false
	}
	for _, s := range missingSentinels {
		if f == s {
			return true
		}
	}
	return false
}
