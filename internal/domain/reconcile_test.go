package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stationSet(rows int, labels ...string) YearData {
	y := make(YearData, len(labels))
	for _, l := range labels {
		col := make([]Value, rows)
		for i := range col {
			col[i] = Number(float64(i))
		}
		y[l] = StationDataset{"T_CALC": col, "WBANNO": repeat(String(l), rows)}
	}
	return y
}

func repeat(v Value, n int) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestReconcile(t *testing.T) {
	in := AllYearsData{
		"2018": stationSet(2, "A", "B", "C"),
		"2019": stationSet(3, "B", "C", "D"),
	}
	out, stats := Reconcile(in)

	assert.Equal(t, ReconciliationStats{
		YearsProcessed: 2,
		OriginalCounts: map[string]int{"2018": 3, "2019": 3},
		TotalUnique:    4,
		CommonCount:    2,
		Common:         []string{"B", "C"},
		Removed:        []string{"A", "D"},
		RemovedCount:   2,
	}, stats)

	for _, year := range []string{"2018", "2019"} {
		assert.Equal(t, []string{"B", "C"}, out[year].Labels())
		for _, label := range out[year].Labels() {
			if diff := cmp.Diff(in[year][label], out[year][label], cmp.Comparer(Value.Equal)); diff != "" {
				t.Errorf("dataset %s/%s changed (-in +out):\n%s", year, label, diff)
			}
		}
	}
	assert.True(t, SameStations(out))
	assert.False(t, SameStations(in))
}

func TestReconcile_DoesNotAliasInput(t *testing.T) {
	in := AllYearsData{
		"2018": stationSet(1, "A", "B"),
		"2019": stationSet(1, "B"),
	}
	out, _ := Reconcile(in)

	out["2019"]["B"]["T_CALC"][0] = String("changed")
	delete(out["2018"], "B")

	assert.Equal(t, Number(0), in["2019"]["B"]["T_CALC"][0])
	assert.Len(t, in["2018"], 2)
}

func TestReconcile_Idempotent(t *testing.T) {
	in := AllYearsData{
		"2018": stationSet(1, "A", "B", "C"),
		"2019": stationSet(1, "B", "C", "D"),
		"2020": stationSet(1, "C", "B", "E"),
	}
	once, first := Reconcile(in)
	twice, second := Reconcile(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, first.Common, second.Common)
	assert.Empty(t, second.Removed)
}

func TestReconcile_RemovedPlusCommonIsUnion(t *testing.T) {
	in := AllYearsData{
		"2018": stationSet(1, "A", "B", "C", "F"),
		"2019": stationSet(1, "B", "C", "D"),
		"2020": stationSet(1, "C", "G"),
	}
	_, stats := Reconcile(in)

	union := map[string]struct{}{}
	for _, y := range in {
		for l := range y {
			union[l] = struct{}{}
		}
	}
	assert.Equal(t, len(union), stats.TotalUnique)
	assert.Equal(t, stats.TotalUnique, stats.CommonCount+stats.RemovedCount)
	assert.Equal(t, []string{"C"}, stats.Common)
	for _, l := range append(stats.Common, stats.Removed...) {
		assert.Contains(t, union, l)
	}
}

func TestReconcile_Edges(t *testing.T) {
	t.Run("zero years", func(t *testing.T) {
		out, stats := Reconcile(AllYearsData{})
		assert.Empty(t, out)
		assert.Zero(t, stats.YearsProcessed)
		assert.Zero(t, stats.TotalUnique)
		assert.Zero(t, stats.CommonCount)
		assert.NotNil(t, stats.Common)
		assert.NotNil(t, stats.Removed)
	})

	t.Run("single year keeps everything", func(t *testing.T) {
		out, stats := Reconcile(AllYearsData{"2018": stationSet(1, "A", "B")})
		assert.Equal(t, []string{"A", "B"}, stats.Common)
		assert.Empty(t, stats.Removed)
		assert.Len(t, out["2018"], 2)
	})

	t.Run("empty year empties all", func(t *testing.T) {
		out, stats := Reconcile(AllYearsData{
			"2018": stationSet(1, "A", "B"),
			"2019": {},
		})
		require.Contains(t, out, "2018")
		assert.Empty(t, out["2018"])
		assert.Empty(t, out["2019"])
		assert.Equal(t, []string{"A", "B"}, stats.Removed)
		assert.Equal(t, map[string]int{"2018": 2, "2019": 0}, stats.OriginalCounts)
	})
}

func TestCommonStations(t *testing.T) {
	got := CommonStations(AllYearsData{
		"2018": stationSet(1, "Z", "A"),
		"2019": stationSet(1, "A", "Z", "Q"),
	})
	assert.Equal(t, []string{"A", "Z"}, got)
}
