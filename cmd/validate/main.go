// Command validate checks the integrity of a persisted collector document:
// every year must hold the same station labels, every station must carry the
// canonical hourly02 field set with equal column lengths, and each station
// must resolve to a single WBAN number across years.
//
// Usage:
//
//	go run ./cmd/validate -data data/weatherDataJSONObject.json
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "data/weatherDataJSONObject.json", "path to the persisted collector JSON document")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== USCRN Data Integrity Validation ===")
	fmt.Fprintln(out)

	data, err := loadDocument(dataPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load %s: %v\n", dataPath, err)
		return 1
	}

	phases := []*phase{
		validateYearKeys(data),
		validateColumnLengths(data),
		validateFieldSet(data, domain.HourlySchema),
		validateStationIdentity(data),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	stations, rows := countStations(data)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Years: %d, station datasets: %d, rows: %d\n", len(data), stations, rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// loadDocument decodes the document without validating it, so that every
// problem is reported by a phase instead of aborting the run.
func loadDocument(path string) (domain.AllYearsData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data domain.AllYearsData
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		data = domain.AllYearsData{}
	}
	return data, nil
}

func countStations(data domain.AllYearsData) (stations, rows int) {
	for _, year := range data {
		for _, ds := range year {
			stations++
			rows += ds.Rows()
		}
	}
	return stations, rows
}

// ── Phase 1: Year key sets ──
// Reconciled output holds the same stations in every year.

func validateYearKeys(data domain.AllYearsData) *phase {
	p := &phase{name: "Phase 1: Year Key Sets"}

	union := map[string]bool{}
	for _, year := range data {
		for label := range year {
			union[label] = true
		}
	}
	all := slices.Sorted(maps.Keys(union))

	for _, y := range data.Years() {
		var missing []string
		for _, label := range all {
			if _, ok := data[y][label]; !ok {
				missing = append(missing, label)
			}
		}
		if len(missing) > 0 {
			p.errorf("year %s: missing %d of %d stations: %s", y, len(missing), len(all), strings.Join(missing, ", "))
		}
	}
	return p
}

// ── Phase 2: Column lengths ──

func validateColumnLengths(data domain.AllYearsData) *phase {
	p := &phase{name: "Phase 2: Column Lengths"}
	for _, y := range data.Years() {
		for _, label := range data[y].Labels() {
			if err := data[y][label].Validate(); err != nil {
				p.errorf("year %s station %s: %v", y, label, err)
			}
		}
	}
	return p
}

// ── Phase 3: Field set ──
// Every dataset carries exactly the schema's fields.

func validateFieldSet(data domain.AllYearsData, schema domain.Schema) *phase {
	p := &phase{name: "Phase 3: Canonical Field Set"}

	want := map[string]bool{}
	for _, name := range schema.Names() {
		want[name] = true
	}

	for _, y := range data.Years() {
		for _, label := range data[y].Labels() {
			ds := data[y][label]
			for _, name := range schema.Names() {
				if _, ok := ds[name]; !ok {
					p.errorf("year %s station %s: missing field %s", y, label, name)
				}
			}
			for _, name := range slices.Sorted(maps.Keys(ds)) {
				if !want[name] {
					p.errorf("year %s station %s: unexpected field %s", y, label, name)
				}
			}
		}
	}
	return p
}

// ── Phase 4: Station identity ──
// A label maps to one WBAN number within a dataset and across years; a
// mismatch means two stations collapsed onto the same truncated label.

func validateStationIdentity(data domain.AllYearsData) *phase {
	p := &phase{name: "Phase 4: Station Identity"}

	seen := map[string]struct{ year, wban string }{}
	for _, y := range data.Years() {
		for _, label := range data[y].Labels() {
			if n := len([]rune(label)); n > domain.MaxLabelLength {
				p.errorf("year %s station %s: label has %d runes, limit is %d", y, label, n, domain.MaxLabelLength)
			}

			wban, ok := stationWBAN(p, y, label, data[y][label])
			if !ok {
				continue
			}
			if prev, found := seen[label]; found && prev.wban != wban {
				p.errorf("station %s: WBANNO %s in %s but %s in %s", label, prev.wban, prev.year, wban, y)
				continue
			}
			seen[label] = struct{ year, wban string }{y, wban}
		}
	}
	return p
}

func stationWBAN(p *phase, year, label string, ds domain.StationDataset) (string, bool) {
	col := ds["WBANNO"]
	if len(col) == 0 {
		return "", false
	}
	first := col[0].String()
	for i, v := range col[1:] {
		if v.String() != first {
			p.errorf("year %s station %s: row %d WBANNO %s differs from %s", year, label, i+1, v, first)
			return "", false
		}
	}
	return first, true
}
