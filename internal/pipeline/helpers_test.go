package pipeline_test

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
	"github.com/couchcryptid/uscrn-etl/internal/observability"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func stationFile(year int, name string) string {
	return fmt.Sprintf("CRNH0203-%d-%s.txt", year, name)
}

// stationPayload renders rows hourly lines of schema width. Numeric columns
// hold the row number, except SOIL_TEMP_5 which holds the -9999 sentinel.
func stationPayload(wban string, rows int) string {
	var sb strings.Builder
	for r := range rows {
		fields := make([]string, len(domain.HourlySchema))
		for i, f := range domain.HourlySchema {
			switch {
			case f.Name == "WBANNO":
				fields[i] = wban
			case f.Name == "SOIL_TEMP_5":
				fields[i] = "-9999.0"
			case f.Kind == domain.KindNumber:
				fields[i] = strconv.Itoa(r)
			default:
				fields[i] = fmt.Sprintf("%02d00", r)
			}
		}
		sb.WriteString(strings.Join(fields, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// fakeSource serves station files from memory and tracks concurrency.
type fakeSource struct {
	files    map[int][]string
	payloads map[string]string // "year/file" -> text
	listErr  map[int]error
	delay    time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		files:    map[int][]string{},
		payloads: map[string]string{},
		listErr:  map[int]error{},
	}
}

// add publishes a station for year with the given payload.
func (s *fakeSource) add(year int, file, payload string) {
	s.files[year] = append(s.files[year], file)
	s.payloads[fmt.Sprintf("%d/%s", year, file)] = payload
}

func (s *fakeSource) ListStationFiles(_ context.Context, year int) ([]string, error) {
	if err := s.listErr[year]; err != nil {
		return nil, fmt.Errorf("%w: year %d: %w", domain.ErrEnumeration, year, err)
	}
	return append([]string(nil), s.files[year]...), nil
}

func (s *fakeSource) FetchStation(ctx context.Context, year int, file string) (string, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", domain.ErrNetwork, ctx.Err())
		case <-time.After(s.delay):
		}
	}
	payload, ok := s.payloads[fmt.Sprintf("%d/%s", year, file)]
	if !ok {
		return "", fmt.Errorf("%w: %s not found", domain.ErrNetwork, file)
	}
	return payload, nil
}

// recordingSink keeps every saved structure.
type recordingSink struct {
	mu    sync.Mutex
	saved []domain.AllYearsData
	err   error
}

func (s *recordingSink) Save(_ context.Context, data domain.AllYearsData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, data)
	return nil
}

// archive is an httptest stand-in for the hourly02 tree: an HTML index page
// per year and one text file per station.
type archive struct {
	*httptest.Server
	mu      sync.Mutex
	files   map[string][]string // year -> files
	bodies  map[string]string   // "year/file" -> payload
	missing map[string]bool     // "year/file" answered with 404
}

func newArchive(t *testing.T) *archive {
	t.Helper()
	a := &archive{
		files:   map[string][]string{},
		bodies:  map[string]string{},
		missing: map[string]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{year}/{$}", a.serveIndex)
	mux.HandleFunc("GET /{year}/{file}", a.serveFile)
	a.Server = httptest.NewServer(mux)
	t.Cleanup(a.Close)
	return a
}

func (a *archive) add(year int, file, payload string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	y := strconv.Itoa(year)
	a.files[y] = append(a.files[y], file)
	a.bodies[y+"/"+file] = payload
}

func (a *archive) listOnly(year int, file string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	y := strconv.Itoa(year)
	a.files[y] = append(a.files[y], file)
	a.missing[y+"/"+file] = true
}

func (a *archive) serveIndex(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	files, ok := a.files[r.PathValue("year")]
	a.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	var sb strings.Builder
	sb.WriteString("<html><head><title>Index</title></head><body><table>\n")
	sb.WriteString(`<tr><td><a href="../">Parent Directory</a></td><td>-</td></tr>` + "\n")
	for _, f := range files {
		fmt.Fprintf(&sb, "<tr><td><a href=%q>%s</a></td><td>2019-01-10 14:33</td><td>2.3M</td></tr>\n", f, html.EscapeString(f))
	}
	sb.WriteString("</table></body></html>\n")
	_, _ = io.WriteString(w, sb.String())
}

func (a *archive) serveFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("year") + "/" + r.PathValue("file")
	a.mu.Lock()
	body, ok := a.bodies[key]
	missing := a.missing[key]
	a.mu.Unlock()
	if !ok || missing {
		http.NotFound(w, r)
		return
	}
	_, _ = io.WriteString(w, body)
}
