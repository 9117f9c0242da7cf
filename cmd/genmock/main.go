// Command genmock writes a synthetic USCRN hourly02 directory tree: one
// Apache-style index page per year plus the station files it links to. The
// tree can be served by any static file server and used as SOURCE_BASE_URL
// for local runs.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/hourly02 -years 2018,2019 -stations 5 -rows 24
//	python3 -m http.server -d data/mock/hourly02 8000
//	SOURCE_BASE_URL=http://localhost:8000 go run ./cmd/collector
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
)

type station struct {
	name string
	wban string
	lon  float64
	lat  float64
}

var stations = []station{
	{name: "AK_Aleknagik_1_NNE", wban: "26655", lon: -158.61, lat: 59.28},
	{name: "AL_Brewton_3_NNE", wban: "63838", lon: -87.05, lat: 31.14},
	{name: "AZ_Tucson_11_W", wban: "53131", lon: -111.17, lat: 32.24},
	{name: "CA_Bodega_6_WSW", wban: "93245", lon: -123.07, lat: 38.32},
	{name: "CO_Boulder_14_W", wban: "94075", lon: -105.54, lat: 40.04},
	{name: "FL_Everglades_City_5_NE", wban: "92826", lon: -81.33, lat: 25.90},
	{name: "ME_Old_Town_2_W", wban: "94644", lon: -68.74, lat: 44.93},
	{name: "MT_Wolf_Point_29_ENE", wban: "94060", lon: -105.10, lat: 48.31},
	{name: "NC_Asheville_13_S", wban: "53877", lon: -82.56, lat: 35.42},
	{name: "TX_Austin_33_NW", wban: "23907", lon: -98.08, lat: 30.62},
	{name: "WA_Darrington_21_NNE", wban: "04223", lon: -121.42, lat: 48.54},
	{name: "WY_Moose_1_NNE", wban: "94088", lon: -110.70, lat: 43.66},
}

type options struct {
	out      string
	years    []int
	stations int
	rows     int
	dropped  int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the hourly02 tree")
	years := flag.String("years", "2018,2019,2020", "comma-separated years to generate")
	count := flag.Int("stations", 5, fmt.Sprintf("stations per year (max %d)", len(stations)))
	rows := flag.Int("rows", 24, "hourly rows per station file")
	dropped := flag.Int("dropped", 1, "trailing stations written for the first year only")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	ys, err := parseYears(*years)
	if err != nil {
		return err
	}
	opts := options{out: *out, years: ys, stations: *count, rows: *rows, dropped: *dropped}
	if err := opts.validate(); err != nil {
		return err
	}

	files, err := generate(opts)
	if err != nil {
		return err
	}
	log.Printf("wrote %d station files for %d years to %s", files, len(ys), opts.out)
	return nil
}

func (o options) validate() error {
	if o.stations < 1 || o.stations > len(stations) {
		return fmt.Errorf("-stations must be between 1 and %d", len(stations))
	}
	if o.rows < 1 {
		return fmt.Errorf("-rows must be positive")
	}
	if o.dropped < 0 || o.dropped >= o.stations {
		return fmt.Errorf("-dropped must be between 0 and %d", o.stations-1)
	}
	return nil
}

func parseYears(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no years given")
	}
	return years, nil
}

// generate writes the tree and returns the number of station files written.
func generate(o options) (int, error) {
	written := 0
	for i, year := range o.years {
		dir := filepath.Join(o.out, strconv.Itoa(year))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, err
		}

		n := o.stations
		if i > 0 {
			n -= o.dropped
		}
		files := make([]string, 0, n)
		for _, st := range stations[:n] {
			file := domain.StationFilePrefix(year) + st.name + ".txt"
			if err := os.WriteFile(filepath.Join(dir, file), []byte(stationFile(st, year, o.rows)), 0o644); err != nil {
				return written, err
			}
			files = append(files, file)
			written++
		}

		if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexPage(year, files)), 0o644); err != nil {
			return written, err
		}
	}
	return written, nil
}

// indexPage renders a directory listing in the layout NCEI's Apache server uses.
func indexPage(year int, files []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html>\n<head><title>Index of /pub/data/uscrn/products/hourly02/%d</title></head>\n<body>\n", year)
	fmt.Fprintf(&b, "<h1>Index of /pub/data/uscrn/products/hourly02/%d</h1>\n<pre>", year)
	b.WriteString("<a href=\"?C=N;O=D\">Name</a>  <a href=\"?C=M;O=A\">Last modified</a>  <a href=\"?C=S;O=A\">Size</a>\n<hr>")
	b.WriteString("<a href=\"/pub/data/uscrn/products/hourly02/\">Parent Directory</a>  -\n")
	for _, f := range files {
		fmt.Fprintf(&b, "<a href=%q>%s</a>  %d-01-04 12:00  1.2M\n", f, f, year+1)
	}
	b.WriteString("<hr></pre>\n</body>\n</html>\n")
	return b.String()
}

// stationFile renders rows hourly observations starting at 01:00 UTC on
// January 1st of year. Every third hour carries -9999 for SOIL_TEMP_5.
func stationFile(st station, year, rows int) string {
	start := time.Date(year, time.January, 1, 1, 0, 0, 0, time.UTC)
	var b strings.Builder
	for r := range rows {
		utc := start.Add(time.Duration(r) * time.Hour)
		lst := utc.Add(-9 * time.Hour)
		tokens := make([]string, 0, len(domain.HourlySchema))
		for _, f := range domain.HourlySchema {
			tokens = append(tokens, fieldToken(f, st, utc, lst, r))
		}
		b.WriteString(strings.Join(tokens, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func fieldToken(f domain.Field, st station, utc, lst time.Time, row int) string {
	switch f.Name {
	case "WBANNO":
		return st.wban
	case "UTC_DATE":
		return utc.Format("20060102")
	case "UTC_TIME":
		return utc.Format("1504")
	case "LST_DATE":
		return lst.Format("20060102")
	case "LST_TIME":
		return lst.Format("1504")
	case "CRX_VN":
		return "2.422"
	case "LONGITUDE":
		return strconv.FormatFloat(st.lon, 'f', 2, 64)
	case "LATITUDE":
		return strconv.FormatFloat(st.lat, 'f', 2, 64)
	case "SUR_TEMP_TYPE":
		return "C"
	case "SOIL_TEMP_5":
		if row%3 == 2 {
			return "-9999.0"
		}
	}
	if f.Kind == domain.KindString {
		return "0"
	}
	return strconv.FormatFloat(float64(row%24)/2-3, 'f', 1, 64)
}
