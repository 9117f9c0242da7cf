package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// FetchMode selects how stations are scheduled.
type FetchMode string

const (
	// FetchConcurrent runs every year in parallel and stations in batches.
	FetchConcurrent FetchMode = "concurrent"
	// FetchSerial fetches one station at a time.
	FetchSerial FetchMode = "serial"
)

const maxBatchSize = 1000

// Config holds all service settings, populated from environment variables.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	Years      []int
	FetchMode  FetchMode
	BatchSize  int
	BatchPause time.Duration
	SkipFetch  bool
	DataPath   string

	SourceBaseURL string
	StationMarker string

	// HTTP client limits shared by every request of a run.
	MaxConns        int
	MaxConnsPerHost int
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	TotalTimeout    time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxBackoff      time.Duration

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration

	CleanSentinels bool

	KafkaBrokers []string
	KafkaTopic   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether the Kafka sink is configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	years, err := parseYears(sharedcfg.EnvOrDefault("YEARS", "2018,2019,2020,2021,2022"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Years:         years,
		FetchMode:     FetchMode(strings.ToLower(sharedcfg.EnvOrDefault("FETCH_MODE", string(FetchConcurrent)))),
		DataPath:      sharedcfg.EnvOrDefault("DATA_PATH", "data/weatherDataJSONObject.json"),
		SourceBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("SOURCE_BASE_URL", "https://www.ncei.noaa.gov/pub/data/uscrn/products/hourly02"), "/"),
		StationMarker: sharedcfg.EnvOrDefault("STATION_MARKER", "CRNH"),
		KafkaTopic:    sharedcfg.EnvOrDefault("KAFKA_TOPIC", "uscrn-hourly"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		LogLevel:      sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		ShutdownTimeout: shutdownTimeout,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	p := parser{}
	cfg.BatchSize = p.intInRange("BATCH_SIZE", 10, 1, maxBatchSize)
	cfg.BatchPause = p.duration("BATCH_PAUSE", "100ms", true)
	cfg.SkipFetch = p.boolean("SKIP_FETCH", false)
	cfg.MaxConns = p.intInRange("MAX_CONNS", 100, 1, 10000)
	cfg.MaxConnsPerHost = p.intInRange("MAX_CONNS_PER_HOST", 10, 1, 10000)
	cfg.ConnectTimeout = p.duration("CONNECT_TIMEOUT", "10s", false)
	cfg.ReadTimeout = p.duration("READ_TIMEOUT", "30s", false)
	cfg.TotalTimeout = p.duration("TOTAL_TIMEOUT", "60s", false)
	cfg.MaxRetries = p.intInRange("MAX_RETRIES", 2, 0, 10)
	cfg.RetryBackoff = p.duration("RETRY_BACKOFF", "500ms", false)
	cfg.MaxBackoff = p.duration("MAX_BACKOFF", "5s", false)
	cfg.BreakerEnabled = p.boolean("BREAKER_ENABLED", true)
	cfg.BreakerMinRequests = uint32(p.intInRange("BREAKER_MIN_REQUESTS", 20, 1, 1_000_000))
	cfg.BreakerFailureRatio = p.ratio("BREAKER_FAILURE_RATIO", 0.6)
	cfg.BreakerOpenTimeout = p.duration("BREAKER_OPEN_TIMEOUT", "30s", false)
	cfg.CleanSentinels = p.boolean("CLEAN_SENTINELS", false)
	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.FetchMode {
	case FetchConcurrent, FetchSerial:
	default:
		return fmt.Errorf("invalid FETCH_MODE %q: want concurrent or serial", c.FetchMode)
	}
	if c.DataPath == "" {
		return errors.New("DATA_PATH is required")
	}
	if !c.SkipFetch {
		u, err := url.Parse(c.SourceBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid SOURCE_BASE_URL %q", c.SourceBaseURL)
		}
	}
	if c.StationMarker == "" {
		return errors.New("STATION_MARKER is required")
	}
	if c.MaxConnsPerHost > c.MaxConns {
		return errors.New("MAX_CONNS_PER_HOST must not exceed MAX_CONNS")
	}
	if c.TotalTimeout < c.ConnectTimeout {
		return errors.New("TOTAL_TIMEOUT must be at least CONNECT_TIMEOUT")
	}
	if c.MaxBackoff < c.RetryBackoff {
		return errors.New("MAX_BACKOFF must be at least RETRY_BACKOFF")
	}
	if c.KafkaEnabled() && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or text", c.LogFormat)
	}
	return nil
}

// parseYears reads a comma-separated list of years. Order is kept and
// duplicates are rejected.
func parseYears(s string) ([]int, error) {
	var years []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < 1900 || y > 9999 {
			return nil, fmt.Errorf("invalid YEARS entry %q", part)
		}
		if seen[y] {
			return nil, fmt.Errorf("duplicate YEARS entry %d", y)
		}
		seen[y] = true
		years = append(years, y)
	}
	if len(years) == 0 {
		return nil, errors.New("YEARS is required")
	}
	return years, nil
}

// parser collects the first error across a sequence of env lookups.
type parser struct {
	err error
}

func (p *parser) fail(key, raw string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q", key, raw)
	}
}

func (p *parser) intInRange(key string, def, lo, hi int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		p.fail(key, raw)
		return def
	}
	return n
}

func (p *parser) duration(key, def string, allowZero bool) time.Duration {
	raw := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		p.fail(key, raw)
		return 0
	}
	return d
}

func (p *parser) boolean(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw)
		return def
	}
	return b
}

func (p *parser) ratio(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 || f > 1 {
		p.fail(key, raw)
		return def
	}
	return f
}
