// Package jsonfile persists collected station data as a single JSON document
// of the form {year: {station: {field: [value, ...]}}}.
package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
)

// Store reads and writes one JSON file. Every error it returns wraps
// domain.ErrPersistence.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a Store for path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the file the store writes.
func (s *Store) Path() string { return s.path }

// Save writes data to a temporary file next to the target and renames it into
// place, so readers see either the previous document or the new one.
func (s *Store) Save(ctx context.Context, data domain.AllYearsData) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrPersistence, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", domain.ErrPersistence, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrPersistence, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrPersistence, tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", domain.ErrPersistence, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", domain.ErrPersistence, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: rename into %s: %w", domain.ErrPersistence, s.path, err)
	}

	s.logger.Info("data saved", "path", s.path, "years", len(data))
	return nil
}

// Load reads the whole document. Datasets with unequal column lengths are
// rejected.
func (s *Store) Load(ctx context.Context) (domain.AllYearsData, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, s.path, err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrPersistence, s.path, err)
	}
	defer f.Close()

	var data domain.AllYearsData
	dec := json.NewDecoder(bufio.NewReader(f))
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrPersistence, s.path, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: decode %s: trailing data after document", domain.ErrPersistence, s.path)
	}
	if data == nil {
		data = domain.AllYearsData{}
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrPersistence, s.path, err)
	}

	s.logger.Info("data loaded", "path", s.path, "years", len(data))
	return data, nil
}
