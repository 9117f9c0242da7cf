package domain

import (
	"fmt"
	"strings"
)

// StationRecord is one row of a station file, one value per schema field.
type StationRecord []Value

// Tokenize splits a station payload into its whitespace-delimited tokens,
// ignoring blank lines.
func Tokenize(text string) []string {
	var tokens []string
	for _, line := range strings.Split(text, "\n") {
		tokens = append(tokens, strings.Fields(line)...)
	}
	return tokens
}

// ParseRecords reshapes a payload's tokens into rows of len(schema) values.
// It fails with ErrShapeMismatch when the token count is not a multiple of the
// schema width.
func ParseRecords(text string, schema Schema) ([]StationRecord, error) {
	width := len(schema)
	if width == 0 {
		return nil, fmt.Errorf("%w: empty schema", ErrShapeMismatch)
	}
	tokens := Tokenize(text)
	if len(tokens)%width != 0 {
		return nil, fmt.Errorf("%w: %d tokens is not a multiple of %d fields", ErrShapeMismatch, len(tokens), width)
	}

	records := make([]StationRecord, 0, len(tokens)/width)
	for start := 0; start < len(tokens); start += width {
		row := make(StationRecord, width)
		for i, field := range schema {
			row[i] = ParseValue(tokens[start+i], field.Kind)
		}
		records = append(records, row)
	}
	return records, nil
}

// ParseStation parses one station file into its label and columnar dataset.
// A zero-token payload yields a dataset with every column present and empty.
func ParseStation(text string, schema Schema, year int, file string) (string, StationDataset, error) {
	records, err := ParseRecords(text, schema)
	if err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", file, err)
	}

	dataset := make(StationDataset, len(schema))
	for i, field := range schema {
		col := make([]Value, len(records))
		for r, rec := range records {
			col[r] = rec[i]
		}
		dataset[field.Name] = col
	}
	return StationLabel(file, year), dataset, nil
}
