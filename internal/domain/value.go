package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type valueKind uint8

const (
	nullValue valueKind = iota
	stringValue
	numberValue
)

// Value is a single scalar cell: a string, a finite number, or null. It is the
// only type that crosses the JSON boundary, so its encoding defines the
// canonical representation for every column.
type Value struct {
	kind valueKind
	str  string
	num  float64
}

// String returns a string Value.
func String(s string) Value { return Value{kind: stringValue, str: s} }

// Number returns a numeric Value. Non-finite inputs become null because JSON
// cannot represent them.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: numberValue, num: f}
}

// Null returns the null Value.
func Null() Value { return Value{} }

// ParseValue converts a raw token according to the field kind. Number tokens
// that do not parse as finite floats are kept as strings.
func ParseValue(token string, kind FieldKind) Value {
	if kind != KindNumber {
		return String(token)
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return String(token)
	}
	return Number(f)
}

func (v Value) IsNull() bool   { return v.kind == nullValue }
func (v Value) IsString() bool { return v.kind == stringValue }
func (v Value) IsNumber() bool { return v.kind == numberValue }

// Float returns the numeric value and whether v is a number.
func (v Value) Float() (float64, bool) { return v.num, v.kind == numberValue }

// Text returns the string value and whether v is a string.
func (v Value) Text() (string, bool) { return v.str, v.kind == stringValue }

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool { return v == o }

func (v Value) String() string {
	switch v.kind {
	case stringValue:
		return v.str
	case numberValue:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return "null"
	}
}

// MarshalJSON encodes strings as JSON strings, numbers as JSON numbers and
// null as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case stringValue:
		return json.Marshal(v.str)
	case numberValue:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string, number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Null()
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("value must be a string, number or null: %s", data)
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("parse number %s: %w", n, err)
		}
		*v = Number(f)
		return nil
	}
}
