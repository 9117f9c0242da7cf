package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		token string
		kind  FieldKind
		want  Value
	}{
		{"0100", KindString, String("0100")},
		{"20180101", KindString, String("20180101")},
		{"-158.61", KindNumber, Number(-158.61)},
		{"-9999.0", KindNumber, Number(-9999)},
		{"NaN", KindNumber, String("NaN")},
		{"Inf", KindNumber, String("Inf")},
		{"abc", KindNumber, String("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.token+"/"+tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.token, tt.kind))
		})
	}
}

func TestNumber_NonFiniteIsNull(t *testing.T) {
	assert.True(t, Number(math.NaN()).IsNull())
	assert.True(t, Number(math.Inf(1)).IsNull())
	assert.True(t, Number(1.5).IsNumber())
}

func TestValueJSON(t *testing.T) {
	in := []Value{String("0100"), Number(-3.7), Null(), Number(0), String("")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `["0100", -3.7, null, 0, ""]`, string(data))

	var out []Value
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestValueJSON_RejectsComposites(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &v))
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
}

func TestValueAccessors(t *testing.T) {
	f, ok := Number(2.5).Float()
	assert.True(t, ok)
	assert.InDelta(t, 2.5, f, 1e-9)

	_, ok = String("x").Float()
	assert.False(t, ok)

	s, ok := String("x").Text()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "-3.7", Number(-3.7).String())
	assert.True(t, String("a").Equal(String("a")))
	assert.False(t, String("1").Equal(Number(1)))
}
