package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStationFile = "CRNH0203-2018-AK_Aleknagik_1_NNE.txt"

// hourlyLine builds one plausible hourly02 line for hour h.
func hourlyLine(h int) string {
	return fmt.Sprintf("25630 20180101 %02d00 20171231 %02d00 2.623 -158.61 59.28 -3.7 -3.6 -3.4 -3.9 0.0 0 0 0 0 0 0 C -6.1 0 -5.8 0 -6.5 0 88 0 -99.000 -99.000 -99.000 -99.000 -99.000 -9999.0 -9999.0 -9999.0 -9999.0 -9999.0", h, h)
}

func TestTokenize(t *testing.T) {
	text := "a  b\tc\n\n   \nd e\r\n"
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, Tokenize(text))
	assert.Empty(t, Tokenize(""))
}

func TestParseStation(t *testing.T) {
	t.Run("hourly rows", func(t *testing.T) {
		text := hourlyLine(1) + "\n" + hourlyLine(2) + "\n\n" + hourlyLine(3) + "\n"
		label, ds, err := ParseStation(text, HourlySchema, 2018, testStationFile)

		require.NoError(t, err)
		assert.Equal(t, "AK_Aleknagik_1_NNE", label)
		require.NoError(t, ds.Validate())
		assert.Equal(t, 3, ds.Rows())
		assert.Len(t, ds, len(HourlySchema))

		assert.Equal(t, String("25630"), ds["WBANNO"][0])
		assert.Equal(t, String("0100"), ds["UTC_TIME"][0], "times keep leading zeros")
		assert.Equal(t, String("0300"), ds["UTC_TIME"][2])
		assert.Equal(t, Number(-158.61), ds["LONGITUDE"][0])
		assert.Equal(t, Number(59.28), ds["LATITUDE"][1])
		assert.Equal(t, String("C"), ds["SUR_TEMP_TYPE"][0])
		assert.Equal(t, Number(-9999), ds["SOIL_TEMP_100"][2])
	})

	t.Run("token count not a multiple of schema width", func(t *testing.T) {
		text := hourlyLine(1) + " extra"
		_, _, err := ParseStation(text, HourlySchema, 2018, testStationFile)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrShapeMismatch)
		assert.Contains(t, err.Error(), testStationFile)
	})

	t.Run("row wrapped across lines", func(t *testing.T) {
		fields := strings.Fields(hourlyLine(4))
		text := strings.Join(fields[:10], " ") + "\n" + strings.Join(fields[10:], " ")
		_, ds, err := ParseStation(text, HourlySchema, 2018, testStationFile)

		require.NoError(t, err)
		assert.Equal(t, 1, ds.Rows())
	})

	t.Run("empty payload", func(t *testing.T) {
		_, ds, err := ParseStation("\n\n", HourlySchema, 2018, testStationFile)

		require.NoError(t, err)
		assert.Equal(t, 0, ds.Rows())
		assert.Len(t, ds, len(HourlySchema))
	})

	t.Run("unparsable number kept as string", func(t *testing.T) {
		fields := strings.Fields(hourlyLine(5))
		fields[HourlySchema.Index("T_CALC")] = "bad"
		_, ds, err := ParseStation(strings.Join(fields, " "), HourlySchema, 2018, testStationFile)

		require.NoError(t, err)
		assert.Equal(t, String("bad"), ds["T_CALC"][0])
	})
}

func TestParseRecords_RowCountIsTokensOverWidth(t *testing.T) {
	// A 37-field schema exercises the same rule the hourly layout follows.
	narrow := make(Schema, 37)
	for i := range narrow {
		narrow[i] = Field{Name: fmt.Sprintf("F%02d", i), Kind: KindNumber}
	}

	for _, schema := range []Schema{HourlySchema, narrow} {
		width := len(schema)
		for _, tokens := range []int{0, width, 3 * width, width - 1, 2*width + 1} {
			t.Run(fmt.Sprintf("width %d tokens %d", width, tokens), func(t *testing.T) {
				text := strings.TrimSpace(strings.Repeat("1 ", tokens))
				records, err := ParseRecords(text, schema)
				if tokens%width != 0 {
					assert.ErrorIs(t, err, ErrShapeMismatch)
					return
				}
				require.NoError(t, err)
				assert.Len(t, records, tokens/width)
			})
		}
	}
}

func TestStationLabel(t *testing.T) {
	tests := []struct {
		name string
		file string
		year int
		want string
	}{
		{"strips prefix and suffix", testStationFile, 2018, "AK_Aleknagik_1_NNE"},
		{"other year prefix kept", "CRNH0203-2019-AK_Aleknagik_1_NNE.txt", 2018, "CRNH0203-2019-AK_Aleknagik_1_NN"},
		{"truncated to 31", "CRNH0203-2020-WY_Sundance_8_NNW_With_A_Very_Long_Name.txt", 2020, "WY_Sundance_8_NNW_With_A_Very_L"},
		{"exactly 31 untouched", "CRNH0203-2020-" + strings.Repeat("x", 31) + ".txt", 2020, strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StationLabel(tt.file, tt.year)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), MaxLabelLength)
		})
	}
}

func TestStationLabel_TruncationLength(t *testing.T) {
	got := StationLabel("CRNH0203-2018-"+strings.Repeat("A", 50)+".txt", 2018)
	assert.Len(t, got, MaxLabelLength)
}
