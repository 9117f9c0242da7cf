package domain

// FieldKind selects the canonical JSON representation of a column.
type FieldKind int

const (
	// KindString columns keep the raw token, e.g. dates like "20180101" and
	// times like "0100" whose leading zeros matter.
	KindString FieldKind = iota
	// KindNumber columns are parsed as float64 and serialize as JSON numbers.
	KindNumber
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Field is one named column of a station file.
type Field struct {
	Name string
	Kind FieldKind
}

// Schema is an ordered list of fields. Its length is the row width used when
// reshaping station payloads.
type Schema []Field

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// HourlySchema is the USCRN hourly02 column layout.
var HourlySchema = Schema{
	{"WBANNO", KindString},
	{"UTC_DATE", KindString},
	{"UTC_TIME", KindString},
	{"LST_DATE", KindString},
	{"LST_TIME", KindString},
	{"CRX_VN", KindString},
	{"LONGITUDE", KindNumber},
	{"LATITUDE", KindNumber},
	{"T_CALC", KindNumber},
	{"T_HR_AVG", KindNumber},
	{"T_MAX", KindNumber},
	{"T_MIN", KindNumber},
	{"P_CALC", KindNumber},
	{"SOLARAD", KindNumber},
	{"SOLARAD_FLAG", KindString},
	{"SOLARAD_MAX", KindNumber},
	{"SOLARAD_MAX_FLAG", KindString},
	{"SOLARAD_MIN", KindNumber},
	{"SOLARAD_MIN_FLAG", KindString},
	{"SUR_TEMP_TYPE", KindString},
	{"SUR_TEMP", KindNumber},
	{"SUR_TEMP_FLAG", KindString},
	{"SUR_TEMP_MAX", KindNumber},
	{"SUR_TEMP_MAX_FLAG", KindString},
	{"SUR_TEMP_MIN", KindNumber},
	{"SUR_TEMP_MIN_FLAG", KindString},
	{"RH_HR_AVG", KindNumber},
	{"RH_HR_AVG_FLAG", KindString},
	{"SOIL_MOISTURE_5", KindNumber},
	{"SOIL_MOISTURE_10", KindNumber},
	{"SOIL_MOISTURE_20", KindNumber},
	{"SOIL_MOISTURE_50", KindNumber},
	{"SOIL_MOISTURE_100", KindNumber},
	{"SOIL_TEMP_5", KindNumber},
	{"SOIL_TEMP_10", KindNumber},
	{"SOIL_TEMP_20", KindNumber},
	{"SOIL_TEMP_50", KindNumber},
	{"SOIL_TEMP_100", KindNumber},
}
