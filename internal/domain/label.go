package domain

import (
	"fmt"
	"strings"
)

const (
	// MaxLabelLength is the legacy column-width limit for station labels.
	// Truncation is lossy; distinct files may collapse onto one label.
	MaxLabelLength = 31

	stationFileSuffix = ".txt"
)

// StationFilePrefix is the fixed prefix of hourly02 station files for a year.
func StationFilePrefix(year int) string {
	return fmt.Sprintf("CRNH0203-%d-", year)
}

// StationLabel derives a station label from its file name by removing the
// ".txt" suffix and the year prefix, then truncating to MaxLabelLength runes.
//
//	CRNH0203-2018-AK_Aleknagik_1_NNE.txt -> AK_Aleknagik_1_NNE
func StationLabel(file string, year int) string {
	label := strings.ReplaceAll(file, stationFileSuffix, "")
	label = strings.ReplaceAll(label, StationFilePrefix(year), "")
	if r := []rune(label); len(r) > MaxLabelLength {
		label = string(r[:MaxLabelLength])
	}
	return label
}
