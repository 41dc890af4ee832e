package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// File naming conventions of the source data directory.
const (
	// DefaultEnvironmentSuffix is stripped from an environment CSV stem to obtain its group id.
	DefaultEnvironmentSuffix = "_환경데이터"
	// DefaultGrowthFile is the expected (NFC) name of the multi-sheet growth workbook.
	DefaultGrowthFile = "4개교_생육결과데이터.xlsx"
)

// Environment columns.
const (
	ColTime        = "time"
	ColTemperature = "temperature"
	ColHumidity    = "humidity"
	ColPH          = "ph"
	ColEC          = "ec"
)

// Growth columns, localized as they appear in the workbook headers.
const (
	ColFreshWeight = "생중량(g)"
	ColLeafCount   = "잎 수(장)"
	ColShootLength = "지상부 길이(mm)"
)

// ColGroup labels rows with their originating group in merged tables.
const ColGroup = "학교"

// EnvironmentNumeric lists the numeric environment columns.
var EnvironmentNumeric = []string{ColTemperature, ColHumidity, ColPH, ColEC}

// GrowthNumeric lists the numeric growth columns.
var GrowthNumeric = []string{ColFreshWeight, ColLeafCount, ColShootLength}

// Family identifies one of the two dataset families.
type Family string

const (
	Environment Family = "environment"
	Growth      Family = "growth"
)

// ErrUnknownGroup is returned when data references a group missing from the group configuration.
var ErrUnknownGroup = errors.New("group not configured")

// SchemaError reports a table missing required columns.
type SchemaError struct {
	Family  Family
	Group   string
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table for %q (%s) is missing columns: %s",
		e.Family, e.Group, e.Source, strings.Join(e.Missing, ", "))
}

func requiredColumns(f Family) []string {
	if f == Environment {
		return append([]string{ColTime}, EnvironmentNumeric...)
	}
	return GrowthNumeric
}
