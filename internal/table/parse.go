package table

import (
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
	"2006-01-02", "2006/01/02 15:04:05", "2006/01/02 15:04", "2006/01/02",
	"1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseTime tries the timestamp layouts commonly emitted by sensor loggers and spreadsheet exports.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumeric parses a numeric cell, auto-detecting decimal and thousands separators.
// Percent signs and non-breaking spaces are ignored. Empty and "NaN" cells are not numeric.
//
// A single comma followed by exactly three digits is ambiguous. It is read as a thousands
// separator ("1,500" is 1500) unless the integer part is zero ("0,500" is 0.5), since no
// grouped number starts with a zero group.
func ParseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return 0, false
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && (dpos < 0 || cpos > dpos) {
		// "1.234,5" or "0,5"; a lone comma followed by exactly three digits is a thousands separator
		if dpos >= 0 || len(raw)-cpos-1 != 3 || !groupedInteger(raw[:cpos]) {
			dec = ','
		}
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// groupedInteger reports whether s could lead a thousands-grouped number: an optional sign
// followed by digits that do not start with zero.
func groupedInteger(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if s == "" || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '.' && r != ' ' {
			return false
		}
	}
	return true
}
