package exporter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// formatFloat prints up to six decimals with trailing zeros removed.
// NaN prints as NaN.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// formatInt formats an integer count
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatDate prints a date, with the time of day only when it is set.
// A zero time is a missing date and prints as NaT.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "NaT"
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// formatRetention prints retention days, or NaN when undefined
func formatRetention(days int, valid bool) string {
	if !valid {
		return "NaN"
	}
	return strconv.Itoa(days)
}
