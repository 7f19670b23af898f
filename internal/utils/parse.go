package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Date layouts accepted from the bureau feeds, day-first before ISO.
var dateLayouts = []string{"2-1-2006", "2006-1-2"}

// monthLabelLayout renders a month as "Dec 2019".
const monthLabelLayout = "Jan 2006"

// IsAbsent reports whether a raw feed value carries no data.
func IsAbsent(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "NULL")
}

// cleanNumber strips grouping separators and currency markers.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "INR")
	return strings.TrimSpace(s)
}

// ParseOptionalFloat parses s as a float64. It returns nil for NULL, empty,
// unparseable or non-finite ("NaN", "Inf") input.
func ParseOptionalFloat(s string) *float64 {
	if IsAbsent(s) {
		return nil
	}
	v, err := strconv.ParseFloat(cleanNumber(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseOptionalInt parses s as an integer, truncating any fractional part
// ("3.0" and "3.7" both give 3). It returns nil for NULL, empty,
// unparseable or out-of-range input.
func ParseOptionalInt(s string) *int {
	f := ParseOptionalFloat(s)
	if f == nil || *f >= math.MaxInt || *f < math.MinInt {
		return nil
	}
	v := int(*f)
	return &v
}

// ParseAmount parses a currency amount, treating absent or garbled input as 0.
func ParseAmount(s string) float64 {
	if f := ParseOptionalFloat(s); f != nil {
		return *f
	}
	return 0
}

// ParseDate parses DD-MM-YYYY or YYYY-MM-DD, either optionally followed by a
// time component. Anything else yields nil.
func ParseDate(s string) *time.Time {
	if IsAbsent(s) {
		return nil
	}
	cleaned := strings.TrimSpace(s)
	if i := strings.IndexAny(cleaned, " T"); i >= 0 {
		cleaned = cleaned[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return &t
		}
	}
	return nil
}

// MonthLabel formats t at month granularity, e.g. "Nov 2025".
func MonthLabel(t time.Time) string {
	return t.Format(monthLabelLayout)
}

// MonthsBetween returns the number of calendar months from "from" to "to",
// ignoring the day of month. The result is negative when from is later.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// IntPtr and FloatPtr are small helpers for building optional values.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

func StringPtr(v string) *string { return &v }
