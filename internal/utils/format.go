package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	lakh  = 1_00_000
	crore = 1_00_00_000
)

// FormatINR formats an amount with Indian digit grouping and no decimals:
// the last three digits form one group, then every two digits.
// 18572860 becomes "1,85,72,860".
func FormatINR(amount float64) string {
	negative := amount < 0
	s := strconv.FormatInt(int64(math.Abs(math.Round(amount))), 10)

	if len(s) > 3 {
		last3 := s[len(s)-3:]
		rest := s[:len(s)-3]
		var parts []string
		for len(rest) > 2 {
			parts = append([]string{rest[len(rest)-2:]}, parts...)
			rest = rest[:len(rest)-2]
		}
		if rest != "" {
			parts = append([]string{rest}, parts...)
		}
		s = strings.Join(parts, ",") + "," + last3
	}

	if negative && s != "0" {
		return "-" + s
	}
	return s
}

// FormatINRUnits renders an amount compactly in crore/lakh units:
// "1.86 Cr", "54.31 L", or grouped digits below one lakh.
func FormatINRUnits(amount float64) string {
	abs := math.Abs(amount)
	var out string
	switch {
	case abs >= crore:
		out = fmt.Sprintf("%.2f Cr", abs/crore)
	case abs >= lakh:
		out = fmt.Sprintf("%.2f L", abs/lakh)
	default:
		out = FormatINR(abs)
	}
	if amount < 0 {
		return "-" + out
	}
	return out
}

// MaskCustomerID keeps only the last four digits of a customer id for logs.
func MaskCustomerID(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) <= 4 {
		return "###" + s
	}
	return "###" + s[len(s)-4:]
}
