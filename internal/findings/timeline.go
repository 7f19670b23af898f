package findings

import (
	"strings"

	"github.com/Dan9191/bureau-service/internal/models"
)

// Timeline renders a loan type's date range, e.g.
// "Opened: Dec 2019 - Nov 2025 | Last Closed: Apr 2024". It is empty when the
// vector has neither dates nor live tradelines.
func Timeline(vec *models.BureauLoanFeatureVector) string {
	if vec == nil {
		return ""
	}

	var parts []string
	if vec.EarliestOpened != nil {
		if vec.LatestOpened != nil && *vec.LatestOpened != *vec.EarliestOpened {
			parts = append(parts, "Opened: "+*vec.EarliestOpened+" - "+*vec.LatestOpened)
		} else {
			parts = append(parts, "Opened: "+*vec.EarliestOpened)
		}
	}
	if vec.LatestClosed != nil {
		parts = append(parts, "Last Closed: "+*vec.LatestClosed)
	} else if vec.LiveCount > 0 {
		parts = append(parts, "Active")
	}
	return strings.Join(parts, " | ")
}

func timelineSuffix(vectors models.BureauFeatures, lt models.LoanType) string {
	if tl := Timeline(vectors[lt]); tl != "" {
		return " [" + tl + "]"
	}
	return ""
}

var forcedEventLabels = map[string]string{
	"WRF": "Written Off and Restructured",
	"SET": "Settled",
	"SMA": "Special Mention Account",
	"SUB": "Sub-standard",
	"DBT": "Doubtful",
	"LSS": "Loss",
	"WOF": "Written Off",
}

// describeEvent returns "WOF (Written Off)" for known codes and the bare code otherwise.
func describeEvent(code string) string {
	if label, ok := forcedEventLabels[code]; ok {
		return code + " (" + label + ")"
	}
	return code
}
