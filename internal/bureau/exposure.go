package bureau

import (
	"time"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

// DefaultExposureMonths is the trailing window used when none is requested.
const DefaultExposureMonths = 24

type monthWindow struct {
	first time.Time
	last  time.Time
	label string
}

// trailingMonths returns n calendar months ending with the month of now, oldest first.
func trailingMonths(now time.Time, n int) []monthWindow {
	windows := make([]monthWindow, 0, n)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		first := start.AddDate(0, -i, 0)
		last := first.AddDate(0, 1, -1)
		windows = append(windows, monthWindow{first: first, last: last, label: utils.MonthLabel(first)})
	}
	return windows
}

// MonthlyExposure computes, for each of the trailing months, the total
// sanctioned amount of tradelines active in that month, per loan type.
// A tradeline is active when it opened on or before month end and is either
// still open or closed on or after month start. Rows without an opened date
// are skipped and all-zero series are dropped.
func (e *Extractor) MonthlyExposure(crn int64, months int) models.MonthlyExposure {
	if months <= 0 {
		months = DefaultExposureMonths
	}
	windows := trailingMonths(e.now(), months)

	out := models.MonthlyExposure{
		Months: make([]string, len(windows)),
		Series: make(map[models.LoanType][]float64),
	}
	for i, w := range windows {
		out.Months[i] = w.label
	}

	for lt, rows := range groupByLoanType(e.source.Tradelines(crn)) {
		amounts := make([]float64, len(windows))
		nonZero := false
		for i, w := range windows {
			var total float64
			for _, tl := range rows {
				if tl.DateOpened == nil {
					continue
				}
				if !tl.DateOpened.After(w.last) && (tl.DateClosed == nil || !tl.DateClosed.Before(w.first)) {
					total += tl.SanctionAmount
				}
			}
			amounts[i] = roundTo(total, 0)
			if amounts[i] > 0 {
				nonZero = true
			}
		}
		if nonZero {
			out.Series[lt] = amounts
		}
	}

	return out
}
