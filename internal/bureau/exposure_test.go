package bureau

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dan9191/bureau-service/internal/models"
)

func TestMonthlyExposure(t *testing.T) {
	src := memTradelines{
		3: {
			{LoanTypeLabel: "Personal Loan", SanctionAmount: 100000, DateOpened: date("10-09-2026")},
			{LoanTypeLabel: "Personal Loan", SanctionAmount: 25000, DateOpened: date("2026-10-31")},
			{LoanTypeLabel: "Credit Card", SanctionAmount: 50000, DateOpened: date("2020-01-01"), DateClosed: date("2026-08-05")},
			{LoanTypeLabel: "Home Loan", SanctionAmount: 900000},
			{LoanTypeLabel: "Auto Loan", SanctionAmount: 400000, DateOpened: date("2021-01-01"), DateClosed: date("2022-06-30")},
		},
	}

	exp := newTestExtractor(src).MonthlyExposure(3, 3)

	assert.Equal(t, []string{"Aug 2026", "Sep 2026", "Oct 2026"}, exp.Months)
	assert.Equal(t, []float64{0, 100000, 125000}, exp.Series[models.LoanTypePL])
	assert.Equal(t, []float64{50000, 0, 0}, exp.Series[models.LoanTypeCC])
	assert.NotContains(t, exp.Series, models.LoanTypeHL, "rows without an opened date are skipped")
	assert.NotContains(t, exp.Series, models.LoanTypeAL, "all-zero series are dropped")
}

func TestMonthlyExposure_DefaultWindow(t *testing.T) {
	exp := newTestExtractor(memTradelines{}).MonthlyExposure(42, 0)

	assert.Len(t, exp.Months, DefaultExposureMonths)
	assert.Equal(t, "Nov 2024", exp.Months[0])
	assert.Equal(t, "Oct 2026", exp.Months[len(exp.Months)-1])
	assert.Empty(t, exp.Series)
}

func TestTrailingMonthsCrossYear(t *testing.T) {
	windows := trailingMonths(fixedNow, 11)
	assert.Equal(t, "Dec 2025", windows[0].label)
	assert.Equal(t, 31, windows[0].last.Day())

	feb := trailingMonths(fixedNow, 9)[0]
	assert.Equal(t, "Feb 2026", feb.label)
	assert.Equal(t, 28, feb.last.Day())
}
