package bureau

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

func newTestExtractor(rows memTradelines) *Extractor {
	return NewExtractor(rows, ExtractorConfig{Now: fixedClock})
}

func TestExtract_PersonalLoanDelinquency(t *testing.T) {
	src := memTradelines{
		101: {
			{CRN: 101, LoanTypeLabel: "Personal Loan", Status: models.StatusLive, SanctionAmount: 200000, OutstandingBalance: 150000, MaxDPD: utils.IntPtr(45), MonthsSinceMaxDPD: utils.IntPtr(2)},
			{CRN: 101, LoanTypeLabel: "Personal Loan", Status: models.StatusClosed, SanctionAmount: 100000, MaxDPD: utils.IntPtr(0)},
			{CRN: 101, LoanTypeLabel: "Personal Loan", Status: models.StatusLive, SanctionAmount: 50000, OutstandingBalance: 20000},
		},
	}

	features := newTestExtractor(src).Extract(101)
	require.Len(t, features, 1)

	vec := features[models.LoanTypePL]
	require.NotNil(t, vec)
	assert.Equal(t, 3, vec.LoanCount)
	assert.Equal(t, 2, vec.LiveCount)
	assert.Equal(t, 1, vec.ClosedCount)
	assert.True(t, vec.DelinquencyFlag)
	assert.Equal(t, utils.IntPtr(45), vec.MaxDPD)
	assert.Equal(t, utils.IntPtr(2), vec.MaxDPDMonthsAgo)
	assert.Equal(t, 350000.0, vec.TotalSanctionedAmount)
	assert.Equal(t, 170000.0, vec.TotalOutstandingAmount)
	assert.False(t, vec.Secured)
	assert.Nil(t, vec.UtilizationRatio)
}

func TestExtract_CreditCardUtilization(t *testing.T) {
	src := memTradelines{
		7: {
			{LoanTypeLabel: "Credit Card", Status: models.StatusLive, CreditLimit: 50000, OutstandingBalance: 40000},
			{LoanTypeLabel: "Credit Card", Status: models.StatusLive, CreditLimit: 100000, OutstandingBalance: 20000},
			{LoanTypeLabel: "Credit Card", Status: models.StatusClosed, CreditLimit: 300000, OutstandingBalance: 0},
			{LoanTypeLabel: "Credit Card", Status: models.StatusLive, CreditLimit: 0, OutstandingBalance: 9999},
		},
	}

	vec := newTestExtractor(src).Extract(7)[models.LoanTypeCC]
	require.NotNil(t, vec)
	require.NotNil(t, vec.UtilizationRatio)
	assert.InDelta(t, 0.40, *vec.UtilizationRatio, 1e-9)
}

func TestExtract_UtilizationNilWithoutLimit(t *testing.T) {
	src := memTradelines{
		8: {
			{LoanTypeLabel: "Credit Card", Status: models.StatusLive, OutstandingBalance: 5000},
			{LoanTypeLabel: "Credit Card", Status: models.StatusClosed, CreditLimit: 10000},
		},
	}

	vec := newTestExtractor(src).Extract(8)[models.LoanTypeCC]
	require.NotNil(t, vec)
	assert.Nil(t, vec.UtilizationRatio)
}

func TestExtract_UnknownCustomer(t *testing.T) {
	features := newTestExtractor(memTradelines{}).Extract(999)
	assert.NotNil(t, features)
	assert.Empty(t, features)
}

func TestExtract_GroupFeatures(t *testing.T) {
	src := memTradelines{
		5: {
			{LoanTypeLabel: "Credit Card", Sector: "KOTAK BANK", Status: models.StatusLive, VintageMonths: 12,
				DateOpened: date("15-12-2019"), LastPaymentDate: date("2026-07-02"),
				DPDString: "000STDXXXWOF030SET", MaxDPD: utils.IntPtr(30), MonthsSinceMaxDPD: utils.IntPtr(5)},
			{LoanTypeLabel: "Secured Credit Card", Sector: "HDFC BANK", Status: "Written-Off", VintageMonths: 0,
				DateOpened: date("2025-11-20"), LastPaymentDate: date("01-09-2026 00:00"),
				DPDString: "STDSTDSMA", MaxDPD: utils.IntPtr(30), MonthsSinceMaxDPD: utils.IntPtr(1)},
			{LoanTypeLabel: "Credit Card", Sector: "KOTAK PRIME", Status: models.StatusClosed, VintageMonths: 25,
				DateOpened: date("2021-03-03"), DateClosed: date("2024-04-30")},
			{LoanTypeLabel: "Credit Card", Sector: "SBI", Status: models.StatusLive, VintageMonths: -4},
		},
	}

	vec := newTestExtractor(src).Extract(5)[models.LoanTypeCC]
	require.NotNil(t, vec)

	assert.True(t, vec.Secured, "one secured label marks the group secured")
	assert.Equal(t, 4, vec.LoanCount)
	assert.Equal(t, 3, vec.LiveCount, "written-off counts as live")
	assert.Equal(t, 1, vec.ClosedCount)
	assert.Equal(t, 2, vec.OnUsCount)
	assert.Equal(t, 2, vec.OffUsCount)
	assert.Equal(t, 18.5, vec.AvgVintageMonths)

	assert.Equal(t, utils.IntPtr(30), vec.MaxDPD)
	assert.Equal(t, utils.IntPtr(5), vec.MaxDPDMonthsAgo, "ties keep the first row")

	assert.Equal(t, []string{"SET", "SMA", "WOF"}, vec.ForcedEventFlags)
	assert.Equal(t, utils.IntPtr(1), vec.MonthsSinceLastPayment)

	assert.Equal(t, utils.StringPtr("Dec 2019"), vec.EarliestOpened)
	assert.Equal(t, utils.StringPtr("Nov 2025"), vec.LatestOpened)
	assert.Equal(t, utils.StringPtr("Apr 2024"), vec.LatestClosed)
}

func TestExtract_NoDatesNoDelinquency(t *testing.T) {
	src := memTradelines{
		6: {
			{LoanTypeLabel: "Gold Loan", Status: models.StatusLive, MaxDPD: utils.IntPtr(0)},
			{LoanTypeLabel: "Mystery Product", Status: models.StatusLive},
		},
	}

	features := newTestExtractor(src).Extract(6)
	require.Len(t, features, 2)

	gl := features[models.LoanTypeGL]
	assert.True(t, gl.Secured)
	assert.False(t, gl.DelinquencyFlag)
	assert.Nil(t, gl.MaxDPD)
	assert.Nil(t, gl.MaxDPDMonthsAgo)
	assert.Nil(t, gl.EarliestOpened)
	assert.Nil(t, gl.LatestOpened)
	assert.Nil(t, gl.LatestClosed)
	assert.Nil(t, gl.MonthsSinceLastPayment)
	assert.Equal(t, 0.0, gl.AvgVintageMonths)
	assert.Empty(t, gl.ForcedEventFlags)

	assert.Contains(t, features, models.LoanTypeOther)
}

func TestExtract_Invariants(t *testing.T) {
	labels := []string{"Personal Loan", "Credit Card", "Home Loan", "Gold Loan", "Tractor Loan", "Overdraft"}
	statuses := []string{models.StatusLive, models.StatusClosed, "Written-Off", ""}
	sectors := []string{"KOTAK BANK", "ICICI", "", "KOTAK PRIME"}

	var rows []models.RawTradeline
	for i := 0; i < 40; i++ {
		rows = append(rows, models.RawTradeline{
			LoanTypeLabel:      labels[i%len(labels)],
			Status:             statuses[i%len(statuses)],
			Sector:             sectors[(i/2)%len(sectors)],
			CreditLimit:        float64(i * 1000),
			OutstandingBalance: float64(i * 300),
		})
	}

	ex := newTestExtractor(memTradelines{1: rows})
	first := ex.Extract(1)
	for lt, vec := range first {
		assert.Equal(t, vec.LoanCount, vec.LiveCount+vec.ClosedCount, lt)
		assert.Equal(t, vec.LoanCount, vec.OnUsCount+vec.OffUsCount, lt)
		if lt != models.LoanTypeCC {
			assert.Nil(t, vec.UtilizationRatio, lt)
		}
	}

	assert.Equal(t, first, ex.Extract(1), "extraction is deterministic")
}
