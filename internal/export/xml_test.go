package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

func sampleReport() *models.BureauReport {
	pl := &models.BureauLoanFeatureVector{
		LoanType: models.LoanTypePL, LoanCount: 3, LiveCount: 2, ClosedCount: 1, OffUsCount: 3,
		TotalSanctionedAmount: 500000, TotalOutstandingAmount: 200000, AvgVintageMonths: 14.5,
		DelinquencyFlag: true, MaxDPD: utils.IntPtr(45), MaxDPDMonthsAgo: utils.IntPtr(2),
		EarliestOpened: utils.StringPtr("Jan 2022"), LatestOpened: utils.StringPtr("Mar 2025"),
		ForcedEventFlags: []string{"SET"},
	}
	cc := &models.BureauLoanFeatureVector{
		LoanType: models.LoanTypeCC, LoanCount: 1, LiveCount: 1, OnUsCount: 1,
		UtilizationRatio: utils.FloatPtr(0.4), ForcedEventFlags: []string{},
	}
	lt := models.LoanTypePL

	return &models.BureauReport{
		Meta: models.ReportMeta{
			ReportID: "r-1", CustomerID: 12344898, GeneratedAt: time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC),
			AnalysisPeriod: "Bureau tradeline history", Currency: "INR", TradelineCount: 4,
		},
		FeatureVectors: models.BureauFeatures{models.LoanTypeCC: cc, models.LoanTypePL: pl},
		ExecutiveInputs: models.BureauExecutiveSummaryInputs{
			TotalTradelines: 4, LiveTradelines: 3, ClosedTradelines: 1,
			TotalSanctioned: 500000, HasDelinquency: true,
			MaxDPD: utils.IntPtr(45), MaxDPDMonthsAgo: utils.IntPtr(2), MaxDPDLoanTypeCode: &lt,
		},
		TradelineFeatures: &models.TradelineFeatures{
			UnsecuredEnquiries12m: utils.IntPtr(4),
			PctMissedPayments18m:  utils.FloatPtr(0),
		},
		KeyFindings: []models.KeyFinding{
			{Category: "Delinquency", Finding: "Active delinquency detected with Max DPD of 45 days", Inference: "watch", Severity: models.SeverityModerateRisk},
		},
		MonthlyExposure: &models.MonthlyExposure{
			Months: []string{"Sep 2026", "Oct 2026"},
			Series: map[models.LoanType][]float64{models.LoanTypePL: {0, 100000}},
		},
		Warnings: []string{"utilization present on non-credit-card type"},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport()))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	root := doc.SelectElement("bureauReport")
	require.NotNil(t, root)
	assert.Equal(t, "r-1", root.SelectAttrValue("id", ""))
	assert.Equal(t, "###4898", root.FindElement("./meta/customer").Text())
	assert.Equal(t, "2026-10-15T10:00:00Z", root.FindElement("./meta/generatedAt").Text())

	maxDPD := root.FindElement("./summary/maxDPD")
	require.NotNil(t, maxDPD)
	assert.Equal(t, "45", maxDPD.Text())
	assert.Equal(t, "PL", maxDPD.SelectAttrValue("loanType", ""))

	products := root.FindElements("./products/product")
	require.Len(t, products, 2)
	assert.Equal(t, "PL", products[0].SelectAttrValue("type", ""), "canonical order")
	assert.Equal(t, "SET", products[0].FindElement("./forcedEvent").Text())
	assert.Equal(t, "Jan 2022", products[0].FindElement("./timeline").SelectAttrValue("earliestOpened", ""))
	assert.Nil(t, products[0].FindElement("./utilizationRatio"))
	assert.Equal(t, "0.4000", products[1].FindElement("./utilizationRatio").Text())

	features := root.FindElements("./tradelineFeatures/feature")
	require.Len(t, features, 2, "absent features are omitted")
	assert.Equal(t, "pct_missed_payments_18m", features[0].SelectAttrValue("name", ""))
	assert.Equal(t, "0", features[0].Text())
	assert.Equal(t, "unsecured_enquiries_12m", features[1].SelectAttrValue("name", ""))

	finding := root.FindElement("./keyFindings/finding")
	require.NotNil(t, finding)
	assert.Equal(t, "moderate_risk", finding.SelectAttrValue("severity", ""))
	assert.Equal(t, "watch", finding.FindElement("./inference").Text())

	months := root.FindElements("./monthlyExposure/month")
	require.Len(t, months, 2)
	assert.Equal(t, "100000.00", months[1].FindElement("./amount[@type='PL']").Text())

	assert.Len(t, root.FindElements("./warnings/warning"), 1)
}

func TestReportDocumentMinimal(t *testing.T) {
	doc, err := ReportDocument(&models.BureauReport{Meta: models.ReportMeta{ReportID: "empty"}})
	require.NoError(t, err)

	root := doc.SelectElement("bureauReport")
	require.NotNil(t, root)
	assert.Nil(t, root.FindElement("./tradelineFeatures"))
	assert.Nil(t, root.FindElement("./monthlyExposure"))
	assert.Nil(t, root.FindElement("./summary/maxDPD"))
	assert.Empty(t, root.FindElements("./products/product"))
}
