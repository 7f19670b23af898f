// Package export renders bureau reports as XML for the document renderer.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

// ReportDocument builds the XML document of a bureau report.
func ReportDocument(report *models.BureauReport) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("bureauReport")
	root.CreateAttr("id", report.Meta.ReportID)

	meta := root.CreateElement("meta")
	text(meta, "customer", utils.MaskCustomerID(report.Meta.CustomerID))
	text(meta, "generatedAt", report.Meta.GeneratedAt.UTC().Format(time.RFC3339))
	text(meta, "analysisPeriod", report.Meta.AnalysisPeriod)
	text(meta, "currency", report.Meta.Currency)
	text(meta, "tradelineCount", strconv.Itoa(report.Meta.TradelineCount))

	writeSummary(root.CreateElement("summary"), report.ExecutiveInputs)

	products := root.CreateElement("products")
	for _, vec := range report.FeatureVectors.Ordered() {
		writeProduct(products.CreateElement("product"), vec)
	}

	if report.TradelineFeatures != nil {
		if err := writeTradelineFeatures(root.CreateElement("tradelineFeatures"), report.TradelineFeatures); err != nil {
			return nil, err
		}
	}

	findings := root.CreateElement("keyFindings")
	for _, f := range report.KeyFindings {
		el := findings.CreateElement("finding")
		el.CreateAttr("severity", string(f.Severity))
		el.CreateAttr("category", f.Category)
		text(el, "text", f.Finding)
		text(el, "inference", f.Inference)
	}

	if report.MonthlyExposure != nil {
		writeExposure(root.CreateElement("monthlyExposure"), report.MonthlyExposure)
	}

	if len(report.Warnings) > 0 {
		warnings := root.CreateElement("warnings")
		for _, w := range report.Warnings {
			text(warnings, "warning", w)
		}
	}

	doc.Indent(2)
	return doc, nil
}

// WriteReport writes the report XML to w.
func WriteReport(w io.Writer, report *models.BureauReport) error {
	doc, err := ReportDocument(report)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write report xml: %w", err)
	}
	return nil
}

func text(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(value)
	return el
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeSummary(el *etree.Element, s models.BureauExecutiveSummaryInputs) {
	text(el, "totalTradelines", strconv.Itoa(s.TotalTradelines))
	text(el, "liveTradelines", strconv.Itoa(s.LiveTradelines))
	text(el, "closedTradelines", strconv.Itoa(s.ClosedTradelines))
	text(el, "totalSanctioned", amount(s.TotalSanctioned))
	text(el, "totalOutstanding", amount(s.TotalOutstanding))
	text(el, "unsecuredSanctioned", amount(s.UnsecuredSanctioned))
	text(el, "unsecuredOutstanding", amount(s.UnsecuredOutstanding))
	text(el, "hasDelinquency", strconv.FormatBool(s.HasDelinquency))
	if s.MaxDPD != nil {
		dpd := text(el, "maxDPD", strconv.Itoa(*s.MaxDPD))
		if s.MaxDPDMonthsAgo != nil {
			dpd.CreateAttr("monthsAgo", strconv.Itoa(*s.MaxDPDMonthsAgo))
		}
		if s.MaxDPDLoanTypeCode != nil {
			dpd.CreateAttr("loanType", s.MaxDPDLoanTypeCode.Code())
		}
	}
}

func writeProduct(el *etree.Element, vec *models.BureauLoanFeatureVector) {
	el.CreateAttr("type", vec.LoanType.Code())
	el.CreateAttr("name", vec.LoanType.DisplayName())
	el.CreateAttr("secured", strconv.FormatBool(vec.Secured))

	text(el, "loanCount", strconv.Itoa(vec.LoanCount))
	text(el, "liveCount", strconv.Itoa(vec.LiveCount))
	text(el, "closedCount", strconv.Itoa(vec.ClosedCount))
	text(el, "onUsCount", strconv.Itoa(vec.OnUsCount))
	text(el, "offUsCount", strconv.Itoa(vec.OffUsCount))
	text(el, "sanctioned", amount(vec.TotalSanctionedAmount))
	text(el, "outstanding", amount(vec.TotalOutstandingAmount))
	text(el, "overdue", amount(vec.OverdueAmount))
	text(el, "avgVintageMonths", strconv.FormatFloat(vec.AvgVintageMonths, 'f', 1, 64))
	if vec.MaxDPD != nil {
		dpd := text(el, "maxDPD", strconv.Itoa(*vec.MaxDPD))
		if vec.MaxDPDMonthsAgo != nil {
			dpd.CreateAttr("monthsAgo", strconv.Itoa(*vec.MaxDPDMonthsAgo))
		}
	}
	if vec.UtilizationRatio != nil {
		text(el, "utilizationRatio", strconv.FormatFloat(*vec.UtilizationRatio, 'f', 4, 64))
	}

	timeline := el.CreateElement("timeline")
	if vec.EarliestOpened != nil {
		timeline.CreateAttr("earliestOpened", *vec.EarliestOpened)
	}
	if vec.LatestOpened != nil {
		timeline.CreateAttr("latestOpened", *vec.LatestOpened)
	}
	if vec.LatestClosed != nil {
		timeline.CreateAttr("latestClosed", *vec.LatestClosed)
	}

	for _, code := range vec.ForcedEventFlags {
		text(el, "forcedEvent", code)
	}
}

// writeTradelineFeatures writes the present features in name order, keyed by
// their JSON names. Absent features are omitted rather than written as zero.
func writeTradelineFeatures(el *etree.Element, tf *models.TradelineFeatures) error {
	data, err := json.Marshal(tf)
	if err != nil {
		return fmt.Errorf("failed to encode tradeline features: %w", err)
	}
	var fields map[string]*float64
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode tradeline features: %w", err)
	}

	names := make([]string, 0, len(fields))
	for name, v := range fields {
		if v != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		f := el.CreateElement("feature")
		f.CreateAttr("name", name)
		f.SetText(strconv.FormatFloat(*fields[name], 'f', -1, 64))
	}
	return nil
}

func writeExposure(el *etree.Element, exp *models.MonthlyExposure) {
	for i, month := range exp.Months {
		m := el.CreateElement("month")
		m.CreateAttr("label", month)
		for _, lt := range models.AllLoanTypes {
			series, ok := exp.Series[lt]
			if !ok || i >= len(series) {
				continue
			}
			a := text(m, "amount", amount(series[i]))
			a.CreateAttr("type", lt.Code())
		}
	}
}
