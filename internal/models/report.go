package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthlyExposure is the active sanctioned amount per loan type over a
// trailing window of calendar months, oldest first. In JSON the series are
// keyed by loan-type code ("PL"), matching the XML export.
type MonthlyExposure struct {
	Months []string
	Series map[LoanType][]float64
}

type monthlyExposureJSON struct {
	Months []string             `json:"months"`
	Series map[string][]float64 `json:"series"`
}

func (e MonthlyExposure) MarshalJSON() ([]byte, error) {
	out := monthlyExposureJSON{Months: e.Months, Series: make(map[string][]float64, len(e.Series))}
	for lt, series := range e.Series {
		out.Series[lt.Code()] = series
	}
	return json.Marshal(out)
}

func (e *MonthlyExposure) UnmarshalJSON(data []byte) error {
	var in monthlyExposureJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	series := make(map[LoanType][]float64, len(in.Series))
	for code, values := range in.Series {
		lt, ok := LoanTypeFromCode(code)
		if !ok {
			return fmt.Errorf("unknown loan type code %q in exposure series", code)
		}
		series[lt] = values
	}
	e.Months = in.Months
	e.Series = series
	return nil
}

// ReportMeta identifies a generated report.
type ReportMeta struct {
	ReportID       string    `json:"report_id"`
	CustomerID     int64     `json:"customer_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	AnalysisPeriod string    `json:"analysis_period"`
	Currency       string    `json:"currency"`
	TradelineCount int       `json:"tradeline_count"`
}

// BureauReport is the assembled bureau report handed to the renderer.
type BureauReport struct {
	Meta              ReportMeta                   `json:"meta"`
	FeatureVectors    BureauFeatures               `json:"feature_vectors"`
	ExecutiveInputs   BureauExecutiveSummaryInputs `json:"executive_inputs"`
	TradelineFeatures *TradelineFeatures           `json:"tradeline_features"`
	KeyFindings       []KeyFinding                 `json:"key_findings"`
	MonthlyExposure   *MonthlyExposure             `json:"monthly_exposure"`
	Warnings          []string                     `json:"warnings,omitempty"`
}

// HasSeverity reports whether any key finding carries the given severity.
func (r *BureauReport) HasSeverity(s Severity) bool {
	for _, f := range r.KeyFindings {
		if f.Severity == s {
			return true
		}
	}
	return false
}
