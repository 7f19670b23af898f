package models

// BureauLoanFeatureVector holds the computed features for one canonical loan
// type across all of a customer's tradelines of that type.
type BureauLoanFeatureVector struct {
	LoanType LoanType `json:"loan_type"`
	Secured  bool     `json:"secured"`

	LoanCount              int     `json:"loan_count"`
	TotalSanctionedAmount  float64 `json:"total_sanctioned_amount"`
	TotalOutstandingAmount float64 `json:"total_outstanding_amount"`

	AvgVintageMonths       float64 `json:"avg_vintage_months"`
	MonthsSinceLastPayment *int    `json:"months_since_last_payment"`

	LiveCount   int `json:"live_count"`
	ClosedCount int `json:"closed_count"`

	DelinquencyFlag bool    `json:"delinquency_flag"`
	MaxDPD          *int    `json:"max_dpd"`
	MaxDPDMonthsAgo *int    `json:"max_dpd_months_ago"`
	OverdueAmount   float64 `json:"overdue_amount"`

	// UtilizationRatio is outstanding/limit in [0, n], credit cards only.
	UtilizationRatio *float64 `json:"utilization_ratio"`

	EarliestOpened *string `json:"earliest_opened"` // e.g. "Dec 2019"
	LatestOpened   *string `json:"latest_opened"`
	LatestClosed   *string `json:"latest_closed"`

	ForcedEventFlags []string `json:"forced_event_flags"`
	OnUsCount        int      `json:"on_us_count"`
	OffUsCount       int      `json:"off_us_count"`
}

// BureauFeatures maps each loan type present for a customer to its vector.
type BureauFeatures map[LoanType]*BureauLoanFeatureVector

// Ordered returns the vectors in canonical loan-type order.
func (f BureauFeatures) Ordered() []*BureauLoanFeatureVector {
	out := make([]*BureauLoanFeatureVector, 0, len(f))
	for _, lt := range AllLoanTypes {
		if vec, ok := f[lt]; ok && vec != nil {
			out = append(out, vec)
		}
	}
	return out
}
