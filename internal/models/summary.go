package models

// BureauExecutiveSummaryInputs is the portfolio-level rollup of a customer's
// per-loan-type vectors.
type BureauExecutiveSummaryInputs struct {
	TotalTradelines  int `json:"total_tradelines"`
	LiveTradelines   int `json:"live_tradelines"`
	ClosedTradelines int `json:"closed_tradelines"`

	ProductBreakdown BureauFeatures `json:"product_breakdown"`

	TotalSanctioned      float64 `json:"total_sanctioned"`
	TotalOutstanding     float64 `json:"total_outstanding"`
	UnsecuredSanctioned  float64 `json:"unsecured_sanctioned"`
	UnsecuredOutstanding float64 `json:"unsecured_outstanding"`

	HasDelinquency  bool    `json:"has_delinquency"`
	MaxDPD          *int    `json:"max_dpd"`
	MaxDPDMonthsAgo *int    `json:"max_dpd_months_ago"`
	MaxDPDLoanType  *string `json:"max_dpd_loan_type"` // display name, e.g. "Personal Loan"

	// MaxDPDLoanTypeCode is the canonical type behind MaxDPDLoanType.
	MaxDPDLoanTypeCode *LoanType `json:"max_dpd_loan_type_code,omitempty"`
}
