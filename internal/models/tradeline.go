package models

import "time"

// Loan status values as they appear in the bureau feed.
const (
	StatusLive   = "Live"
	StatusClosed = "Closed"
)

// RawTradeline is one row of the bureau tradeline feed, parsed at load time.
// Amounts that are missing in the feed are zero; dates and pre-computed DPD
// columns that are missing or unparseable are nil.
type RawTradeline struct {
	CRN                int64      `json:"crn"`
	LoanTypeLabel      string     `json:"loan_type"`
	Sector             string     `json:"sector"`
	SanctionAmount     float64    `json:"sanction_amount"`
	OutstandingBalance float64    `json:"outstanding_balance"`
	OverdueAmount      float64    `json:"overdue_amount"`
	CreditLimit        float64    `json:"credit_limit"`
	VintageMonths      float64    `json:"vintage_months"`
	Status             string     `json:"status"`
	DateOpened         *time.Time `json:"date_opened"`
	DateClosed         *time.Time `json:"date_closed"`
	LastPaymentDate    *time.Time `json:"last_payment_date"`
	DPDString          string     `json:"dpd_string"`
	MaxDPD             *int       `json:"max_dpd"`
	MonthsSinceMaxDPD  *int       `json:"months_since_max_dpd"`
}

// IsClosed reports whether the feed marks the tradeline as closed. Every
// other status, including written-off, counts as live.
func (t RawTradeline) IsClosed() bool {
	return t.Status == StatusClosed
}
