package models

// TradelineFeatures holds the pre-computed customer-level behavioural
// features. A nil field means the feed had no value; it is never zero-filled.
type TradelineFeatures struct {
	// Loan activity
	MonthsSinceLastTradePL  *float64 `json:"months_since_last_trade_pl"`
	MonthsSinceLastTradeUns *float64 `json:"months_since_last_trade_uns"`
	NewTrades6mPL           *int     `json:"new_trades_6m_pl"`
	TotalTrades             *int     `json:"total_trades"`

	// DPD and delinquency
	MaxDPD6mCC           *int     `json:"max_dpd_6m_cc"`
	MaxDPD6mPL           *int     `json:"max_dpd_6m_pl"`
	MaxDPD9mCC           *int     `json:"max_dpd_9m_cc"`
	MonthsSinceLast0pUns *float64 `json:"months_since_last_0p_uns"`
	MonthsSinceLast0pPL  *float64 `json:"months_since_last_0p_pl"`

	// Payment behaviour
	Pct0Plus24mAll       *float64 `json:"pct_0plus_24m_all"`
	Pct0Plus24mPL        *float64 `json:"pct_0plus_24m_pl"`
	PctMissedPayments18m *float64 `json:"pct_missed_payments_18m"`
	PctTrades0Plus12m    *float64 `json:"pct_trades_0plus_12m"`
	RatioGoodClosedPL    *float64 `json:"ratio_good_closed_pl"`

	// Utilization
	CCBalanceUtilizationPct *float64 `json:"cc_balance_utilization_pct"`
	PLBalanceRemainingPct   *float64 `json:"pl_balance_remaining_pct"`

	// Enquiries
	UnsecuredEnquiries12m     *int     `json:"unsecured_enquiries_12m"`
	TradeToEnquiryRatioUns24m *float64 `json:"trade_to_enquiry_ratio_uns_24m"`

	// Acquisition velocity
	InterpurchaseTime12mPLBL  *float64 `json:"interpurchase_time_12m_plbl"`
	InterpurchaseTime6mPLBL   *float64 `json:"interpurchase_time_6m_plbl"`
	InterpurchaseTime24mAll   *float64 `json:"interpurchase_time_24m_all"`
	InterpurchaseTime9mHLLAP  *float64 `json:"interpurchase_time_9m_hl_lap"`
	InterpurchaseTime24mHLLAP *float64 `json:"interpurchase_time_24m_hl_lap"`
	InterpurchaseTime24mTWL   *float64 `json:"interpurchase_time_24m_twl"`
	InterpurchaseTime12mCL    *float64 `json:"interpurchase_time_12m_cl"`
}
