package bureau

import (
	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

// FeatureSource serves the raw pre-computed feature row of one customer,
// keyed by the feed's column names.
type FeatureSource interface {
	FeatureRow(crn int64) (map[string]string, bool)
}

type featureColumn struct {
	name   string
	assign func(tf *models.TradelineFeatures, raw string)
}

func intColumn(name string, field func(*models.TradelineFeatures) **int) featureColumn {
	return featureColumn{name: name, assign: func(tf *models.TradelineFeatures, raw string) {
		*field(tf) = utils.ParseOptionalInt(raw)
	}}
}

func floatColumn(name string, field func(*models.TradelineFeatures) **float64) featureColumn {
	return featureColumn{name: name, assign: func(tf *models.TradelineFeatures, raw string) {
		*field(tf) = utils.ParseOptionalFloat(raw)
	}}
}

// featureColumns maps the feed's column names onto TradelineFeatures fields.
var featureColumns = []featureColumn{
	floatColumn("monsnclasttrop_pl_onc", func(tf *models.TradelineFeatures) **float64 { return &tf.MonthsSinceLastTradePL }),
	floatColumn("monsnclasttrop_uns_onc", func(tf *models.TradelineFeatures) **float64 { return &tf.MonthsSinceLastTradeUns }),
	intColumn("no_tr_open_l6m_pl_onc", func(tf *models.TradelineFeatures) **int { return &tf.NewTrades6mPL }),
	intColumn("no_trades_all_onc", func(tf *models.TradelineFeatures) **int { return &tf.TotalTrades }),
	intColumn("max_dpd_l6m_cc_onc", func(tf *models.TradelineFeatures) **int { return &tf.MaxDPD6mCC }),
	intColumn("max_dpd_l6m_pl_onc", func(tf *models.TradelineFeatures) **int { return &tf.MaxDPD6mPL }),
	intColumn("max_dpd_l9m_cc_onc", func(tf *models.TradelineFeatures) **int { return &tf.MaxDPD9mCC }),
	floatColumn("mon_sin_last_0p_uns_op", func(tf *models.TradelineFeatures) **float64 { return &tf.MonthsSinceLast0pUns }),
	floatColumn("monsinlast_0p_pl_onc", func(tf *models.TradelineFeatures) **float64 { return &tf.MonthsSinceLast0pPL }),
	floatColumn("pct_0p_l24m_all_onc", func(tf *models.TradelineFeatures) **float64 { return &tf.Pct0Plus24mAll }),
	floatColumn("pct_0p_l24m_pl_onc", func(tf *models.TradelineFeatures) **float64 { return &tf.Pct0Plus24mPL }),
	floatColumn("pct_missed_pymt_last18m_all", func(tf *models.TradelineFeatures) **float64 { return &tf.PctMissedPayments18m }),
	floatColumn("pct_tr_0p_l12m_all_onc", func(tf *models.TradelineFeatures) **float64 { return &tf.PctTrades0Plus12m }),
	floatColumn("ratio_good_closed_loans_pl", func(tf *models.TradelineFeatures) **float64 { return &tf.RatioGoodClosedPL }),
	floatColumn("pct_bal_cc_lv", func(tf *models.TradelineFeatures) **float64 { return &tf.CCBalanceUtilizationPct }),
	floatColumn("pct_bal_pl_lv", func(tf *models.TradelineFeatures) **float64 { return &tf.PLBalanceRemainingPct }),
	intColumn("uns_enq_l12m", func(tf *models.TradelineFeatures) **int { return &tf.UnsecuredEnquiries12m }),
	floatColumn("tr_to_enq_ratio_uns_l24m", func(tf *models.TradelineFeatures) **float64 { return &tf.TradeToEnquiryRatioUns24m }),
	floatColumn("interpurchase_time_l12m_plbl", func(tf *models.TradelineFeatures) **float64 { return &tf.InterpurchaseTime12mPLBL }),
	floatColumn("interpurchase_time_l6m_plbl", func(tf *models.TradelineFeatures) **float64 { return &tf.InterpurchaseTime6mPLBL }),
	floatColumn("interpurchase_time_l24m_all", func(tf *models.TradelineFeatures) **float64 { return &tf.InterpurchaseTime24mAll }),
	floatColumn("interpurchase_time_l9m_hl_lap", func(tf *models.TradelineFeatures) **float64 { return &tf.InterpurchaseTime9mHLLAP }),
	floatColumn("interpurchase_time_l24m_hl_lap", func(tf *models.TradelineFeatures) **float64 { return &tf.InterpurchaseTime24mHLLAP }),
	floatColumn("interpurchase_time_l24m_twl", func(tf *models.TradelineFeatures) **float64 { return &tf.InterpurchaseTime24mTWL }),
	floatColumn("interpurchase_time_l12m_cl", func(tf *models.TradelineFeatures) **float64 { return &tf.InterpurchaseTime12mCL }),
}

// FeatureColumns lists the feed columns read into TradelineFeatures, in order.
func FeatureColumns() []string {
	names := make([]string, len(featureColumns))
	for i, c := range featureColumns {
		names[i] = c.name
	}
	return names
}

// TradelineFeatureExtractor looks up a customer's pre-computed features.
type TradelineFeatureExtractor struct {
	source FeatureSource
}

// NewTradelineFeatureExtractor creates an extractor reading from source.
func NewTradelineFeatureExtractor(source FeatureSource) *TradelineFeatureExtractor {
	return &TradelineFeatureExtractor{source: source}
}

// Extract returns the customer's features, or nil when the customer is not in the feed.
func (x *TradelineFeatureExtractor) Extract(crn int64) *models.TradelineFeatures {
	row, ok := x.source.FeatureRow(crn)
	if !ok {
		return nil
	}
	return ParseTradelineFeatures(row)
}

// ParseTradelineFeatures builds TradelineFeatures from a raw feed row and
// applies the cross-window consistency repairs.
func ParseTradelineFeatures(row map[string]string) *models.TradelineFeatures {
	tf := &models.TradelineFeatures{}
	for _, c := range featureColumns {
		c.assign(tf, row[c.name])
	}
	RepairTradelineFeatures(tf)
	return tf
}

// RepairTradelineFeatures reconciles overlapping windows in the raw feed:
//   - PL is a subset of unsecured, so a missing unsecured months-since-0+ DPD takes the PL value.
//   - The 9M CC max DPD window contains the 6M window, so it is raised to at least the 6M value.
//   - All trades contain PL trades, so the 24M all-trades 0+ DPD share is raised to at least the PL share.
func RepairTradelineFeatures(tf *models.TradelineFeatures) {
	if tf.MonthsSinceLast0pUns == nil && tf.MonthsSinceLast0pPL != nil {
		v := *tf.MonthsSinceLast0pPL
		tf.MonthsSinceLast0pUns = &v
	}

	if tf.MaxDPD6mCC != nil && (tf.MaxDPD9mCC == nil || *tf.MaxDPD9mCC < *tf.MaxDPD6mCC) {
		v := *tf.MaxDPD6mCC
		tf.MaxDPD9mCC = &v
	}

	if tf.Pct0Plus24mAll != nil && tf.Pct0Plus24mPL != nil && *tf.Pct0Plus24mPL > *tf.Pct0Plus24mAll {
		v := *tf.Pct0Plus24mPL
		tf.Pct0Plus24mAll = &v
	}
}
