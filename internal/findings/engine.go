// Package findings turns bureau features into severity-tagged key findings.
// Every rule is a fixed threshold check; nothing here is probabilistic.
package findings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

const (
	CategoryDelinquency   = "Delinquency"
	CategoryPortfolio     = "Portfolio"
	CategoryUtilization   = "Utilization"
	CategoryOutstanding   = "Outstanding"
	CategoryAdverseEvents = "Adverse Events"
	CategoryLoanActivity  = "Loan Activity"
	CategoryDPD           = "DPD & Delinquency"
	CategoryPayment       = "Payment Behavior"
	CategoryEnquiry       = "Enquiry Behavior"
	CategoryVelocity      = "Loan Velocity"
	CategoryComposite     = "Composite Signal"
)

// Extract runs the portfolio, per-loan-type, tradeline and composite passes
// and returns their findings ordered from most to least severe. Findings of
// equal severity keep generation order. tf may be nil, in which case only the
// first two passes run.
func Extract(summary models.BureauExecutiveSummaryInputs, vectors models.BureauFeatures, tf *models.TradelineFeatures) []models.KeyFinding {
	out := make([]models.KeyFinding, 0, 16)
	out = append(out, portfolioFindings(summary, vectors)...)
	out = append(out, loanTypeFindings(vectors)...)
	if tf != nil {
		out = append(out, tradelineFindings(summary, tf, vectors)...)
		out = append(out, compositeFindings(summary, tf, vectors)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}

func finding(category string, severity models.Severity, text, inference string) models.KeyFinding {
	return models.KeyFinding{Category: category, Finding: text, Inference: inference, Severity: severity}
}

func monthsAgo(ago *int) string {
	if ago == nil {
		return ""
	}
	if *ago == 1 {
		return " (1 month ago)"
	}
	return fmt.Sprintf(" (%d months ago)", *ago)
}

func portfolioFindings(s models.BureauExecutiveSummaryInputs, vectors models.BureauFeatures) []models.KeyFinding {
	var out []models.KeyFinding

	suffix := ""
	if s.MaxDPDLoanTypeCode != nil && s.MaxDPDLoanType != nil {
		if tl := Timeline(vectors[*s.MaxDPDLoanTypeCode]); tl != "" {
			suffix = " [" + *s.MaxDPDLoanType + ": " + tl + "]"
		}
	}

	if s.HasDelinquency {
		if s.MaxDPD != nil && *s.MaxDPD > 0 {
			dpd := *s.MaxDPD
			detail := fmt.Sprintf("Max DPD of %d days%s%s", dpd, monthsAgo(s.MaxDPDMonthsAgo), suffix)
			switch {
			case dpd > 90:
				out = append(out, finding(CategoryDelinquency, models.SeverityHighRisk,
					"Active delinquency detected with "+detail,
					"Severe delinquency indicates significant repayment stress; loan may be classified as NPA"))
			case dpd > 30:
				out = append(out, finding(CategoryDelinquency, models.SeverityModerateRisk,
					"Active delinquency detected with "+detail,
					"Significant past-due status suggests repayment difficulty; close monitoring required"))
			default:
				out = append(out, finding(CategoryDelinquency, models.SeverityConcern,
					"Minor delinquency detected with "+detail,
					"Early-stage past-due status; may reflect temporary cash flow mismatch"))
			}
		}
	} else {
		out = append(out, finding(CategoryDelinquency, models.SeverityPositive,
			"No delinquency detected across the portfolio",
			"Clean delinquency record is a positive indicator for repayment discipline"))
	}

	if s.TotalSanctioned > 0 {
		unsecuredPct := s.UnsecuredSanctioned / s.TotalSanctioned * 100
		text := fmt.Sprintf("Unsecured sanction is %.0f%% of total (INR %s of INR %s)",
			unsecuredPct, utils.FormatINR(s.UnsecuredSanctioned), utils.FormatINR(s.TotalSanctioned))
		switch {
		case unsecuredPct > 80:
			out = append(out, finding(CategoryPortfolio, models.SeverityModerateRisk, text,
				"Heavily skewed towards unsecured lending; higher risk in absence of collateral"))
		case unsecuredPct > 50:
			out = append(out, finding(CategoryPortfolio, models.SeverityConcern, text,
				"Majority unsecured portfolio; monitor for over-leveraging on unsecured products"))
		}

		if outstandingPct := s.TotalOutstanding / s.TotalSanctioned * 100; outstandingPct > 80 {
			out = append(out, finding(CategoryPortfolio, models.SeverityConcern,
				fmt.Sprintf("Outstanding balance is %.0f%% of total sanctioned amount", outstandingPct),
				"Most sanctioned amount still outstanding; limited repayment progress on existing obligations"))
		}
	}

	if ordered := vectors.Ordered(); len(ordered) >= 4 {
		names := make([]string, len(ordered))
		for i, vec := range ordered {
			names[i] = vec.LoanType.DisplayName()
		}
		out = append(out, finding(CategoryPortfolio, models.SeverityNeutral,
			fmt.Sprintf("Portfolio spans %d loan products (%s)", len(ordered), strings.Join(names, ", ")),
			"Diversified credit portfolio indicates established borrowing history across products"))
	}

	return out
}

func loanTypeFindings(vectors models.BureauFeatures) []models.KeyFinding {
	var out []models.KeyFinding

	for _, vec := range vectors.Ordered() {
		name := vec.LoanType.DisplayName()
		suffix := timelineSuffix(vectors, vec.LoanType)

		if vec.LoanType == models.LoanTypeCC && vec.UtilizationRatio != nil {
			util := *vec.UtilizationRatio * 100
			text := fmt.Sprintf("Credit card utilization at %.0f%%%s", util, suffix)
			switch {
			case util > 75:
				out = append(out, finding(CategoryUtilization, models.SeverityHighRisk, text,
					"Over-utilization of credit card limits signals high credit dependency and potential cash flow stress"))
			case util > 50:
				out = append(out, finding(CategoryUtilization, models.SeverityModerateRisk, text,
					"Elevated utilization; approaching high-risk threshold for revolving credit"))
			case util <= 30:
				out = append(out, finding(CategoryUtilization, models.SeverityPositive, text,
					"Healthy utilization indicates disciplined credit card usage"))
			}
		}

		if vec.DelinquencyFlag && vec.MaxDPD != nil {
			text := fmt.Sprintf("%s: Delinquent with Max DPD of %d days%s%s",
				name, *vec.MaxDPD, monthsAgo(vec.MaxDPDMonthsAgo), suffix)
			switch {
			case *vec.MaxDPD > 90:
				out = append(out, finding(CategoryDelinquency, models.SeverityHighRisk, text,
					fmt.Sprintf("Severe delinquency on %s account; may indicate deep financial distress", name)))
			case *vec.MaxDPD > 30:
				out = append(out, finding(CategoryDelinquency, models.SeverityModerateRisk, text,
					fmt.Sprintf("Significant past-due on %s; repayment discipline is compromised", name)))
			}
		}

		if vec.OverdueAmount > 0 {
			out = append(out, finding(CategoryOutstanding, models.SeverityConcern,
				fmt.Sprintf("%s: Overdue amount of INR %s%s", name, utils.FormatINR(vec.OverdueAmount), suffix),
				fmt.Sprintf("Active overdue balance on %s indicates unresolved payment obligation", name)))
		}

		if len(vec.ForcedEventFlags) > 0 {
			events := make([]string, len(vec.ForcedEventFlags))
			for i, code := range vec.ForcedEventFlags {
				events[i] = describeEvent(code)
			}
			out = append(out, finding(CategoryAdverseEvents, models.SeverityHighRisk,
				fmt.Sprintf("%s: Forced events detected: %s%s", name, strings.Join(events, ", "), suffix),
				fmt.Sprintf("Adverse credit events on %s are strong negative signals for creditworthiness", name)))
		}
	}

	return out
}

type dpdWindow struct {
	label    string
	short    string
	loanType models.LoanType
	value    *int
}

func dpdWindows(tf *models.TradelineFeatures) []dpdWindow {
	return []dpdWindow{
		{label: "Credit Card (6M)", short: "CC 6M", loanType: models.LoanTypeCC, value: tf.MaxDPD6mCC},
		{label: "Personal Loan (6M)", short: "PL 6M", loanType: models.LoanTypePL, value: tf.MaxDPD6mPL},
		{label: "Credit Card (9M)", short: "CC 9M", loanType: models.LoanTypeCC, value: tf.MaxDPD9mCC},
	}
}

// dpdClean reports whether every DPD window is present and zero.
func dpdClean(tf *models.TradelineFeatures) bool {
	for _, w := range dpdWindows(tf) {
		if w.value == nil || *w.value != 0 {
			return false
		}
	}
	return true
}

// latePayments lists the DPD windows with a positive value, e.g. "PL 6M: 15 days".
// When none is positive but the portfolio is delinquent, the portfolio max is used.
func latePayments(s models.BureauExecutiveSummaryInputs, tf *models.TradelineFeatures) []string {
	var details []string
	for _, w := range dpdWindows(tf) {
		if w.value != nil && *w.value > 0 {
			details = append(details, fmt.Sprintf("%s: %d days", w.short, *w.value))
		}
	}
	if len(details) == 0 && s.HasDelinquency && s.MaxDPD != nil && *s.MaxDPD > 0 {
		details = append(details, fmt.Sprintf("Portfolio Max DPD: %d days", *s.MaxDPD))
	}
	return details
}

func missedClean(tf *models.TradelineFeatures) bool {
	return tf.PctMissedPayments18m != nil && *tf.PctMissedPayments18m == 0
}

func tradelineFindings(s models.BureauExecutiveSummaryInputs, tf *models.TradelineFeatures, vectors models.BureauFeatures) []models.KeyFinding {
	var out []models.KeyFinding
	plSuffix := timelineSuffix(vectors, models.LoanTypePL)

	if v := tf.NewTrades6mPL; v != nil {
		text := fmt.Sprintf("%d new personal loan trades opened in last 6 months%s", *v, plSuffix)
		switch {
		case *v >= 3:
			out = append(out, finding(CategoryLoanActivity, models.SeverityHighRisk, text,
				"Rapid PL acquisition suggests urgent credit need or loan stacking behavior"))
		case *v >= 2:
			out = append(out, finding(CategoryLoanActivity, models.SeverityModerateRisk, text,
				"Multiple recent PL acquisitions; monitor for emerging over-leverage"))
		}
	}

	if v := tf.MonthsSinceLastTradePL; v != nil && *v < 2 {
		out = append(out, finding(CategoryLoanActivity, models.SeverityConcern,
			fmt.Sprintf("Last PL trade opened %.1f months ago%s", *v, plSuffix),
			"Very recent PL activity indicates active credit seeking"))
	}

	for _, w := range dpdWindows(tf) {
		if w.value == nil || *w.value <= 0 {
			continue
		}
		text := fmt.Sprintf("Max DPD for %s: %d days%s", w.label, *w.value, timelineSuffix(vectors, w.loanType))
		switch {
		case *w.value > 90:
			out = append(out, finding(CategoryDPD, models.SeverityHighRisk, text,
				fmt.Sprintf("Severe delinquency on %s; strong negative indicator", w.label)))
		case *w.value > 30:
			out = append(out, finding(CategoryDPD, models.SeverityModerateRisk, text,
				fmt.Sprintf("Significant past-due on %s; repayment under stress", w.label)))
		default:
			out = append(out, finding(CategoryDPD, models.SeverityConcern, text,
				fmt.Sprintf("Minor past-due on %s; may be a temporary delay", w.label)))
		}
	}

	if dpdClean(tf) {
		out = append(out, finding(CategoryDPD, models.SeverityPositive,
			"Zero DPD across all products in recent 6-9 month windows",
			"Clean recent payment record demonstrates consistent repayment discipline"))
	}

	if v := tf.PctMissedPayments18m; v != nil {
		text := fmt.Sprintf("%.1f%% missed payments in last 18 months", *v)
		switch {
		case *v > 10:
			out = append(out, finding(CategoryPayment, models.SeverityHighRisk, text,
				"Frequent missed payments indicate chronic repayment stress"))
		case *v > 0:
			out = append(out, finding(CategoryPayment, models.SeverityConcern, text,
				"Some missed payments detected; not habitual but warrants attention"))
		case len(latePayments(s, tf)) == 0:
			// A zero share with late payments elsewhere is reported by the composite pass.
			out = append(out, finding(CategoryPayment, models.SeverityPositive,
				"No missed payments in last 18 months",
				"Perfect payment track record over 18 months is a strong positive"))
		}
	}

	if v := tf.RatioGoodClosedPL; v != nil {
		text := fmt.Sprintf("Good closure ratio for PL loans: %.0f%%", *v*100)
		switch {
		case *v >= 0.8:
			out = append(out, finding(CategoryPayment, models.SeverityPositive, text,
				"Strong track record of closing personal loans in good standing"))
		case *v < 0.5:
			out = append(out, finding(CategoryPayment, models.SeverityHighRisk, text,
				"Poor PL closure history; majority of closed PLs had issues"))
		case *v < 0.7:
			out = append(out, finding(CategoryPayment, models.SeverityConcern, text,
				"Below-average PL closure quality; some loans closed with problems"))
		}
	}

	// CC utilization is reported from the feature vectors.
	if v := tf.PLBalanceRemainingPct; v != nil {
		text := fmt.Sprintf("PL balance remaining: %.1f%%", *v)
		switch {
		case *v > 80:
			out = append(out, finding(CategoryUtilization, models.SeverityHighRisk, text,
				"Most PL sanctioned amount still outstanding; limited principal repayment progress"))
		case *v <= 30:
			out = append(out, finding(CategoryUtilization, models.SeverityPositive, text,
				"Significant PL principal already repaid; good repayment progress"))
		}
	}

	if v := tf.UnsecuredEnquiries12m; v != nil {
		text := fmt.Sprintf("%d unsecured enquiries in last 12 months", *v)
		switch {
		case *v > 15:
			out = append(out, finding(CategoryEnquiry, models.SeverityHighRisk, text,
				"Very high enquiry pressure suggests desperate credit seeking or multiple rejections"))
		case *v > 10:
			out = append(out, finding(CategoryEnquiry, models.SeverityModerateRisk, text,
				"Elevated enquiry activity; may indicate difficulty securing credit"))
		case *v <= 3:
			out = append(out, finding(CategoryEnquiry, models.SeverityPositive, text,
				"Minimal enquiry activity indicates stable credit position"))
		}
	}

	if v := tf.TradeToEnquiryRatioUns24m; v != nil {
		text := fmt.Sprintf("Trade-to-enquiry ratio (unsecured, 24M): %.1f%%", *v)
		switch {
		case *v < 20:
			out = append(out, finding(CategoryEnquiry, models.SeverityConcern, text,
				"Low conversion from enquiries to actual loans suggests possible rejections by lenders"))
		case *v > 50:
			out = append(out, finding(CategoryEnquiry, models.SeverityPositive, text,
				"High conversion rate indicates strong acceptance by lenders"))
		}
	}

	if v := tf.InterpurchaseTime12mPLBL; v != nil {
		text := fmt.Sprintf("Avg time between PL/BL acquisitions (12M): %.1f months", *v)
		switch {
		case *v < 1:
			out = append(out, finding(CategoryVelocity, models.SeverityHighRisk, text,
				"Rapid loan stacking; acquiring unsecured loans faster than monthly with high risk of over-leverage"))
		case *v < 2:
			out = append(out, finding(CategoryVelocity, models.SeverityConcern, text,
				"Frequent loan acquisitions; borrower is actively accumulating unsecured debt"))
		case *v >= 6:
			out = append(out, finding(CategoryVelocity, models.SeverityPositive, text,
				"Measured pace of loan acquisitions indicates no urgency or stacking behavior"))
		}
	}

	return out
}

func compositeFindings(s models.BureauExecutiveSummaryInputs, tf *models.TradelineFeatures, vectors models.BureauFeatures) []models.KeyFinding {
	var out []models.KeyFinding
	plSuffix := timelineSuffix(vectors, models.LoanTypePL)
	ccSuffix := timelineSuffix(vectors, models.LoanTypeCC)

	enquiries := tf.UnsecuredEnquiries12m
	newPL := tf.NewTrades6mPL
	highEnquiries := enquiries != nil && *enquiries > 10
	stacking := newPL != nil && *newPL >= 2

	if highEnquiries && stacking {
		out = append(out, finding(CategoryComposite, models.SeverityHighRisk,
			fmt.Sprintf("High enquiry volume (%d in 12M) combined with %d new PL trades in 6M%s", *enquiries, *newPL, plSuffix),
			"Credit hungry behavior with active loan stacking; elevated risk of debt spiral"))
	}

	if ipt := tf.InterpurchaseTime12mPLBL; ipt != nil && *ipt < 2 && stacking {
		out = append(out, finding(CategoryComposite, models.SeverityHighRisk,
			fmt.Sprintf("Avg %.1f months between PL/BL with %d new trades in 6M%s", *ipt, *newPL, plSuffix),
			"Rapid PL stacking pattern; borrower is accumulating unsecured debt at an accelerating pace"))
	}

	if cc, pl := tf.CCBalanceUtilizationPct, tf.PLBalanceRemainingPct; cc != nil && *cc > 50 && pl != nil && *pl > 50 {
		out = append(out, finding(CategoryComposite, models.SeverityModerateRisk,
			fmt.Sprintf("CC utilization at %.1f%%%s and PL balance remaining at %.1f%%%s", *cc, ccSuffix, *pl, plSuffix),
			"Elevated leverage across both revolving and term products; limited debt servicing headroom"))
	}

	if ratio := tf.TradeToEnquiryRatioUns24m; highEnquiries && ratio != nil && *ratio < 30 {
		out = append(out, finding(CategoryComposite, models.SeverityModerateRisk,
			fmt.Sprintf("High enquiries (%d) but only %.1f%% trade-to-enquiry conversion", *enquiries, *ratio),
			"Low conversion rate despite high enquiry volume suggests multiple lender rejections"))
	}

	if good := tf.RatioGoodClosedPL; dpdClean(tf) && missedClean(tf) && good != nil && *good >= 0.8 {
		out = append(out, finding(CategoryComposite, models.SeverityPositive,
			fmt.Sprintf("Zero DPD, no missed payments, and %.0f%% good PL closure ratio", *good*100),
			"Exemplary repayment profile; strong candidate from a credit discipline standpoint"))
	}

	if missedClean(tf) {
		if late := latePayments(s, tf); len(late) > 0 {
			out = append(out, finding(CategoryComposite, models.SeverityConcern,
				fmt.Sprintf("No formal missed payments but DPD detected (%s)", strings.Join(late, ", ")),
				"Payments were made but with delays past due date; payment discipline is inconsistent despite no formal defaults"))
		}
	}

	return out
}
