package bureau

import (
	"github.com/Dan9191/bureau-service/internal/models"
)

// Aggregate rolls per-loan-type vectors up into portfolio-level summary inputs.
//
// Unsecured sums follow each vector's Secured flag rather than its loan type.
// The portfolio max DPD is taken with a strict greater-than in canonical
// loan-type order, so the first type to reach the maximum keeps provenance.
func Aggregate(vectors models.BureauFeatures) models.BureauExecutiveSummaryInputs {
	out := models.BureauExecutiveSummaryInputs{
		ProductBreakdown: make(models.BureauFeatures, len(vectors)),
	}

	for _, vec := range vectors.Ordered() {
		out.ProductBreakdown[vec.LoanType] = vec

		out.TotalTradelines += vec.LoanCount
		out.LiveTradelines += vec.LiveCount
		out.ClosedTradelines += vec.ClosedCount

		out.TotalSanctioned += vec.TotalSanctionedAmount
		out.TotalOutstanding += vec.TotalOutstandingAmount
		if !vec.Secured {
			out.UnsecuredSanctioned += vec.TotalSanctionedAmount
			out.UnsecuredOutstanding += vec.TotalOutstandingAmount
		}

		if vec.DelinquencyFlag {
			out.HasDelinquency = true
		}

		if vec.MaxDPD != nil && (out.MaxDPD == nil || *vec.MaxDPD > *out.MaxDPD) {
			dpd := *vec.MaxDPD
			out.MaxDPD = &dpd
			out.MaxDPDMonthsAgo = nil
			if vec.MaxDPDMonthsAgo != nil {
				ago := *vec.MaxDPDMonthsAgo
				out.MaxDPDMonthsAgo = &ago
			}
			name := vec.LoanType.DisplayName()
			out.MaxDPDLoanType = &name
			lt := vec.LoanType
			out.MaxDPDLoanTypeCode = &lt
		}
	}

	return out
}
