package bureau

import (
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

// DefaultOnUsSectors are the bank's own sector identifiers in the bureau feed.
var DefaultOnUsSectors = []string{"KOTAK BANK", "KOTAK PRIME"}

// Standard-payment and no-data markers in the DPD history string.
var normalHistoryTokens = map[string]struct{}{
	"STD": {},
	"XXX": {},
}

var historyTokenPattern = regexp.MustCompile(`[A-Z]{3}`)

// TradelineSource serves the raw tradelines of one customer, in feed order.
type TradelineSource interface {
	Tradelines(crn int64) []models.RawTradeline
}

// ExtractorConfig configures an Extractor. Zero values fall back to defaults.
type ExtractorConfig struct {
	OnUsSectors []string
	Now         func() time.Time
}

// Extractor turns a customer's raw tradelines into per-loan-type feature vectors.
// It is safe for concurrent use.
type Extractor struct {
	source TradelineSource
	onUs   map[string]struct{}
	now    func() time.Time
}

// NewExtractor creates an Extractor reading from source.
func NewExtractor(source TradelineSource, cfg ExtractorConfig) *Extractor {
	sectors := cfg.OnUsSectors
	if len(sectors) == 0 {
		sectors = DefaultOnUsSectors
	}
	onUs := make(map[string]struct{}, len(sectors))
	for _, s := range sectors {
		onUs[s] = struct{}{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Extractor{source: source, onUs: onUs, now: now}
}

// Extract computes one feature vector per loan type present for the customer.
// A customer with no tradelines yields an empty, non-nil map.
func (e *Extractor) Extract(crn int64) models.BureauFeatures {
	return e.build(e.source.Tradelines(crn))
}

func (e *Extractor) build(rows []models.RawTradeline) models.BureauFeatures {
	features := make(models.BureauFeatures)
	now := e.now()
	for lt, group := range groupByLoanType(rows) {
		features[lt] = e.buildVector(lt, group, now)
	}
	return features
}

// groupByLoanType buckets rows by canonical loan type, keeping feed order within each bucket.
func groupByLoanType(rows []models.RawTradeline) map[models.LoanType][]models.RawTradeline {
	grouped := make(map[models.LoanType][]models.RawTradeline)
	for _, row := range rows {
		lt := models.NormalizeLoanType(row.LoanTypeLabel)
		grouped[lt] = append(grouped[lt], row)
	}
	return grouped
}

func (e *Extractor) buildVector(lt models.LoanType, rows []models.RawTradeline, now time.Time) *models.BureauLoanFeatureVector {
	vec := &models.BureauLoanFeatureVector{
		LoanType:  lt,
		LoanCount: len(rows),
	}

	var vintageSum float64
	var vintageCount int
	for _, tl := range rows {
		if models.IsSecuredLabel(tl.LoanTypeLabel) {
			vec.Secured = true
		}
		vec.TotalSanctionedAmount += tl.SanctionAmount
		vec.TotalOutstandingAmount += tl.OutstandingBalance
		vec.OverdueAmount += tl.OverdueAmount
		if tl.VintageMonths > 0 {
			vintageSum += tl.VintageMonths
			vintageCount++
		}
		if tl.IsClosed() {
			vec.ClosedCount++
		}
		if _, ok := e.onUs[tl.Sector]; ok {
			vec.OnUsCount++
		}
	}
	vec.LiveCount = vec.LoanCount - vec.ClosedCount
	vec.OffUsCount = vec.LoanCount - vec.OnUsCount

	if vintageCount > 0 {
		vec.AvgVintageMonths = roundTo(vintageSum/float64(vintageCount), 1)
	}

	vec.MaxDPD, vec.MaxDPDMonthsAgo = maxDPD(rows)
	vec.DelinquencyFlag = vec.MaxDPD != nil && *vec.MaxDPD > 0

	if lt == models.LoanTypeCC {
		vec.UtilizationRatio = utilizationRatio(rows)
	}

	vec.ForcedEventFlags = forcedEventFlags(rows)
	vec.MonthsSinceLastPayment = monthsSinceLastPayment(rows, now)
	vec.EarliestOpened, vec.LatestOpened, vec.LatestClosed = timeline(rows)

	return vec
}

// maxDPD picks the highest pre-computed per-tradeline max DPD. Ties keep the
// first row seen; the months-ago value comes from the same row. Rows with no
// positive DPD are ignored, so a clean group returns nil.
func maxDPD(rows []models.RawTradeline) (*int, *int) {
	var best, monthsAgo *int
	for _, tl := range rows {
		if tl.MaxDPD == nil || *tl.MaxDPD <= 0 {
			continue
		}
		if best == nil || *tl.MaxDPD > *best {
			v := *tl.MaxDPD
			best = &v
			monthsAgo = nil
			if tl.MonthsSinceMaxDPD != nil {
				m := *tl.MonthsSinceMaxDPD
				monthsAgo = &m
			}
		}
	}
	return best, monthsAgo
}

// utilizationRatio is outstanding over limit across live cards with a positive limit.
func utilizationRatio(rows []models.RawTradeline) *float64 {
	var outstanding, limit float64
	for _, tl := range rows {
		if tl.IsClosed() || tl.CreditLimit <= 0 {
			continue
		}
		limit += tl.CreditLimit
		outstanding += tl.OutstandingBalance
	}
	if limit <= 0 {
		return nil
	}
	ratio := roundTo(outstanding/limit, 4)
	return &ratio
}

// forcedEventFlags collects the non-standard three-letter codes found in the
// DPD history strings of the group, sorted.
func forcedEventFlags(rows []models.RawTradeline) []string {
	seen := make(map[string]struct{})
	for _, tl := range rows {
		for _, token := range historyTokenPattern.FindAllString(tl.DPDString, -1) {
			if _, normal := normalHistoryTokens[token]; normal {
				continue
			}
			seen[token] = struct{}{}
		}
	}
	flags := make([]string, 0, len(seen))
	for token := range seen {
		flags = append(flags, token)
	}
	sort.Strings(flags)
	return flags
}

func monthsSinceLastPayment(rows []models.RawTradeline, now time.Time) *int {
	var latest *time.Time
	for _, tl := range rows {
		if tl.LastPaymentDate != nil && (latest == nil || tl.LastPaymentDate.After(*latest)) {
			latest = tl.LastPaymentDate
		}
	}
	if latest == nil {
		return nil
	}
	months := utils.MonthsBetween(*latest, now)
	if months < 0 {
		months = 0
	}
	return &months
}

// timeline returns the earliest and latest opened months and the latest
// closed month of the group, each nil when no valid date exists.
func timeline(rows []models.RawTradeline) (earliestOpened, latestOpened, latestClosed *string) {
	var minOpen, maxOpen, maxClose *time.Time
	for _, tl := range rows {
		if d := tl.DateOpened; d != nil {
			if minOpen == nil || d.Before(*minOpen) {
				minOpen = d
			}
			if maxOpen == nil || d.After(*maxOpen) {
				maxOpen = d
			}
		}
		if d := tl.DateClosed; d != nil && (maxClose == nil || d.After(*maxClose)) {
			maxClose = d
		}
	}
	if minOpen != nil {
		earliestOpened = utils.StringPtr(utils.MonthLabel(*minOpen))
		latestOpened = utils.StringPtr(utils.MonthLabel(*maxOpen))
	}
	if maxClose != nil {
		latestClosed = utils.StringPtr(utils.MonthLabel(*maxClose))
	}
	return earliestOpened, latestOpened, latestClosed
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
