package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dan9191/bureau-service/internal/bureau"
	"github.com/Dan9191/bureau-service/internal/cache"
	"github.com/Dan9191/bureau-service/internal/findings"
	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/repository"
)

// Report metadata constants.
const (
	DefaultAnalysisPeriod = "Bureau tradeline history"
	ReportCurrency        = "INR"
)

func newReportID() string {
	return uuid.NewString()
}

// BuildReport assembles the customer's bureau report. Findings and exposure
// are fail-soft: a failure in either is logged and the section left empty.
// Validation problems are logged and attached as warnings. Reports are served
// from the cache when one is configured.
func (s *Service) BuildReport(ctx context.Context, crn int64, period string) (*models.BureauReport, error) {
	if !s.store.Loaded() {
		return nil, repository.ErrNotLoaded
	}
	if period == "" {
		period = DefaultAnalysisPeriod
	}
	log := s.logFor(crn)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, crn, period)
		switch {
		case err == nil:
			log.Debug("Report served from cache")
			return cached, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			log.Warnf("Report cache unavailable: %v", err)
		}
	}

	vectors := s.extractor.Extract(crn)
	if len(vectors) == 0 {
		log.Warn("No bureau tradelines found")
	}
	summary := bureau.Aggregate(vectors)
	tf := s.features.Extract(crn)

	report := &models.BureauReport{
		Meta: models.ReportMeta{
			ReportID:       s.newID(),
			CustomerID:     crn,
			GeneratedAt:    s.now(),
			AnalysisPeriod: period,
			Currency:       ReportCurrency,
			TradelineCount: summary.TotalTradelines,
		},
		FeatureVectors:    vectors,
		ExecutiveInputs:   summary,
		TradelineFeatures: tf,
		KeyFindings:       []models.KeyFinding{},
	}

	if err := guard(func() { report.KeyFindings = findings.Extract(summary, vectors, tf) }); err != nil {
		log.Warnf("Key findings extraction failed: %v", err)
		report.Warnings = append(report.Warnings, "key findings unavailable")
	}
	if err := guard(func() {
		exp := s.extractor.MonthlyExposure(crn, s.config.ExposureMonths)
		report.MonthlyExposure = &exp
	}); err != nil {
		log.Warnf("Monthly exposure computation failed: %v", err)
		report.Warnings = append(report.Warnings, "monthly exposure unavailable")
	}

	for _, w := range ValidateReport(report) {
		log.Warnf("Bureau report validation: %s", w)
		report.Warnings = append(report.Warnings, w)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, period, report); err != nil {
			log.Warnf("Failed to cache report: %v", err)
		}
	}
	s.notifyRisk(crn, period, report)

	log.WithField("findings", len(report.KeyFindings)).Info("Bureau report built")
	return report, nil
}

// notifyRisk sends at most one alert per customer and period until the next
// reload. Delivery runs in the background under AlertTimeout; a failed
// delivery is retried on the next build.
func (s *Service) notifyRisk(crn int64, period string, report *models.BureauReport) {
	if s.alerts == nil || !report.HasSeverity(models.SeverityHighRisk) {
		return
	}

	key := cache.Key(crn, period)
	s.alertMu.Lock()
	if _, sent := s.alerted[key]; sent {
		s.alertMu.Unlock()
		return
	}
	s.alerted[key] = struct{}{}
	s.alertMu.Unlock()

	s.alertWG.Add(1)
	go func() {
		defer s.alertWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.alertTimeout)
		defer cancel()

		if err := s.alerts.SendRiskAlert(ctx, report); err != nil {
			s.logFor(crn).Warnf("Risk alert not sent: %v", err)
			s.alertMu.Lock()
			delete(s.alerted, key)
			s.alertMu.Unlock()
		}
	}()
}

// guard runs fn and converts a panic into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered: %v", r)
		}
	}()
	fn()
	return nil
}

// ValidateReport runs advisory consistency checks and returns one message per violation.
func ValidateReport(report *models.BureauReport) []string {
	var warnings []string
	in := report.ExecutiveInputs

	if in.LiveTradelines+in.ClosedTradelines != in.TotalTradelines {
		warnings = append(warnings, fmt.Sprintf("Tradeline count mismatch: live(%d) + closed(%d) != total(%d)",
			in.LiveTradelines, in.ClosedTradelines, in.TotalTradelines))
	}

	for _, vec := range report.FeatureVectors.Ordered() {
		code := vec.LoanType.Code()
		if vec.UtilizationRatio != nil && vec.LoanType != models.LoanTypeCC {
			warnings = append(warnings, "Utilization ratio present for non-CC type: "+code)
		}
		if vec.OnUsCount+vec.OffUsCount != vec.LoanCount {
			warnings = append(warnings, fmt.Sprintf("On-us/off-us count mismatch for %s", code))
		}
		if vec.TotalSanctionedAmount < 0 {
			warnings = append(warnings, "Negative sanctioned amount for "+code)
		}
		if vec.TotalOutstandingAmount < 0 {
			warnings = append(warnings, "Negative outstanding amount for "+code)
		}
		if vec.OverdueAmount < 0 {
			warnings = append(warnings, "Negative overdue amount for "+code)
		}
	}
	return warnings
}
