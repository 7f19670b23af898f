package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bureau-service/internal/bureau"
	"github.com/Dan9191/bureau-service/internal/config"
	"github.com/Dan9191/bureau-service/internal/findings"
	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/repository"
	"github.com/Dan9191/bureau-service/internal/utils"
)

// DataStore is the loaded source tables.
type DataStore interface {
	bureau.TradelineSource
	bureau.FeatureSource
	Reload(ctx context.Context) error
	Loaded() bool
	Stats() (repository.Stats, error)
}

// ReportCache stores assembled reports by customer and period.
type ReportCache interface {
	Get(ctx context.Context, crn int64, period string) (*models.BureauReport, error)
	Set(ctx context.Context, period string, report *models.BureauReport) error
	InvalidateAll(ctx context.Context) (int64, error)
}

// RiskAlerter is notified of reports carrying high-risk findings.
type RiskAlerter interface {
	SendRiskAlert(ctx context.Context, report *models.BureauReport) error
}

// AlertTimeout bounds a single risk alert delivery.
const AlertTimeout = 30 * time.Second

// Option customizes a Service.
type Option func(*Service)

// WithCache enables the report cache.
func WithCache(c ReportCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRiskAlerts enables risk alert mail.
func WithRiskAlerts(a RiskAlerter) Option {
	return func(s *Service) { s.alerts = a }
}

// WithClock replaces the wall clock used for month arithmetic and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service handles business logic
type Service struct {
	store  DataStore
	cache  ReportCache
	alerts RiskAlerter
	log    *logrus.Logger
	config *config.Config
	now    func() time.Time

	extractor *bureau.Extractor
	features  *bureau.TradelineFeatureExtractor
	newID     func() string

	// alerted holds the cache keys already alerted on since the last reload.
	alertMu      sync.Mutex
	alerted      map[string]struct{}
	alertWG      sync.WaitGroup
	alertTimeout time.Duration
}

// NewService initializes a new service
func NewService(store DataStore, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:  store,
		log:    log,
		config: cfg,
		now:    time.Now,
		newID:  newReportID,

		alerted:      make(map[string]struct{}),
		alertTimeout: AlertTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.extractor = bureau.NewExtractor(store, bureau.ExtractorConfig{
		OnUsSectors: cfg.OnUsSectors,
		Now:         s.now,
	})
	s.features = bureau.NewTradelineFeatureExtractor(store)
	return s
}

func (s *Service) logFor(crn int64) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{"component": "service", "crn": utils.MaskCustomerID(crn)})
}

// BureauFeatures returns the customer's per-loan-type feature vectors.
func (s *Service) BureauFeatures(crn int64) models.BureauFeatures {
	return s.extractor.Extract(crn)
}

// Summary returns the customer's portfolio-level summary inputs.
func (s *Service) Summary(crn int64) models.BureauExecutiveSummaryInputs {
	return bureau.Aggregate(s.extractor.Extract(crn))
}

// TradelineFeatures returns the customer's behavioural features, or nil when absent.
func (s *Service) TradelineFeatures(crn int64) *models.TradelineFeatures {
	return s.features.Extract(crn)
}

// KeyFindings runs the findings engine over everything known about the customer.
func (s *Service) KeyFindings(crn int64) []models.KeyFinding {
	vectors := s.extractor.Extract(crn)
	return findings.Extract(bureau.Aggregate(vectors), vectors, s.features.Extract(crn))
}

// MonthlyExposure returns the trailing monthly exposure. months <= 0 uses the configured window.
func (s *Service) MonthlyExposure(crn int64, months int) models.MonthlyExposure {
	if months <= 0 {
		months = s.config.ExposureMonths
	}
	return s.extractor.MonthlyExposure(crn, months)
}

// Reload force-reloads the source tables and drops every cached report.
func (s *Service) Reload(ctx context.Context) error {
	if err := s.store.Reload(ctx); err != nil {
		return err
	}
	s.alertMu.Lock()
	s.alerted = make(map[string]struct{})
	s.alertMu.Unlock()

	if s.cache != nil {
		removed, err := s.cache.InvalidateAll(ctx)
		if err != nil {
			s.log.WithField("component", "service").Warnf("Failed to invalidate report cache: %v", err)
		} else {
			s.log.WithField("component", "service").Infof("Invalidated %d cached reports", removed)
		}
	}
	return nil
}

// Close waits for in-flight risk alerts to finish.
func (s *Service) Close() {
	s.alertWG.Wait()
}

// Stats describes the loaded source tables, or returns repository.ErrNotLoaded.
func (s *Service) Stats() (repository.Stats, error) {
	return s.store.Stats()
}
