package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bureau-service/internal/models"
)

// ErrNotLoaded is returned when the source tables are read before the first successful load.
var ErrNotLoaded = errors.New("source tables not loaded")

// FeedSource loads a complete snapshot of both source tables.
type FeedSource interface {
	Name() string
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is an immutable, customer-indexed copy of the source tables.
type Snapshot struct {
	tradelines map[int64][]models.RawTradeline
	features   map[int64]map[string]string
	rows       int
	loadedAt   time.Time
}

// NewSnapshot indexes tradelines by customer, keeping feed order within a customer.
func NewSnapshot(tradelines []models.RawTradeline, features map[int64]map[string]string) *Snapshot {
	byCRN := make(map[int64][]models.RawTradeline)
	for _, tl := range tradelines {
		byCRN[tl.CRN] = append(byCRN[tl.CRN], tl)
	}
	if features == nil {
		features = make(map[int64]map[string]string)
	}
	return &Snapshot{tradelines: byCRN, features: features, rows: len(tradelines)}
}

// Stats describes the loaded snapshot.
type Stats struct {
	Source      string    `json:"source"`
	Tradelines  int       `json:"tradelines"`
	Customers   int       `json:"customers"`
	FeatureRows int       `json:"feature_rows"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Store is the process-wide data-access object over the source tables. It
// loads once and swaps in a new snapshot on Reload; a failed reload keeps
// the previous snapshot.
type Store struct {
	source FeedSource
	log    *logrus.Logger
	now    func() time.Time

	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore initializes a store over source. Nothing is loaded until Reload.
func NewStore(source FeedSource, log *logrus.Logger) *Store {
	return &Store{source: source, log: log, now: time.Now}
}

// Reload reads the source tables and replaces the current snapshot.
func (s *Store) Reload(ctx context.Context) error {
	start := s.now()
	snap, err := s.source.Load(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{"component": "repository", "source": s.source.Name()}).
			Errorf("Reload failed, keeping previous snapshot: %v", err)
		return fmt.Errorf("failed to load source tables: %w", err)
	}
	snap.loadedAt = s.now()

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"component": "repository",
		"source":    s.source.Name(),
		"rows":      snap.rows,
		"customers": len(snap.tradelines),
		"features":  len(snap.features),
	}).Infof("Source tables loaded in %s", s.now().Sub(start))
	return nil
}

func (s *Store) current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Loaded reports whether a snapshot is available.
func (s *Store) Loaded() bool {
	return s.current() != nil
}

// Tradelines returns the customer's tradelines in feed order, or nil.
func (s *Store) Tradelines(crn int64) []models.RawTradeline {
	snap := s.current()
	if snap == nil {
		return nil
	}
	return snap.tradelines[crn]
}

// FeatureRow returns the customer's raw feature row.
func (s *Store) FeatureRow(crn int64) (map[string]string, bool) {
	snap := s.current()
	if snap == nil {
		return nil, false
	}
	row, ok := snap.features[crn]
	return row, ok
}

// Stats returns counts for the current snapshot.
func (s *Store) Stats() (Stats, error) {
	snap := s.current()
	if snap == nil {
		return Stats{}, ErrNotLoaded
	}
	return Stats{
		Source:      s.source.Name(),
		Tradelines:  snap.rows,
		Customers:   len(snap.tradelines),
		FeatureRows: len(snap.features),
		LoadedAt:    snap.loadedAt,
	}, nil
}
