// Package scheduler reloads the source tables on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Reloader refreshes the source tables.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler runs Reload on a cron spec.
type Scheduler struct {
	cron     *cron.Cron
	reloader Reloader
	log      *logrus.Logger
	timeout  time.Duration
}

// New creates a scheduler for spec. An empty spec returns nil, which is a
// valid scheduler that never runs.
func New(spec string, reloader Reloader, log *logrus.Logger) (*Scheduler, error) {
	if spec == "" {
		return nil, nil
	}
	s := &Scheduler{
		cron:     cron.New(),
		reloader: reloader,
		log:      log,
		timeout:  5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.log.WithField("component", "scheduler").Info("Scheduled reload started")
	if err := s.reloader.Reload(ctx); err != nil {
		s.log.WithField("component", "scheduler").Errorf("Scheduled reload failed: %v", err)
	}
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	if s == nil {
		return
	}
	s.cron.Start()
}

// Stop halts the schedule and waits for a running reload to finish.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}
	<-s.cron.Stop().Done()
}
