// Package reconciliation runs the fixed-interval withdrawal reconciliation job.
package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/creator-platform/creator_service/pkg/logger"
)

// Reconciler is the subset of the wallet service the scheduler drives
type Reconciler interface {
	ReconcileProcessing(ctx context.Context) error
}

// Scheduler owns the reconciliation schedule. It is registered at process startup and
// stopped at shutdown; overlapping runs are skipped rather than stacked.
type Scheduler struct {
	reconciler Reconciler
	interval   time.Duration
	log        *logger.Logger

	cron    *cron.Cron
	entryID cron.EntryID
}

// NewScheduler creates a reconciliation scheduler with injected dependencies
func NewScheduler(reconciler Reconciler, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		interval:   interval,
		log:        log,
	}
}

// Start registers and starts the reconciliation job
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cron != nil {
		return fmt.Errorf("reconciliation scheduler already started")
	}

	cronLogger := cron.PrintfLogger(zapPrintf{s.log})
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	spec := fmt.Sprintf("@every %s", s.interval)
	entryID, err := s.cron.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, s.interval*2)
		defer cancel()

		if err := s.reconciler.ReconcileProcessing(runCtx); err != nil {
			s.log.Error("Reconciliation run failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reconciliation job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.log.Info("Reconciliation scheduler started", "interval", s.interval.String())
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish
func (s *Scheduler) Stop() error {
	if s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("Reconciliation scheduler stopped")
	return nil
}

// zapPrintf adapts the service logger to cron's Printf-style logger
type zapPrintf struct {
	log *logger.Logger
}

func (z zapPrintf) Printf(format string, args ...interface{}) {
	z.log.Info(fmt.Sprintf(format, args...))
}
