package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal"
)

// Scheduler fires one promotion scan per day at a fixed local time.
type Scheduler struct {
	orchestrator *Orchestrator
	cfg          internal.ScanConfig
	logger       *slog.Logger

	timer *time.Timer
	stop  chan struct{}
	wg    sync.WaitGroup
	mu    sync.Mutex
}

func NewScheduler(orchestrator *Orchestrator, cfg internal.ScanConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		cfg:          cfg,
		logger:       logger,
		stop:         make(chan struct{}),
	}
}

// Start begins the scheduler. Disabled schedulers start nothing, so
// Stop stays safe to call either way.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled {
		s.logger.Info("scan scheduler disabled, not starting")
		return
	}

	offset, err := internal.ParseDailyAt(s.cfg.DailyAt)
	if err != nil {
		s.logger.Error("invalid scan schedule, scheduler not started", "daily_at", s.cfg.DailyAt, "error", err)
		return
	}

	s.timer = time.NewTimer(untilNext(time.Now(), offset))
	s.wg.Add(1)
	go s.run(offset)

	s.logger.Info("scan scheduler started",
		"daily_at", s.cfg.DailyAt,
		"run_on_start", s.cfg.RunOnStart)
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		close(s.stop)
		s.wg.Wait()
		s.logger.Info("scan scheduler stopped")
	}
}

// RunNow triggers an immediate scan outside the daily schedule.
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	return s.orchestrator.Run(ctx)
}

func (s *Scheduler) run(offset time.Duration) {
	defer s.wg.Done()

	if s.cfg.RunOnStart {
		s.runScan()
	}

	for {
		select {
		case <-s.timer.C:
			s.runScan()
			s.timer.Reset(untilNext(time.Now(), offset))
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) runScan() {
	report, err := s.orchestrator.Run(context.Background())
	if err != nil {
		if errors.Is(err, internal.ErrScanInProgress) {
			s.logger.Warn("scheduled scan skipped, another run in progress")
			return
		}
		s.logger.Error("scheduled scan failed", "error", err)
		return
	}
	s.logger.Info("scheduled scan completed",
		"run_id", report.RunID,
		"evaluated", report.Evaluated,
		"notified", report.Notified)
}

// untilNext returns the wait until the next occurrence of the
// time-of-day offset, strictly in the future.
func untilNext(now time.Time, offset time.Duration) time.Duration {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	next := midnight.Add(offset)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
