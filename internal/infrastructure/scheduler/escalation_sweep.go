package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/namjai/backend/internal/application/billing"
)

// EscalationSweepConfig holds the background sweep configuration
type EscalationSweepConfig struct {
	Enabled  bool
	Interval time.Duration
}

// EscalationSweep runs periodic escalation passes over all active zones, so
// bills age on schedule even when no officer opens their zone that day.
// Officer reads stay the primary evaluation path; the sweep is the backstop.
type EscalationSweep struct {
	config EscalationSweepConfig
	runner *appbilling.EscalationRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   *time.Time
	lastStats appbilling.SweepStats
}

// NewEscalationSweep creates a new EscalationSweep
func NewEscalationSweep(config EscalationSweepConfig, runner *appbilling.EscalationRunner, logger *zap.Logger) *EscalationSweep {
	return &EscalationSweep{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Start starts the sweep loop
func (s *EscalationSweep) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Escalation sweep started",
		zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop stops the sweep loop and waits for an in-flight pass to finish
func (s *EscalationSweep) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Escalation sweep stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Escalation sweep stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the sweep loop is active
func (s *EscalationSweep) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns the time and stats of the most recent pass
func (s *EscalationSweep) LastRun() (*time.Time, appbilling.SweepStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastStats
}

// RunOnce executes a single sweep pass immediately
func (s *EscalationSweep) RunOnce(ctx context.Context) (appbilling.SweepStats, error) {
	stats, err := s.runner.RunSweep(ctx)
	if err != nil {
		return stats, err
	}

	s.mu.Lock()
	now := time.Now()
	s.lastRun = &now
	s.lastStats = stats
	s.mu.Unlock()

	return stats, nil
}

func (s *EscalationSweep) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Escalation sweep pass failed", zap.Error(err))
			}
		}
	}
}
