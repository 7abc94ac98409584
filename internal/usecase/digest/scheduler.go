package digest

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultCheckInterval is how often the scheduler looks for due digests.
const DefaultCheckInterval = 5 * time.Minute

// Checker sends due digests.
type Checker interface {
	CheckAndSend(ctx context.Context) (int, error)
}

// Scheduler runs CheckAndSend on a ticker. It implements suture.Service.
type Scheduler struct {
	checker  Checker
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a digest scheduler.
func NewScheduler(checker Checker, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Scheduler{checker: checker, interval: interval, logger: logger}
}

// Serve checks immediately and then on every tick until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	s.logger.Info("Digest scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.check(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("Digest scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	sent, err := s.checker.CheckAndSend(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Digest check failed", zap.Error(err))
		}
		return
	}
	if sent > 0 {
		s.logger.Info("Digests sent", zap.Int("count", sent))
	}
}

// String names the service in supervisor logs.
func (s *Scheduler) String() string { return "digest-scheduler" }
