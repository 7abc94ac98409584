package digest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingChecker struct {
	calls atomic.Int32
	err   error
}

func (c *countingChecker) CheckAndSend(context.Context) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestScheduler_ChecksUntilCanceled(t *testing.T) {
	checker := &countingChecker{err: errors.New("transient")}
	s := NewScheduler(checker, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for checker.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d checks", checker.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&countingChecker{}, 0, zap.NewNop())
	if s.interval != DefaultCheckInterval {
		t.Errorf("interval = %v", s.interval)
	}
	if s.String() != "digest-scheduler" {
		t.Errorf("String() = %q", s.String())
	}
}
