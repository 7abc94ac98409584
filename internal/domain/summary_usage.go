package domain

import (
	"context"
	"sync"
)

type summaryUsageKey struct{}

// SummaryUsage collects token usage for a single HTTP request.
// The handler puts a pointer into the context, the summarizer adds to it,
// and the handler reports the total in a response header.
type SummaryUsage struct {
	mu          sync.Mutex
	totalTokens int
	calls       int
}

// NewContextWithUsage returns a context with a usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *SummaryUsage) {
	u := &SummaryUsage{}
	return context.WithValue(ctx, summaryUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *SummaryUsage {
	u, _ := ctx.Value(summaryUsageKey{}).(*SummaryUsage)
	return u
}

// AddTokens records consumed tokens. Safe for concurrent batch workers.
func (u *SummaryUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.calls++
	u.mu.Unlock()
}

// TotalTokens returns the tokens recorded so far.
func (u *SummaryUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}

// Used reports whether any summarizer call was made, cache hits included.
func (u *SummaryUsage) Used() bool {
	if u == nil {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls > 0
}
