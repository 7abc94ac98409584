package summarycache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/db"
	"github.com/kailas-cloud/paperdigest/internal/domain"
)

func TestSummarize_CacheMiss(t *testing.T) {
	inner := &mockSummarizer{result: domain.SummaryResult{Text: "TLDR text", TotalTokens: 42}}
	cs, ms := newTestCachedSummarizer(t, inner)

	var setKey string
	var setTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		setKey, setTTL = key, ttl
		if string(value) != "TLDR text" {
			t.Errorf("cached value = %q", value)
		}
		return nil
	}

	result, err := cs.Summarize(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "TLDR text" || result.TotalTokens != 42 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(setKey, "paperdigest:summary_cache:") || len(setKey) != len("paperdigest:summary_cache:")+64 {
		t.Errorf("unexpected cache key %q", setKey)
	}
	if setTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", setTTL)
	}
}

func TestSummarize_CacheHit(t *testing.T) {
	inner := &mockSummarizer{result: domain.SummaryResult{Text: "fresh"}}
	cs, ms := newTestCachedSummarizer(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte("cached"), nil }

	result, err := cs.Summarize(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "cached" || result.TotalTokens != 0 {
		t.Fatalf("expected cached text with zero tokens, got %+v", result)
	}
	if inner.calls != 0 {
		t.Errorf("inner called %d times on hit", inner.calls)
	}
}

func TestSummarize_InnerError(t *testing.T) {
	inner := &mockSummarizer{err: domain.ErrProviderError}
	cs, ms := newTestCachedSummarizer(t, inner)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		t.Fatal("must not cache on error")
		return nil
	}

	_, err := cs.Summarize(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestSummarize_StoreErrorsAreSoft(t *testing.T) {
	inner := &mockSummarizer{result: domain.SummaryResult{Text: "ok"}}
	cs, ms := newTestCachedSummarizer(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("conn reset") }
	ms.setFn = func(context.Context, string, []byte, time.Duration) error { return errors.New("conn reset") }

	result, err := cs.Summarize(context.Background(), "prompt")
	if err != nil || result.Text != "ok" {
		t.Fatalf("store failures must not fail the call: %+v, %v", result, err)
	}
}

func TestSummarize_EmptyResultNotCached(t *testing.T) {
	inner := &mockSummarizer{result: domain.SummaryResult{}}
	cs, ms := newTestCachedSummarizer(t, inner)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		t.Fatal("empty completions must not be cached")
		return nil
	}
	if _, err := cs.Summarize(context.Background(), "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSummarize_CacheCounter(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_summary_cache_total"}, []string{"result"})
	inner := &mockSummarizer{result: domain.SummaryResult{Text: "x"}}
	hits := 0
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		hits++
		if hits == 1 {
			return nil, db.ErrKeyNotFound
		}
		return []byte("x"), nil
	}}
	cs := New(inner, ms, time.Hour, counter, zap.NewNop())

	_, _ = cs.Summarize(context.Background(), "p")
	_, _ = cs.Summarize(context.Background(), "p")

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
}
