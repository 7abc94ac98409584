package summarycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/db"
	"github.com/kailas-cloud/paperdigest/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "summary_cache:"

// store is the consumer interface for the summary cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSummarizer caches completions in a key-value store, keyed on the prompt.
type CachedSummarizer struct {
	inner      domain.Summarizer
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Summarizer,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSummarizer {
	return &CachedSummarizer{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Summarize returns a cached completion or calls the inner summarizer.
// A cache hit reports zero tokens.
func (c *CachedSummarizer) Summarize(ctx context.Context, prompt string) (domain.SummaryResult, error) {
	key := c.cacheKey(prompt)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.SummaryResult{Text: text}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Summarize(ctx, prompt)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("summarize: %w", err)
	}

	if result.Text != "" {
		c.putToCache(ctx, key, result.Text)
	}
	return result, nil
}

// HealthCheck delegates to the inner summarizer when it supports health checks.
func (c *CachedSummarizer) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through
	}
	return nil
}

func (c *CachedSummarizer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSummarizer) cacheKey(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedSummarizer) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached summary", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedSummarizer) putToCache(ctx context.Context, key, text string) {
	if err := c.store.SetWithTTL(ctx, key, []byte(text), c.ttl); err != nil {
		c.logger.Warn("Failed to cache summary", zap.String("key", key), zap.Error(err))
	}
}
