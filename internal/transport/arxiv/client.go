// Package arxiv is a client for the arXiv Atom query API.
package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
)

// Defaults for the public arXiv API.
const (
	DefaultBaseURL     = "https://export.arxiv.org/api/query"
	DefaultRateLimit   = 3 * time.Second
	DefaultMaxRetries  = 3
	DefaultTimeout     = 30 * time.Second
	DefaultMaxResults  = 50
	DefaultLookback    = 24 * time.Hour
	queryTimeLayout    = "20060102150405"
	maxResponseBytes   = 16 << 20
	breakerName        = "arxiv-api"
	defaultBackoffBase = time.Second
)

// Config holds the arXiv client settings. Zero values fall back to defaults.
type Config struct {
	BaseURL     string
	RateLimit   time.Duration
	MaxRetries  int
	Timeout     time.Duration
	BackoffBase time.Duration

	// BreakerFailures is the consecutive failure count that opens the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration

	HTTPClient *http.Client
	UserAgent  string
	Logger     *zap.Logger
	Now        func() time.Time
}

// Client queries the arXiv API one request at a time.
type Client struct {
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]byte]
	maxRetries  int
	backoffBase time.Duration
	userAgent   string
	now         func() time.Time
	logger      *zap.Logger
}

// NewClient creates an arXiv API client.
func NewClient(cfg *Config) *Client {
	c := &Client{
		baseURL:     cfg.BaseURL,
		http:        cfg.HTTPClient,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		userAgent:   cfg.UserAgent,
		now:         cfg.Now,
		logger:      cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.backoffBase <= 0 {
		c.backoffBase = defaultBackoffBase
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	interval := cfg.RateLimit
	if interval <= 0 {
		interval = DefaultRateLimit
	}
	c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	c.breaker = newBreaker(cfg.BreakerFailures, cfg.BreakerTimeout, c.logger)
	return c
}

func newBreaker(failures uint32, timeout time.Duration, logger *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	if failures == 0 {
		failures = 5
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about arXiv health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// FetchCategory returns papers submitted to category since the given time, newest first.
func (c *Client) FetchCategory(ctx context.Context, category string, since time.Time, maxResults int) ([]paper.Paper, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	q := url.Values{}
	q.Set("search_query", fmt.Sprintf("cat:%s AND submittedDate:[%s TO %s]",
		category, since.UTC().Format(queryTimeLayout), c.now().UTC().Format(queryTimeLayout)))
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(maxResults))
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")

	papers, err := c.query(ctx, "category", q)
	if err != nil {
		return nil, fmt.Errorf("fetch category %s: %w", category, err)
	}
	metrics.ArxivPapersFetched.WithLabelValues(category).Add(float64(len(papers)))
	return papers, nil
}

// FetchRecent fetches each category in turn and de-duplicates papers across them.
// A failing category is logged and skipped; the error is returned only when every category failed.
// A zero since means the last 24 hours.
func (c *Client) FetchRecent(
	ctx context.Context, categories []string, since time.Time, maxPerCategory int,
) ([]paper.Paper, error) {
	if since.IsZero() {
		since = c.now().Add(-DefaultLookback)
	}

	var (
		out     []paper.Paper
		seen    = make(map[string]struct{})
		lastErr error
		failed  int
	)
	for _, cat := range categories {
		papers, err := c.FetchCategory(ctx, cat, since, maxPerCategory)
		if err != nil {
			if ctx.Err() != nil {
				return out, fmt.Errorf("fetch recent: %w", ctx.Err())
			}
			c.logger.Error("Category fetch failed", zap.String("category", cat), zap.Error(err))
			lastErr = err
			failed++
			continue
		}
		for _, p := range papers {
			if _, dup := seen[p.ID()]; dup {
				continue
			}
			seen[p.ID()] = struct{}{}
			out = append(out, p)
		}
		c.logger.Info("Fetched category", zap.String("category", cat), zap.Int("papers", len(papers)))
	}

	if failed > 0 && failed == len(categories) {
		return nil, lastErr
	}
	return out, nil
}

// Search runs a relevance-ranked full-text query.
func (c *Client) Search(ctx context.Context, query string, count int) ([]paper.Paper, error) {
	if count <= 0 {
		count = 10
	}
	q := url.Values{}
	q.Set("search_query", "all:"+query)
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(count))
	q.Set("sortBy", "relevance")
	q.Set("sortOrder", "descending")

	papers, err := c.query(ctx, "search", q)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return papers, nil
}

// GetByID looks up one paper. Unknown ids yield domain.ErrPaperNotFound.
func (c *Client) GetByID(ctx context.Context, id string) (paper.Paper, error) {
	q := url.Values{}
	q.Set("id_list", id)
	q.Set("max_results", "1")

	papers, err := c.query(ctx, "lookup", q)
	if err != nil {
		return paper.Paper{}, fmt.Errorf("lookup %s: %w", id, err)
	}
	if len(papers) == 0 {
		return paper.Paper{}, fmt.Errorf("lookup %s: %w", id, domain.ErrPaperNotFound)
	}
	return papers[0], nil
}

// HealthCheck reports an open breaker as unavailable without calling arXiv.
func (c *Client) HealthCheck(context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("arxiv circuit open: %w", domain.ErrUpstreamUnavailable)
	}
	return nil
}

func (c *Client) query(ctx context.Context, op string, q url.Values) ([]paper.Paper, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.getWithRetry(ctx, op, c.baseURL+"?"+q.Encode())
	})
	metrics.ArxivRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ArxivRequestsTotal.WithLabelValues(op, "rejected").Inc()
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		metrics.ArxivRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, err
	}
	metrics.ArxivRequestsTotal.WithLabelValues(op, "success").Inc()
	return parseFeed(body)
}

// getWithRetry retries 429 and 503 responses with exponential backoff.
func (c *Client) getWithRetry(ctx context.Context, op, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.ArxivRetriesTotal.WithLabelValues(op).Inc()
			backoff := c.backoffBase << (attempt - 1)
			c.logger.Warn("Retrying arXiv request",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retryable, err := c.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, rawURL string) (body []byte, retryable bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("arxiv request: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("arxiv status %d: %w", resp.StatusCode, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, true, fmt.Errorf("arxiv status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("arxiv status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, false, fmt.Errorf("read body: %w", err)
	}
	return body, false, nil
}
