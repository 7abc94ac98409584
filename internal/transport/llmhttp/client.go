// Package llmhttp holds the JSON-over-HTTP plumbing shared by the non-OpenAI summary providers.
package llmhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
)

const maxErrorBody = 200

// StatusError is a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
	wrapped    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return e.wrapped }

// Client posts JSON requests and records summary metrics for one provider/model pair.
type Client struct {
	http     *http.Client
	provider string
	model    string
}

// New creates a client. A nil http.Client gets a 120s timeout.
func New(hc *http.Client, provider, model string) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{http: hc, provider: provider, model: model}
}

// Model returns the model label.
func (c *Client) Model() string { return c.model }

// PostJSON encodes in, posts it and decodes a 2xx body into out.
// 429 wraps domain.ErrRateLimited, other failures wrap domain.ErrProviderError.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req, out)
}

// GetJSON issues a GET and decodes a 2xx body into out. A nil out discards the body.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s request: %w: %w", c.provider, domain.ErrProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		wrapped := domain.ErrProviderError
		if resp.StatusCode == http.StatusTooManyRequests {
			wrapped = domain.ErrRateLimited
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body), wrapped: wrapped}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", c.provider, domain.ErrProviderError, err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// RecordSuccess observes a completed request.
func (c *Client) RecordSuccess(start time.Time, promptTokens, completionTokens int) {
	metrics.SummaryRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.SummaryRequestDuration.WithLabelValues(c.provider, c.model).Observe(time.Since(start).Seconds())
	if promptTokens > 0 {
		metrics.SummaryTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		metrics.SummaryTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(completionTokens))
	}
}

// RecordError observes a failed request.
func (c *Client) RecordError(errorType string) {
	metrics.SummaryRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
	metrics.SummaryErrorsTotal.WithLabelValues(c.provider, c.model, errorType).Inc()
}

// ErrorType classifies err for the errors metric.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, domain.ErrProviderError):
		return "api_error"
	default:
		return "unknown"
	}
}
