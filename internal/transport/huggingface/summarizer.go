// Package huggingface summarizes with the HuggingFace Inference API.
package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/transport/llmhttp"
)

// DefaultBaseURL is the hosted inference endpoint.
const DefaultBaseURL = "https://api-inference.huggingface.co"

const (
	maxAttempts   = 3
	defaultMaxLen = 150
	defaultMinLen = 30
)

// Config holds the HuggingFace settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxLength  int
	MinLength  int
	HTTPClient *http.Client
	// Backoff is the base delay between 503 retries; it doubles per attempt.
	Backoff time.Duration
	Logger  *zap.Logger
}

// Summarizer implements domain.Summarizer over /models/{model}.
type Summarizer struct {
	client    *llmhttp.Client
	url       string
	apiKey    string
	maxLength int
	minLength int
	backoff   time.Duration
	logger    *zap.Logger
}

// NewSummarizer creates a HuggingFace summarizer.
func NewSummarizer(cfg *Config) *Summarizer {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	s := &Summarizer{
		client:    llmhttp.New(cfg.HTTPClient, "huggingface", cfg.Model),
		url:       base + "/models/" + cfg.Model,
		apiKey:    cfg.APIKey,
		maxLength: cfg.MaxLength,
		minLength: cfg.MinLength,
		backoff:   cfg.Backoff,
		logger:    cfg.Logger,
	}
	if s.maxLength <= 0 {
		s.maxLength = defaultMaxLen
	}
	if s.minLength <= 0 {
		s.minLength = defaultMinLen
	}
	if s.backoff <= 0 {
		s.backoff = time.Second
	}
	return s
}

type inferenceRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type inferenceResult struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// Summarize calls the model, retrying while it reports 503 (model loading).
// The inference API reports no token usage.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (domain.SummaryResult, error) {
	req := inferenceRequest{
		Inputs:     prompt,
		Parameters: parameters{MaxLength: s.maxLength, MinLength: s.minLength},
	}
	headers := map[string]string{"Authorization": "Bearer " + s.apiKey}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := s.backoff << attempt
			s.logger.Warn("HuggingFace model loading, retrying",
				zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return domain.SummaryResult{}, fmt.Errorf("huggingface: %w", ctx.Err())
			case <-time.After(wait):
			}
		}

		var out []inferenceResult
		err := s.client.PostJSON(ctx, s.url, headers, req, &out)
		if err == nil {
			if len(out) == 0 {
				s.client.RecordError("empty_response")
				return domain.SummaryResult{}, fmt.Errorf("huggingface: empty response: %w", domain.ErrProviderError)
			}
			text := out[0].SummaryText
			if text == "" {
				text = out[0].GeneratedText
			}
			s.client.RecordSuccess(start, 0, 0)
			return domain.SummaryResult{Text: strings.TrimSpace(text)}, nil
		}
		if !llmhttp.IsStatus(err, http.StatusServiceUnavailable) {
			s.client.RecordError(llmhttp.ErrorType(err))
			return domain.SummaryResult{}, fmt.Errorf("huggingface inference: %w", err)
		}
		lastErr = err
	}

	s.client.RecordError("model_loading")
	return domain.SummaryResult{}, fmt.Errorf("huggingface: failed after %d attempts: %w", maxAttempts, lastErr)
}
