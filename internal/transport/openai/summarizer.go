package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
)

const systemMessage = "You are a helpful AI research assistant that generates concise summaries."

// Defaults for chat completions.
const (
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.3
)

// Summarizer generates summaries with an OpenAI-compatible chat completions API
// (OpenAI, Groq, OpenRouter, Together, LM Studio).
type Summarizer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	provider    string
	logger      *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// NewSummarizer creates an OpenAI-compatible summarizer.
func NewSummarizer(cfg *Config) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &Summarizer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: temperature,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Summarize implements domain.Summarizer with transport-level metrics.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (domain.SummaryResult, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		apiErr := parseAPIError(err)
		metrics.SummaryRequestsTotal.WithLabelValues(s.provider, s.model, "error").Inc()
		metrics.SummaryErrorsTotal.WithLabelValues(s.provider, s.model, errorType(apiErr)).Inc()
		return domain.SummaryResult{}, apiErr
	}

	if len(resp.Choices) == 0 {
		metrics.SummaryRequestsTotal.WithLabelValues(s.provider, s.model, "error").Inc()
		metrics.SummaryErrorsTotal.WithLabelValues(s.provider, s.model, "empty_response").Inc()
		return domain.SummaryResult{}, fmt.Errorf("empty completion response: %w", domain.ErrProviderError)
	}

	metrics.SummaryRequestsTotal.WithLabelValues(s.provider, s.model, "success").Inc()
	metrics.SummaryRequestDuration.WithLabelValues(s.provider, s.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.SummaryTokensTotal.WithLabelValues(s.provider, s.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.SummaryTokensTotal.WithLabelValues(s.provider, s.model, "completion").Add(float64(usage.CompletionTokens))
	}

	return domain.SummaryResult{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func errorType(err error) string {
	if errors.Is(err, domain.ErrRateLimited) {
		return "rate_limited"
	}
	return "api_error"
}

// parseAPIError extracts a human-readable error from the API response.
// 429 wraps domain.ErrRateLimited; everything else wraps domain.ErrProviderError.
func parseAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("completion request: %w", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrap := wrapFor(reqErr.HTTPStatusCode)
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrapFor(apiErr.HTTPStatusCode))
	}

	return fmt.Errorf("completion request failed: %w", domain.ErrProviderError)
}

func wrapFor(status int) error {
	if status == 429 {
		return domain.ErrRateLimited
	}
	return domain.ErrProviderError
}

// extractDetail reads the "detail" field some compatible servers return instead of an error object.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
