// Package anthropic summarizes with the Anthropic Messages API.
package anthropic

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

const (
	// DefaultBaseURL is the public Anthropic API.
	DefaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	defaultTokens  = 200
)

// Config holds the Anthropic settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Summarizer implements domain.Summarizer over /v1/messages.
type Summarizer struct {
	client      *llmhttp.Client
	baseURL     string
	apiKey      string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewSummarizer creates an Anthropic summarizer.
func NewSummarizer(cfg *Config) *Summarizer {
	s := &Summarizer{
		client:      llmhttp.New(cfg.HTTPClient, "anthropic", cfg.Model),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultTokens
	}
	return s
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Summarize sends the prompt as a single user message.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (domain.SummaryResult, error) {
	req := messagesRequest{
		Model:       s.client.Model(),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	}

	start := time.Now()
	var resp messagesResponse
	err := s.client.PostJSON(ctx, s.baseURL+"/v1/messages", s.headers(), req, &resp)
	if err != nil {
		s.client.RecordError(llmhttp.ErrorType(err))
		return domain.SummaryResult{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	if text.Len() == 0 {
		s.client.RecordError("empty_response")
		return domain.SummaryResult{}, fmt.Errorf("anthropic: empty response: %w", domain.ErrProviderError)
	}

	in, out := resp.Usage.InputTokens, resp.Usage.OutputTokens
	s.client.RecordSuccess(start, in, out)

	return domain.SummaryResult{
		Text:             strings.TrimSpace(text.String()),
		PromptTokens:     in,
		CompletionTokens: out,
		TotalTokens:      in + out,
	}, nil
}

// HealthCheck lists models, which costs no tokens.
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	if err := s.client.GetJSON(ctx, s.baseURL+"/v1/models", s.headers(), nil); err != nil {
		return fmt.Errorf("anthropic models: %w", err)
	}
	return nil
}

func (s *Summarizer) headers() map[string]string {
	return map[string]string{
		"x-api-key":         s.apiKey,
		"anthropic-version": apiVersion,
	}
}
