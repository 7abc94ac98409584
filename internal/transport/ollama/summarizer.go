// Package ollama summarizes with a local Ollama server.
package ollama

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

// DefaultBaseURL is where "ollama serve" listens.
const DefaultBaseURL = "http://localhost:11434"

const defaultNumPredict = 200

// Config holds the Ollama settings.
type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Summarizer implements domain.Summarizer over /api/generate.
type Summarizer struct {
	client      *llmhttp.Client
	baseURL     string
	numPredict  int
	temperature float32
	logger      *zap.Logger
}

// NewSummarizer creates an Ollama summarizer.
func NewSummarizer(cfg *Config) *Summarizer {
	s := &Summarizer{
		client:      llmhttp.New(cfg.HTTPClient, "ollama", cfg.Model),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		numPredict:  cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.numPredict <= 0 {
		s.numPredict = defaultNumPredict
	}
	return s
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type options struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Summarize runs a non-streaming generation.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (domain.SummaryResult, error) {
	req := generateRequest{
		Model:   s.client.Model(),
		Prompt:  prompt,
		Stream:  false,
		Options: options{Temperature: s.temperature, NumPredict: s.numPredict},
	}

	start := time.Now()
	var resp generateResponse
	if err := s.client.PostJSON(ctx, s.baseURL+"/api/generate", nil, req, &resp); err != nil {
		s.client.RecordError(llmhttp.ErrorType(err))
		return domain.SummaryResult{}, fmt.Errorf("ollama generate (is 'ollama serve' running?): %w", err)
	}

	s.client.RecordSuccess(start, resp.PromptEvalCount, resp.EvalCount)
	return domain.SummaryResult{
		Text:             strings.TrimSpace(resp.Response),
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}, nil
}

// ListModels returns the names of locally pulled models.
func (s *Summarizer) ListModels(ctx context.Context) ([]string, error) {
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := s.client.GetJSON(ctx, s.baseURL+"/api/tags", nil, &tags); err != nil {
		return nil, fmt.Errorf("ollama tags: %w", err)
	}
	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// HealthCheck verifies the server answers /api/tags.
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	_, err := s.ListModels(ctx)
	return err
}
