package domain

import (
	"context"
	"fmt"
)

// Summarizer is the shared text-generation contract between layers.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (SummaryResult, error)
}

// HealthChecker verifies summary provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SummaryResult carries generated text and token usage through the decorator chain.
type SummaryResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// SystemPromptSummarizer is a domain decorator that prepends a system instruction to every prompt.
type SystemPromptSummarizer struct {
	inner  Summarizer
	system string
}

// NewSystemPromptSummarizer creates a decorator that prepends a system instruction.
func NewSystemPromptSummarizer(inner Summarizer, system string) *SystemPromptSummarizer {
	return &SystemPromptSummarizer{inner: inner, system: system}
}

// Summarize prepends the instruction and delegates to the inner summarizer.
func (s *SystemPromptSummarizer) Summarize(ctx context.Context, prompt string) (SummaryResult, error) {
	res, err := s.inner.Summarize(ctx, s.system+"\n\n"+prompt)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("system prompt summarize: %w", err)
	}
	return res, nil
}
