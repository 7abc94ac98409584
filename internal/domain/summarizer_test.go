package domain

import (
	"context"
	"errors"
	"testing"
)

type fakeSummarizer struct {
	fn func(ctx context.Context, prompt string) (SummaryResult, error)
}

func (f *fakeSummarizer) Summarize(ctx context.Context, prompt string) (SummaryResult, error) {
	return f.fn(ctx, prompt)
}

func TestSystemPromptSummarizer(t *testing.T) {
	var got string
	inner := &fakeSummarizer{fn: func(_ context.Context, prompt string) (SummaryResult, error) {
		got = prompt
		return SummaryResult{Text: "tldr", TotalTokens: 7}, nil
	}}

	res, err := NewSystemPromptSummarizer(inner, "Be brief.").Summarize(context.Background(), "Paper text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Be brief.\n\nPaper text" {
		t.Errorf("prompt = %q", got)
	}
	if res.Text != "tldr" || res.TotalTokens != 7 {
		t.Errorf("result = %+v", res)
	}
}

func TestSystemPromptSummarizer_Error(t *testing.T) {
	inner := &fakeSummarizer{fn: func(context.Context, string) (SummaryResult, error) {
		return SummaryResult{}, ErrProviderError
	}}

	_, err := NewSystemPromptSummarizer(inner, "x").Summarize(context.Background(), "y")
	if !errors.Is(err, ErrProviderError) {
		t.Errorf("error = %v, want ErrProviderError", err)
	}
}
