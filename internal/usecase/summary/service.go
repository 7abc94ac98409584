package summary

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// DefaultMaxConcurrent bounds in-flight provider calls for a batch.
const DefaultMaxConcurrent = 5

// Fallback texts returned instead of a generated summary.
const (
	MissingInputText = "Summary unavailable: missing title or abstract."
	FailedText       = "Summary generation failed."
	EmptyText        = "No summary available."
)

const (
	maxSummaryLength = 500
	ellipsis         = "..."
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	summaryLabel  = regexp.MustCompile(`(?i)^(tl;?dr|summary)\s*:\s*`)
)

// Result is the outcome of summarizing one paper.
// Generated is false when Text is a fallback message.
type Result struct {
	Text      string
	Generated bool
}

// Service builds prompts, calls the summarizer and cleans its output.
type Service struct {
	summarizer    domain.Summarizer
	maxConcurrent int
	logger        *zap.Logger
}

// New creates a summary service.
func New(summarizer domain.Summarizer, logger *zap.Logger) *Service {
	return &Service{summarizer: summarizer, maxConcurrent: DefaultMaxConcurrent, logger: logger}
}

// WithMaxConcurrent sets the batch concurrency limit.
func (s *Service) WithMaxConcurrent(n int) *Service {
	if n > 0 {
		s.maxConcurrent = n
	}
	return s
}

// Summarize produces a TLDR for one paper.
// Provider failures degrade to FailedText; only an exhausted budget is returned as an error.
func (s *Service) Summarize(ctx context.Context, p paper.Paper) (Result, error) {
	title, abstract := p.Title(), strings.TrimSpace(p.Abstract())
	if title == "" || title == paper.UnknownTitle || abstract == "" {
		return Result{Text: MissingInputText}, nil
	}

	res, err := s.summarizer.Summarize(ctx, SummaryPrompt(title, abstract))
	if err != nil {
		if errors.Is(err, domain.ErrSummaryQuotaExceeded) {
			return Result{}, fmt.Errorf("summarize %s: %w", p.ID(), err)
		}
		s.logger.Warn("Summary generation failed", zap.String("paper_id", p.ID()), zap.Error(err))
		return Result{Text: FailedText}, nil
	}

	text := CleanSummary(res.Text)
	return Result{Text: text, Generated: text != EmptyText}, nil
}

// SummarizeBatch summarizes papers concurrently and returns them in input order.
// Papers whose summary could not be generated are returned unchanged.
func (s *Service) SummarizeBatch(ctx context.Context, papers []paper.Paper) ([]paper.Paper, error) {
	out := make([]paper.Paper, len(papers))
	copy(out, papers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, p := range papers {
		g.Go(func() error {
			res, err := s.Summarize(gctx, p)
			if err != nil {
				return err
			}
			if res.Generated {
				out[i] = p.WithSummary(res.Text)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("summarize batch: %w", err)
	}

	s.logger.Debug("Batch summarized", zap.Int("papers", len(papers)))
	return out, nil
}

// ExtractKeywords asks the summarizer for 3-5 topical keywords.
func (s *Service) ExtractKeywords(ctx context.Context, p paper.Paper) ([]string, error) {
	if strings.TrimSpace(p.Abstract()) == "" {
		return nil, nil
	}
	res, err := s.summarizer.Summarize(ctx, KeywordPrompt(p.Title(), p.Abstract()))
	if err != nil {
		return nil, fmt.Errorf("extract keywords %s: %w", p.ID(), err)
	}
	return ParseKeywords(res.Text), nil
}

// ParseKeywords splits a comma-separated completion into lower-cased keywords.
func ParseKeywords(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if kw := strings.ToLower(strings.TrimSpace(part)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// CleanSummary normalizes whitespace, strips a leading label and caps the length.
func CleanSummary(text string) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	text = strings.TrimSpace(summaryLabel.ReplaceAllString(text, ""))
	if text == "" {
		return EmptyText
	}
	if utf8.RuneCountInString(text) > maxSummaryLength {
		runes := []rune(text)
		text = string(runes[:maxSummaryLength-len(ellipsis)]) + ellipsis
	}
	return text
}
