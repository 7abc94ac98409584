package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/domain/subscription"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
	"github.com/kailas-cloud/paperdigest/internal/usecase/filter"
)

// Trigger labels who started a run.
type Trigger string

// Run triggers.
const (
	TriggerAPI       Trigger = "api"
	TriggerCLI       Trigger = "cli"
	TriggerScheduler Trigger = "scheduler"
)

// Options tune one pipeline run.
type Options struct {
	// Categories overrides the configured categories when non-empty.
	Categories []string
	// Keywords overrides the stored subscriptions when non-empty.
	Keywords    []string
	UseKeywords bool
	Summarize   bool
	// MaxPerCategory overrides the configured per-category limit when positive.
	MaxPerCategory int
	// Since overrides the last-fetch bookmark when non-zero.
	Since   time.Time
	Trigger Trigger
}

// Result reports what a run did.
type Result struct {
	Fetched int
	Matched int
	New     int
	Papers  []paper.Paper
}

// Service runs fetch -> filter -> summarize -> store.
type Service struct {
	source         Source
	papers         PaperStore
	subs           SubscriptionLister
	meta           MetaStore
	summarizer     Summarizer
	categories     []string
	maxPerCategory int
	now            func() time.Time
	logger         *zap.Logger
}

// New creates a fetch pipeline. A nil summarizer disables summaries.
func New(
	source Source, papers PaperStore, subs SubscriptionLister, meta MetaStore,
	summarizer Summarizer, categories []string, logger *zap.Logger,
) *Service {
	return &Service{
		source:         source,
		papers:         papers,
		subs:           subs,
		meta:           meta,
		summarizer:     summarizer,
		categories:     categories,
		maxPerCategory: 50,
		now:            time.Now,
		logger:         logger,
	}
}

// WithMaxPerCategory sets the default per-category limit.
func (s *Service) WithMaxPerCategory(n int) *Service {
	if n > 0 {
		s.maxPerCategory = n
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run executes one pipeline pass. The last-fetch bookmark advances only on success.
func (s *Service) Run(ctx context.Context, opts Options) (Result, error) {
	res, err := s.run(ctx, opts)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.FetchRunsTotal.WithLabelValues(string(opts.Trigger), status).Inc()
	return res, err
}

func (s *Service) run(ctx context.Context, opts Options) (Result, error) {
	startedAt := s.now().UTC()

	since := opts.Since
	if since.IsZero() {
		last, err := s.meta.LastFetch(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("load last fetch: %w", err)
		}
		since = last
	}

	categories := opts.Categories
	if len(categories) == 0 {
		categories = s.categories
	}
	limit := opts.MaxPerCategory
	if limit <= 0 {
		limit = s.maxPerCategory
	}

	fetched, err := s.source.FetchRecent(ctx, categories, since, limit)
	if err != nil {
		return Result{}, fmt.Errorf("fetch papers: %w", err)
	}
	res := Result{Fetched: len(fetched)}

	papers := fetched
	if opts.UseKeywords {
		keywords, err := s.keywords(ctx, opts.Keywords)
		if err != nil {
			return res, err
		}
		papers = filter.NewMatcher(keywords, filter.Fuzzy).Filter(papers)
	}
	res.Matched = len(papers)

	papers, err = s.onlyUnseen(ctx, papers)
	if err != nil {
		return res, err
	}

	if opts.Summarize && s.summarizer != nil && len(papers) > 0 {
		summarized, err := s.summarizer.SummarizeBatch(ctx, papers)
		if err != nil && !errors.Is(err, domain.ErrSummaryQuotaExceeded) {
			return res, fmt.Errorf("summarize: %w", err)
		}
		if err != nil {
			s.logger.Warn("Summary budget exhausted, storing remaining papers without summaries", zap.Error(err))
		}
		papers = summarized
	}

	stored, err := s.papers.Save(ctx, papers...)
	if err != nil {
		return res, fmt.Errorf("store papers: %w", err)
	}
	res.New = stored
	res.Papers = papers
	metrics.PapersStoredTotal.Add(float64(stored))

	if err := s.meta.SetLastFetch(ctx, startedAt); err != nil {
		return res, fmt.Errorf("save last fetch: %w", err)
	}

	s.logger.Info("Fetch completed",
		zap.String("trigger", string(opts.Trigger)),
		zap.Time("since", since),
		zap.Int("fetched", res.Fetched),
		zap.Int("matched", res.Matched),
		zap.Int("new", res.New),
	)
	return res, nil
}

func (s *Service) keywords(ctx context.Context, override []string) ([]string, error) {
	if len(override) > 0 {
		return override, nil
	}
	subs, err := s.subs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subscription.Keywords(subs), nil
}

// onlyUnseen drops papers already stored so they are not summarized twice.
func (s *Service) onlyUnseen(ctx context.Context, papers []paper.Paper) ([]paper.Paper, error) {
	out := make([]paper.Paper, 0, len(papers))
	for _, p := range papers {
		ok, err := s.papers.Exists(ctx, p.ID())
		if err != nil {
			return nil, fmt.Errorf("check paper %s: %w", p.ID(), err)
		}
		if !ok {
			out = append(out, p)
		}
	}
	return out, nil
}
