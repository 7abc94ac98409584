package paper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Listing and search bounds.
const (
	DefaultLimit       = 50
	MaxLimit           = 200
	DefaultSearchCount = 10
	MaxSearchCount     = 25
	MinQueryLength     = 2
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Page is one page of stored papers plus the total match count.
type Page struct {
	Papers []dompaper.Paper
	Total  int
	Limit  int
	Offset int
}

// Service exposes stored papers and live search.
type Service struct {
	repo       Repository
	meta       MetaReader
	searcher   Searcher
	summarizer Summarizer
	logger     *zap.Logger
}

// New creates a paper service. searcher and summarizer may be nil.
func New(repo Repository, meta MetaReader, searcher Searcher, summarizer Summarizer, logger *zap.Logger) *Service {
	return &Service{repo: repo, meta: meta, searcher: searcher, summarizer: summarizer, logger: logger}
}

// List returns a page of stored papers. Out-of-range limits are clamped.
func (s *Service) List(ctx context.Context, q dompaper.ListQuery) (Page, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	q.Limit = min(q.Limit, MaxLimit)
	q.Offset = max(q.Offset, 0)
	if q.Sort == "" {
		q.Sort = dompaper.SortDate
	}
	if !dompaper.IsValidSort(q.Sort) {
		return Page{}, domain.NewValidationError("sort", "must be one of date, votes, title")
	}

	papers, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("list papers: %w", err)
	}
	total, err := s.repo.Count(ctx, q.Keyword)
	if err != nil {
		return Page{}, fmt.Errorf("count papers: %w", err)
	}
	return Page{Papers: papers, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// Get returns one stored paper.
func (s *Service) Get(ctx context.Context, id string) (dompaper.Paper, error) {
	p, err := s.repo.Get(ctx, dompaper.StripVersion(strings.TrimSpace(id)))
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("get paper: %w", err)
	}
	return p, nil
}

// Vote applies an up or down vote and returns the new score.
func (s *Service) Vote(ctx context.Context, id, direction string) (int, error) {
	var delta int
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case VoteUp:
		delta = 1
	case VoteDown:
		delta = -1
	default:
		return 0, domain.NewValidationError("vote", "must be up or down")
	}

	score, err := s.repo.Vote(ctx, dompaper.StripVersion(strings.TrimSpace(id)), delta)
	if err != nil {
		return 0, fmt.Errorf("vote: %w", err)
	}
	return score, nil
}

// Stats returns global counters including the last fetch time.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	last, err := s.meta.LastFetch(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("last fetch: %w", err)
	}
	st.LastFetch = last
	return st, nil
}

// Search queries arXiv live. Results are not stored.
func (s *Service) Search(ctx context.Context, query string, count int, summarize bool) ([]dompaper.Paper, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, domain.NewValidationError("q", fmt.Sprintf("must be at least %d characters", MinQueryLength))
	}
	if s.searcher == nil {
		return nil, fmt.Errorf("live search: %w", domain.ErrNotImplemented)
	}
	if count <= 0 {
		count = DefaultSearchCount
	}
	count = min(count, MaxSearchCount)

	papers, err := s.searcher.Search(ctx, query, count)
	if err != nil {
		return nil, fmt.Errorf("search arxiv: %w", err)
	}

	if summarize && s.summarizer != nil && len(papers) > 0 {
		summarized, err := s.summarizer.SummarizeBatch(ctx, papers)
		switch {
		case errors.Is(err, domain.ErrSummaryQuotaExceeded):
			s.logger.Warn("Summary budget exhausted during search", zap.Error(err))
			papers = summarized
		case err != nil:
			return nil, fmt.Errorf("summarize results: %w", err)
		default:
			papers = summarized
		}
	}
	return papers, nil
}
