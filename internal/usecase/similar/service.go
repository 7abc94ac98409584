package similar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
)

// DefaultMaxCorpus bounds the snapshot size when no option is set.
const DefaultMaxCorpus = 2000

// Match is a ranked paper joined back to its full record.
type Match struct {
	Paper paper.Paper
	Score float64
}

// Service answers "more like this" requests over the stored papers.
type Service struct {
	repo      Repository
	maxCorpus int
	logger    *zap.Logger
}

// New creates a similar-papers service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, maxCorpus: DefaultMaxCorpus, logger: logger}
}

// WithMaxCorpus sets how many recent papers form the ranking corpus.
func (s *Service) WithMaxCorpus(n int) *Service {
	if n > 0 {
		s.maxCorpus = n
	}
	return s
}

// Similar returns up to k stored papers most similar to the paper with the given id.
func (s *Service) Similar(ctx context.Context, id string, k int) ([]Match, error) {
	query, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get query paper: %w", err)
	}

	corpus, err := s.repo.Snapshot(ctx, s.maxCorpus)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	corpus = ensureIncluded(corpus, query)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}

	start := time.Now()
	ranked, err := RankSimilar(id, corpus, k)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	metrics.SimilarRankDuration.Observe(elapsed.Seconds())
	metrics.SimilarCorpusSize.Set(float64(len(corpus)))

	s.logger.Debug("Ranked similar papers",
		zap.String("paper_id", id),
		zap.Int("corpus_size", len(corpus)),
		zap.Int("k", k),
		zap.Int("results", len(ranked)),
		zap.Duration("duration", elapsed),
	)

	byID := make(map[string]paper.Paper, len(corpus))
	for _, p := range corpus {
		byID[p.ID()] = p
	}

	matches := make([]Match, 0, len(ranked))
	for _, r := range ranked {
		matches = append(matches, Match{Paper: byID[r.ID], Score: r.Score})
	}
	return matches, nil
}

// ensureIncluded appends the query paper when it fell outside the snapshot window.
func ensureIncluded(corpus []paper.Paper, query paper.Paper) []paper.Paper {
	for _, p := range corpus {
		if p.ID() == query.ID() {
			return corpus
		}
	}
	return append(corpus, query)
}
