package paper

import (
	"context"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Repository is the stored-paper contract.
type Repository interface {
	Get(ctx context.Context, id string) (dompaper.Paper, error)
	List(ctx context.Context, q dompaper.ListQuery) ([]dompaper.Paper, error)
	Count(ctx context.Context, keyword string) (int, error)
	Vote(ctx context.Context, id string, delta int) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// MetaReader reads fetch bookkeeping.
type MetaReader interface {
	LastFetch(ctx context.Context) (time.Time, error)
}

// Searcher runs live queries against arXiv.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]dompaper.Paper, error)
}

// Summarizer adds summaries to search results.
type Summarizer interface {
	SummarizeBatch(ctx context.Context, papers []dompaper.Paper) ([]dompaper.Paper, error)
}
