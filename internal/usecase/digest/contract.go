package digest

import (
	"context"
	"time"

	domdigest "github.com/kailas-cloud/paperdigest/internal/domain/digest"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Repository stores digest configs.
type Repository interface {
	Create(ctx context.Context, c domdigest.Config) error
	Get(ctx context.Context, id string) (domdigest.Config, error)
	List(ctx context.Context) ([]domdigest.Config, error)
	ListEnabled(ctx context.Context) ([]domdigest.Config, error)
	Delete(ctx context.Context, id string) error
	MarkSent(ctx context.Context, id string, at time.Time) error
}

// Source retrieves recent papers from arXiv.
type Source interface {
	FetchRecent(ctx context.Context, categories []string, since time.Time, maxPerCategory int) ([]paper.Paper, error)
}

// Summarizer adds summaries to the papers of a digest.
type Summarizer interface {
	SummarizeBatch(ctx context.Context, papers []paper.Paper) ([]paper.Paper, error)
}
