package fetch

import (
	"context"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/domain/subscription"
)

// Source retrieves papers from arXiv.
type Source interface {
	FetchRecent(ctx context.Context, categories []string, since time.Time, maxPerCategory int) ([]paper.Paper, error)
}

// PaperStore persists fetched papers.
type PaperStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, papers ...paper.Paper) (int, error)
}

// SubscriptionLister provides the subscribed keywords.
type SubscriptionLister interface {
	List(ctx context.Context) ([]subscription.Subscription, error)
}

// MetaStore tracks the time of the last successful fetch.
type MetaStore interface {
	LastFetch(ctx context.Context) (time.Time, error)
	SetLastFetch(ctx context.Context, t time.Time) error
}

// Summarizer adds summaries to a batch of papers.
type Summarizer interface {
	SummarizeBatch(ctx context.Context, papers []paper.Paper) ([]paper.Paper, error)
}
