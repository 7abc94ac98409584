package similar

import (
	"context"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Repository loads the corpus snapshot the ranker works on.
type Repository interface {
	// Snapshot returns up to limit stored papers, most recently published first.
	Snapshot(ctx context.Context, limit int) ([]paper.Paper, error)
	Get(ctx context.Context, id string) (paper.Paper, error)
}
