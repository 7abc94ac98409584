package collection

import (
	"context"
	"time"

	domcol "github.com/kailas-cloud/paperdigest/internal/domain/collection"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Repository defines the storage contract for collections.
type Repository interface {
	Create(ctx context.Context, col domcol.Collection) error
	Get(ctx context.Context, id string) (domcol.Collection, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, id string) error
	AddPaper(ctx context.Context, id, paperID string, at time.Time) error
	RemovePaper(ctx context.Context, id, paperID string) error
}

// PaperReader resolves bookmarked paper ids.
type PaperReader interface {
	Get(ctx context.Context, id string) (paper.Paper, error)
	GetMany(ctx context.Context, ids []string) ([]paper.Paper, error)
}
