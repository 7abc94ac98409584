package export

import (
	"context"
	"fmt"
	"io"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// DefaultLimit caps an export when no limit is given.
const DefaultLimit = 1000

// Repository lists stored papers.
type Repository interface {
	List(ctx context.Context, q paper.ListQuery) ([]paper.Paper, error)
}

// Request selects what to export.
type Request struct {
	Format  Format
	Limit   int
	Keyword string
}

// Service exports stored papers.
type Service struct {
	repo Repository
}

// New creates an export service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Export writes the newest matching papers to w and returns how many were written.
func (s *Service) Export(ctx context.Context, w io.Writer, req Request) (int, error) {
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	papers, err := s.repo.List(ctx, paper.ListQuery{
		Limit:   req.Limit,
		Keyword: req.Keyword,
		Sort:    paper.SortDate,
	})
	if err != nil {
		return 0, fmt.Errorf("load papers: %w", err)
	}
	if err := Write(w, req.Format, papers); err != nil {
		return 0, fmt.Errorf("write %s: %w", req.Format, err)
	}
	return len(papers), nil
}
