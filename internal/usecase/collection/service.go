package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domcol "github.com/kailas-cloud/paperdigest/internal/domain/collection"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Detail is a collection with its bookmarked papers resolved.
type Detail struct {
	Collection domcol.Collection
	Papers     []paper.Paper
}

// Service handles bookmark collection operations.
type Service struct {
	repo   Repository
	papers PaperReader
	now    func() time.Time
}

// New creates a collection service.
func New(repo Repository, papers PaperReader) *Service {
	return &Service{repo: repo, papers: papers, now: time.Now}
}

// Create validates and stores a new collection.
func (s *Service) Create(ctx context.Context, name, description string) (domcol.Collection, error) {
	col, err := domcol.New(name, description)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidInput, err)
	}

	if err := s.repo.Create(ctx, col); err != nil {
		return domcol.Collection{}, fmt.Errorf("create collection: %w", err)
	}
	return col, nil
}

// Get retrieves a collection and its papers, most recently bookmarked first.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	if !domcol.IsValidID(id) {
		return Detail{}, fmt.Errorf("get collection %q: %w", id, domain.ErrNotFound)
	}
	col, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get collection: %w", err)
	}

	papers, err := s.papers.GetMany(ctx, col.PaperIDs())
	if err != nil {
		return Detail{}, fmt.Errorf("load bookmarked papers: %w", err)
	}
	return Detail{Collection: col, Papers: papers}, nil
}

// List returns all collections.
func (s *Service) List(ctx context.Context) ([]domcol.Collection, error) {
	cols, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return cols, nil
}

// Delete removes a collection and its bookmarks.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !domcol.IsValidID(id) {
		return fmt.Errorf("delete collection %q: %w", id, domain.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// AddPaper bookmarks a stored paper. Adding it twice is a no-op.
func (s *Service) AddPaper(ctx context.Context, id, paperID string) error {
	if !domcol.IsValidID(id) {
		return fmt.Errorf("add paper to collection %q: %w", id, domain.ErrNotFound)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get collection: %w", err)
	}
	if _, err := s.papers.Get(ctx, paperID); err != nil {
		return fmt.Errorf("get paper: %w", err)
	}
	if err := s.repo.AddPaper(ctx, id, paperID, s.now().UTC()); err != nil {
		return fmt.Errorf("add paper: %w", err)
	}
	return nil
}

// RemovePaper drops a bookmark.
func (s *Service) RemovePaper(ctx context.Context, id, paperID string) error {
	if !domcol.IsValidID(id) {
		return fmt.Errorf("remove paper from collection %q: %w", id, domain.ErrNotFound)
	}
	if err := s.repo.RemovePaper(ctx, id, paperID); err != nil {
		return fmt.Errorf("remove paper: %w", err)
	}
	return nil
}
