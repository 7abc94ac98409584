package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	domcol "github.com/kailas-cloud/paperdigest/internal/domain/collection"
)

// Repo implements usecase/collection.Repository over SQLite.
type Repo struct {
	q sqlite.Querier
}

// New creates a collection repository.
func New(q sqlite.Querier) *Repo {
	return &Repo{q: q}
}

// Create stores a new collection. A duplicate name yields ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO collections(id, name, description, created_at) VALUES(?, ?, ?, ?)`,
		col.ID(), col.Name(), col.Description(), col.CreatedAt())
	if sqlite.IsUniqueViolation(err) {
		return fmt.Errorf("collection %q: %w", col.Name(), domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert collection %s: %w", col.Name(), err)
	}
	return nil
}

// Get returns a collection with its bookmarks, oldest first.
func (r *Repo) Get(ctx context.Context, id string) (domcol.Collection, error) {
	var name, desc string
	var createdAt int64
	err := r.q.QueryRowContext(ctx,
		`SELECT name, description, created_at FROM collections WHERE id = ?`, id,
	).Scan(&name, &desc, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domcol.Collection{}, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection %s: %w", id, err)
	}

	bookmarks, err := r.bookmarks(ctx, id)
	if err != nil {
		return domcol.Collection{}, err
	}
	return domcol.Reconstruct(id, name, desc, createdAt, bookmarks), nil
}

// List returns all collections sorted by creation time, without bookmarks.
func (r *Repo) List(ctx context.Context) ([]domcol.Collection, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM collections ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	out := make([]domcol.Collection, 0)
	for rows.Next() {
		var id, name, desc string
		var createdAt int64
		if err := rows.Scan(&id, &name, &desc, &createdAt); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out = append(out, domcol.Reconstruct(id, name, desc, createdAt, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return out, nil
}

// Delete removes a collection and its bookmarks.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AddPaper bookmarks a paper. Re-adding keeps the original timestamp.
func (r *Repo) AddPaper(ctx context.Context, id, paperID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO collection_papers(collection_id, paper_id, added_at) VALUES(?, ?, ?)
		 ON CONFLICT(collection_id, paper_id) DO NOTHING`,
		id, paperID, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("add paper %s to collection %s: %w", paperID, id, err)
	}
	return nil
}

// RemovePaper drops a bookmark. A missing bookmark yields ErrNotFound.
func (r *Repo) RemovePaper(ctx context.Context, id, paperID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM collection_papers WHERE collection_id = ? AND paper_id = ?`, id, paperID)
	if err != nil {
		return fmt.Errorf("remove paper %s from collection %s: %w", paperID, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bookmark %s/%s: %w", id, paperID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) bookmarks(ctx context.Context, id string) ([]domcol.Bookmark, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT paper_id, added_at FROM collection_papers WHERE collection_id = ? ORDER BY added_at, paper_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks %s: %w", id, err)
	}
	defer rows.Close()

	out := make([]domcol.Bookmark, 0)
	for rows.Next() {
		var b domcol.Bookmark
		var added int64
		if err := rows.Scan(&b.PaperID, &added); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.AddedAt = time.UnixMilli(added).UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return out, nil
}
