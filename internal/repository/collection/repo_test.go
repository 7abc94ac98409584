package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	domcol "github.com/kailas-cloud/paperdigest/internal/domain/collection"
)

func mustCollection(t *testing.T, name string) domcol.Collection {
	t.Helper()
	c, err := domcol.New(name, "reading list")
	if err != nil {
		t.Fatalf("collection.New: %v", err)
	}
	return c
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := New(sqlite.OpenForTest(t))
	ctx := context.Background()

	if err := repo.Create(ctx, mustCollection(t, "to-read")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, mustCollection(t, "to-read"))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestBookmarks(t *testing.T) {
	repo := New(sqlite.OpenForTest(t))
	ctx := context.Background()
	col := mustCollection(t, "gnn")
	if err := repo.Create(ctx, col); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = repo.AddPaper(ctx, col.ID(), "p2", t0.Add(time.Minute))
	_ = repo.AddPaper(ctx, col.ID(), "p1", t0)
	if err := repo.AddPaper(ctx, col.ID(), "p1", t0.Add(time.Hour)); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	got, err := repo.Get(ctx, col.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	ids := got.PaperIDs()
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Fatalf("PaperIDs = %v", ids)
	}
	if !got.Bookmarks()[0].AddedAt.Equal(t0) {
		t.Errorf("re-add must keep the first timestamp, got %v", got.Bookmarks()[0].AddedAt)
	}

	if err := repo.RemovePaper(ctx, col.ID(), "p1"); err != nil {
		t.Fatalf("RemovePaper: %v", err)
	}
	if err := repo.RemovePaper(ctx, col.ID(), "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	repo := New(sqlite.OpenForTest(t))
	ctx := context.Background()
	a := mustCollection(t, "a")
	b := mustCollection(t, "b")
	_ = repo.Create(ctx, a)
	_ = repo.Create(ctx, b)
	_ = repo.AddPaper(ctx, a.ID(), "p1", time.Now())

	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List = %d, %v", len(list), err)
	}

	if err := repo.Delete(ctx, a.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, a.ID()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, a.ID()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
