package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domcol "github.com/kailas-cloud/paperdigest/internal/domain/collection"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// --- Mocks ---

type mockRepo struct {
	created    domcol.Collection
	getResult  domcol.Collection
	listResult []domcol.Collection
	createErr  error
	getErr     error
	listErr    error
	deleteErr  error
	added      []string
	removeErr  error
}

func (m *mockRepo) Create(_ context.Context, col domcol.Collection) error {
	m.created = col
	return m.createErr
}

func (m *mockRepo) Get(_ context.Context, _ string) (domcol.Collection, error) {
	return m.getResult, m.getErr
}

func (m *mockRepo) List(_ context.Context) ([]domcol.Collection, error) {
	return m.listResult, m.listErr
}

func (m *mockRepo) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

func (m *mockRepo) AddPaper(_ context.Context, _, paperID string, _ time.Time) error {
	m.added = append(m.added, paperID)
	return nil
}

func (m *mockRepo) RemovePaper(_ context.Context, _, _ string) error {
	return m.removeErr
}

type mockPapers struct {
	getFn     func(ctx context.Context, id string) (paper.Paper, error)
	getManyFn func(ctx context.Context, ids []string) ([]paper.Paper, error)
}

func (m *mockPapers) Get(ctx context.Context, id string) (paper.Paper, error) {
	return m.getFn(ctx, id)
}

func (m *mockPapers) GetMany(ctx context.Context, ids []string) ([]paper.Paper, error) {
	return m.getManyFn(ctx, ids)
}

// --- Tests ---

func TestCreate(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockPapers{})

	col, err := svc.Create(context.Background(), "  Reading list ", "weekend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Name() != "Reading list" || repo.created.ID() != col.ID() {
		t.Errorf("created = %+v", col)
	}
}

func TestCreate_Invalid(t *testing.T) {
	svc := New(&mockRepo{}, &mockPapers{})
	if _, err := svc.Create(context.Background(), "  ", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	svc := New(&mockRepo{createErr: domain.ErrAlreadyExists}, &mockPapers{})
	if _, err := svc.Create(context.Background(), "dup", ""); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGet_ResolvesPapers(t *testing.T) {
	id := uuid.NewString()
	col := domcol.Reconstruct(id, "list", "", 0, []domcol.Bookmark{{PaperID: "2"}, {PaperID: "1"}})
	var gotIDs []string
	papers := &mockPapers{getManyFn: func(_ context.Context, ids []string) ([]paper.Paper, error) {
		gotIDs = ids
		return []paper.Paper{paper.Reconstruct(paper.Fields{ID: "2"}, "", nil, 0, time.Time{})}, nil
	}}
	svc := New(&mockRepo{getResult: col}, papers)

	d, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotIDs) != 2 || gotIDs[0] != "2" {
		t.Errorf("GetMany ids = %v", gotIDs)
	}
	if d.Collection.ID() != id || len(d.Papers) != 1 {
		t.Errorf("detail = %+v", d)
	}
}

func TestInvalidIDIsNotFound(t *testing.T) {
	svc := New(&mockRepo{}, &mockPapers{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get: %v", err)
	}
	if err := svc.Delete(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete: %v", err)
	}
	if err := svc.AddPaper(ctx, "nope", "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AddPaper: %v", err)
	}
	if err := svc.RemovePaper(ctx, "nope", "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RemovePaper: %v", err)
	}
}

func TestAddPaper(t *testing.T) {
	id := uuid.NewString()

	t.Run("stored paper", func(t *testing.T) {
		repo := &mockRepo{}
		papers := &mockPapers{getFn: func(context.Context, string) (paper.Paper, error) {
			return paper.Paper{}, nil
		}}
		if err := New(repo, papers).AddPaper(context.Background(), id, "2401.00001"); err != nil {
			t.Fatal(err)
		}
		if len(repo.added) != 1 || repo.added[0] != "2401.00001" {
			t.Errorf("added = %v", repo.added)
		}
	})

	t.Run("unknown paper", func(t *testing.T) {
		repo := &mockRepo{}
		papers := &mockPapers{getFn: func(context.Context, string) (paper.Paper, error) {
			return paper.Paper{}, domain.ErrPaperNotFound
		}}
		err := New(repo, papers).AddPaper(context.Background(), id, "missing")
		if !errors.Is(err, domain.ErrPaperNotFound) {
			t.Fatalf("expected ErrPaperNotFound, got %v", err)
		}
		if len(repo.added) != 0 {
			t.Error("bookmark must not be stored for unknown paper")
		}
	})

	t.Run("unknown collection", func(t *testing.T) {
		repo := &mockRepo{getErr: domain.ErrNotFound}
		err := New(repo, &mockPapers{}).AddPaper(context.Background(), id, "1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestList_Error(t *testing.T) {
	boom := errors.New("db down")
	if _, err := New(&mockRepo{listErr: boom}, &mockPapers{}).List(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
