package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domsub "github.com/kailas-cloud/paperdigest/internal/domain/subscription"
)

type mockRepo struct {
	added     []string
	addErr    error
	removed   string
	removeErr error
	listErr   error
}

func (m *mockRepo) Add(_ context.Context, s domsub.Subscription) error {
	m.added = append(m.added, s.Keyword())
	return m.addErr
}

func (m *mockRepo) Remove(_ context.Context, keyword string) error {
	m.removed = keyword
	return m.removeErr
}

func (m *mockRepo) List(context.Context) ([]domsub.Subscription, error) {
	return nil, m.listErr
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name        string
		keyword     string
		repoErr     error
		wantCreated bool
		wantErr     error
	}{
		{"created", "  Graph Neural  ", nil, true, nil},
		{"exists", "graph", domain.ErrAlreadyExists, false, nil},
		{"empty", "   ", nil, false, domain.ErrInvalidInput},
		{"storage failure", "graph", errors.New("disk full"), false, errors.New("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{addErr: tt.repoErr}
			sub, created, err := New(repo).Add(context.Background(), tt.keyword)

			switch {
			case tt.wantErr == domain.ErrInvalidInput:
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			case tt.wantErr != nil:
				if err == nil {
					t.Fatal("expected error")
				}
				return
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}
			if created != tt.wantCreated {
				t.Errorf("created = %v, want %v", created, tt.wantCreated)
			}
			if tt.name == "created" && sub.Keyword() != "graph neural" {
				t.Errorf("keyword = %q", sub.Keyword())
			}
		})
	}
}

func TestRemove(t *testing.T) {
	t.Run("normalizes", func(t *testing.T) {
		repo := &mockRepo{}
		if err := New(repo).Remove(context.Background(), " GNN "); err != nil {
			t.Fatal(err)
		}
		if repo.removed != "gnn" {
			t.Errorf("removed = %q", repo.removed)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		repo := &mockRepo{removeErr: domain.ErrNotFound}
		if err := New(repo).Remove(context.Background(), "gnn"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if err := New(&mockRepo{}).Remove(context.Background(), " "); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}
