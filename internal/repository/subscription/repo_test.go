package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	domsub "github.com/kailas-cloud/paperdigest/internal/domain/subscription"
)

func mustSub(t *testing.T, kw string) domsub.Subscription {
	t.Helper()
	s, err := domsub.New(kw)
	if err != nil {
		t.Fatalf("subscription.New(%q): %v", kw, err)
	}
	return s
}

func TestAddListRemove(t *testing.T) {
	repo := New(sqlite.OpenForTest(t))
	ctx := context.Background()

	for _, kw := range []string{"Transformers", "diffusion"} {
		if err := repo.Add(ctx, mustSub(t, kw)); err != nil {
			t.Fatalf("Add(%q): %v", kw, err)
		}
	}

	if err := repo.Add(ctx, mustSub(t, "  TRANSFORMERS ")); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	subs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := domsub.Keywords(subs); len(got) != 2 || got[0] != "diffusion" || got[1] != "transformers" {
		t.Fatalf("List = %v", got)
	}
	if subs[0].CreatedAt().IsZero() {
		t.Error("CreatedAt should round-trip")
	}

	if err := repo.Remove(ctx, "diffusion"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := repo.Remove(ctx, "diffusion"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
