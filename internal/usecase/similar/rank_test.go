package similar

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

var day0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func mkPaper(t *testing.T, id, title string, published time.Time) paper.Paper {
	t.Helper()
	p, err := paper.New(paper.Fields{ID: id, Title: title, PublishedAt: published})
	if err != nil {
		t.Fatalf("paper.New(%q): %v", id, err)
	}
	return p
}

func ids(s []Scored) []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].ID
	}
	return out
}

func TestRankSimilar_SharedTermsRankFirst(t *testing.T) {
	corpus := []paper.Paper{
		mkPaper(t, "A", "transformer attention", day0),
		mkPaper(t, "B", "attention is all you need transformer", day0),
		mkPaper(t, "C", "unrelated topic gardening", day0),
	}

	got, err := RankSimilar("A", corpus, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"B", "C"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	if got[0].Score <= 0 {
		t.Errorf("B score = %v, want > 0", got[0].Score)
	}
	if got[1].Score != 0 {
		t.Errorf("C score = %v, want 0", got[1].Score)
	}
}

func TestRankSimilar_EmptyQueryText(t *testing.T) {
	corpus := []paper.Paper{
		paper.Reconstruct(paper.Fields{ID: "A"}, "", nil, 0, time.Time{}),
		mkPaper(t, "B", "deep learning", day0),
	}

	got, err := RankSimilar("A", corpus, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "B" || got[0].Score != 0 {
		t.Fatalf("got %+v, want [(B, 0)]", got)
	}
}

func TestRankSimilar_UnknownQuery(t *testing.T) {
	corpus := []paper.Paper{mkPaper(t, "A", "graph networks", day0)}

	_, err := RankSimilar("Z", corpus, 3)
	if !errors.Is(err, domain.ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in chain, got %v", err)
	}
}

func TestRankSimilar_EmptyCorpus(t *testing.T) {
	_, err := RankSimilar("A", nil, 3)
	if !errors.Is(err, domain.ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}
}

func TestRankSimilar_InvalidK(t *testing.T) {
	corpus := []paper.Paper{mkPaper(t, "A", "graph networks", day0)}
	for _, k := range []int{0, -1} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			_, err := RankSimilar("A", corpus, k)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRankSimilar_OnlyQuery(t *testing.T) {
	corpus := []paper.Paper{mkPaper(t, "A", "graph networks", day0)}
	got, err := RankSimilar("A", corpus, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestRankSimilar_LengthAndExclusion(t *testing.T) {
	corpus := []paper.Paper{
		mkPaper(t, "q", "graph neural networks message passing", day0),
		mkPaper(t, "p1", "graph neural networks", day0),
		mkPaper(t, "p2", "message passing algorithms", day0),
		mkPaper(t, "p3", "protein folding structure", day0),
		mkPaper(t, "p4", "graph coloring heuristics", day0),
	}

	for _, k := range []int{1, 2, 4, 10} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			got, err := RankSimilar("q", corpus, k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := min(k, len(corpus)-1)
			if len(got) != want {
				t.Fatalf("len = %d, want %d", len(got), want)
			}
			for i, s := range got {
				if s.ID == "q" {
					t.Fatal("query paper must not be ranked")
				}
				if s.Score < 0 || s.Score > 1 {
					t.Errorf("score %v out of [0, 1]", s.Score)
				}
				if i > 0 && got[i-1].Score < s.Score {
					t.Errorf("scores not descending at %d: %v < %v", i, got[i-1].Score, s.Score)
				}
			}
		})
	}
}

func TestRankSimilar_TieBreak(t *testing.T) {
	corpus := []paper.Paper{
		mkPaper(t, "q", "quantum annealing", day0),
		mkPaper(t, "b-old", "soil chemistry", day0),
		mkPaper(t, "c-new", "bird migration", day0.Add(48*time.Hour)),
		mkPaper(t, "a-old", "volcano seismology", day0),
	}

	got, err := RankSimilar("q", corpus, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// All scores are zero: newest first, then id ascending.
	want := []string{"c-new", "a-old", "b-old"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
}

func TestRankSimilar_DuplicateIDsKeepFirst(t *testing.T) {
	corpus := []paper.Paper{
		mkPaper(t, "q", "sparse attention kernels", day0),
		mkPaper(t, "d", "sparse attention kernels", day0),
		mkPaper(t, "d", "completely different words", day0),
		mkPaper(t, "e", "ocean currents", day0),
	}

	got, err := RankSimilar("q", corpus, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"d", "e"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	if got[0].Score <= 0 {
		t.Errorf("first occurrence of d should match the query, score = %v", got[0].Score)
	}
}

func TestRankSimilar_Deterministic(t *testing.T) {
	corpus := []paper.Paper{
		mkPaper(t, "q", "diffusion models image synthesis guidance", day0),
		mkPaper(t, "p1", "image synthesis with diffusion", day0),
		mkPaper(t, "p2", "classifier free guidance diffusion", day0),
		mkPaper(t, "p3", "text to image synthesis", day0),
		mkPaper(t, "p4", "reinforcement learning robotics", day0),
	}

	first, err := RankSimilar("q", corpus, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 20 {
		again, err := RankSimilar("q", corpus, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("non-deterministic result: %v vs %v", first, again)
		}
	}
}

func TestRankSimilar_SummaryContributes(t *testing.T) {
	q := mkPaper(t, "q", "untitled work", day0).WithSummary("contrastive pretraining for vision")
	corpus := []paper.Paper{
		q,
		mkPaper(t, "p1", "contrastive pretraining vision encoders", day0),
		mkPaper(t, "p2", "tax policy", day0),
	}

	got, err := RankSimilar("q", corpus, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID != "p1" || got[0].Score <= 0 {
		t.Fatalf("got %+v, want p1 with positive score", got[0])
	}
}
