package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

func samplePaper(t *testing.T) paper.Paper {
	t.Helper()
	p, err := paper.New(paper.Fields{
		ID:              "2403.01234",
		Title:           "Sets {and} Graphs",
		Abstract:        strings.Repeat("a", 600),
		Authors:         []string{"A", "B", "C", "D", "E", "F", "G"},
		Categories:      []string{"cs.LG", "cs.AI"},
		PrimaryCategory: "cs.LG",
		URL:             "https://arxiv.org/abs/2403.01234",
		PDFURL:          "https://arxiv.org/pdf/2403.01234",
		PublishedAt:     time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p.WithSummary("Short, \"quoted\" summary").WithScore(3)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": BibTeX, "BibTeX": BibTeX, "md": Markdown, "csv": CSV, " json ": JSON}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBibKey(t *testing.T) {
	tests := []struct {
		id   string
		at   time.Time
		want string
	}{
		{"2403.01234", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "arxiv_2403_01234_2024"},
		{"hep-th/9901001", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), "arxiv_hep-th_9901001_1999"},
		{"x1", time.Time{}, "arxiv_x1_nd"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, _ := paper.New(paper.Fields{ID: tt.id, PublishedAt: tt.at})
			if got := BibKey(p); got != tt.want {
				t.Errorf("BibKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteBibTeX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBibTeX(&buf, []paper.Paper{samplePaper(t), samplePaper(t)}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"@article{arxiv_2403_01234_2024,",
		`title = {Sets \{and\} Graphs}`,
		"author = {A and B and C and D and E and F and G}",
		"primaryClass = {cs.LG}",
		"abstract = {" + strings.Repeat("a", 500) + "}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Count(out, "@article{") != 2 || !strings.Contains(out, "}\n\n@article{") {
		t.Errorf("entries not separated by a blank line:\n%s", out)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, []paper.Paper{samplePaper(t)}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"## 1. [Sets {and} Graphs](https://arxiv.org/abs/2403.01234)",
		"**Authors:** A, B, C, D, E +2 more",
		"**Date:** 2024-03-02 | **Categories:** cs.LG, cs.AI",
		"> Short, \"quoted\" summary",
		"[PDF](https://arxiv.org/pdf/2403.01234)",
		"1 papers",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []paper.Paper{samplePaper(t)}); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", records[0])
	}
	row := records[1]
	if row[2] != "A; B; C; D; E; F; G" || row[3] != "2024-03-02" || row[6] != `Short, "quoted" summary` || row[9] != "3" {
		t.Errorf("row = %v", row)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	bare, _ := paper.New(paper.Fields{ID: "x1"})
	if err := WriteJSON(&buf, []paper.Paper{samplePaper(t), bare}); err != nil {
		t.Fatal(err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0]["primary_category"] != "cs.LG" || got[0]["score"] != float64(3) {
		t.Errorf("first = %v", got[0])
	}
	if authors, ok := got[1]["authors"].([]any); !ok || len(authors) != 0 {
		t.Errorf("empty authors should encode as [], got %v", got[1]["authors"])
	}
}

func TestJoinLimited(t *testing.T) {
	if got := JoinLimited([]string{"a", "b"}, 3); got != "a, b" {
		t.Errorf("got %q", got)
	}
	if got := JoinLimited([]string{"a", "b", "c", "d"}, 3); got != "a, b, c +1 more" {
		t.Errorf("got %q", got)
	}
}

type mockRepo struct {
	got   paper.ListQuery
	items []paper.Paper
	err   error
}

func (m *mockRepo) List(_ context.Context, q paper.ListQuery) ([]paper.Paper, error) {
	m.got = q
	return m.items, m.err
}

func TestService_Export(t *testing.T) {
	repo := &mockRepo{items: []paper.Paper{samplePaper(t)}}
	var buf bytes.Buffer

	n, err := New(repo).Export(context.Background(), &buf, Request{Format: CSV, Keyword: "graphs"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || repo.got.Limit != DefaultLimit || repo.got.Keyword != "graphs" || repo.got.Sort != paper.SortDate {
		t.Errorf("n=%d query=%+v", n, repo.got)
	}
	if !strings.HasPrefix(buf.String(), "arxiv_id,") {
		t.Errorf("output = %q", buf.String())
	}

	repo.err = errors.New("db down")
	if _, err := New(repo).Export(context.Background(), &buf, Request{Format: JSON}); err == nil {
		t.Fatal("expected error")
	}
}
