package filter

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

func samplePaper(t *testing.T) paper.Paper {
	t.Helper()
	p, err := paper.New(paper.Fields{
		ID:         "2301.00001",
		Title:      "Attention Mechanisms in Neural Networks",
		Abstract:   "This paper explores attention mechanisms in deep learning models.",
		Categories: []string{"cs.LG", "cs.AI"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p.WithSummary("A comprehensive study of attention in transformers.")
}

func TestMatcher_Match(t *testing.T) {
	p := samplePaper(t)
	tests := []struct {
		name     string
		keywords []string
		mode     Mode
		want     []string
	}{
		{"substring", []string{"attention"}, Substring, []string{"attention"}},
		{"fuzzy", []string{"attention"}, Fuzzy, []string{"attention"}},
		{"case insensitive dedupe", []string{"ATTENTION", "Attention"}, Substring, []string{"attention"}},
		{"no match", []string{"quantum", "robotics"}, Substring, nil},
		{"fuzzy rejects partial word", []string{"net"}, Fuzzy, nil},
		{"substring accepts partial word", []string{"net"}, Substring, []string{"net"}},
		{"phrase", []string{"deep learn"}, Fuzzy, []string{"deep learn"}},
		{"summary searched", []string{"transformers"}, Fuzzy, []string{"transformers"}},
		{"category searched", []string{"cs.lg"}, Fuzzy, []string{"cs.lg"}},
		{"keyword order kept", []string{"neural", "attention"}, Fuzzy, []string{"neural", "attention"}},
		{"blank ignored", []string{"  ", ""}, Fuzzy, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMatcher(tt.keywords, tt.mode).Match(p)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcher_Filter(t *testing.T) {
	mk := func(id, title, abstract string) paper.Paper {
		p, err := paper.New(paper.Fields{ID: id, Title: title, Abstract: abstract})
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	papers := []paper.Paper{
		mk("1", "Attention in Transformers", "Study of attention"),
		mk("2", "Quantum Computing", "Quantum algorithms"),
		mk("3", "Graph Neural Networks", "GNN architectures"),
	}

	got := NewMatcher([]string{"attention", "graph"}, Substring).Filter(papers)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID() != "1" || got[1].ID() != "3" {
		t.Errorf("ids = %s,%s", got[0].ID(), got[1].ID())
	}
	if !reflect.DeepEqual(got[1].MatchedKeywords(), []string{"graph"}) {
		t.Errorf("matched = %v", got[1].MatchedKeywords())
	}
	if len(papers[0].MatchedKeywords()) != 0 {
		t.Error("Filter must not mutate its input")
	}

	if all := NewMatcher(nil, Fuzzy).Filter(papers); len(all) != 3 {
		t.Errorf("empty matcher kept %d papers", len(all))
	}
}
