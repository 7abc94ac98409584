package similar

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Scored is one ranked candidate.
type Scored struct {
	ID          string
	Score       float64
	PublishedAt time.Time
}

// RankSimilar scores every other paper in corpus against the paper identified by queryID
// and returns the top k, ordered by score desc, published_at desc, id asc.
// The query paper never appears in the result. Duplicate ids keep their first occurrence.
func RankSimilar(queryID string, corpus []paper.Paper, k int) ([]Scored, error) {
	if k < 1 {
		return nil, domain.NewValidationError("k", "must be at least 1")
	}

	docs := dedupe(corpus)

	qi := -1
	for i := range docs {
		if docs[i].ID() == queryID {
			qi = i
			break
		}
	}
	if qi < 0 {
		return nil, fmt.Errorf("rank similar to %q: %w", queryID, domain.ErrPaperNotFound)
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text()
	}
	c := NewCorpus(texts)

	qv := c.Vectorize(c.Tokens(qi))
	qn := qv.Magnitude()
	qterms := qv.terms()

	results := make([]Scored, 0, len(docs)-1)
	for i := range docs {
		if i == qi {
			continue
		}
		var score float64
		if qn > 0 {
			cv := c.Vectorize(c.Tokens(i))
			score = cosineWithNorms(qv, qterms, cv, qn, cv.Magnitude())
		}
		results = append(results, Scored{
			ID:          docs[i].ID(),
			Score:       score,
			PublishedAt: docs[i].PublishedAt(),
		})
	}

	sortScored(results)

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func dedupe(corpus []paper.Paper) []paper.Paper {
	seen := make(map[string]struct{}, len(corpus))
	out := make([]paper.Paper, 0, len(corpus))
	for i := range corpus {
		id := corpus[i].ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, corpus[i])
	}
	return out
}

func sortScored(s []Scored) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		if !s[i].PublishedAt.Equal(s[j].PublishedAt) {
			return s[i].PublishedAt.After(s[j].PublishedAt)
		}
		return s[i].ID < s[j].ID
	})
}

// cosineWithNorms sums the dot product in aTerms order, which must be a's sorted keys.
func cosineWithNorms(a Vector, aTerms []string, b Vector, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for _, term := range aTerms {
		if wb, ok := b[term]; ok {
			dot += a[term] * wb
		}
	}
	s := dot / (na * nb)
	switch {
	case math.IsNaN(s) || s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
