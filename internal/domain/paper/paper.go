package paper

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// idRegex accepts new-style (2301.00001) and old-style (hep-th/9901001) arXiv identifiers
// as well as any opaque id of safe characters.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// MaxIDLength bounds paper identifiers.
const MaxIDLength = 128

// UnknownTitle replaces a missing title.
const UnknownTitle = "Unknown"

// Fields is the flat input for building a Paper.
type Fields struct {
	ID              string
	Title           string
	Abstract        string
	Authors         []string
	Categories      []string
	PrimaryCategory string
	URL             string
	PDFURL          string
	PublishedAt     time.Time
	UpdatedAt       time.Time
}

// Paper is the paper aggregate (immutable value object).
type Paper struct {
	id              string
	title           string
	abstract        string
	authors         []string
	categories      []string
	primaryCategory string
	url             string
	pdfURL          string
	publishedAt     time.Time
	updatedAt       time.Time
	fetchedAt       time.Time
	summary         string
	hasSummary      bool
	matchedKeywords []string
	score           int
}

// New validates and creates a Paper.
func New(f Fields) (Paper, error) {
	id := strings.TrimSpace(f.ID)
	if id == "" {
		return Paper{}, fmt.Errorf("paper ID is required")
	}
	if len(id) > MaxIDLength {
		return Paper{}, fmt.Errorf("paper ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Paper{}, fmt.Errorf("paper ID %q contains invalid characters", id)
	}

	title := collapseSpace(f.Title)
	if title == "" {
		title = UnknownTitle
	}

	return Paper{
		id:              id,
		title:           title,
		abstract:        collapseSpace(f.Abstract),
		authors:         slices.Clone(f.Authors),
		categories:      slices.Clone(f.Categories),
		primaryCategory: f.PrimaryCategory,
		url:             f.URL,
		pdfURL:          f.PDFURL,
		publishedAt:     f.PublishedAt.UTC(),
		updatedAt:       f.UpdatedAt.UTC(),
	}, nil
}

// Reconstruct creates a Paper without validation (storage hydration).
// An empty summary means no summary was generated.
func Reconstruct(
	f Fields, summary string, matchedKeywords []string, score int, fetchedAt time.Time,
) Paper {
	return Paper{
		id:              f.ID,
		title:           f.Title,
		abstract:        f.Abstract,
		authors:         f.Authors,
		categories:      f.Categories,
		primaryCategory: f.PrimaryCategory,
		url:             f.URL,
		pdfURL:          f.PDFURL,
		publishedAt:     f.PublishedAt,
		updatedAt:       f.UpdatedAt,
		fetchedAt:       fetchedAt,
		summary:         summary,
		hasSummary:      summary != "",
		matchedKeywords: matchedKeywords,
		score:           score,
	}
}

// ID returns the arXiv identifier without version suffix.
func (p Paper) ID() string { return p.id }

// Title returns the paper title.
func (p Paper) Title() string { return p.title }

// Abstract returns the upstream abstract.
func (p Paper) Abstract() string { return p.abstract }

// Authors returns the author names in upstream order.
func (p Paper) Authors() []string { return p.authors }

// Categories returns all category tags.
func (p Paper) Categories() []string { return p.categories }

// PrimaryCategory returns the primary category tag.
func (p Paper) PrimaryCategory() string { return p.primaryCategory }

// URL returns the abstract page link.
func (p Paper) URL() string { return p.url }

// PDFURL returns the PDF link.
func (p Paper) PDFURL() string { return p.pdfURL }

// PublishedAt returns the first submission time.
func (p Paper) PublishedAt() time.Time { return p.publishedAt }

// UpdatedAt returns the latest revision time.
func (p Paper) UpdatedAt() time.Time { return p.updatedAt }

// FetchedAt returns when the paper was stored. Zero for papers not yet stored.
func (p Paper) FetchedAt() time.Time { return p.fetchedAt }

// Summary returns the generated summary and whether one exists.
func (p Paper) Summary() (string, bool) { return p.summary, p.hasSummary }

// MatchedKeywords returns the subscription keywords that selected this paper.
func (p Paper) MatchedKeywords() []string { return p.matchedKeywords }

// Score returns the net vote score.
func (p Paper) Score() int { return p.score }

// Year returns the publication year, 0 when unknown.
func (p Paper) Year() int {
	if p.publishedAt.IsZero() {
		return 0
	}
	return p.publishedAt.Year()
}

// Text returns the text the similarity engine reads: title, abstract and summary.
// The placeholder title is not part of it.
func (p Paper) Text() string {
	title := p.title
	if title == UnknownTitle {
		title = ""
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{title, p.abstract, p.summary} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Fields returns the flat representation of the paper.
func (p Paper) Fields() Fields {
	return Fields{
		ID:              p.id,
		Title:           p.title,
		Abstract:        p.abstract,
		Authors:         p.authors,
		Categories:      p.categories,
		PrimaryCategory: p.primaryCategory,
		URL:             p.url,
		PDFURL:          p.pdfURL,
		PublishedAt:     p.publishedAt,
		UpdatedAt:       p.updatedAt,
	}
}

// WithSummary returns a copy carrying the given summary.
func (p Paper) WithSummary(summary string) Paper {
	p.summary = summary
	p.hasSummary = summary != ""
	return p
}

// WithMatchedKeywords returns a copy carrying the given matched keywords.
func (p Paper) WithMatchedKeywords(keywords []string) Paper {
	p.matchedKeywords = slices.Clone(keywords)
	return p
}

// WithScore returns a copy with the given vote score.
func (p Paper) WithScore(score int) Paper {
	p.score = score
	return p
}

// StripVersion removes a trailing arXiv version suffix (2301.00001v2 -> 2301.00001).
func StripVersion(id string) string {
	i := strings.LastIndex(id, "v")
	if i <= 0 || i == len(id)-1 {
		return id
	}
	for _, r := range id[i+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:i]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
