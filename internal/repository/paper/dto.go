package paper

import (
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

const columns = `id, title, abstract, authors, categories, primary_category, url, pdf_url,
	published_at, updated_at, fetched_at, summary, matched_keywords, score`

// row mirrors one papers table row.
type row struct {
	ID              string
	Title           string
	Abstract        string
	Authors         string
	Categories      string
	PrimaryCategory string
	URL             string
	PDFURL          string
	PublishedAt     string
	UpdatedAt       string
	FetchedAt       string
	Summary         string
	MatchedKeywords string
	Score           int
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (row, error) {
	var r row
	err := s.Scan(
		&r.ID, &r.Title, &r.Abstract, &r.Authors, &r.Categories, &r.PrimaryCategory,
		&r.URL, &r.PDFURL, &r.PublishedAt, &r.UpdatedAt, &r.FetchedAt,
		&r.Summary, &r.MatchedKeywords, &r.Score,
	)
	return r, err
}

// toRow flattens a domain Paper for INSERT.
func toRow(p dompaper.Paper) (row, error) {
	authors, err := marshalList(p.Authors())
	if err != nil {
		return row{}, fmt.Errorf("marshal authors: %w", err)
	}
	categories, err := marshalList(p.Categories())
	if err != nil {
		return row{}, fmt.Errorf("marshal categories: %w", err)
	}
	keywords, err := marshalList(p.MatchedKeywords())
	if err != nil {
		return row{}, fmt.Errorf("marshal matched keywords: %w", err)
	}
	summary, _ := p.Summary()

	return row{
		ID:              p.ID(),
		Title:           p.Title(),
		Abstract:        p.Abstract(),
		Authors:         authors,
		Categories:      categories,
		PrimaryCategory: p.PrimaryCategory(),
		URL:             p.URL(),
		PDFURL:          p.PDFURL(),
		PublishedAt:     sqlite.FormatTime(p.PublishedAt()),
		UpdatedAt:       sqlite.FormatTime(p.UpdatedAt()),
		FetchedAt:       sqlite.FormatTime(p.FetchedAt()),
		Summary:         summary,
		MatchedKeywords: keywords,
		Score:           p.Score(),
	}, nil
}

// toDomain hydrates a domain Paper.
func toDomain(r row) (dompaper.Paper, error) {
	authors, err := unmarshalList(r.Authors)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("paper %s authors: %w", r.ID, err)
	}
	categories, err := unmarshalList(r.Categories)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("paper %s categories: %w", r.ID, err)
	}
	keywords, err := unmarshalList(r.MatchedKeywords)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("paper %s matched keywords: %w", r.ID, err)
	}

	return dompaper.Reconstruct(dompaper.Fields{
		ID:              r.ID,
		Title:           r.Title,
		Abstract:        r.Abstract,
		Authors:         authors,
		Categories:      categories,
		PrimaryCategory: r.PrimaryCategory,
		URL:             r.URL,
		PDFURL:          r.PDFURL,
		PublishedAt:     sqlite.ParseTime(r.PublishedAt),
		UpdatedAt:       sqlite.ParseTime(r.UpdatedAt),
	}, r.Summary, keywords, r.Score, sqlite.ParseTime(r.FetchedAt)), nil
}

func scanAll(rows *sql.Rows) ([]dompaper.Paper, error) {
	defer rows.Close()

	out := make([]dompaper.Paper, 0)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		p, err := toDomain(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate papers: %w", err)
	}
	return out, nil
}

func marshalList(items []string) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err //nolint:wrapcheck // wrapped by callers
	}
	return string(b), nil
}

func unmarshalList(s string) ([]string, error) {
	if s == "" || s == "[]" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by callers
	}
	return items, nil
}
