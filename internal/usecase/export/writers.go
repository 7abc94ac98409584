package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

const (
	maxBibAbstract      = 500
	maxMarkdownAuthors  = 5
	maxMarkdownCategory = 5
	dateLayout          = "2006-01-02"
)

var csvHeader = []string{
	"arxiv_id", "title", "authors", "published", "categories",
	"abstract", "summary", "url", "pdf_url", "score",
}

// Write renders papers in the given format.
func Write(w io.Writer, f Format, papers []paper.Paper) error {
	switch f {
	case Markdown:
		return WriteMarkdown(w, papers)
	case CSV:
		return WriteCSV(w, papers)
	case JSON:
		return WriteJSON(w, papers)
	default:
		return WriteBibTeX(w, papers)
	}
}

// BibKey returns the citation key: arxiv_{id with / and . replaced by _}_{year}.
func BibKey(p paper.Paper) string {
	id := strings.NewReplacer("/", "_", ".", "_").Replace(p.ID())
	return "arxiv_" + id + "_" + yearString(p)
}

// WriteBibTeX renders one @article entry per paper, separated by blank lines.
func WriteBibTeX(w io.Writer, papers []paper.Paper) error {
	bw := bufio.NewWriter(w)
	for i, p := range papers {
		if i > 0 {
			bw.WriteString("\n\n")
		}
		authors := "Unknown"
		if len(p.Authors()) > 0 {
			authors = strings.Join(p.Authors(), " and ")
		}
		fmt.Fprintf(bw, "@article{%s,\n", BibKey(p))
		fmt.Fprintf(bw, "  title = {%s},\n", escapeBraces(p.Title()))
		fmt.Fprintf(bw, "  author = {%s},\n", authors)
		fmt.Fprintf(bw, "  year = {%s},\n", yearString(p))
		fmt.Fprintf(bw, "  url = {%s},\n", p.URL())
		fmt.Fprintf(bw, "  eprint = {%s},\n", p.ID())
		bw.WriteString("  archivePrefix = {arXiv},\n")
		fmt.Fprintf(bw, "  primaryClass = {%s},\n", p.PrimaryCategory())
		fmt.Fprintf(bw, "  abstract = {%s}\n}", escapeBraces(truncateRunes(p.Abstract(), maxBibAbstract)))
	}
	if len(papers) > 0 {
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteMarkdown renders a numbered list of papers with links and summaries.
func WriteMarkdown(w io.Writer, papers []paper.Paper) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("# paperdigest export\n\n")

	for i, p := range papers {
		fmt.Fprintf(bw, "## %d. [%s](%s)\n", i+1, p.Title(), p.URL())
		fmt.Fprintf(bw, "**Authors:** %s\n", JoinLimited(p.Authors(), maxMarkdownAuthors))
		cats := p.Categories()
		fmt.Fprintf(bw, "**Date:** %s | **Categories:** %s\n",
			formatDate(p.PublishedAt()), strings.Join(cats[:min(len(cats), maxMarkdownCategory)], ", "))
		if s, ok := p.Summary(); ok {
			fmt.Fprintf(bw, "\n> %s\n", s)
		}
		if p.PDFURL() != "" {
			fmt.Fprintf(bw, "\n[PDF](%s)\n", p.PDFURL())
		}
		bw.WriteString("\n")
	}

	fmt.Fprintf(bw, "---\n*Exported by paperdigest: %d papers*\n", len(papers))
	return bw.Flush()
}

// WriteCSV renders a header row and one row per paper. Lists are joined with "; ".
func WriteCSV(w io.Writer, papers []paper.Paper) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range papers {
		summary, _ := p.Summary()
		err := cw.Write([]string{
			p.ID(),
			p.Title(),
			strings.Join(p.Authors(), "; "),
			formatDate(p.PublishedAt()),
			strings.Join(p.Categories(), "; "),
			p.Abstract(),
			summary,
			p.URL(),
			p.PDFURL(),
			strconv.Itoa(p.Score()),
		})
		if err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonPaper struct {
	ArxivID         string   `json:"arxiv_id"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Published       string   `json:"published"`
	Categories      []string `json:"categories"`
	PrimaryCategory string   `json:"primary_category"`
	Abstract        string   `json:"abstract"`
	Summary         string   `json:"summary"`
	URL             string   `json:"url"`
	PDFURL          string   `json:"pdf_url"`
	Score           int      `json:"score"`
}

// WriteJSON renders an indented JSON array.
func WriteJSON(w io.Writer, papers []paper.Paper) error {
	out := make([]jsonPaper, len(papers))
	for i, p := range papers {
		summary, _ := p.Summary()
		published := ""
		if !p.PublishedAt().IsZero() {
			published = p.PublishedAt().UTC().Format(time.RFC3339)
		}
		out[i] = jsonPaper{
			ArxivID:         p.ID(),
			Title:           p.Title(),
			Authors:         nonNil(p.Authors()),
			Published:       published,
			Categories:      nonNil(p.Categories()),
			PrimaryCategory: p.PrimaryCategory(),
			Abstract:        p.Abstract(),
			Summary:         summary,
			URL:             p.URL(),
			PDFURL:          p.PDFURL(),
			Score:           p.Score(),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// JoinLimited joins up to n items with ", " and appends "+N more" for the rest.
func JoinLimited(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + fmt.Sprintf(" +%d more", len(items)-n)
}

func yearString(p paper.Paper) string {
	if y := p.Year(); y > 0 {
		return strconv.Itoa(y)
	}
	return "nd"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func escapeBraces(s string) string {
	return strings.NewReplacer("{", `\{`, "}", `\}`).Replace(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
