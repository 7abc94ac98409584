package arxiv

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []atomEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type atomEntry struct {
	ID              string         `xml:"http://www.w3.org/2005/Atom id"`
	Title           string         `xml:"http://www.w3.org/2005/Atom title"`
	Summary         string         `xml:"http://www.w3.org/2005/Atom summary"`
	Authors         []atomAuthor   `xml:"http://www.w3.org/2005/Atom author"`
	Categories      []atomCategory `xml:"http://www.w3.org/2005/Atom category"`
	Links           []atomLink     `xml:"http://www.w3.org/2005/Atom link"`
	Published       string         `xml:"http://www.w3.org/2005/Atom published"`
	Updated         string         `xml:"http://www.w3.org/2005/Atom updated"`
	PrimaryCategory atomCategory   `xml:"http://arxiv.org/schemas/atom primary_category"`
}

type atomAuthor struct {
	Name string `xml:"http://www.w3.org/2005/Atom name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// parseFeed decodes an Atom response. Entries without a usable id are skipped.
func parseFeed(body []byte) ([]paper.Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}

	papers := make([]paper.Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		p, ok := parseEntry(e)
		if ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

func parseEntry(e atomEntry) (paper.Paper, bool) {
	url := strings.TrimSpace(e.ID)
	i := strings.LastIndex(url, "/abs/")
	if i < 0 {
		return paper.Paper{}, false
	}
	id := paper.StripVersion(url[i+len("/abs/"):])

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	categories := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		if c.Term != "" {
			categories = append(categories, c.Term)
		}
	}

	var pdfURL string
	for _, l := range e.Links {
		if l.Title == "pdf" {
			pdfURL = l.Href
			break
		}
	}

	p, err := paper.New(paper.Fields{
		ID:              id,
		Title:           e.Title,
		Abstract:        e.Summary,
		Authors:         authors,
		Categories:      categories,
		PrimaryCategory: e.PrimaryCategory.Term,
		URL:             url,
		PDFURL:          pdfURL,
		PublishedAt:     parseTime(e.Published),
		UpdatedAt:       parseTime(e.Updated),
	})
	if err != nil {
		return paper.Paper{}, false
	}
	return p, true
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
