// Package filter matches papers against keyword subscriptions.
package filter

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// Mode selects how a single-word keyword is matched.
type Mode int

const (
	// Fuzzy matches single words on word boundaries ("net" does not match "network").
	Fuzzy Mode = iota
	// Substring matches anywhere in the text.
	Substring
)

type rule struct {
	keyword string
	re      *regexp.Regexp
}

// Matcher holds a compiled keyword set. It is safe for concurrent use.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles keywords. Keywords are lower-cased and de-duplicated; empty ones are dropped.
// Multi-word phrases always match as substrings.
func NewMatcher(keywords []string, mode Mode) *Matcher {
	seen := make(map[string]struct{}, len(keywords))
	m := &Matcher{rules: make([]rule, 0, len(keywords))}

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		r := rule{keyword: k}
		if mode == Fuzzy && !strings.ContainsAny(k, " \t") {
			r.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
		}
		m.rules = append(m.rules, r)
	}
	return m
}

// Empty reports whether the matcher has no keywords.
func (m *Matcher) Empty() bool { return len(m.rules) == 0 }

// Keywords returns the normalized keyword set in input order.
func (m *Matcher) Keywords() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.keyword
	}
	return out
}

// MatchText returns the keywords found in text, in keyword order.
func (m *Matcher) MatchText(text string) []string {
	text = strings.ToLower(text)
	var matched []string
	for _, r := range m.rules {
		var ok bool
		if r.re != nil {
			ok = r.re.MatchString(text)
		} else {
			ok = strings.Contains(text, r.keyword)
		}
		if ok {
			matched = append(matched, r.keyword)
		}
	}
	return matched
}

// Match returns the keywords found in the paper's searchable text.
func (m *Matcher) Match(p paper.Paper) []string {
	return m.MatchText(SearchableText(p))
}

// Filter keeps the papers matching at least one keyword and records the matches on them.
// An empty matcher keeps every paper unchanged.
func (m *Matcher) Filter(papers []paper.Paper) []paper.Paper {
	if m.Empty() {
		return papers
	}
	out := make([]paper.Paper, 0, len(papers))
	for _, p := range papers {
		if kws := m.Match(p); len(kws) > 0 {
			out = append(out, p.WithMatchedKeywords(kws))
		}
	}
	return out
}

// SearchableText joins title, abstract, summary and categories.
func SearchableText(p paper.Paper) string {
	parts := []string{p.Title(), p.Abstract()}
	if s, ok := p.Summary(); ok {
		parts = append(parts, s)
	}
	parts = append(parts, strings.Join(p.Categories(), " "))
	return strings.Join(parts, " ")
}
