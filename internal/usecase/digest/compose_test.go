package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

func TestCompose(t *testing.T) {
	p1, _ := paper.New(paper.Fields{
		ID:         "2401.00001",
		Title:      "Attention <script>alert(1)</script>",
		Authors:    []string{"Ada", "Bob", "Cy", "Di", "Ed"},
		Categories: []string{"cs.LG", "cs.AI", "cs.CL", "stat.ML"},
		URL:        "https://arxiv.org/abs/2401.00001",
		PDFURL:     "https://arxiv.org/pdf/2401.00001",
	})
	p2, _ := paper.New(paper.Fields{ID: "2401.00002", Title: "Plain", URL: "https://arxiv.org/abs/2401.00002"})
	papers := []paper.Paper{p1.WithSummary("A short summary."), p2}
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	msg, err := Compose("me@example.com", papers, at)
	if err != nil {
		t.Fatal(err)
	}

	if msg.To != "me@example.com" || msg.Subject != "paperdigest: 2 papers (Mar 05, 2024)" {
		t.Errorf("header = %q / %q", msg.To, msg.Subject)
	}

	t.Run("html", func(t *testing.T) {
		for _, want := range []string{
			"2 new papers &middot; March 05, 2024",
			"1. Attention &lt;script&gt;",
			"Ada, Bob, Cy +2 more",
			"cs.LG, cs.AI, cs.CL &middot;",
			`href="https://arxiv.org/pdf/2401.00001"`,
			"A short summary.",
		} {
			if !strings.Contains(msg.HTML, want) {
				t.Errorf("html missing %q", want)
			}
		}
		if strings.Contains(msg.HTML, "<script>") {
			t.Error("title must be escaped")
		}
		if strings.Count(msg.HTML, ">PDF<") != 1 {
			t.Error("PDF link only for papers that have one")
		}
	})

	t.Run("plain", func(t *testing.T) {
		for _, want := range []string{
			"paperdigest: 2 papers\n" + strings.Repeat("=", 50),
			"1. Attention <script>alert(1)</script>\n   https://arxiv.org/abs/2401.00001\n   A short summary.\n",
			"2. Plain\n   https://arxiv.org/abs/2401.00002\n\n",
			"Sent by paperdigest",
		} {
			if !strings.Contains(msg.Plain, want) {
				t.Errorf("plain missing %q in:\n%s", want, msg.Plain)
			}
		}
	})
}
