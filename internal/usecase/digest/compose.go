package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/usecase/export"
)

const (
	maxAuthors    = 3
	maxCategories = 3
)

type entry struct {
	N          int
	Title      string
	URL        string
	PDFURL     string
	Authors    string
	Categories string
	Summary    string
}

type view struct {
	Count   int
	Date    string
	Entries []entry
}

var htmlTmpl = template.Must(template.New("digest").Parse(`<html><body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;max-width:700px;margin:0 auto;padding:20px;">
<div style="text-align:center;margin-bottom:24px;">
<h1 style="font-size:22px;color:#1a1a1a;">paperdigest</h1>
<p style="color:#666;font-size:13px;">{{.Count}} new papers &middot; {{.Date}}</p>
</div>
<table style="width:100%;border-collapse:collapse;">
{{- range .Entries}}
<tr style="border-bottom:1px solid #eee;"><td style="padding:16px 0;">
<div style="font-size:15px;font-weight:600;margin-bottom:4px;"><a href="{{.URL}}" style="color:#1a73e8;text-decoration:none;">{{.N}}. {{.Title}}</a></div>
<div style="font-size:12px;color:#666;margin-bottom:6px;">{{.Authors}}</div>
{{- if .Summary}}
<div style="font-size:13px;color:#333;margin-bottom:6px;">{{.Summary}}</div>
{{- end}}
<div style="font-size:11px;color:#888;">{{.Categories}}{{if .PDFURL}} &middot; <a href="{{.PDFURL}}" style="color:#e67700;">PDF</a>{{end}}</div>
</td></tr>
{{- end}}
</table>
<div style="text-align:center;margin-top:24px;padding-top:16px;border-top:1px solid #eee;">
<p style="font-size:11px;color:#aaa;">Sent by paperdigest</p>
</div>
</body></html>
`))

// Compose renders the digest e-mail for papers. now is used for the subject and header date.
func Compose(to string, papers []paper.Paper, now time.Time) (domain.Email, error) {
	v := view{Count: len(papers), Date: now.UTC().Format("January 02, 2006")}
	for i, p := range papers {
		summary, _ := p.Summary()
		v.Entries = append(v.Entries, entry{
			N:          i + 1,
			Title:      p.Title(),
			URL:        p.URL(),
			PDFURL:     p.PDFURL(),
			Authors:    export.JoinLimited(p.Authors(), maxAuthors),
			Categories: strings.Join(p.Categories()[:min(len(p.Categories()), maxCategories)], ", "),
			Summary:    summary,
		})
	}

	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, v); err != nil {
		return domain.Email{}, fmt.Errorf("render digest html: %w", err)
	}

	return domain.Email{
		To:      to,
		Subject: fmt.Sprintf("paperdigest: %d papers (%s)", len(papers), now.UTC().Format("Jan 02, 2006")),
		Plain:   plainText(v),
		HTML:    html.String(),
	}, nil
}

func plainText(v view) string {
	var b strings.Builder
	fmt.Fprintf(&b, "paperdigest: %d papers\n%s\n\n", v.Count, strings.Repeat("=", 50))
	for _, e := range v.Entries {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", e.N, e.Title, e.URL)
		if e.Summary != "" {
			fmt.Fprintf(&b, "   %s\n", e.Summary)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\nSent by paperdigest\n")
	return b.String()
}
