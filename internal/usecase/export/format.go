package export

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/paperdigest/internal/domain"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	BibTeX   Format = "bibtex"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat validates a user-supplied format name. Empty means bibtex.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return BibTeX, nil
	case BibTeX, Markdown, CSV, JSON:
		return f, nil
	case "md":
		return Markdown, nil
	case "bib":
		return BibTeX, nil
	default:
		return "", domain.NewValidationError("format", fmt.Sprintf("unsupported format %q", s))
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case Markdown:
		return "text/markdown; charset=utf-8"
	case CSV:
		return "text/csv; charset=utf-8"
	case JSON:
		return "application/json"
	default:
		return "application/x-bibtex; charset=utf-8"
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return "md"
	case CSV:
		return "csv"
	case JSON:
		return "json"
	default:
		return "bib"
	}
}

// Filename returns the download name for an export.
func (f Format) Filename() string {
	return "papers." + f.Extension()
}
