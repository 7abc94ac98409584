package chi

import (
	"bytes"
	"net/http"
	"strconv"

	domusage "github.com/kailas-cloud/paperdigest/internal/domain/usage"
	exportuc "github.com/kailas-cloud/paperdigest/internal/usecase/export"
)

type exportQuery struct {
	Format  string `query:"format"`
	Limit   int    `query:"limit" validate:"min=0,max=10000"`
	Keyword string `query:"keyword" validate:"max=200"`
}

type usageQuery struct {
	Period string `query:"period" validate:"omitempty,oneof=day month total"`
}

// ExportPapers handles GET /api/export.
func (s *Server) ExportPapers(w http.ResponseWriter, r *http.Request) {
	var q exportQuery
	if err := bindQueries(r, map[string]any{
		"format": &q.Format, "limit": &q.Limit, "keyword": &q.Keyword,
	}); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := validateStruct(q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	format, err := exportuc.ParseFormat(q.Format)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	// Buffer the body so export failures still return a JSON error.
	var buf bytes.Buffer
	n, err := s.svc.Export.Export(r.Context(), &buf, exportuc.Request{
		Format:  format,
		Limit:   q.Limit,
		Keyword: q.Keyword,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.Header().Set("X-Export-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var q usageQuery
	if err := bindQuery(r, "period", &q.Period); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := validateStruct(q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	report := s.svc.Usage.GetReport(r.Context(), domusage.ParsePeriod(q.Period))
	writeJSON(w, http.StatusOK, usageToResponse(report))
}

// ListProviders handles GET /api/providers.
func (s *Server) ListProviders(w http.ResponseWriter, r *http.Request) {
	var statuses []providerResponse
	if s.svc.Providers != nil {
		for _, st := range s.svc.Providers.Providers() {
			statuses = append(statuses, providerToResponse(st))
		}
	}
	if statuses == nil {
		statuses = []providerResponse{}
	}
	writeJSON(w, http.StatusOK, providerListResponse{Providers: statuses})
}
