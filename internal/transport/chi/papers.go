package chi

import (
	"net/http"
	"net/url"

	chirouter "github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
	fetchuc "github.com/kailas-cloud/paperdigest/internal/usecase/fetch"
	paperuc "github.com/kailas-cloud/paperdigest/internal/usecase/paper"
)

// Similar defaults.
const (
	DefaultSimilarK = 5
	MaxSimilarK     = 50
)

type listPapersQuery struct {
	Limit   int    `query:"limit" validate:"min=1,max=200"`
	Offset  int    `query:"offset" validate:"min=0"`
	Keyword string `query:"keyword" validate:"max=200"`
	Sort    string `query:"sort" validate:"omitempty,oneof=date votes title"`
}

type similarQuery struct {
	K int `query:"k" validate:"min=1,max=50"`
}

type voteQuery struct {
	Vote string `query:"vote" validate:"required,oneof=up down"`
}

type fetchQuery struct {
	Summarize   bool
	UseKeywords bool
}

type searchQuery struct {
	Q         string `query:"q" validate:"required,min=2,max=300"`
	Count     int    `query:"count" validate:"min=1,max=25"`
	Summarize bool   `query:"summarize"`
}

// pathParam returns a decoded URL parameter. Old-style arXiv ids carry a slash that clients send as %2F.
func pathParam(r *http.Request, name string) string {
	raw := chirouter.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// ListPapers handles GET /api/papers.
func (s *Server) ListPapers(w http.ResponseWriter, r *http.Request) {
	q := listPapersQuery{Limit: paperuc.DefaultLimit}
	if err := bindQueries(r, map[string]any{
		"limit": &q.Limit, "offset": &q.Offset, "keyword": &q.Keyword, "sort": &q.Sort,
	}); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := validateStruct(q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.svc.Papers.List(r.Context(), dompaper.ListQuery{
		Limit:   q.Limit,
		Offset:  q.Offset,
		Keyword: q.Keyword,
		Sort:    q.Sort,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paperListResponse{
		Papers: papersToResponse(page.Papers),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// GetPaper handles GET /api/papers/{id}.
func (s *Server) GetPaper(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Papers.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paperToResponse(p))
}

// SimilarPapers handles GET /api/papers/{id}/similar.
func (s *Server) SimilarPapers(w http.ResponseWriter, r *http.Request) {
	q := similarQuery{K: DefaultSimilarK}
	if err := bindQuery(r, "k", &q.K); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := validateStruct(q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	id := pathParam(r, "id")
	matches, err := s.svc.Similar.Similar(r.Context(), id, q.K)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, similarToResponse(id, matches))
}

// VotePaper handles POST /api/papers/{id}/vote.
func (s *Server) VotePaper(w http.ResponseWriter, r *http.Request) {
	var q voteQuery
	if err := bindQuery(r, "vote", &q.Vote); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := validateStruct(q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	score, err := s.svc.Papers.Vote(r.Context(), pathParam(r, "id"), q.Vote)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Status: "ok", Score: score})
}

// RunFetch handles POST /api/fetch.
func (s *Server) RunFetch(w http.ResponseWriter, r *http.Request) {
	if s.svc.Fetch == nil {
		s.handleDomainError(w, r, domain.ErrNotImplemented)
		return
	}
	q := fetchQuery{Summarize: true, UseKeywords: true}
	if err := bindQueries(r, map[string]any{
		"summarize": &q.Summarize, "use_keywords": &q.UseKeywords,
	}); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.svc.Fetch.Run(ctx, fetchuc.Options{
		Summarize:   q.Summarize,
		UseKeywords: q.UseKeywords,
		Trigger:     fetchuc.TriggerAPI,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setSummaryHeaders(w, usage)
	writeJSON(w, http.StatusOK, fetchResponse{
		Status:  "ok",
		Fetched: res.Fetched,
		Matched: res.Matched,
		New:     res.New,
	})
}

// SearchPapers handles GET /api/search.
func (s *Server) SearchPapers(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{Count: paperuc.DefaultSearchCount}
	if err := bindQueries(r, map[string]any{
		"q": &q.Q, "count": &q.Count, "summarize": &q.Summarize,
	}); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := validateStruct(q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	papers, err := s.svc.Papers.Search(ctx, q.Q, q.Count, q.Summarize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setSummaryHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{Query: q.Q, Papers: papersToResponse(papers)})
}

// GetStats handles GET /api/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Papers.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToResponse(st))
}
