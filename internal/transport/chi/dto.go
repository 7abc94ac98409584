package chi

import (
	"time"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domcol "github.com/kailas-cloud/paperdigest/internal/domain/collection"
	domdigest "github.com/kailas-cloud/paperdigest/internal/domain/digest"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/domain/provider"
	domsub "github.com/kailas-cloud/paperdigest/internal/domain/subscription"
	domusage "github.com/kailas-cloud/paperdigest/internal/domain/usage"
	collectionuc "github.com/kailas-cloud/paperdigest/internal/usecase/collection"
	similaruc "github.com/kailas-cloud/paperdigest/internal/usecase/similar"
)

type paperResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Abstract        string     `json:"abstract"`
	Authors         []string   `json:"authors"`
	Categories      []string   `json:"categories"`
	PrimaryCategory string     `json:"primary_category,omitempty"`
	URL             string     `json:"url,omitempty"`
	PDFURL          string     `json:"pdf_url,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	Summary         *string    `json:"summary,omitempty"`
	MatchedKeywords []string   `json:"matched_keywords,omitempty"`
	Score           int        `json:"score"`
}

type paperListResponse struct {
	Papers []paperResponse `json:"papers"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type similarItem struct {
	Paper paperResponse `json:"paper"`
	Score float64       `json:"score"`
}

type similarResponse struct {
	PaperID string        `json:"paper_id"`
	Results []similarItem `json:"results"`
}

type voteResponse struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
}

type fetchResponse struct {
	Status  string `json:"status"`
	Fetched int    `json:"fetched"`
	Matched int    `json:"matched"`
	New     int    `json:"new"`
}

type searchResponse struct {
	Query  string          `json:"query"`
	Papers []paperResponse `json:"papers"`
}

type subscriptionResponse struct {
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}

type subscriptionListResponse struct {
	Subscriptions []subscriptionResponse `json:"subscriptions"`
}

type bookmarkResponse struct {
	PaperID string    `json:"paper_id"`
	AddedAt time.Time `json:"added_at"`
}

type collectionResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	PaperCount  int                `json:"paper_count"`
	Bookmarks   []bookmarkResponse `json:"bookmarks,omitempty"`
	Papers      []paperResponse    `json:"papers,omitempty"`
}

type collectionListResponse struct {
	Collections []collectionResponse `json:"collections"`
}

type digestResponse struct {
	ID       string     `json:"id"`
	Target   string     `json:"target"`
	Schedule string     `json:"schedule"`
	SendHour int        `json:"send_hour"`
	Keywords []string   `json:"keywords"`
	Enabled  bool       `json:"enabled"`
	LastSent *time.Time `json:"last_sent,omitempty"`
}

type digestListResponse struct {
	Digests []digestResponse `json:"digests"`
}

type digestSendResponse struct {
	Status string `json:"status"`
	Papers int    `json:"papers"`
}

type statsResponse struct {
	TotalPapers   int        `json:"total_papers"`
	Subscriptions int        `json:"subscriptions"`
	TotalVotes    int        `json:"total_votes"`
	Collections   int        `json:"collections"`
	LastFetch     *time.Time `json:"last_fetch,omitempty"`
}

type budgetStatus struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensUsed      int64      `json:"tokens_used"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

type usageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	Tokens        int64        `json:"tokens"`
	Utilization   float64      `json:"utilization_pct"`
	Budget        budgetStatus `json:"budget"`
}

type providerResponse struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"display_name"`
	Model        string   `json:"model"`
	DefaultModel string   `json:"default_model"`
	Models       []string `json:"models"`
	APIKey       string   `json:"api_key"`
	Configured   bool     `json:"configured"`
	Active       bool     `json:"active"`
}

type providerListResponse struct {
	Providers []providerResponse `json:"providers"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func millisPtr(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func paperToResponse(p dompaper.Paper) paperResponse {
	resp := paperResponse{
		ID:              p.ID(),
		Title:           p.Title(),
		Abstract:        p.Abstract(),
		Authors:         nonNil(p.Authors()),
		Categories:      nonNil(p.Categories()),
		PrimaryCategory: p.PrimaryCategory(),
		URL:             p.URL(),
		PDFURL:          p.PDFURL(),
		PublishedAt:     timePtr(p.PublishedAt()),
		UpdatedAt:       timePtr(p.UpdatedAt()),
		MatchedKeywords: p.MatchedKeywords(),
		Score:           p.Score(),
	}
	if s, ok := p.Summary(); ok {
		resp.Summary = &s
	}
	return resp
}

func papersToResponse(papers []dompaper.Paper) []paperResponse {
	out := make([]paperResponse, len(papers))
	for i, p := range papers {
		out[i] = paperToResponse(p)
	}
	return out
}

func similarToResponse(id string, matches []similaruc.Match) similarResponse {
	items := make([]similarItem, len(matches))
	for i, m := range matches {
		items[i] = similarItem{Paper: paperToResponse(m.Paper), Score: m.Score}
	}
	return similarResponse{PaperID: id, Results: items}
}

func subscriptionToResponse(s domsub.Subscription) subscriptionResponse {
	return subscriptionResponse{Keyword: s.Keyword(), CreatedAt: s.CreatedAt().UTC()}
}

func collectionToResponse(c domcol.Collection) collectionResponse {
	return collectionResponse{
		ID:          c.ID(),
		Name:        c.Name(),
		Description: c.Description(),
		CreatedAt:   time.UnixMilli(c.CreatedAt()).UTC(),
		PaperCount:  len(c.Bookmarks()),
	}
}

func collectionDetailToResponse(d collectionuc.Detail) collectionResponse {
	resp := collectionToResponse(d.Collection)
	resp.Bookmarks = make([]bookmarkResponse, len(d.Collection.Bookmarks()))
	for i, b := range d.Collection.Bookmarks() {
		resp.Bookmarks[i] = bookmarkResponse{PaperID: b.PaperID, AddedAt: b.AddedAt.UTC()}
	}
	resp.Papers = papersToResponse(d.Papers)
	return resp
}

func digestToResponse(c domdigest.Config) digestResponse {
	return digestResponse{
		ID:       c.ID(),
		Target:   c.Target(),
		Schedule: string(c.Schedule()),
		SendHour: c.SendHour(),
		Keywords: nonNil(c.Keywords()),
		Enabled:  c.Enabled(),
		LastSent: timePtr(c.LastSent()),
	}
}

func statsToResponse(st domain.Stats) statsResponse {
	return statsResponse{
		TotalPapers:   st.TotalPapers,
		Subscriptions: st.Subscriptions,
		TotalVotes:    st.TotalVotes,
		Collections:   st.Collections,
		LastFetch:     timePtr(st.LastFetch),
	}
}

func usageToResponse(r domusage.Report) usageResponse {
	b := r.Budget()
	return usageResponse{
		Period:        string(r.Period()),
		Provider:      r.Provider(),
		PeriodStartAt: millisPtr(r.PeriodStart()),
		PeriodEndAt:   millisPtr(r.PeriodEnd()),
		Tokens:        r.Metrics().Tokens(),
		Utilization:   r.Metrics().Utilization(),
		Budget: budgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensUsed:      b.TokensUsed(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        millisPtr(b.ResetsAt()),
		},
	}
}

func providerToResponse(s provider.Status) providerResponse {
	return providerResponse{
		Name:         s.Name,
		DisplayName:  s.DisplayName,
		Model:        s.Model,
		DefaultModel: s.DefaultModel,
		Models:       nonNil(s.Models),
		APIKey:       s.MaskedKey,
		Configured:   s.Configured,
		Active:       s.Active,
	}
}
