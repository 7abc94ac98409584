package chi

import (
	"net/http"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domdigest "github.com/kailas-cloud/paperdigest/internal/domain/digest"
	digestuc "github.com/kailas-cloud/paperdigest/internal/usecase/digest"
)

type subscriptionRequest struct {
	Keyword string `json:"keyword" validate:"required,max=100"`
}

type collectionRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type digestRequest struct {
	Target   string   `json:"target" validate:"required,email"`
	Schedule string   `json:"schedule" validate:"omitempty,oneof=daily weekly"`
	SendHour *int     `json:"send_hour" validate:"omitempty,min=0,max=23"`
	Keywords []string `json:"keywords" validate:"max=50,dive,max=100"`
}

// AddSubscription handles POST /api/subscriptions.
func (s *Server) AddSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	sub, created, err := s.svc.Subscriptions.Add(r.Context(), req.Keyword)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, subscriptionToResponse(sub))
}

// RemoveSubscription handles DELETE /api/subscriptions/{keyword}.
func (s *Server) RemoveSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Subscriptions.Remove(r.Context(), pathParam(r, "keyword")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/subscriptions.
func (s *Server) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.Subscriptions.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := subscriptionListResponse{Subscriptions: make([]subscriptionResponse, len(subs))}
	for i, sub := range subs {
		resp.Subscriptions[i] = subscriptionToResponse(sub)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateCollection handles POST /api/collections.
func (s *Server) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	col, err := s.svc.Collections.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, collectionToResponse(col))
}

// ListCollections handles GET /api/collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.svc.Collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := collectionListResponse{Collections: make([]collectionResponse, len(cols))}
	for i, c := range cols {
		resp.Collections[i] = collectionToResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCollection handles GET /api/collections/{id}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.Collections.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionDetailToResponse(detail))
}

// DeleteCollection handles DELETE /api/collections/{id}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Collections.Delete(r.Context(), pathParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBookmark handles PUT /api/collections/{id}/papers/{paperID}.
func (s *Server) AddBookmark(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Collections.AddPaper(r.Context(), pathParam(r, "id"), pathParam(r, "paperID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveBookmark handles DELETE /api/collections/{id}/papers/{paperID}.
func (s *Server) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Collections.RemovePaper(r.Context(), pathParam(r, "id"), pathParam(r, "paperID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateDigest handles POST /api/digests.
func (s *Server) CreateDigest(w http.ResponseWriter, r *http.Request) {
	if s.svc.Digests == nil {
		s.handleDomainError(w, r, domain.ErrNotImplemented)
		return
	}
	var req digestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	hour := domdigest.DefaultSendHour
	if req.SendHour != nil {
		hour = *req.SendHour
	}
	cfg, err := s.svc.Digests.Create(r.Context(), digestuc.CreateRequest{
		Target:   req.Target,
		Schedule: domdigest.Schedule(req.Schedule),
		SendHour: hour,
		Keywords: req.Keywords,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, digestToResponse(cfg))
}

// ListDigests handles GET /api/digests.
func (s *Server) ListDigests(w http.ResponseWriter, r *http.Request) {
	if s.svc.Digests == nil {
		s.handleDomainError(w, r, domain.ErrNotImplemented)
		return
	}
	cfgs, err := s.svc.Digests.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := digestListResponse{Digests: make([]digestResponse, len(cfgs))}
	for i, c := range cfgs {
		resp.Digests[i] = digestToResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteDigest handles DELETE /api/digests/{id}.
func (s *Server) DeleteDigest(w http.ResponseWriter, r *http.Request) {
	if s.svc.Digests == nil {
		s.handleDomainError(w, r, domain.ErrNotImplemented)
		return
	}
	if err := s.svc.Digests.Delete(r.Context(), pathParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendDigest handles POST /api/digests/{id}/send.
func (s *Server) SendDigest(w http.ResponseWriter, r *http.Request) {
	if s.svc.Digests == nil {
		s.handleDomainError(w, r, domain.ErrNotImplemented)
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.svc.Digests.SendNow(ctx, pathParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setSummaryHeaders(w, usage)
	status := "empty"
	if res.Sent {
		status = "sent"
	}
	writeJSON(w, http.StatusOK, digestSendResponse{Status: status, Papers: res.Papers})
}
