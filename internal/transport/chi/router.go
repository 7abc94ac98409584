package chi

import (
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/metrics"
)

// RouterConfig holds the middleware settings of the API router.
type RouterConfig struct {
	APIKeys           []string
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Logger            *zap.Logger
}

// NewRouter mounts the API handlers behind the middleware stack.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chirouter.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(rateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chirouter.Router) {
		r.Get("/papers", s.ListPapers)
		r.Route("/papers/{id}", func(r chirouter.Router) {
			r.Get("/", s.GetPaper)
			r.Get("/similar", s.SimilarPapers)
			r.Post("/vote", s.VotePaper)
		})

		r.Post("/fetch", s.RunFetch)
		r.Get("/search", s.SearchPapers)

		r.Get("/subscriptions", s.ListSubscriptions)
		r.Post("/subscriptions", s.AddSubscription)
		r.Delete("/subscriptions/{keyword}", s.RemoveSubscription)

		r.Get("/collections", s.ListCollections)
		r.Post("/collections", s.CreateCollection)
		r.Route("/collections/{id}", func(r chirouter.Router) {
			r.Get("/", s.GetCollection)
			r.Delete("/", s.DeleteCollection)
			r.Put("/papers/{paperID}", s.AddBookmark)
			r.Delete("/papers/{paperID}", s.RemoveBookmark)
		})

		r.Get("/digests", s.ListDigests)
		r.Post("/digests", s.CreateDigest)
		r.Delete("/digests/{id}", s.DeleteDigest)
		r.Post("/digests/{id}/send", s.SendDigest)

		r.Get("/export", s.ExportPapers)
		r.Get("/stats", s.GetStats)
		r.Get("/usage", s.GetUsage)
		r.Get("/providers", s.ListProviders)
	})

	return r
}
