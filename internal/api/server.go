package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dgallion1/bracecheck/internal/config"
	"github.com/dgallion1/bracecheck/internal/pipeline"
	"github.com/dgallion1/bracecheck/internal/report"
)

// Server is the HTTP API server for bracecheck.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	checker      *pipeline.Checker
	cache        *expirable.LRU[string, report.Document]
	limiter      *rateLimiter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, checker *pipeline.Checker, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		checker:      checker,
		log:          log,
		cfg:          cfg,
	}
	if cfg.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, report.Document](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	if cfg.RateLimitPerMin > 0 {
		s.limiter = newRateLimiter(cfg.RateLimitPerMin)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		if s.limiter != nil {
			r.Use(RateLimit(s.limiter, s.log))
		}

		r.Post("/api/check", s.handleCheck)
		r.Post("/api/check/batch", s.handleBatchCheck)
		r.Get("/api/check/{jobID}/status", s.handleCheckStatus)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
