package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"diet-planner/internal/app"
	"diet-planner/internal/logger"
)

// Options configures the HTTP surface.
type Options struct {
	// RateLimitPerMinute caps plan requests per client IP. Zero disables the limit.
	RateLimitPerMinute int
	DatabasePath       string
	AllowedOrigins     []string
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Only
	// enable it behind a proxy that sets those headers.
	TrustProxy bool
	// Webhook, when set, is mounted at /telegram/webhook.
	Webhook http.Handler
}

// Server exposes the planner over HTTP.
type Server struct {
	app     *app.App
	opts    Options
	limiter *RateLimiter
	router  chi.Router
}

// New builds the router.
func New(a *app.App, opts Options) *Server {
	s := &Server{app: a, opts: opts}
	if opts.RateLimitPerMinute > 0 {
		s.limiter = NewRateLimiter(opts.RateLimitPerMinute, time.Minute)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/foods", s.handleListFoods)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimit(s.limiter))
		}
		r.Post("/api/plans", s.handleCreatePlan)
		r.Post("/api/plans/export.csv", s.handleExportCSV)
		r.Post("/mcp", s.handleMCP)
	})

	if s.opts.Webhook != nil {
		r.Method(http.MethodPost, "/telegram/webhook", s.opts.Webhook)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
