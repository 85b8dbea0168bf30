// Package api provides the HTTP API server and handlers for the Bookshelf application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookshelfapp/bookshelf-server/internal/browse"
	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/ledger"
	"github.com/bookshelfapp/bookshelf-server/internal/ratelimit"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
)

// Services groups the components the API server exposes.
type Services struct {
	Catalog  *catalog.Store
	Ledger   *ledger.Ledger
	Sessions *browse.Registry
	Search   *search.Index // optional; /search is not registered without it
	Events   *sse.Manager  // optional; /events is not registered without it
}

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins   []string
	BorrowLimiter *ratelimit.KeyedRateLimiter // nil disables borrow rate limiting
	// TrustProxyHeaders replaces the remote address with X-Forwarded-For / X-Real-IP.
	// Leave off unless a reverse proxy sets those headers.
	TrustProxyHeaders bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	borrowLimiter *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		services:      services,
		borrowLimiter: opts.BorrowLimiter,
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Bookshelf API", "1.0.0")
	// Bodies are enveloped, so the $schema link would point at the wrong shape.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method+" is not allowed on "+r.URL.Path, s.logger)
	})
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerSessionRoutes()

	if s.services.Search != nil {
		s.registerSearchRoutes()
	}
	if s.services.Events != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(s.services.Events, s.logger).ServeHTTP)
	}
}
