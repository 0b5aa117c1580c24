// Package httpapi exposes the render pipeline over HTTP.
//
// The bridge serves three groups of endpoints:
//
//   - POST /render and the /render/{id} poll endpoint for render passes
//   - /designs CRUD backed by a design store
//   - GET /healthz for deployment probes
//
// Handlers are thin: they decode the request, call into pkg/pipeline or the
// design store, and map error codes to HTTP statuses. All heavy lifting
// stays in the library packages so the CLI and the bridge share behavior.
package httpapi

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qweave/metalize/pkg/design/store"
	"github.com/qweave/metalize/pkg/observability"
	"github.com/qweave/metalize/pkg/pipeline"
	"github.com/qweave/metalize/pkg/session"
)

// Config wires the server's collaborators.
type Config struct {
	Runner   *pipeline.Runner
	Designs  store.Store   // optional, enables the /designs endpoints
	Sessions session.Store // optional, defaults to an in-memory store
	Logger   *log.Logger
}

// Server handles HTTP requests for the render bridge.
type Server struct {
	runner   *pipeline.Runner
	designs  store.Store
	sessions session.Store
	logger   *log.Logger
}

// NewServer creates a server from the given config.
func NewServer(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		runner:   cfg.Runner,
		designs:  cfg.Designs,
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Post("/render", s.handleRender)
	r.Post("/render/async", s.handleRenderAsync)
	r.Get("/render/{id}", s.handleRenderStatus)

	if s.designs != nil {
		r.Route("/designs", func(r chi.Router) {
			r.Get("/", s.handleListDesigns)
			r.Get("/{name}", s.handleGetDesign)
			r.Put("/{name}", s.handlePutDesign)
			r.Delete("/{name}", s.handleDeleteDesign)
		})
	}

	return r
}

// observe logs each request and feeds the observability hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", duration)
	})
}
