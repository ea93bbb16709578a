// Package server provides the HTTP API of the assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/knowledge"
	"github.com/hoteleiro/concierge/internal/router"
	"github.com/hoteleiro/concierge/internal/search"
	"github.com/hoteleiro/concierge/internal/storage"
)

// Server is the HTTP server for the assistant API.
type Server struct {
	router    *router.Router
	engine    *search.Engine
	loader    *knowledge.Loader
	session   *knowledge.Session
	generator router.Generator
	storage   storage.Store
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. generator may be
// nil when no API credential was supplied.
func NewServer(
	rt *router.Router,
	engine *search.Engine,
	loader *knowledge.Loader,
	session *knowledge.Session,
	generator router.Generator,
	store storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		router:    rt,
		engine:    engine,
		loader:    loader,
		session:   session,
		generator: generator,
		storage:   store,
		config:    cfg,
		logger:    logger,
	}
}

// Routes builds the chi handler. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/queries", s.handleQueries)
	r.Post("/api/v1/reload", s.handleReload)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
