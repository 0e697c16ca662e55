// Package server exposes the curation backend as a JSON API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"curator/internal/config"
	"curator/internal/fetch"
	"curator/internal/logger"
	"curator/internal/profiles"
	"curator/internal/query"
	"curator/internal/store"
)

// Fetcher retrieves title and content for a submitted URL. It is the narrow
// seam to the ingestion pipeline; a nil Fetcher disables remote fetching and
// articles are stored with whatever fields the caller supplied.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Result, error)
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      *store.Store
	engine     *query.Engine
	profiles   *profiles.Service
	fetcher    Fetcher
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance over the given store.
func New(st *store.Store, fetcher Fetcher, cfg config.Server) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		store:    st,
		engine:   query.New(st, 0),
		profiles: profiles.NewService(st),
		fetcher:  fetcher,
		config:   cfg,
		log:      logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.CORS.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", s.handleListArticles)
			r.Post("/", s.handleCreateArticle)
			r.Get("/{id}", s.handleGetArticle)
			r.Get("/{id}/collections", s.handleArticleCollections)
		})

		r.Route("/briefs", func(r chi.Router) {
			r.Get("/", s.handleListBriefs)
			r.Post("/", s.handleCreateBrief)
			r.Get("/{id}", s.handleGetBrief)
		})

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.handleListCollections)
			r.Post("/", s.handleCreateCollection)
			r.Get("/{id}", s.handleGetCollection)
			r.Get("/{id}/articles", s.handleCollectionArticles)
			r.Post("/{id}/articles", s.handleAddToCollection)
			r.Delete("/{id}/articles/{articleID}", s.handleRemoveFromCollection)
		})

		r.Get("/profiles", s.handleListProfiles)
	})
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins listening for requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
