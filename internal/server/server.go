package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"headliner/internal/config"
	"headliner/internal/core"
	"headliner/internal/logger"
	"headliner/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pipeline is the batch entry point the server exposes over HTTP.
type Pipeline interface {
	Run(ctx context.Context, urls []string, model string, storeResults bool) (core.BatchResult, error)
}

// ArticleReader serves the read-side endpoints backed by the graph
// store.
type ArticleReader interface {
	Connect(ctx context.Context) error
	Query(ctx context.Context, filter store.QueryFilter) ([]store.StoredArticle, error)
	ListSources(ctx context.Context) ([]store.SourceCount, error)
	Statistics(ctx context.Context) (store.Statistics, error)
}

// Server is the HTTP API over the summarization pipeline and the
// article store.
type Server struct {
	router       *chi.Mux
	httpServer   *http.Server
	pipeline     Pipeline
	articles     ArticleReader
	config       config.Config
	defaultModel string
	log          *slog.Logger
}

// New creates a new HTTP server instance.
func New(pipeline Pipeline, articles ArticleReader, cfg config.Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		pipeline:     pipeline,
		articles:     articles,
		config:       cfg,
		defaultModel: cfg.LLM.DefaultModel,
		log:          logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	if s.config.Server.CORSEnabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

// setupRoutes configures routes for the server.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/summarize", s.handleSummarize)
		r.Get("/articles", s.handleArticles)
		r.Get("/sources", s.handleSources)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/models", s.handleModels)
	})
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
