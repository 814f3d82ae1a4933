// Package server exposes the search engine and agentic pipeline over
// HTTP: classic search, streaming and sync shortlists, resume lookup,
// and health.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talentsift/talentsift/internal/agent"
	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/store"
)

// shutdownGracePeriod bounds how long in-flight requests may run after
// the server is told to stop.
const shutdownGracePeriod = 10 * time.Second

// Store is the persistence surface the API reads and mutates.
// *store.SQLiteStore satisfies it.
type Store interface {
	GetResume(ctx context.Context, resumeID string) (*store.Resume, error)
	SkillsForResume(ctx context.Context, resumeID string) ([]store.SkillEntry, error)
	DeleteResume(ctx context.Context, resumeID string) error
	DistinctSkills(ctx context.Context, limit int) ([]store.SkillCount, error)
	CountResumes(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// Shortlister runs an agentic shortlist query and streams its events.
// *agent.Pipeline satisfies it.
type Shortlister interface {
	Run(ctx context.Context, query string) <-chan agent.Event
}

// ChunkIndexer removes a resume's chunks from an auxiliary lexical
// index, keeping it in step with the store on deletes.
// *store.BleveChunkIndex satisfies it.
type ChunkIndexer interface {
	DeleteResume(ctx context.Context, resumeID string) error
}

// Components names the optional backends, for health reporting.
type Components struct {
	Embedder string
	Reranker string
}

// Server is the HTTP API server.
type Server struct {
	store      Store
	engine     *search.Engine
	pipeline   Shortlister
	indexer    ChunkIndexer
	components Components
	logger     *slog.Logger
	addr       string
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithIndexer attaches the lexical chunk index so resume deletes clear
// it alongside the store.
func WithIndexer(idx ChunkIndexer) Option {
	return func(s *Server) { s.indexer = idx }
}

// New creates an API server over an existing engine and pipeline.
func New(cfg config.ServerConfig, st Store, engine *search.Engine, pipeline Shortlister, components Components, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	s := &Server{
		store:      st,
		engine:     engine,
		pipeline:   pipeline,
		components: components,
		logger:     logger,
		addr:       addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/search", s.handleSearch)
	r.Post("/shortlist", s.handleShortlist)
	r.Post("/shortlist/sync", s.handleShortlistSync)
	r.Get("/resume/{id}", s.handleResumeGet)
	r.Delete("/resume/{id}", s.handleResumeDelete)
	r.Get("/skills", s.handleSkills)
	r.Get("/healthz", s.handleHealthz)
	return r
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: shortlist SSE streams stay open for the
		// duration of a pipeline run.
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// requestLogger logs one line per request with method, path, status,
// and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
