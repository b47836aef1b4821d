// Package server provides the HTTP API of the careers board.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/careers-board/internal/db"
	"github.com/jonathan/careers-board/internal/events"
	"github.com/jonathan/careers-board/internal/jobs"
	"github.com/jonathan/careers-board/internal/metrics"
	"github.com/jonathan/careers-board/internal/pipeline"
	"github.com/jonathan/careers-board/internal/server/ratelimit"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// CandidateStore lists stored candidates.
type CandidateStore interface {
	ListCandidates(ctx context.Context) ([]db.Candidate, error)
	ListCandidatesForJob(ctx context.Context, jobID int64) ([]db.Candidate, error)
}

// BlobReader opens stored resumes.
type BlobReader interface {
	Open(key string) (*os.File, fs.FileInfo, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	KeepAlive       time.Duration
	// StaticDir, when set, is served at / with index.html as the fallback page.
	StaticDir string
}

// Deps are the components the server routes requests to.
type Deps struct {
	Jobs       *jobs.Registry
	Pipeline   *pipeline.Pipeline
	Candidates CandidateStore
	Blobs      BlobReader
	Hub        *events.Hub
	Dispatcher *events.Dispatcher
	DB         Pinger

	Limiter        *ratelimit.Limiter
	Metrics        metrics.Sink
	MetricsHandler http.Handler
	Logger         logrus.FieldLogger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	jobs       *jobs.Registry
	pipeline   *pipeline.Pipeline
	candidates CandidateStore
	blobs      BlobReader
	hub        *events.Hub
	dispatcher *events.Dispatcher
	db         Pinger
	limiter    *ratelimit.Limiter
	metrics    metrics.Sink
	log        logrus.FieldLogger

	maxUpload       int64
	shutdownTimeout time.Duration
	keepAlive       time.Duration
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		jobs:            deps.Jobs,
		pipeline:        deps.Pipeline,
		candidates:      deps.Candidates,
		blobs:           deps.Blobs,
		hub:             deps.Hub,
		dispatcher:      deps.Dispatcher,
		db:              deps.DB,
		limiter:         deps.Limiter,
		metrics:         deps.Metrics,
		log:             deps.Logger,
		maxUpload:       cfg.MaxUploadBytes,
		shutdownTimeout: cfg.ShutdownTimeout,
		keepAlive:       cfg.KeepAlive,
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoopSink()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(nil)
	}
	if s.hub == nil {
		s.hub = events.NewHub(events.DefaultBuffer, s.metrics, s.log)
	}
	if s.dispatcher == nil {
		s.dispatcher = events.NewDispatcher(s.log, s.hub)
	}
	if s.keepAlive <= 0 {
		s.keepAlive = DefaultKeepAlive
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 30 * time.Second
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("POST /api/apply", s.handleApply)
	mux.HandleFunc("GET /api/candidates", s.handleListCandidates)
	mux.HandleFunc("GET /api/candidates/{jobId}", s.handleListCandidatesForJob)
	mux.HandleFunc("GET /uploads/{filename}", s.handleUpload)

	// Real-time channel
	mux.HandleFunc("GET /api/events", s.handleEvents)

	mux.HandleFunc("GET /health", s.handleHealth)
	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}
	if cfg.StaticDir != "" {
		mux.Handle("GET /", spaHandler(cfg.StaticDir))
	}

	s.handler = s.withRecover(s.withCORS(s.withLogging(s.withRateLimit(mux))))
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // Resume uploads
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Event streams never go idle on their own
	s.httpServer.RegisterOnShutdown(s.hub.Close)

	return s
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.limiter.Stop()
	s.log.Info("server stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.log.WithError(err).Warn("health check failed")
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "database unreachable",
			})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": s.hub.Subscribers(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and {"error": ...} body. Server-side
// failures are logged with their cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID(r.Context()),
			"path":       r.URL.Path,
		}).Error("request failed")
	}
	s.errorResponse(w, status, errorMessage(err))
}

// spaHandler serves files from dir and falls back to index.html for unknown paths.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err != nil || (info.IsDir() && r.URL.Path != "/") {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
