package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gkobilansky/abreport/internal/actions"
	"github.com/gkobilansky/abreport/internal/metrics"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server. Zero values pick working defaults: no auth,
// a no-op logger, the wall clock, and the stock actions.
type Options struct {
	Port         int
	RequireToken bool
	TokenFile    string

	Logger  *zap.Logger
	Metrics *metrics.Collector

	Now   func() time.Time
	NewID func() string

	// Duplicator defaults to copying within the provider when it is a
	// writable store.Store; otherwise duplicating answers 501.
	Duplicator actions.Duplicator
	Downloader actions.Downloader
	Sharer     actions.Sharer
}

type Server struct {
	provider store.Provider
	creator  store.Store

	port         int
	requireToken bool
	token        string
	tokenFile    string

	logger  *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
	newID   func() string

	duplicator actions.Duplicator
	downloader actions.Downloader
	sharer     actions.Sharer

	router    *http.ServeMux
	startTime time.Time
}

// New wires the dashboard over p. Creating and duplicating tests require p
// to also be a store.Store.
func New(p store.Provider, opts Options) *Server {
	srv := &Server{
		provider:     p,
		port:         opts.Port,
		requireToken: opts.RequireToken,
		token:        generateToken(),
		tokenFile:    opts.TokenFile,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		now:          opts.Now,
		newID:        opts.NewID,
		duplicator:   opts.Duplicator,
		downloader:   opts.Downloader,
		sharer:       opts.Sharer,
		router:       http.NewServeMux(),
		startTime:    time.Now(),
	}

	if st, ok := p.(store.Store); ok {
		srv.creator = st
	}
	if srv.logger == nil {
		srv.logger = zap.NewNop()
	}
	if srv.now == nil {
		srv.now = time.Now
	}
	if srv.newID == nil {
		srv.newID = uuid.NewString
	}
	if srv.duplicator == nil && srv.creator != nil {
		d := actions.NewStoreDuplicator(srv.creator)
		d.Now = srv.now
		d.NewID = srv.newID
		srv.duplicator = d
	}
	if srv.downloader == nil {
		srv.downloader = &actions.ExportDownloader{Now: srv.now}
	}
	if srv.sharer == nil {
		srv.sharer = actions.Unshared{}
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.handle("GET /health", s.handleHealth, false)
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics.Handler())
	}

	// Dashboard endpoints (protected when a token is required)
	s.handle("GET /{$}", s.handleDashboard, true)
	s.handle("GET /new", s.handleNewForm, true)
	s.handle("POST /new", s.handleNewSubmit, true)
	s.handle("GET /report/{id}", s.handleReport, true)
	s.handle("GET /report/{id}/download", s.handleDownload, true)
	s.handle("POST /report/{id}/share", s.handleShare, true)
	s.handle("POST /tests/{id}/duplicate", s.handleDuplicate, true)
	s.handle("GET /api/tests", s.handleTestsAPI, true)
	s.handle("GET /api/tests/{id}", s.handleTestAPI, true)
}

// handle registers h under pattern, wrapped with request logging, metrics
// and, for protected routes, the token check.
func (s *Server) handle(pattern string, h http.HandlerFunc, protected bool) {
	var handler http.Handler = h
	if protected && s.requireToken {
		handler = s.authMiddleware(handler)
	}
	s.router.Handle(pattern, s.instrument(pattern, handler))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.requireToken && s.tokenFile != "" {
		if err := os.WriteFile(s.tokenFile, []byte(s.token), 0600); err != nil {
			s.logger.Warn("failed to write token file", zap.String("path", s.tokenFile), zap.Error(err))
		}
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", zap.Int("port", s.port), zap.Bool("require_token", s.requireToken))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// URL is the address a browser should open, carrying the token when one is
// required.
func (s *Server) URL() string {
	u := fmt.Sprintf("http://localhost:%d/", s.port)
	if s.requireToken {
		u += "?token=" + s.token
	}
	return u
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a simple token if crypto/rand fails
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}
