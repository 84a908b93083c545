// Package web implements the JSON API server for jobtrack
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/jobtrack/app/enums"
	"github.com/umputun/jobtrack/app/job"
)

// Tracker is the synchronization controller the server works on
type Tracker interface {
	Refresh(ctx context.Context) error
	Save(ctx context.Context, draft job.Job, target *job.Job) error
	Delete(ctx context.Context, j job.Job) error
	SwitchCollection(ctx context.Context, name string) error
	SetConnection(ctx context.Context, url string) error
	Jobs() []job.Job
	Find(id string) (job.Job, bool)
	Collection() string
	Collections() []string
	Endpoint() string
	Mode() enums.Mode
	IsLoading() bool
}

// Server represents the web server
type Server struct {
	tracker Tracker
	version string
	timeout time.Duration // limit for a single backend call made by a handler
}

// Config holds server configuration
type Config struct {
	Tracker Tracker
	Version string
	Timeout time.Duration
}

// New creates a new web server
func New(cfg Config) (*Server, error) {
	if cfg.Tracker == nil {
		return nil, errors.New("web server initialization failed: tracker is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Server{tracker: cfg.Tracker, version: cfg.Version, timeout: timeout}, nil
}

// Run starts the web server
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("jobtrack", "umputun", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(64*1024), // 64KB max request size
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		api.HandleFunc("GET /jobs", s.handleListJobs)
		api.HandleFunc("POST /jobs", s.handleCreateJob)
		api.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
		api.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
		api.HandleFunc("GET /stats", s.handleStats)
		api.HandleFunc("GET /state", s.handleState)
		api.HandleFunc("POST /refresh", s.handleRefresh)
		api.HandleFunc("POST /collection", s.handleSwitchCollection)
		api.HandleFunc("POST /connection", s.handleSetConnection)
	})

	return router
}
