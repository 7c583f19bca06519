// Package server exposes stored documents and pipeline status over a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/pipeline"
	"github.com/umputun/mailscope/pkg/repository"
	"github.com/umputun/mailscope/pkg/scheduler"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/database.go -pkg mocks -skip-ensure -fmt goimports . Database
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	db        Database
	scheduler Scheduler
	version   string
	debug     bool
	policy    *bluemonday.Policy

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Database interface for server operations
type Database interface {
	Lookup(ctx context.Context, id string) (*domain.Document, error)
	Scan(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	Stats(ctx context.Context) (repository.Stats, error)
}

// Scheduler interface for on-demand operations
type Scheduler interface {
	EnrichNow(ctx context.Context, id string) (pipeline.RunStats, error)
	Status() scheduler.Status
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, db Database, sched Scheduler, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		db:        db,
		scheduler: sched,
		version:   version,
		debug:     debug,
		policy:    bluemonday.UGCPolicy(),
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		// enrichment of a single document calls the model and may take a while
		WriteTimeout: 5 * timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("mailscope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /documents", s.listDocumentsHandler)
		r.HandleFunc("GET /documents/{id}", s.getDocumentHandler)
		r.HandleFunc("GET /documents/{id}/stories", s.storiesHandler)
		r.HandleFunc("POST /documents/{id}/enrich", s.enrichHandler)
	})
}
