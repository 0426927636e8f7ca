// Package server exposes the feed generator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/internal/metrics"
	"github.com/samvad-hq/rssfeed/pkg/sources"
)

const shutdownTimeout = 10 * time.Second

// FeedGenerator renders the RSS document of one source.
type FeedGenerator interface {
	Generate(ctx context.Context, src sources.Source) ([]byte, error)
}

// SourceResolver maps a path id to a source; "" is the default source.
type SourceResolver interface {
	Source(id string) (sources.Source, bool)
}

// Options configures the HTTP surface.
type Options struct {
	Addr    string
	AppName string
	// Dynamic generates on every request. When false only requests carrying
	// Cache-Control: no-cache regenerate; the rest get 304.
	Dynamic  bool
	Debug    bool
	Gatherer prometheus.Gatherer
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	router  *gin.Engine
	server  *http.Server
	feeds   FeedGenerator
	sources SourceResolver
	metrics *metrics.Metrics
	opts    Options
	log     logger.Logger
}

// New builds the router with recovery, request id and access logging.
func New(opts Options, feeds FeedGenerator, resolver SourceResolver, m *metrics.Metrics, log logger.Logger) *Server {
	log = logger.Ensure(log)
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(log))

	s := &Server{
		router:  router,
		feeds:   feeds,
		sources: resolver,
		metrics: m,
		opts:    opts,
		log:     log,
	}
	s.routes()

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.GET("/api/rss", s.handleFeed)
	s.router.GET("/api/rss/:source", s.handleFeed)
	s.router.GET("/health", s.handleHealth)

	gatherer := s.opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server starting", "server_config", map[string]any{
			"addr":    s.opts.Addr,
			"dynamic": s.opts.Dynamic,
		})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.InfoObj("http server shutting down", "reason", ctx.Err())
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
