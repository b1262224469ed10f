// Package server exposes the population and sampler over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osbornjw-stats/lizsample/population"
	"github.com/osbornjw-stats/lizsample/sampling"
	"github.com/osbornjw-stats/lizsample/session"
)

// Options configures a Server.
type Options struct {
	HistogramBins int
	Metrics       bool // Serve /metrics
}

// Server holds the per-process sampling session. Only the most recent sample
// is kept; drawing again replaces it.
type Server struct {
	cache   *population.Cache
	opts    Options
	session func() (*session.Session, error)
}

// New creates a server. The population is taken from cache on first use.
func New(cache *population.Cache, src rand.Source, opts Options) *Server {
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = 40
	}
	s := &Server{cache: cache, opts: opts}
	s.session = sync.OnceValues(func() (*session.Session, error) {
		pop, err := cache.Get()
		if err != nil {
			return nil, err
		}
		return session.New(sampling.NewSampler(pop, src), opts.HistogramBins), nil
	})
	return s
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, s)
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

