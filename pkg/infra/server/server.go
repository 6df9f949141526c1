// Package server provides the HTTP server wrapper used by the assist service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/pkg/infra/middleware"
	httpopts "github.com/camos-io/camos-assist/pkg/options/http"
	utilerrors "github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/response"
)

// Server wraps a gin engine and an http.Server with graceful shutdown.
type Server struct {
	opts   *httpopts.Options
	engine *gin.Engine
	srv    *http.Server
}

// New creates a Server with the standard middleware chain applied.
// Extra middlewares are appended after the built-in chain.
func New(opts *httpopts.Options, middlewares ...gin.HandlerFunc) *Server {
	if opts == nil {
		opts = httpopts.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.LoggerWithSkipPaths([]string{"/healthz"}))
	if opts.EnableCORS {
		engine.Use(middleware.CORS())
	}
	if opts.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(opts.RequestTimeout))
	}
	engine.Use(middlewares...)

	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, utilerrors.ErrRouteNotFound)
	})

	return &Server{
		opts:   opts,
		engine: engine,
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Engine returns the underlying gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins serving and blocks until ctx is cancelled or the listener
// fails. On cancellation the server is shut down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP 服务启动", "addr", s.opts.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

// Stop shuts the server down gracefully, bounded by the configured
// shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()

	logger.Infow("HTTP 服务关闭中", "timeout", s.opts.ShutdownTimeout.String())
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
