// Package server exposes the answering engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/compozy/hybridqa/engine/infra/monitoring"
	"github.com/compozy/hybridqa/engine/infra/server/middleware/ratelimit"
	"github.com/compozy/hybridqa/engine/qa"
	"github.com/compozy/hybridqa/pkg/config"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	healthPath            = "/api/v1/health"
	answersPath           = "/api/v1/answers"
	serverShutdownTimeout = 5 * time.Second
	httpIdleTimeout       = 60 * time.Second
)

// Answerer answers one question. The engine is not safe for concurrent
// use, so the server calls it under a lock.
type Answerer interface {
	Answer(ctx context.Context, q qa.Question) (*qa.Answer, error)
}

type Server struct {
	config     *config.ServerConfig
	answerer   Answerer
	monitoring *monitoring.Service
	router     *gin.Engine
	answerMu   sync.Mutex
}

// NewServer builds the router. A nil monitoring service disables /metrics.
func NewServer(
	ctx context.Context,
	cfg *config.ServerConfig,
	answerer Answerer,
	mon *monitoring.Service,
) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server configuration is required")
	}
	if answerer == nil {
		return nil, fmt.Errorf("answerer is required")
	}
	s := &Server{config: cfg, answerer: answerer, monitoring: mon}
	if err := s.buildRouter(ctx); err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}
	return s, nil
}

func (s *Server) buildRouter(ctx context.Context) error {
	excluded := []string{healthPath}
	if s.monitoring != nil {
		excluded = append(excluded, s.monitoring.Path())
	}
	limits, err := ratelimit.NewManager(ratelimit.FromAppConfig(&s.config.RateLimit, excluded...))
	if err != nil {
		return err
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger.FromContext(ctx)))
	if s.monitoring != nil {
		r.Use(s.monitoring.GinMiddleware(ctx))
		r.GET(s.monitoring.Path(), gin.WrapH(s.monitoring.ExporterHandler()))
	}
	r.Use(limits.Middleware())
	r.GET(healthPath, s.handleHealth)
	r.POST(answersPath, s.handleAnswer)
	s.router = r
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	srv := &http.Server{
		Addr:         s.Address(),
		Handler:      s.router,
		ReadTimeout:  s.config.Timeout,
		WriteTimeout: s.config.Timeout,
		IdleTimeout:  httpIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", fmt.Sprintf("http://%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Info("Server shutdown completed")
		return nil
	})
	return g.Wait()
}
