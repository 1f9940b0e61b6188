// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes generation and export over HTTP for browser
// front ends.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/essay-engine/internal/attach"
	"github.com/pdiddy/essay-engine/internal/export"
	"github.com/pdiddy/essay-engine/internal/logging"
	"github.com/pdiddy/essay-engine/internal/metrics"
	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/types"
)

const (
	defaultMaxBody = 32 << 20
	shutdownGrace  = 10 * time.Second
)

// Generator runs one generation attempt. *generate.Invoker satisfies it.
type Generator interface {
	Invoke(ctx context.Context, req *request.Request) (*types.Essay, error)
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	addr    string
	builder *request.Builder
	gen     Generator
	ext     attach.Extractor
	metrics *metrics.Collectors
	labels  export.Labels
	logger  *slog.Logger
	sem     *semaphore.Weighted
	maxBody int64
	engine  *gin.Engine
}

// New builds a Server. ext converts uploaded word-processor files to text
// and must be safe for concurrent use. ext may be nil, which rejects .docx
// uploads, and m may be nil when metrics are not wanted.
func New(cfg types.ServerConfig, b *request.Builder, gen Generator, ext attach.Extractor, m *metrics.Collectors,
	labels export.Labels, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}

	s := &Server{
		addr:    cfg.Addr,
		builder: b,
		gen:     gen,
		ext:     ext,
		metrics: m,
		labels:  labels,
		logger:  logger,
		sem:     semaphore.NewWeighted(limit),
		maxBody: maxBody,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(s.recovery(), s.requestLog(), corsMiddleware(cfg.AllowedOrigins))
	if m != nil {
		engine.Use(s.observe())
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	api := engine.Group("/api")
	api.POST("/generate", s.handleGenerate)
	api.POST("/export/:format", s.handleExport)

	s.engine = engine
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// recovery turns a handler panic into a 500 and logs it.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic recovered", "panic", r, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal server error"))
			}
		}()
		c.Next()
	}
}

// requestLog puts a request-scoped logger in the context.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		l := s.logger.With("method", c.Request.Method, "path", c.Request.URL.Path)
		if id := c.GetHeader("X-Request-ID"); id != "" {
			l = l.With("request_id", id)
			c.Header("X-Request-ID", id)
		}
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), l))
		c.Next()
	}
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		s.metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}
