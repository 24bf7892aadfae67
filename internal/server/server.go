// Package server exposes invoice export over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	invoicepdf "github.com/porticus-lab/go-invoice-pdf"
)

// Options configures a Server.
type Options struct {
	Launcher  invoicepdf.Launcher
	Store     invoicepdf.Store // nil writes to the local file system
	Composer  *invoicepdf.Composer
	OutputDir string // where generated files are written

	MaxBodyBytes int64
	ServiceName  string // span name prefix for request tracing
	Logger       *zap.Logger
}

// Server routes export requests to an [invoicepdf.Exporter].
type Server struct {
	router   *gin.Engine
	exporter *invoicepdf.Exporter
	composer *invoicepdf.Composer
	logger   *zap.Logger
}

// New builds a Server and its routes.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	composer := opts.Composer
	if composer == nil {
		c, err := invoicepdf.NewComposer()
		if err != nil {
			return nil, err
		}
		composer = c
	}
	if opts.OutputDir == "" {
		opts.OutputDir = invoicepdf.DefaultDownloadsDir()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "invoicepdf"
	}

	exporter, err := invoicepdf.NewExporter(
		opts.Launcher,
		invoicepdf.DirDestination(opts.OutputDir),
		opts.Store,
		invoicepdf.WithComposer(composer),
		invoicepdf.WithDefaultDir(opts.OutputDir),
		invoicepdf.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	s := &Server{
		exporter: exporter,
		composer: composer,
		logger:   logger,
	}

	r := gin.New()
	r.Use(
		RequestID(),
		otelgin.Middleware(opts.ServiceName),
		AccessLog(logger),
		Recovery(logger),
	)
	if opts.MaxBodyBytes > 0 {
		r.Use(BodyLimit(opts.MaxBodyBytes))
	}

	r.GET("/healthz", s.health)
	v1 := r.Group("/v1/invoices")
	v1.POST("/pdf", s.generatePDF)
	v1.POST("/preview", s.preview)

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight exports up to 30 seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
