package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"dadosabertos/relatorio/internal/infrastructure/config"
	"dadosabertos/relatorio/internal/infrastructure/http/middleware"
	"dadosabertos/relatorio/internal/infrastructure/metrics"
)

// ReportHandler serves the report form and its helper endpoints.
type ReportHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	DirectLink(w http.ResponseWriter, r *http.Request)
	CheckField(w http.ResponseWriter, r *http.Request)
	Mask(w http.ResponseWriter, r *http.Request)
}

// Options configures the HTTP server.
type Options struct {
	Config         config.AppConfig
	Logger         *slog.Logger
	HealthHandler  http.Handler
	ReportHandler  ReportHandler
	MetricsHandler http.Handler // optional, served on /metrics
	Metrics        *metrics.Metrics
}

// Server wraps the configured http.Server.
type Server struct {
	log        *slog.Logger
	cfg        config.HTTPSettings
	httpServer *http.Server
}

// New wires the router and returns a server ready to Run.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.HealthHandler == nil {
		return nil, errors.New("health handler is required")
	}
	if opts.ReportHandler == nil {
		return nil, errors.New("report handler is required")
	}

	httpCfg := opts.Config.HTTP
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/health", opts.HealthHandler)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	report := opts.ReportHandler
	r.Get("/", report.Index)

	r.Route("/relatorio", func(r chi.Router) {
		if rl := opts.Config.RateLimit; rl.Enabled {
			limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
				PerMinute: rl.PerMinute,
				Burst:     rl.Burst,
			}, opts.Logger, opts.Metrics)
			r.With(limiter.Handler, middleware.ExtendedTimeout(httpCfg.ReportTimeout)).Post("/", report.Submit)
		} else {
			r.With(middleware.ExtendedTimeout(httpCfg.ReportTimeout)).Post("/", report.Submit)
		}
		r.Get("/link", report.DirectLink)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins(httpCfg.AllowedOrigins),
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Correlation-ID"},
			ExposedHeaders: []string{"X-Correlation-ID"},
			MaxAge:         86400,
		}))
		r.Get("/validar", report.CheckField)
		r.Get("/mascara", report.Mask)
	})

	return &Server{
		log: opts.Logger,
		cfg: httpCfg,
		httpServer: &http.Server{
			Addr:         httpCfg.Address(),
			Handler:      r,
			ReadTimeout:  httpCfg.ReadTimeout,
			WriteTimeout: httpCfg.WriteTimeout,
			IdleTimeout:  httpCfg.IdleTimeout,
		},
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down HTTP server", "timeout", s.cfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// Close stops the server immediately.
func (s *Server) Close() error {
	return s.httpServer.Close()
}

const defaultShutdownTimeout = 30 * time.Second

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return defaultShutdownTimeout
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
