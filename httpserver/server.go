package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/rs/zerolog"
)

// Server wraps http.Server with context-driven graceful shutdown and
// lifecycle logging.
//
//	server := httpserver.New(
//	    httpserver.WithAddr(":9464"),
//	    httpserver.WithHandler(mux),
//	)
//
//	// Blocks until ctx is cancelled.
//	if err := server.ListenAndServe(ctx); err != nil {
//	    return err
//	}
type Server struct {
	httpServer  *http.Server
	config      Config
	logger      zerolog.Logger
	serviceName string
}

// New creates a Server. A handler must be set with WithHandler.
func New(opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultConfig().ServiceName
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}

	// Logging sits outside Recovery so recovered panics are logged as 500s.
	middlewares := []Middleware{RequestID()}
	if cfg.LoggerConfig != nil {
		loggerCfg := *cfg.LoggerConfig
		loggerCfg.serviceName = cfg.ServiceName
		middlewares = append(middlewares, Logger(loggerCfg))
	}
	middlewares = append(middlewares, Recovery(cfg.Logger))
	middlewares = append(middlewares, cfg.Middleware...)

	handler := cfg.Handler
	if handler != nil {
		handler = Chain(middlewares...)(handler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		config:      cfg,
		logger:      cfg.Logger,
		serviceName: cfg.ServiceName,
	}
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. Returns nil on clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.config.Handler == nil {
		ln.Close()
		return errors.New("httpserver: handler is required (use WithHandler)")
	}

	serverErrChan := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("service", s.serviceName).
			Msg("server starting")

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
		close(serverErrChan)
	}()

	select {
	case err := <-serverErrChan:
		if err != nil {
			s.logger.Error().Err(err).Msg("server error")
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info().Err(ctx.Err()).Msg("context cancelled, shutting down")
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	// ctx is already done here; shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("graceful shutdown failed, forcing close")
		if closeErr := s.httpServer.Close(); closeErr != nil {
			s.logger.Error().Err(closeErr).Msg("force close failed")
		}
		return err
	}

	s.logger.Info().Msg("server stopped gracefully")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
