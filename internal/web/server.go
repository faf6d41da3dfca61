package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"schemalens/internal/app"
)

// Server is the HTTP front of the service.
type Server struct {
	httpServer *http.Server
	config     Config

	mu       sync.Mutex
	listener net.Listener
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string

	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration

	// RequestTimeout bounds each handler; schema loads that outlive it
	// keep running in the cache and finish for the next caller.
	RequestTimeout time.Duration

	MaxHeaderBytes int
}

// DefaultConfig leaves room for slow first loads of large schemas.
func DefaultConfig() Config {
	return Config{
		Address:           ":8080",
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		RequestTimeout:    120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

func New(config Config, service app.Service) (*Server, error) {
	if config.Address == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("listen address is required")
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              config.Address,
			Handler:           NewRouter(service, config.RequestTimeout),
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			MaxHeaderBytes:    config.MaxHeaderBytes,
		},
		config: config,
	}, nil
}

// Start listens and serves until the server is shut down.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create listener").
			WithCause(err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	log.Info().Str("address", listener.Addr().String()).Msg("http server listening")
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("http server stopped").
			WithCause(err)
	}
	return nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	log.Info().Msg("shutting down http server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("graceful shutdown failed").
			WithCause(err)
	}
	return <-errCh
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}
