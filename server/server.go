// Package server runs an HTTP server around a handler with connection
// limiting and graceful shutdown.
//
//	table := web.NewTable()
//	// register routes ...
//	d := web.NewDispatcher(table, web.DispatcherConfig{})
//
//	srv, err := server.New(server.Config{Addr: ":8080"}, d)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"
)

// ErrNilHandler is returned by New when no handler is provided.
var ErrNilHandler = errors.New("server: handler must not be nil")

const (
	defaultAddr              = ":8080"
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// Config configures the Server behaviour. Zero-value fields take the
// package defaults.
type Config struct {
	// Addr is the TCP listen address. Defaults to ":8080".
	Addr string

	// MaxConns caps the number of simultaneously accepted connections.
	// Zero means unlimited.
	MaxConns int

	// ReadHeaderTimeout bounds reading request headers, the primary
	// slowloris defence (RFC 9112 Section 9.5 covers tearing down such
	// connections). Defaults to 10s.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading the full request. Defaults to 30s.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing the response. Defaults to 30s.
	WriteTimeout time.Duration

	// IdleTimeout bounds keep-alive idle time between requests.
	// Defaults to 120s.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown once the run context is
	// cancelled; connections still open afterwards are closed forcibly.
	// Defaults to 10s.
	ShutdownTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Addr == "" {
		out.Addr = defaultAddr
	}
	if out.ReadHeaderTimeout <= 0 {
		out.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = defaultReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = defaultWriteTimeout
	}
	if out.IdleTimeout <= 0 {
		out.IdleTimeout = defaultIdleTimeout
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = defaultShutdownTimeout
	}
	return out
}

// Server wraps http.Server with a bounded listener and context-driven
// graceful shutdown.
type Server struct {
	cfg  Config
	http *http.Server
}

// New builds a Server serving the given handler. It returns ErrNilHandler
// if handler is nil.
func New(cfg Config, handler http.Handler) (*Server, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	cfg = cfg.withDefaults()

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully within ShutdownTimeout. It returns nil after a
// clean shutdown, or the first listener or shutdown error otherwise.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run with a caller-provided listener, useful for tests and for
// systemd socket activation. The listener is wrapped with the MaxConns
// limit when one is configured, and is closed when Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.http.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)

	// Serve returns ErrServerClosed once Shutdown begins; drain it so the
	// goroutine does not leak.
	if serr := <-serveErr; !errors.Is(serr, http.ErrServerClosed) && err == nil {
		err = serr
	}
	return err
}
