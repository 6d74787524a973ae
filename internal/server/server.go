// Package server runs a typed-rpc app over HTTP and COMMS (NATS).
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/typed-rpc/internal/config"
	"github.com/morezero/typed-rpc/pkg/commsutil"
	"github.com/morezero/typed-rpc/pkg/events"
	"github.com/morezero/typed-rpc/pkg/rpc"
)

const logPrefix = "server:server"

const shutdownTimeout = 10 * time.Second

// Server serves one app. nc is nil when COMMS is disabled.
type Server struct {
	cfg        *config.Config
	app        *rpc.App
	nc         *comms.Conn
	publisher  events.EventPublisher
	checks     map[string]HealthCheck
	subs       []*comms.Subscription
	listener   net.Listener
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithPublisher overrides the schema event publisher.
func WithPublisher(p events.EventPublisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithHealthChecks adds dependency checks to GET /health.
func WithHealthChecks(checks map[string]HealthCheck) Option {
	return func(s *Server) {
		for name, check := range checks {
			s.checks[name] = check
		}
	}
}

// New creates a Server for app.
func New(cfg *config.Config, app *rpc.App, nc *comms.Conn, opts ...Option) *Server {
	s := &Server{cfg: cfg, app: app, nc: nc, checks: make(map[string]HealthCheck)}
	if nc != nil {
		s.publisher = events.NewCommsPublisher(nc, &events.CommsPublisherOpts{GlobalSubject: cfg.SchemaEventSubject})
		s.checks["comms"] = func(context.Context) error {
			if !nc.IsConnected() {
				return fmt.Errorf("%s - COMMS status %s", logPrefix, nc.Status())
			}
			return nil
		}
	} else {
		s.publisher = &events.NoOpPublisher{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes on COMMS, announces the schema and starts the HTTP
// listener. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	if s.nc != nil {
		subs, err := subscribe(ctx, s.nc, s.app, s.cfg.ResolvedCallSubject(), s.cfg.ResolvedSchemaSubject(), s.cfg.RequestTimeout)
		if err != nil {
			return err
		}
		s.subs = subs
	}

	if err := s.publishSchema(ctx); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to publish schema event: %v", logPrefix, err))
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		s.unsubscribe()
		return fmt.Errorf("%s - failed to listen on %s: %w", logPrefix, s.cfg.ListenAddr(), err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler: NewHTTPHandler(s.app, HTTPOptions{
			MaxBodyBytes:       s.cfg.MaxBodyBytes,
			RequestTimeout:     s.cfg.RequestTimeout,
			HealthCheckTimeout: s.cfg.HealthCheckTimeout,
			Checks:             s.checks,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, ln.Addr()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()
	return nil
}

// Addr returns the bound HTTP address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the HTTP server and drains COMMS subscriptions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s - HTTP shutdown: %w", logPrefix, err))
		}
	}
	if s.nc != nil && !s.nc.IsClosed() {
		if err := s.nc.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("%s - COMMS drain: %w", logPrefix, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Server) unsubscribe() {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			slog.Debug(fmt.Sprintf("%s - unsubscribe %s: %v", logPrefix, sub.Subject, err))
		}
	}
	s.subs = nil
}

func (s *Server) publishSchema(ctx context.Context) error {
	doc, err := s.app.Schema()
	if err != nil {
		return err
	}
	data, err := s.app.SchemaJSON()
	if err != nil {
		return err
	}
	event := events.NewSchemaPublishedEvent(doc, data)
	if err := s.publisher.PublishSchema(ctx, event); err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("%s - published schema %s (%d procedures, %d types)", logPrefix, event.Etag, event.Procedures, event.Types))
	return nil
}

// SetupLogging installs a text slog handler at level as the default logger.
func SetupLogging(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Run loads config, starts the server, blocks until SIGINT or SIGTERM, then
// shuts down.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	SetupLogging(os.Stdout, cfg.SlogLevel())
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("%s - starting %s %s", logPrefix, cfg.AppName, cfg.AppVersion))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, res, err := BuildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	var nc *comms.Conn
	if cfg.COMMSEnabled {
		nc, err = commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
		if err != nil {
			return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
		}
		defer nc.Close()
	} else {
		slog.Info(fmt.Sprintf("%s - COMMS disabled, serving HTTP only", logPrefix))
	}

	s := New(cfg, app, nc, WithHealthChecks(res.Checks))
	if err := s.Start(ctx); err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("%s - %s is ready", logPrefix, cfg.AppName))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - received signal %s, shutting down", logPrefix, sig))

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.Warn(fmt.Sprintf("%s - shutdown: %v", logPrefix, err))
	}

	slog.Info(fmt.Sprintf("%s - shutdown complete", logPrefix))
	return nil
}
