package server

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	clientdist "github.com/addrnav-dev/addrnav/client/dist"
	"github.com/addrnav-dev/addrnav/pkg/middleware"
)

// Server is the HTTP/WebSocket server hosting the live channel, the
// thin client, and any mounted application handlers.
type Server struct {
	cfg      *Config
	logger   *slog.Logger
	metrics  *middleware.Metrics
	sessions *SessionManager
	upgrader websocket.Upgrader

	mws            []func(http.Handler) http.Handler
	mounts         map[string]http.Handler
	onSessionStart func(*Session)

	router     chi.Router
	httpServer *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector. Defaults to SharedMetrics.
func WithMetrics(m *middleware.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMiddleware appends HTTP middleware applied to every route.
func WithMiddleware(mws ...func(http.Handler) http.Handler) ServerOption {
	return func(s *Server) {
		s.mws = append(s.mws, mws...)
	}
}

// WithMount mounts an application handler under pattern, relative to
// the base path.
func WithMount(pattern string, h http.Handler) ServerOption {
	return func(s *Server) {
		s.mounts[pattern] = h
	}
}

// OnSessionStart registers a callback invoked for every new live
// session, before its loops start. Use it to drive initial rewrites.
func OnSessionStart(fn func(*Session)) ServerOption {
	return func(s *Server) {
		s.onSessionStart = fn
	}
}

// New creates a Server. A nil config uses DefaultConfig.
func New(cfg *Config, opts ...ServerOption) *Server {
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:      cfg,
		sessions: NewSessionManager(),
		mounts:   make(map[string]http.Handler),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "server")
	}
	if s.metrics == nil {
		s.metrics = middleware.SharedMetrics()
	}

	s.router = s.buildRoutes()
	return s
}

// Sessions returns the live session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// BasePath returns the normalized base-path prefix.
func (s *Server) BasePath() string {
	return s.cfg.BasePath
}

func (s *Server) buildRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Prometheus(s.metrics))
	r.Use(middleware.OpenTelemetry())
	r.Use(s.mws...)

	base := s.cfg.BasePath
	r.Get(base+"/_addrnav/ws", s.handleWebSocket)
	r.Get(base+"/_addrnav/client.js", s.serveThinClient)
	r.Head(base+"/_addrnav/client.js", s.serveThinClient)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	for pattern, h := range s.mounts {
		mount := strings.TrimSuffix(base+pattern, "/")
		if mount == "" {
			mount = "/"
		}
		r.Mount(mount, h)
	}
	return r
}

// ServeHTTP implements http.Handler, so the server can also be
// mounted inside an external router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleWebSocket upgrades the connection and runs the session loops.
// It blocks until the connection closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		s.metrics.RecordWSError("upgrade")
		return
	}

	sess := newSession(conn, s.cfg, s.logger, s.metrics, func(closed *Session) {
		s.sessions.remove(closed.id)
		s.logger.Info("session closed", "session", closed.id)
	})
	s.sessions.add(sess)
	s.metrics.SessionStarted()
	s.logger.Info("session started", "session", sess.id, "remote", r.RemoteAddr)

	if s.onSessionStart != nil {
		s.onSessionStart(sess)
	}

	go sess.writeLoop()
	sess.readLoop()
}

var thinClientETag = func() string {
	sum := sha256.Sum256(clientdist.AddrnavJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:8]))
}()

func (s *Server) serveThinClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("ETag", thinClientETag)
	if s.cfg.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if r.Header.Get("If-None-Match") == thinClientETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	_, _ = w.Write(clientdist.AddrnavJS)
}

// Start begins serving and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	s.logger.Info("listening", "address", s.cfg.Address, "base_path", s.cfg.BasePath)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Run serves until ctx is canceled or an interrupt arrives, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections, closes live sessions, and
// waits for in-flight requests up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down", "sessions", s.sessions.Len())
	s.sessions.CloseAll()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
