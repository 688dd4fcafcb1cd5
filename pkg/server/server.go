package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/fieldset/pkg/formdef"
	"github.com/vango-dev/fieldset/pkg/middleware"
	"github.com/vango-dev/fieldset/pkg/store"
)

// Server is the HTTP/WebSocket host for one form definition. It renders
// the form page, upgrades the live socket per visitor, and runs a form
// instance per session.
type Server struct {
	// Session management
	sessions *SessionManager

	// Configuration
	config *Config

	// Definition currently served; swapped by the dev-mode watcher.
	def   *formdef.Definition
	defMu sync.RWMutex

	// Definition file path, watched in dev mode.
	defPath string

	// Submission sink
	store   store.Store
	backend string

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server

	// Stops the dev-mode watcher
	watchCancel context.CancelFunc

	// Logger
	logger *slog.Logger
}

// New creates a Server for the given definition. The definition is
// validated up front; serving a broken one helps nobody.
func New(def *formdef.Definition, config *Config) (*Server, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.Clone()
		config.normalize()
	}

	logger := slog.Default().With("component", "server")

	s := &Server{
		sessions: NewSessionManager(config, logger),
		config:   config,
		def:      def,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}

	return s, nil
}

// SetStore sets the submission store. The backend name labels store
// errors in metrics (e.g. "memory", "redis").
func (s *Server) SetStore(st store.Store, backend string) {
	s.store = st
	s.backend = backend
	s.sessions.SetStore(st, backend)
}

// Store returns the configured submission store, or nil.
func (s *Server) Store() store.Store {
	return s.store
}

// SetDefinitionFile records the path the definition was loaded from.
// In dev mode Run watches this file and reloads connected pages when
// it changes.
func (s *Server) SetDefinitionFile(path string) {
	s.defPath = path
}

// Definition returns the definition currently served.
func (s *Server) Definition() *formdef.Definition {
	s.defMu.RLock()
	defer s.defMu.RUnlock()
	return s.def
}

// setDefinition swaps the served definition.
func (s *Server) setDefinition(def *formdef.Definition) {
	s.defMu.Lock()
	s.def = def
	s.defMu.Unlock()
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the server's HTTP handler, mountable in external
// routers.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/client.js", s.serveThinClient)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// handleIndex renders the form page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	html := renderPage(s.Definition())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// handleHealthz reports liveness and the active session count.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"form":     s.Definition().Form,
		"sessions": s.sessions.Count(),
	})
}

// handleWebSocket upgrades the connection and starts a session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		middleware.RecordWebSocketError("upgrade")
		return
	}

	session, err := s.sessions.Create(conn, s.Definition())
	if err != nil {
		s.logger.Warn("session rejected", "error", err)
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second),
		)
		conn.Close()
		return
	}

	session.Start()
}

// Run starts the server and blocks until shutdown or SIGINT/SIGTERM.
func (s *Server) Run() error {
	if s.config.DevMode && s.defPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		s.watchCancel = cancel
		if err := s.watchDefinition(ctx); err != nil {
			cancel()
			return err
		}
	}

	s.httpServer = &http.Server{
		Addr:    s.config.Addr,
		Handler: s.Handler(),
	}

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			"addr", s.config.Addr,
			"form", s.Definition().Form,
			"dev_mode", s.config.DevMode)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.watchCancel != nil {
		s.watchCancel()
	}

	// Close all sessions first
	s.sessions.Shutdown()

	// Shutdown HTTP server
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// watchDefinition starts the dev-mode reload loop: every time the
// definition file changes and parses, the served definition is swapped
// and connected pages are told to reload. Parse failures keep the old
// definition in place.
func (s *Server) watchDefinition(ctx context.Context) error {
	defs, errs, err := formdef.Watch(ctx, s.defPath)
	if err != nil {
		return fmt.Errorf("server: watch definition: %w", err)
	}

	go func() {
		for {
			select {
			case def, ok := <-defs:
				if !ok {
					return
				}
				s.setDefinition(def)
				s.sessions.Broadcast(Op{Op: OpReload})
				s.logger.Info("definition reloaded",
					"form", def.Form,
					"fields", len(def.Fields))

			case err := <-errs:
				s.logger.Warn("definition reload failed", "error", err)

			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
