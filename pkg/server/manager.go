package server

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fieldset/pkg/formdef"
	"github.com/vango-dev/fieldset/pkg/middleware"
	"github.com/vango-dev/fieldset/pkg/store"
)

// SessionManager manages all active sessions.
// It handles session creation, lookup, idle sweeping, and shutdown.
type SessionManager struct {
	// Sessions map protected by RWMutex
	sessions map[string]*Session
	mu       sync.RWMutex

	// Configuration
	config *Config

	// Submission sink handed to new sessions
	store   store.Store
	backend string

	// Sweep loop lifecycle
	done      chan struct{}
	sweepDone chan struct{}

	// Metrics
	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64

	// Logger
	logger *slog.Logger
}

// NewSessionManager creates a SessionManager and starts its idle-session
// sweep loop.
func NewSessionManager(config *Config, logger *slog.Logger) *SessionManager {
	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.Clone()
		config.normalize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	sm := &SessionManager{
		sessions:  make(map[string]*Session),
		config:    config,
		done:      make(chan struct{}),
		sweepDone: make(chan struct{}),
		logger:    logger.With("component", "session_manager"),
	}

	go sm.sweepLoop()

	return sm
}

// SetStore sets the submission store handed to new sessions. The
// backend name labels store errors in metrics.
func (sm *SessionManager) SetStore(st store.Store, backend string) {
	sm.mu.Lock()
	sm.store = st
	sm.backend = backend
	sm.mu.Unlock()
}

// Create creates a new session for the given WebSocket connection.
func (sm *SessionManager) Create(conn *websocket.Conn, def *formdef.Definition) (*Session, error) {
	sm.mu.RLock()
	st, backend := sm.store, sm.backend
	sm.mu.RUnlock()

	session, err := newSession(conn, def, st, backend, sm.config, sm.logger)
	if err != nil {
		return nil, err
	}
	session.onClose = sm.onSessionClose

	sm.mu.Lock()
	if sm.config.MaxSessions > 0 && len(sm.sessions) >= sm.config.MaxSessions {
		sm.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	sm.sessions[session.ID] = session
	sm.mu.Unlock()

	sm.totalCreated.Add(1)
	middleware.RecordSessionCreate()

	sm.logger.Info("session created",
		"session_id", session.ID,
		"form", session.FormName,
		"active_sessions", sm.Count())

	return session, nil
}

// onSessionClose removes a closed session from the registry. Installed
// as each session's close callback, so it runs no matter which side
// initiated the close.
func (sm *SessionManager) onSessionClose(session *Session) {
	sm.mu.Lock()
	_, exists := sm.sessions[session.ID]
	delete(sm.sessions, session.ID)
	sm.mu.Unlock()

	if exists {
		sm.totalClosed.Add(1)
		middleware.RecordSessionDestroy()
		sm.logger.Info("session closed",
			"session_id", session.ID,
			"active_sessions", sm.Count())
	}
}

// Get returns a session by ID, or nil if it doesn't exist.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Close closes the session with the given ID.
func (sm *SessionManager) Close(id string) error {
	sm.mu.RLock()
	session := sm.sessions[id]
	sm.mu.RUnlock()

	if session == nil {
		return ErrSessionNotFound
	}

	session.Close()
	return nil
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// TotalCreated returns the number of sessions created since startup.
func (sm *SessionManager) TotalCreated() uint64 {
	return sm.totalCreated.Load()
}

// TotalClosed returns the number of sessions closed since startup.
func (sm *SessionManager) TotalClosed() uint64 {
	return sm.totalClosed.Load()
}

// snapshot returns a copy of the current session list.
func (sm *SessionManager) snapshot() []*Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	out := make([]*Session, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		out = append(out, session)
	}
	return out
}

// Broadcast sends ops to every active session.
func (sm *SessionManager) Broadcast(ops ...Op) {
	for _, session := range sm.snapshot() {
		if err := session.SendOps(ops...); err != nil && !errors.Is(err, ErrSessionClosed) {
			sm.logger.Warn("broadcast failed",
				"session_id", session.ID,
				"error", err)
		}
	}
}

// sweepLoop periodically closes sessions idle past the TTL.
func (sm *SessionManager) sweepLoop() {
	defer close(sm.sweepDone)

	ticker := time.NewTicker(sm.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.sweepIdle()
		case <-sm.done:
			return
		}
	}
}

// sweepIdle closes every session whose last activity predates the TTL.
func (sm *SessionManager) sweepIdle() {
	cutoff := time.Now().Add(-sm.config.SessionTTL)

	var idle []*Session
	sm.mu.RLock()
	for _, session := range sm.sessions {
		if session.LastActive().Before(cutoff) {
			idle = append(idle, session)
		}
	}
	sm.mu.RUnlock()

	for _, session := range idle {
		sm.logger.Info("closing idle session",
			"session_id", session.ID,
			"last_active", session.LastActive())
		session.Close()
	}
}

// CloseAll closes every active session.
func (sm *SessionManager) CloseAll() {
	for _, session := range sm.snapshot() {
		session.Close()
	}
}

// Shutdown stops the sweep loop and closes all sessions.
func (sm *SessionManager) Shutdown() {
	select {
	case <-sm.done:
		// Already shut down
	default:
		close(sm.done)
	}
	<-sm.sweepDone

	sm.CloseAll()
}
