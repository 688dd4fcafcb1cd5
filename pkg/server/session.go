package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/fieldset/pkg/form"
	"github.com/vango-dev/fieldset/pkg/formdef"
	"github.com/vango-dev/fieldset/pkg/middleware"
	"github.com/vango-dev/fieldset/pkg/store"
)

// saveTimeout bounds one submission store write.
const saveTimeout = 5 * time.Second

// Session owns one WebSocket connection and the form instance behind it.
// Client messages flow through the event loop into the form's bindings;
// form reactions (error writes, element seeding, refocus) flow back as
// ops in JSON frames.
type Session struct {
	// Identity
	ID        string
	FormName  string
	CreatedAt time.Time

	// lastActive is the unix-nano timestamp of the last client activity.
	lastActive atomic.Int64

	// Connection
	conn      *websocket.Conn
	writeMu   sync.Mutex // Protects conn writes
	closed    atomic.Bool
	closeOnce sync.Once

	// Form state
	form     *form.Form
	bindings map[string]*form.Binding
	elements map[string]*remoteElement
	submit   func(form.SubmitEvent)
	listener *renderListener

	// Ops queued by elements between render flushes
	pendingOps []Op
	opMu       sync.Mutex

	// Channels
	events   chan ClientMessage // Incoming client messages
	renderCh chan struct{}      // Signal for re-render
	done     chan struct{}      // Shutdown signal

	// Sequence number for outgoing frames
	sendSeq atomic.Uint64

	// Submission sink
	store   store.Store
	backend string

	// Configuration
	config *Config

	// Called once when the session closes; set by the manager.
	onClose func(*Session)

	// Logger
	logger *slog.Logger

	// Metrics
	eventCount atomic.Uint64
	frameCount atomic.Uint64
	bytesSent  atomic.Uint64
	bytesRecv  atomic.Uint64
}

// listenerIDCounter hands out numeric IDs for render listeners.
var listenerIDCounter atomic.Uint64

// renderListener adapts the session to form.Listener. A separate type
// keeps the numeric listener ID off the session's public surface.
type renderListener struct {
	session *Session
	id      uint64
}

func (l *renderListener) MarkDirty() { l.session.scheduleRender() }
func (l *renderListener) ID() uint64 { return l.id }

// newSession builds a session around conn: a fresh form instance with
// Prometheus and logging middleware installed, every definition field
// registered and bound to a remote element.
func newSession(conn *websocket.Conn, def *formdef.Definition, st store.Store, backend string, config *Config, logger *slog.Logger) (*Session, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}

	id := uuid.NewString()

	s := &Session{
		ID:        id,
		FormName:  def.Form,
		CreatedAt: time.Now(),
		conn:      conn,
		events:    make(chan ClientMessage, config.EventQueue),
		renderCh:  make(chan struct{}, 1),
		done:      make(chan struct{}),
		store:     st,
		backend:   backend,
		config:    config,
		logger:    logger.With("session_id", id),
	}
	s.touch()

	s.form = form.New(form.WithMiddleware(
		middleware.Prometheus(),
		middleware.Logging(middleware.WithLogger(s.logger)),
	))

	bindings, err := def.Bind(s.form)
	if err != nil {
		return nil, err
	}
	s.bindings = bindings

	// Bind a remote element per field, in definition order so that
	// seed and focus ops come out deterministically.
	s.elements = make(map[string]*remoteElement, len(bindings))
	for i := range def.Fields {
		name := def.Fields[i].Name
		el := &remoteElement{field: name, session: s}
		bindings[name].Ref(el)
		s.elements[name] = el
	}

	s.listener = &renderListener{session: s, id: listenerIDCounter.Add(1)}
	s.form.Subscribe(s.listener)

	s.submit = s.form.HandleSubmit(s.persistSubmission)

	return s, nil
}

// Form returns the session's form instance.
func (s *Session) Form() *form.Form {
	return s.form
}

// handleMessage processes a single client message on the event loop.
func (s *Session) handleMessage(msg ClientMessage) {
	s.eventCount.Add(1)

	switch msg.Type {
	case MessageChange, MessageBlur:
		binding, ok := s.bindings[msg.Field]
		if !ok {
			s.logger.Warn("client message rejected",
				"error", NewMessageError(msg.Type, msg.Field, ErrUnknownField))
			middleware.RecordWebSocketError("unknown_field")
			return
		}
		// Record the raw value as the element's native value before
		// dispatching, so Element.Value reflects what the client sees.
		if el := s.elements[msg.Field]; el != nil {
			el.setLast(msg.Value)
		}
		if msg.Type == MessageChange {
			binding.OnChange(msg.Value)
		} else {
			binding.OnBlur(msg.Value)
		}

	case MessageSubmit:
		s.submit(nil)
		s.scheduleRender()

	default:
		s.logger.Warn("client message rejected",
			"error", NewMessageError(msg.Type, "", ErrUnknownMessageType))
		middleware.RecordWebSocketError("unknown_type")
	}
}

// persistSubmission is the submit callback installed via HandleSubmit.
// Submission is not gated on validity; the current error state is
// recorded alongside the stored values.
func (s *Session) persistSubmission(values form.Values) {
	middleware.RecordFormErrors(len(s.form.Errors()))

	sub := store.NewSubmission(s.FormName, values)
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.store.Save(ctx, sub); err != nil {
			s.logger.Error("submission save failed", "error", err, "submission_id", sub.ID)
			middleware.RecordStoreError(s.backend)
			s.queueOp(Op{Op: OpSubmitted, ID: sub.ID, Message: "submission could not be stored"})
			return
		}
	}

	middleware.RecordSubmission()
	s.logger.Info("submission accepted", "submission_id", sub.ID, "fields", len(values))
	s.queueOp(Op{Op: OpSubmitted, ID: sub.ID})
}

// scheduleRender signals the event loop to flush a render. Repeated
// calls between flushes coalesce into one.
func (s *Session) scheduleRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
		// Already scheduled
	}
}

// renderDirty flushes pending element ops plus an error-state snapshot
// to the client.
func (s *Session) renderDirty() {
	ops := s.drainOps()
	ops = append(ops, Op{Op: OpErrors, Errors: s.form.Errors()})

	if err := s.sendFrame(ops); err != nil && !errors.Is(err, ErrSessionClosed) {
		s.logger.Warn("render flush failed", "error", err)
	}
}

// queueOp adds an op to the pending buffer. Ops are drained and sent
// with the next render flush.
func (s *Session) queueOp(op Op) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.pendingOps = append(s.pendingOps, op)
}

// drainOps returns and clears the pending ops.
func (s *Session) drainOps() []Op {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	ops := s.pendingOps
	s.pendingOps = nil
	return ops
}

// sendHello sends the first frame after the socket opens: the session
// announcement plus any ops queued while binding elements (initial
// value seeds, mount focus).
func (s *Session) sendHello() {
	ops := append([]Op{{Op: OpHello, Session: s.ID, Form: s.FormName}}, s.drainOps()...)
	if err := s.sendFrame(ops); err != nil {
		s.logger.Error("hello frame failed", "error", err)
	}
}

// SendOps sends ops to the client in a single frame. Safe to call from
// any goroutine.
func (s *Session) SendOps(ops ...Op) error {
	return s.sendFrame(ops)
}

// sendFrame encodes ops into a sequenced frame and writes it to the
// WebSocket.
func (s *Session) sendFrame(ops []Op) error {
	if len(ops) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}

	frame := Frame{
		Seq: s.sendSeq.Add(1),
		Ops: ops,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("write error", "error", err)
		middleware.RecordWebSocketError("write")
		s.closeInternal()
		return err
	}

	s.bytesSent.Add(uint64(len(data)))
	s.frameCount.Add(1)

	s.logger.Debug("sent frame", "seq", frame.Seq, "ops", len(ops), "bytes", len(data))
	return nil
}

// Close gracefully closes the session.
func (s *Session) Close() {
	s.closeInternal()
}

// closeInternal performs the actual close operations exactly once.
func (s *Session) closeInternal() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)

		s.form.Unsubscribe(s.listener)

		if s.conn != nil {
			s.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			s.conn.Close()
		}

		if s.onClose != nil {
			s.onClose(s)
		}

		s.logger.Info("session closed",
			"events", s.eventCount.Load(),
			"frames", s.frameCount.Load(),
			"bytes_sent", s.bytesSent.Load(),
			"bytes_recv", s.bytesRecv.Load())
	})
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// QueueMessage queues a client message for the event loop.
func (s *Session) QueueMessage(msg ClientMessage) error {
	select {
	case s.events <- msg:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// touch updates the last activity timestamp.
func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last client activity.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Stats returns session statistics.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:         s.ID,
		FormName:   s.FormName,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive(),
		EventCount: s.eventCount.Load(),
		FrameCount: s.frameCount.Load(),
		BytesSent:  s.bytesSent.Load(),
		BytesRecv:  s.bytesRecv.Load(),
	}
}

// SessionStats contains session statistics.
type SessionStats struct {
	ID         string
	FormName   string
	CreatedAt  time.Time
	LastActive time.Time
	EventCount uint64
	FrameCount uint64
	BytesSent  uint64
	BytesRecv  uint64
}
