package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fieldset/pkg/middleware"
)

// ReadLoop continuously reads messages from the WebSocket connection.
// It decodes client messages and queues them for the event loop.
// This method blocks until the connection is closed or an error occurs.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		s.touch()
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		// Set read deadline
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		// Read message
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				middleware.RecordWebSocketError("read")
			}
			return
		}

		// Update activity
		s.touch()
		s.bytesRecv.Add(uint64(len(msg)))

		// Decode message
		var cm ClientMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			s.logger.Error("message decode error", "error", err)
			middleware.RecordWebSocketError("decode")
			continue
		}

		// Queue for processing
		if err := s.QueueMessage(cm); err != nil {
			s.logger.Warn("event queue full, dropping message",
				"type", cm.Type,
				"field", cm.Field)
			middleware.RecordWebSocketError("queue_full")
		}
	}
}

// WriteLoop handles periodic heartbeat pings.
// It runs until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}

// sendPing sends a heartbeat ping control frame to the client.
func (s *Session) sendPing() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}

	err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
	if err != nil {
		s.logger.Error("ping error", "error", err)
		return err
	}

	return nil
}

// EventLoop processes queued client messages and render signals.
// Both run on this single goroutine, so form dispatch and render
// flushes never race each other.
func (s *Session) EventLoop() {
	for {
		select {
		case msg := <-s.events:
			s.handleMessage(msg)

		case <-s.renderCh:
			s.renderDirty()

		case <-s.done:
			return
		}
	}
}

// Start sends the hello frame and starts all session loops.
func (s *Session) Start() {
	s.sendHello()
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}
