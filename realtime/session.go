package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/middleware"
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("realtime: session closed")

const writeTimeout = 10 * time.Second

// Session is a live connection to the realtime API. Events arrive on
// the Events channel until the connection ends; send methods are safe
// for concurrent use.
type Session struct {
	conn   *websocket.Conn
	logger middleware.Logger

	pingInterval time.Duration

	events chan Event
	done   chan struct{}
	// stop unblocks the read loop when Close races a slow consumer.
	stop   chan struct{}
	closed atomic.Bool

	writeMu sync.Mutex
}

func newSession(conn *websocket.Conn, cfg *dialConfig) *Session {
	return &Session{
		conn:         conn,
		logger:       cfg.logger,
		pingInterval: cfg.pingInterval,
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
		stop:         make(chan struct{}),
	}
}

// Events returns the channel of server events. It is closed when the
// connection ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done returns a channel closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// UpdateSession sends a session.update with the given configuration.
func (s *Session) UpdateSession(ctx context.Context, cfg SessionConfig) error {
	return s.sendJSON(ctx, sessionUpdateMessage{
		Type:    "session.update",
		Session: cfg,
	})
}

// SendText adds a user text message to the conversation.
func (s *Session) SendText(ctx context.Context, text string) error {
	return s.sendJSON(ctx, conversationItemMessage{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type:    "message",
			Role:    api.RoleUser,
			Content: []contentPart{{Type: "input_text", Text: text}},
		},
	})
}

// CreateResponse asks the model to respond to the conversation so far.
func (s *Session) CreateResponse(ctx context.Context) error {
	return s.sendJSON(ctx, responseCreateMessage{Type: "response.create"})
}

// Close performs the websocket close handshake and releases the
// connection. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.stop)

	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	s.writeMu.Unlock()

	return s.conn.Close()
}

func (s *Session) sendJSON(ctx context.Context, v any) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetWriteDeadline(deadline)

	return s.conn.WriteJSON(v)
}

// readLoop pumps server messages into the events channel until the
// connection ends.
func (s *Session) readLoop() {
	defer func() {
		close(s.events)
		close(s.done)
	}()

	if s.pingInterval > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(2 * s.pingInterval))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(2 * s.pingInterval))
		})
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && !websocket.IsCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("realtime read failed", middleware.F("error", err.Error()))
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Warn("realtime event discarded",
				middleware.F("error", err.Error()))
			continue
		}
		ev.Raw = data

		select {
		case s.events <- ev:
		case <-s.stop:
			return
		}
	}
}

// pingLoop sends keepalive pings until the session ends.
func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(writeTimeout))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
