// Package chatclient implements the client side of the chat protocol:
// one logical broker connection per signed-in member, with per-room
// topic subscriptions multiplexed over it and a bounded reconnect
// policy underneath.
package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/AC-trading/ac-trading/pkg/chatwire"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// State is the session connection state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	defaultReconnectDelay = 5 * time.Second
	defaultMaxReconnects  = 5
)

// Options configures a Session.
type Options struct {
	// URL is the broker websocket endpoint, e.g. ws://host:8080/ws.
	URL string

	// Transport defaults to the gorilla websocket transport.
	Transport Transport

	// ReconnectDelay is the fixed delay between automatic reconnect
	// attempts. Defaults to 5s.
	ReconnectDelay time.Duration

	// MaxReconnectAttempts bounds automatic reconnects after a
	// transport failure. Defaults to 5. The counter resets only on a
	// successful connect, never per attempt.
	MaxReconnectAttempts int

	Logger *zerolog.Logger
}

// MessageHandler receives validated chat messages for a subscribed room.
type MessageHandler func(msg chatwire.ChatMessage)

// ReadHandler receives the acting member id from a room's read topic.
type ReadHandler func(memberID int64)

type roomHandlers struct {
	onMessage MessageHandler
	onRead    ReadHandler
}

// Session owns one logical connection to the chat broker. All exported
// methods are safe for concurrent use; handlers fire on the session's
// read goroutine and must not call back into the session synchronously
// from Disconnect paths.
type Session struct {
	url            string
	transport      Transport
	reconnectDelay time.Duration
	maxAttempts    int
	logger         zerolog.Logger

	mu           sync.Mutex
	state        State
	conn         Conn
	gen          uint64 // bumped per dial and per explicit disconnect; stale goroutines check it
	token        string
	attempts     int
	subs         map[int64]roomHandlers
	onConnect    func()
	onDisconnect func()
	lastErr      error
}

// New creates a Session. The session dials nothing until Connect.
func New(opts Options) *Session {
	transport := opts.Transport
	if transport == nil {
		transport = NewWebSocketTransport(TransportConfig{})
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	maxAttempts := opts.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxReconnects
	}
	logger := log.L()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Session{
		url:            opts.URL,
		transport:      transport,
		reconnectDelay: delay,
		maxAttempts:    maxAttempts,
		logger:         logger,
		state:          StateIdle,
		subs:           make(map[int64]roomHandlers),
	}
}

// Connect starts the session asynchronously. Completion is signaled via
// onConnect, failure via onDisconnect; nothing is returned here.
// Calling Connect while already connected is a no-op that invokes
// onConnect immediately without opening a second transport. Calling it
// while a dial is in flight is ignored.
func (s *Session) Connect(token string, onConnect, onDisconnect func()) {
	s.mu.Lock()
	switch s.state {
	case StateConnected:
		s.mu.Unlock()
		s.logger.Debug().Msg("chat session already connected")
		if onConnect != nil {
			onConnect()
		}
		return
	case StateConnecting:
		s.mu.Unlock()
		return
	}

	s.token = token
	s.onConnect = onConnect
	s.onDisconnect = onDisconnect
	s.attempts = 0
	s.lastErr = nil
	s.state = StateConnecting
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go s.dial(gen)
}

// Disconnect unsubscribes every active room, tears down the transport
// and stops any pending reconnect. Idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.state == StateIdle || s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.gen++
	conn := s.conn
	if conn != nil {
		for roomID, h := range s.subs {
			s.writeUnsubscribeLocked(roomID, h.onRead != nil)
		}
	}
	s.subs = make(map[int64]roomHandlers)
	s.conn = nil
	prev := s.state
	s.state = StateDisconnected
	cb := s.onDisconnect
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.logger.Info().Msg("chat session disconnected")
	if cb != nil && prev == StateConnected {
		cb()
	}
}

// IsConnected reports whether the session is currently connected.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateConnected
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the last connection-level error, ErrReconnectExhausted
// once the reconnect bound is hit.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers handlers for a room's message topic and, when
// onRead is non-nil, its read topic. Subscribing an already-subscribed
// room is a no-op that keeps the existing handlers.
func (s *Session) Subscribe(roomID int64, onMessage MessageHandler, onRead ReadHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected || s.conn == nil {
		return ErrNotConnected
	}
	if _, ok := s.subs[roomID]; ok {
		s.logger.Debug().Int64(log.FieldRoomID, roomID).Msg("room already subscribed")
		return nil
	}
	if err := s.writeSubscribeLocked(roomID, onRead != nil); err != nil {
		return err
	}
	s.subs[roomID] = roomHandlers{onMessage: onMessage, onRead: onRead}
	s.logger.Info().Int64(log.FieldRoomID, roomID).Msg("room subscribed")
	return nil
}

// Unsubscribe tears down a room's subscriptions. No-op when the room is
// not subscribed. Frames already in flight for the room are dropped on
// arrival.
func (s *Session) Unsubscribe(roomID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.subs[roomID]
	if !ok {
		return
	}
	delete(s.subs, roomID)
	if s.state == StateConnected && s.conn != nil {
		s.writeUnsubscribeLocked(roomID, h.onRead != nil)
	}
	s.logger.Info().Int64(log.FieldRoomID, roomID).Msg("room unsubscribed")
}

// Send publishes a chat message. Fire-and-forget: no broker ack is
// awaited; the sender sees its own message come back on the room topic.
func (s *Session) Send(req chatwire.SendRequest) error {
	return s.publish(chatwire.DestSend, req)
}

// MarkRead publishes a read marker for the room.
func (s *Session) MarkRead(roomID int64) error {
	return s.publish(chatwire.DestRead, chatwire.ReadRequest{ChatRoomID: roomID})
}

func (s *Session) publish(destination string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected || s.conn == nil {
		return ErrNotConnected
	}
	return s.conn.WriteFrame(&chatwire.Frame{
		Type:        chatwire.FramePublish,
		Destination: destination,
		Body:        payload,
	})
}

func (s *Session) dial(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateConnecting {
		s.mu.Unlock()
		return
	}
	url, token := s.url, s.token
	s.mu.Unlock()

	conn, err := s.transport.Dial(context.Background(), url)
	if err != nil {
		s.connFailed(gen, err)
		return
	}

	if err := conn.WriteFrame(&chatwire.Frame{Type: chatwire.FrameConnect, Token: token}); err != nil {
		conn.Close()
		s.connFailed(gen, err)
		return
	}
	reply, err := conn.ReadFrame()
	if err != nil {
		conn.Close()
		s.connFailed(gen, err)
		return
	}
	if reply.Type != chatwire.FrameConnected {
		conn.Close()
		s.connFailed(gen, fmt.Errorf("%w: %s", ErrHandshakeRejected, reply.Message))
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.state != StateConnecting {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.state = StateConnected
	s.attempts = 0
	s.lastErr = nil
	// Replay subscriptions that survived an automatic reconnect.
	for roomID, h := range s.subs {
		if err := s.writeSubscribeLocked(roomID, h.onRead != nil); err != nil {
			s.logger.Warn().Err(err).Int64(log.FieldRoomID, roomID).Msg("failed to replay subscription")
		}
	}
	cb := s.onConnect
	s.mu.Unlock()

	s.logger.Info().Msg("chat session connected")
	if cb != nil {
		cb()
	}
	go s.readLoop(gen, conn)
}

func (s *Session) readLoop(gen uint64, conn Conn) {
	for {
		f, err := conn.ReadFrame()
		if err != nil {
			s.connFailed(gen, err)
			return
		}
		switch f.Type {
		case chatwire.FrameMessage:
			s.dispatch(f)
		case chatwire.FrameError:
			s.logger.Warn().Str("code", f.Code).Str("reason", f.Message).Msg("broker error frame")
		default:
			s.logger.Debug().Str("frame_type", f.Type).Msg("ignoring unexpected frame")
		}
	}
}

// dispatch routes one inbound topic frame to the room's handlers.
// Malformed payloads are logged and dropped without touching the session.
func (s *Session) dispatch(f *chatwire.Frame) {
	roomID, read, ok := chatwire.ParseTopic(f.Destination)
	if !ok {
		s.logger.Debug().Str(log.FieldTopic, f.Destination).Msg("frame for unknown topic namespace")
		return
	}

	s.mu.Lock()
	h, subscribed := s.subs[roomID]
	s.mu.Unlock()
	if !subscribed {
		return
	}

	if read {
		memberID, err := chatwire.DecodeReadEvent(f.Body)
		if err != nil {
			s.logger.Warn().Err(err).Int64(log.FieldRoomID, roomID).Msg("dropping malformed read event")
			return
		}
		if h.onRead != nil {
			h.onRead(memberID)
		}
		return
	}

	msg, err := chatwire.DecodeChatMessage(f.Body)
	if err != nil {
		s.logger.Warn().Err(err).Int64(log.FieldRoomID, roomID).Msg("dropping malformed chat message")
		return
	}
	if h.onMessage != nil {
		h.onMessage(*msg)
	}
}

// connFailed handles a transport-level failure for the given connection
// generation: it fires onDisconnect and either schedules a bounded
// reconnect or parks the session in the failed state.
func (s *Session) connFailed(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.state != StateConnecting && s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.lastErr = err
	cb := s.onDisconnect
	delay := s.reconnectDelay

	retry := false
	var retryGen uint64
	if s.attempts < s.maxAttempts {
		s.attempts++
		s.state = StateConnecting
		s.gen++
		retryGen = s.gen
		retry = true
		s.logger.Warn().Err(err).
			Int("attempt", s.attempts).
			Int("max_attempts", s.maxAttempts).
			Msg("chat connection lost, reconnecting")
	} else {
		s.state = StateFailed
		s.lastErr = fmt.Errorf("%w: %v", ErrReconnectExhausted, err)
		s.logger.Error().Err(err).Msg("chat reconnect attempts exhausted")
	}
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
	if retry {
		time.AfterFunc(delay, func() { s.dial(retryGen) })
	}
}

func (s *Session) writeSubscribeLocked(roomID int64, withRead bool) error {
	if err := s.conn.WriteFrame(&chatwire.Frame{
		Type:        chatwire.FrameSubscribe,
		Destination: chatwire.MessageTopic(roomID),
	}); err != nil {
		return err
	}
	if withRead {
		return s.conn.WriteFrame(&chatwire.Frame{
			Type:        chatwire.FrameSubscribe,
			Destination: chatwire.ReadTopic(roomID),
		})
	}
	return nil
}

func (s *Session) writeUnsubscribeLocked(roomID int64, withRead bool) {
	if err := s.conn.WriteFrame(&chatwire.Frame{
		Type:        chatwire.FrameUnsubscribe,
		Destination: chatwire.MessageTopic(roomID),
	}); err != nil {
		s.logger.Debug().Err(err).Int64(log.FieldRoomID, roomID).Msg("unsubscribe write failed")
		return
	}
	if withRead {
		if err := s.conn.WriteFrame(&chatwire.Frame{
			Type:        chatwire.FrameUnsubscribe,
			Destination: chatwire.ReadTopic(roomID),
		}); err != nil {
			s.logger.Debug().Err(err).Int64(log.FieldRoomID, roomID).Msg("read unsubscribe write failed")
		}
	}
}
