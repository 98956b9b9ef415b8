package chatclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AC-trading/ac-trading/pkg/chatwire"
)

// fakeConn is an in-memory broker connection. WriteFrame answers the
// connect frame immediately so the session's handshake never blocks;
// everything else is recorded for assertions.
type fakeConn struct {
	reject  bool
	inbound chan *chatwire.Frame

	mu      sync.Mutex
	written []*chatwire.Frame

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn(reject bool) *fakeConn {
	return &fakeConn{
		reject:  reject,
		inbound: make(chan *chatwire.Frame, 16),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadFrame() (*chatwire.Frame, error) {
	select {
	case f := <-c.inbound:
		return f, nil
	case <-c.closed:
		return nil, errors.New("connection closed")
	}
}

func (c *fakeConn) WriteFrame(f *chatwire.Frame) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	c.mu.Lock()
	c.written = append(c.written, f)
	c.mu.Unlock()

	if f.Type == chatwire.FrameConnect {
		if c.reject {
			c.inbound <- &chatwire.Frame{Type: chatwire.FrameError, Code: chatwire.CodeUnauthorized, Message: "bad token"}
		} else {
			c.inbound <- &chatwire.Frame{Type: chatwire.FrameConnected}
		}
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// dropFromServer simulates the broker side going away.
func (c *fakeConn) dropFromServer() { c.Close() }

func (c *fakeConn) deliver(topic string, body []byte) {
	c.inbound <- &chatwire.Frame{Type: chatwire.FrameMessage, Destination: topic, Body: body}
}

func (c *fakeConn) countWritten(frameType, destination string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, f := range c.written {
		if f.Type == frameType && (destination == "" || f.Destination == destination) {
			n++
		}
	}
	return n
}

func (c *fakeConn) lastToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.written {
		if f.Type == chatwire.FrameConnect {
			return f.Token
		}
	}
	return ""
}

type fakeTransport struct {
	mu        sync.Mutex
	conns     []*fakeConn
	dials     int
	failDials int // fail the first N dials
	failAll   bool
	reject    bool
}

func (t *fakeTransport) Dial(ctx context.Context, url string) (Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dials++
	if t.failAll || t.dials <= t.failDials {
		return nil, ErrTransportUnavailable
	}
	conn := newFakeConn(t.reject)
	t.conns = append(t.conns, conn)
	return conn, nil
}

func (t *fakeTransport) dialCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dials
}

func (t *fakeTransport) conn(i int) *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 {
		i = len(t.conns) + i
	}
	return t.conns[i]
}

func newTestSession(transport Transport, maxAttempts int) *Session {
	return New(Options{
		URL:                  "ws://test/ws/chat",
		Transport:            transport,
		ReconnectDelay:       time.Millisecond,
		MaxReconnectAttempts: maxAttempts,
	})
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func connectOrFail(t *testing.T, s *Session, token string) {
	t.Helper()
	s.Connect(token, nil, nil)
	waitFor(t, s.IsConnected, "session never connected")
}

func TestConnectHandshake(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	defer session.Disconnect()

	connected := make(chan struct{}, 1)
	session.Connect("token-abc", func() { connected <- struct{}{} }, nil)

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("onConnect never fired")
	}
	if session.State() != StateConnected {
		t.Fatalf("state = %v, want connected", session.State())
	}
	if got := transport.conn(0).lastToken(); got != "token-abc" {
		t.Fatalf("connect frame token = %q", got)
	}
}

func TestConnectWhileConnectedIsNoop(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	defer session.Disconnect()
	connectOrFail(t, session, "t")

	called := make(chan struct{}, 1)
	session.Connect("t", func() { called <- struct{}{} }, nil)
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("second Connect did not invoke onConnect")
	}
	if n := transport.dialCount(); n != 1 {
		t.Fatalf("dials = %d, want 1", n)
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	session := newTestSession(&fakeTransport{}, 3)

	if err := session.Subscribe(1, nil, nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Subscribe before connect = %v, want ErrNotConnected", err)
	}
	err := session.Send(chatwire.SendRequest{ChatRoomID: 1, MessageType: chatwire.MessageTypeText, Content: "hi"})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send before connect = %v, want ErrNotConnected", err)
	}
	if err := session.MarkRead(1); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("MarkRead before connect = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	defer session.Disconnect()
	connectOrFail(t, session, "t")

	got := make(chan chatwire.ChatMessage, 4)
	handler := func(msg chatwire.ChatMessage) { got <- msg }
	if err := session.Subscribe(5, handler, func(int64) {}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	// Second subscribe keeps the first handlers and writes nothing.
	if err := session.Subscribe(5, func(chatwire.ChatMessage) { t.Error("replacement handler fired") }, nil); err != nil {
		t.Fatalf("repeat Subscribe: %v", err)
	}

	conn := transport.conn(0)
	if n := conn.countWritten(chatwire.FrameSubscribe, chatwire.MessageTopic(5)); n != 1 {
		t.Fatalf("message topic subscribed %d times, want 1", n)
	}
	if n := conn.countWritten(chatwire.FrameSubscribe, chatwire.ReadTopic(5)); n != 1 {
		t.Fatalf("read topic subscribed %d times, want 1", n)
	}

	conn.deliver(chatwire.MessageTopic(5),
		[]byte(`{"id":1,"chatRoomId":5,"senderId":2,"messageType":"TEXT","content":"hello"}`))
	select {
	case msg := <-got:
		if msg.ID != 1 || msg.SenderID != 2 {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("subscribed handler never fired")
	}
}

func TestDispatchRouting(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	defer session.Disconnect()
	connectOrFail(t, session, "t")

	msgs := make(chan chatwire.ChatMessage, 4)
	reads := make(chan int64, 4)
	if err := session.Subscribe(7, func(m chatwire.ChatMessage) { msgs <- m }, func(id int64) { reads <- id }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	conn := transport.conn(0)
	// Frames for rooms nobody subscribed to and malformed payloads are
	// dropped without disturbing the session.
	conn.deliver(chatwire.MessageTopic(99),
		[]byte(`{"id":1,"chatRoomId":99,"senderId":2,"messageType":"TEXT","content":"x"}`))
	conn.deliver(chatwire.MessageTopic(7), []byte(`{"broken`))
	conn.deliver(chatwire.ReadTopic(7), []byte(`"not a number"`))

	conn.deliver(chatwire.ReadTopic(7), []byte(`42`))
	select {
	case id := <-reads:
		if id != 42 {
			t.Fatalf("read event member id = %d, want 42", id)
		}
	case <-time.After(time.Second):
		t.Fatal("read handler never fired")
	}

	conn.deliver(chatwire.MessageTopic(7),
		[]byte(`{"id":9,"chatRoomId":7,"senderId":3,"messageType":"IMAGE","imageUrl":"https://cdn/x.png"}`))
	select {
	case m := <-msgs:
		if m.ID != 9 || m.MessageType != chatwire.MessageTypeImage {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-time.After(time.Second):
		t.Fatal("message handler never fired")
	}
	if len(msgs) != 0 || len(reads) != 0 {
		t.Fatal("dropped frames reached handlers")
	}
	if !session.IsConnected() {
		t.Fatal("session lost connection over malformed frames")
	}
}

func TestUnsubscribeStopsDispatch(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	defer session.Disconnect()
	connectOrFail(t, session, "t")

	msgs := make(chan chatwire.ChatMessage, 4)
	if err := session.Subscribe(3, func(m chatwire.ChatMessage) { msgs <- m }, func(int64) {}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	session.Unsubscribe(3)
	session.Unsubscribe(3) // no-op

	conn := transport.conn(0)
	if n := conn.countWritten(chatwire.FrameUnsubscribe, chatwire.MessageTopic(3)); n != 1 {
		t.Fatalf("message topic unsubscribed %d times, want 1", n)
	}
	if n := conn.countWritten(chatwire.FrameUnsubscribe, chatwire.ReadTopic(3)); n != 1 {
		t.Fatalf("read topic unsubscribed %d times, want 1", n)
	}

	conn.deliver(chatwire.MessageTopic(3),
		[]byte(`{"id":1,"chatRoomId":3,"senderId":2,"messageType":"TEXT","content":"late"}`))
	select {
	case <-msgs:
		t.Fatal("handler fired after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishFrames(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	defer session.Disconnect()
	connectOrFail(t, session, "t")

	err := session.Send(chatwire.SendRequest{ChatRoomID: 4, MessageType: chatwire.MessageTypeText, Content: "hi"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := session.MarkRead(4); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	conn := transport.conn(0)
	if n := conn.countWritten(chatwire.FramePublish, chatwire.DestSend); n != 1 {
		t.Fatalf("send frames = %d, want 1", n)
	}
	if n := conn.countWritten(chatwire.FramePublish, chatwire.DestRead); n != 1 {
		t.Fatalf("read frames = %d, want 1", n)
	}
}

func TestReconnectReplaysSubscriptions(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	defer session.Disconnect()
	connectOrFail(t, session, "t")

	msgs := make(chan chatwire.ChatMessage, 4)
	if err := session.Subscribe(8, func(m chatwire.ChatMessage) { msgs <- m }, func(int64) {}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	transport.conn(0).dropFromServer()
	waitFor(t, func() bool { return transport.dialCount() == 2 && session.IsConnected() },
		"session never reconnected")

	conn := transport.conn(1)
	waitFor(t, func() bool {
		return conn.countWritten(chatwire.FrameSubscribe, chatwire.MessageTopic(8)) == 1 &&
			conn.countWritten(chatwire.FrameSubscribe, chatwire.ReadTopic(8)) == 1
	}, "subscription was not replayed after reconnect")

	// The replayed subscription still dispatches to the original handler.
	conn.deliver(chatwire.MessageTopic(8),
		[]byte(`{"id":2,"chatRoomId":8,"senderId":9,"messageType":"TEXT","content":"back"}`))
	select {
	case <-msgs:
	case <-time.After(time.Second):
		t.Fatal("handler never fired after reconnect")
	}
}

func TestReconnectExhausted(t *testing.T) {
	transport := &fakeTransport{failAll: true}
	session := newTestSession(transport, 2)

	disconnects := make(chan struct{}, 8)
	session.Connect("t", func() { t.Error("onConnect fired for failing transport") },
		func() { disconnects <- struct{}{} })

	waitFor(t, func() bool { return session.State() == StateFailed }, "session never failed")

	// Initial dial plus the bounded retries, then nothing more.
	if n := transport.dialCount(); n != 3 {
		t.Fatalf("dials = %d, want 3", n)
	}
	time.Sleep(20 * time.Millisecond)
	if n := transport.dialCount(); n != 3 {
		t.Fatalf("dials after failure = %d, retries continued past the bound", n)
	}
	if err := session.Err(); !errors.Is(err, ErrReconnectExhausted) {
		t.Fatalf("Err() = %v, want ErrReconnectExhausted", err)
	}
	if len(disconnects) != 3 {
		t.Fatalf("onDisconnect fired %d times, want 3", len(disconnects))
	}
}

func TestReconnectCounterResetsOnSuccess(t *testing.T) {
	transport := &fakeTransport{failDials: 2}
	session := newTestSession(transport, 2)
	defer session.Disconnect()

	session.Connect("t", nil, nil)
	waitFor(t, session.IsConnected, "session never connected through flaky dials")
	if n := transport.dialCount(); n != 3 {
		t.Fatalf("dials = %d, want 3", n)
	}

	// A fresh failure gets the full budget again rather than the leftover.
	transport.mu.Lock()
	transport.failAll = true
	transport.mu.Unlock()
	transport.conn(0).dropFromServer()

	waitFor(t, func() bool { return session.State() == StateFailed }, "session never failed")
	if n := transport.dialCount(); n != 5 {
		t.Fatalf("dials = %d, want 5 (two retries after the reset)", n)
	}
}

func TestHandshakeRejection(t *testing.T) {
	transport := &fakeTransport{reject: true}
	session := newTestSession(transport, 1)

	session.Connect("bad-token", nil, nil)
	waitFor(t, func() bool { return session.State() == StateFailed }, "session never failed")

	if err := session.Err(); !errors.Is(err, ErrReconnectExhausted) {
		t.Fatalf("Err() = %v, want ErrReconnectExhausted", err)
	}
}

func TestDisconnectClearsSubscriptions(t *testing.T) {
	transport := &fakeTransport{}
	session := newTestSession(transport, 3)
	connectOrFail(t, session, "t")

	if err := session.Subscribe(6, func(chatwire.ChatMessage) {}, func(int64) {}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	session.Disconnect()
	session.Disconnect() // idempotent

	if session.State() != StateDisconnected {
		t.Fatalf("state = %v, want disconnected", session.State())
	}
	conn := transport.conn(0)
	if n := conn.countWritten(chatwire.FrameUnsubscribe, chatwire.MessageTopic(6)); n != 1 {
		t.Fatalf("disconnect wrote %d unsubscribe frames, want 1", n)
	}
	if err := session.MarkRead(6); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("MarkRead after disconnect = %v, want ErrNotConnected", err)
	}

	// Reconnecting starts clean: the old room is not replayed.
	connectOrFail(t, session, "t")
	defer session.Disconnect()
	if n := transport.conn(1).countWritten(chatwire.FrameSubscribe, ""); n != 0 {
		t.Fatalf("fresh connection replayed %d subscriptions, want 0", n)
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateIdle:         "idle",
		StateConnecting:   "connecting",
		StateConnected:    "connected",
		StateDisconnected: "disconnected",
		StateFailed:       "failed",
		State(99):         "unknown",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
