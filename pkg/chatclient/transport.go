package chatclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AC-trading/ac-trading/pkg/chatwire"
)

// Conn is one established broker connection. Implementations deliver
// frames in the order the broker sent them and keep the link alive with
// websocket ping/pong; they do not buffer or retry. Retry belongs to
// the session's reconnect policy.
type Conn interface {
	ReadFrame() (*chatwire.Frame, error)
	WriteFrame(f *chatwire.Frame) error
	// Close is idempotent; closing a closed connection is a no-op.
	Close() error
}

// Transport establishes broker connections.
type Transport interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// TransportConfig tunes the websocket transport keepalive behaviour.
type TransportConfig struct {
	DialTimeout  time.Duration
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
}

func (c *TransportConfig) withDefaults() TransportConfig {
	out := *c
	if out.DialTimeout <= 0 {
		out.DialTimeout = 10 * time.Second
	}
	if out.PingInterval <= 0 {
		out.PingInterval = 30 * time.Second
	}
	if out.PongWait <= 0 {
		out.PongWait = 60 * time.Second
	}
	if out.WriteWait <= 0 {
		out.WriteWait = 10 * time.Second
	}
	return out
}

// NewWebSocketTransport returns the default gorilla-based transport.
func NewWebSocketTransport(cfg TransportConfig) Transport {
	return &wsTransport{cfg: cfg.withDefaults()}
}

type wsTransport struct {
	cfg TransportConfig
}

func (t *wsTransport) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: t.cfg.DialTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %v", ErrHandshakeRejected, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	c := &wsConn{
		conn: conn,
		cfg:  t.cfg,
		done: make(chan struct{}),
	}
	conn.SetReadDeadline(time.Now().Add(t.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(t.cfg.PongWait))
		return nil
	})
	go c.pingLoop()
	return c, nil
}

type wsConn struct {
	conn *websocket.Conn
	cfg  TransportConfig

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func (c *wsConn) ReadFrame() (*chatwire.Frame, error) {
	var f chatwire.Frame
	if err := c.conn.ReadJSON(&f); err != nil {
		return nil, err
	}
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	return &f, nil
}

func (c *wsConn) WriteFrame(f *chatwire.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	return c.conn.WriteJSON(f)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.conn.Close()
	})
	return nil
}

func (c *wsConn) pingLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
