package chatclient

import "errors"

var (
	// ErrTransportUnavailable reports that no websocket connection could
	// be established to the broker endpoint.
	ErrTransportUnavailable = errors.New("chatclient: transport unavailable")

	// ErrNotConnected reports an operation attempted outside the
	// connected state. Callers should check IsConnected and disable the
	// send affordance while it holds.
	ErrNotConnected = errors.New("chatclient: not connected")

	// ErrReconnectExhausted reports that automatic reconnection gave up
	// after the configured attempt bound. Only a fresh Connect recovers.
	ErrReconnectExhausted = errors.New("chatclient: reconnect attempts exhausted")

	// ErrHandshakeRejected reports that the broker refused the connect
	// frame, typically because the bearer token was invalid.
	ErrHandshakeRejected = errors.New("chatclient: handshake rejected")
)
