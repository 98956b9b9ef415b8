// Package chatwire defines the frames and payloads carried over the /ws
// chat endpoint. Both the server broker and the client session manager
// speak this contract.
package chatwire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frame types.
const (
	FrameConnect     = "connect"     // client -> server, carries bearer token
	FrameConnected   = "connected"   // server -> client, handshake success
	FrameSubscribe   = "subscribe"   // client -> server
	FrameUnsubscribe = "unsubscribe" // client -> server
	FramePublish     = "publish"     // client -> server, app destination
	FrameMessage     = "message"     // server -> client, topic delivery
	FrameError       = "error"       // server -> client
)

// Error codes carried on error frames.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL_ERROR"
)

// Application destinations (client publishes).
const (
	DestSend = "chat.send"
	DestRead = "chat.read"
)

// Frame is the envelope for every websocket message on the chat endpoint.
type Frame struct {
	Type        string          `json:"type"`
	Destination string          `json:"destination,omitempty"`
	Token       string          `json:"token,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	Code        string          `json:"code,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// NewErrorFrame builds an error frame.
func NewErrorFrame(code, message string) *Frame {
	return &Frame{Type: FrameError, Code: code, Message: message}
}

// MessageTopic returns the per-room message topic.
func MessageTopic(roomID int64) string {
	return fmt.Sprintf("chat.%d", roomID)
}

// ReadTopic returns the per-room read-receipt topic.
func ReadTopic(roomID int64) string {
	return MessageTopic(roomID) + ".read"
}

// ParseTopic splits a topic into its room id and whether it is the
// read-receipt sibling. ok is false for destinations outside the chat
// topic namespace.
func ParseTopic(topic string) (roomID int64, read bool, ok bool) {
	rest, found := strings.CutPrefix(topic, "chat.")
	if !found {
		return 0, false, false
	}
	rest, read = strings.CutSuffix(rest, ".read")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, false
	}
	return id, read, true
}

// Message kinds.
const (
	MessageTypeText  = "TEXT"
	MessageTypeImage = "IMAGE"
)

// ErrMalformedMessage reports an inbound payload that failed to decode
// into the expected shape. The frame is dropped; the session stays up.
var ErrMalformedMessage = errors.New("chatwire: malformed message payload")

// ChatMessage is the immutable wire form of a delivered chat message.
// Exactly one of Content and ImageURL is set; which one is dictated by
// MessageType.
type ChatMessage struct {
	ID             int64     `json:"id"`
	ChatRoomID     int64     `json:"chatRoomId"`
	SenderID       int64     `json:"senderId"`
	SenderNickname string    `json:"senderNickname"`
	MessageType    string    `json:"messageType"`
	Content        *string   `json:"content"`
	ImageURL       *string   `json:"imageUrl"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsMine reports whether the message was sent by the given member.
// This comparison is the sole basis for left/right alignment and for
// deciding whether a read event applies to a message.
func (m *ChatMessage) IsMine(selfID int64) bool {
	return m.SenderID == selfID
}

// Validate enforces the content/image exclusivity rule.
func (m *ChatMessage) Validate() error {
	hasContent := m.Content != nil
	hasImage := m.ImageURL != nil
	switch m.MessageType {
	case MessageTypeText:
		if !hasContent || hasImage {
			return fmt.Errorf("%w: TEXT message must carry content only", ErrMalformedMessage)
		}
	case MessageTypeImage:
		if hasContent || !hasImage {
			return fmt.Errorf("%w: IMAGE message must carry imageUrl only", ErrMalformedMessage)
		}
	default:
		return fmt.Errorf("%w: unknown messageType %q", ErrMalformedMessage, m.MessageType)
	}
	if m.ChatRoomID <= 0 {
		return fmt.Errorf("%w: missing chatRoomId", ErrMalformedMessage)
	}
	return nil
}

// DecodeChatMessage parses and validates an inbound chat message payload.
// Invalid messages never reach display callbacks.
func DecodeChatMessage(data []byte) (*ChatMessage, error) {
	var m ChatMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// DecodeReadEvent parses a read-topic payload: the acting member's id.
func DecodeReadEvent(data []byte) (int64, error) {
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: read event carries no member id", ErrMalformedMessage)
	}
	return id, nil
}

// ApplyReadEvent flips the read flag on the subset of locally held
// messages the counterpart has just read: messages sent by selfID that
// are still unread. Events echoing the local member's own read action
// change nothing. Returns the number of messages flipped; already-read
// messages are untouched, so applying the same event twice is a no-op.
func ApplyReadEvent(msgs []ChatMessage, readerID, selfID int64) int {
	if readerID == selfID {
		return 0
	}
	flipped := 0
	for i := range msgs {
		if msgs[i].SenderID == selfID && !msgs[i].IsRead {
			msgs[i].IsRead = true
			flipped++
		}
	}
	return flipped
}

// SendRequest is the publish body for chat.send.
type SendRequest struct {
	ChatRoomID  int64  `json:"chatRoomId"`
	MessageType string `json:"messageType,omitempty"`
	Content     string `json:"content,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// ReadRequest is the publish body for chat.read.
type ReadRequest struct {
	ChatRoomID int64 `json:"chatRoomId"`
}

// ConnectedBody is the handshake reply payload.
type ConnectedBody struct {
	MemberID int64  `json:"memberId"`
	Nickname string `json:"nickname"`
}
