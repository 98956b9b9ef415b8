package events

import (
	"context"
	"time"
)

// Chat event types published to the event stream.
const (
	EventMessageSent    = "MESSAGE_SENT"
	EventMessagesRead   = "MESSAGES_READ"
	EventTradeReserved  = "TRADE_RESERVED"
	EventTradeCompleted = "TRADE_COMPLETED"
	EventOfferReceived  = "PRICE_OFFER_RECEIVED"
	EventOfferAccepted  = "PRICE_OFFER_ACCEPTED"
	EventOfferRejected  = "PRICE_OFFER_REJECTED"
)

// ChatEvent is the record published for downstream consumers such as
// push notification and analytics pipelines.
type ChatEvent struct {
	Type       string    `json:"type"`
	ChatRoomID int64     `json:"chatRoomId,omitempty"`
	PostID     int64     `json:"postId,omitempty"`
	ActorID    int64     `json:"actorId"`
	TargetID   int64     `json:"targetId,omitempty"`
	MessageID  int64     `json:"messageId,omitempty"`
	OfferID    int64     `json:"offerId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventProducer publishes chat events.
type EventProducer interface {
	Produce(ctx context.Context, event *ChatEvent) error
	Close() error
}
