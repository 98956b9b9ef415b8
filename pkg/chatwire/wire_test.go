package chatwire

import (
	"errors"
	"testing"
	"time"
)

func strptr(s string) *string { return &s }

func TestParseTopic(t *testing.T) {
	tests := []struct {
		name   string
		topic  string
		roomID int64
		read   bool
		ok     bool
	}{
		{"message topic", "chat.42", 42, false, true},
		{"read topic", "chat.42.read", 42, true, true},
		{"large id", "chat.9000000000", 9000000000, false, true},
		{"zero id", "chat.0", 0, false, false},
		{"negative id", "chat.-3", 0, false, false},
		{"no prefix", "room.42", 0, false, false},
		{"not a number", "chat.abc", 0, false, false},
		{"trailing garbage", "chat.42.extra", 0, false, false},
		{"empty", "", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roomID, read, ok := ParseTopic(tt.topic)
			if roomID != tt.roomID || read != tt.read || ok != tt.ok {
				t.Fatalf("ParseTopic(%q) = (%d, %v, %v), want (%d, %v, %v)",
					tt.topic, roomID, read, ok, tt.roomID, tt.read, tt.ok)
			}
		})
	}
}

func TestTopicRoundTrip(t *testing.T) {
	roomID, read, ok := ParseTopic(MessageTopic(7))
	if !ok || read || roomID != 7 {
		t.Fatalf("MessageTopic round trip failed: (%d, %v, %v)", roomID, read, ok)
	}
	roomID, read, ok = ParseTopic(ReadTopic(7))
	if !ok || !read || roomID != 7 {
		t.Fatalf("ReadTopic round trip failed: (%d, %v, %v)", roomID, read, ok)
	}
}

func TestDecodeChatMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			"valid text",
			`{"id":1,"chatRoomId":5,"senderId":2,"senderNickname":"Tom","messageType":"TEXT","content":"hello"}`,
			false,
		},
		{
			"valid image",
			`{"id":2,"chatRoomId":5,"senderId":2,"messageType":"IMAGE","imageUrl":"https://cdn.example.com/a.png"}`,
			false,
		},
		{
			"text without content",
			`{"id":3,"chatRoomId":5,"senderId":2,"messageType":"TEXT"}`,
			true,
		},
		{
			"text with image",
			`{"id":4,"chatRoomId":5,"senderId":2,"messageType":"TEXT","content":"x","imageUrl":"y"}`,
			true,
		},
		{
			"image with content",
			`{"id":5,"chatRoomId":5,"senderId":2,"messageType":"IMAGE","content":"x","imageUrl":"y"}`,
			true,
		},
		{
			"unknown type",
			`{"id":6,"chatRoomId":5,"senderId":2,"messageType":"VIDEO","content":"x"}`,
			true,
		},
		{
			"missing room",
			`{"id":7,"senderId":2,"messageType":"TEXT","content":"x"}`,
			true,
		},
		{
			"not json",
			`{"id":`,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeChatMessage([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeChatMessage(%s) succeeded, want error", tt.payload)
				}
				if !errors.Is(err, ErrMalformedMessage) {
					t.Fatalf("error %v does not wrap ErrMalformedMessage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeChatMessage(%s) failed: %v", tt.payload, err)
			}
			if msg.ChatRoomID != 5 {
				t.Fatalf("chatRoomId = %d, want 5", msg.ChatRoomID)
			}
		})
	}
}

func TestDecodeReadEvent(t *testing.T) {
	id, err := DecodeReadEvent([]byte("17"))
	if err != nil || id != 17 {
		t.Fatalf("DecodeReadEvent(17) = (%d, %v)", id, err)
	}

	for _, payload := range []string{"0", "-2", `"seventeen"`, `{"memberId":17}`} {
		if _, err := DecodeReadEvent([]byte(payload)); !errors.Is(err, ErrMalformedMessage) {
			t.Fatalf("DecodeReadEvent(%s) = %v, want ErrMalformedMessage", payload, err)
		}
	}
}

func TestIsMine(t *testing.T) {
	msg := ChatMessage{SenderID: 3}
	if !msg.IsMine(3) {
		t.Fatal("message from 3 should be mine for member 3")
	}
	if msg.IsMine(4) {
		t.Fatal("message from 3 should not be mine for member 4")
	}
}

func TestApplyReadEvent(t *testing.T) {
	const self, other = int64(1), int64(2)

	msgs := []ChatMessage{
		{ID: 1, SenderID: self, IsRead: false},
		{ID: 2, SenderID: other, IsRead: false},
		{ID: 3, SenderID: self, IsRead: true},
		{ID: 4, SenderID: self, IsRead: false},
	}

	// The counterpart reading flips only self's unread messages.
	if got := ApplyReadEvent(msgs, other, self); got != 2 {
		t.Fatalf("first apply flipped %d, want 2", got)
	}
	if !msgs[0].IsRead || !msgs[3].IsRead {
		t.Fatal("self's unread messages were not flipped")
	}
	if msgs[1].IsRead {
		t.Fatal("counterpart's own message must stay untouched")
	}

	// Reapplying the same event is a no-op.
	if got := ApplyReadEvent(msgs, other, self); got != 0 {
		t.Fatalf("second apply flipped %d, want 0", got)
	}

	// An echo of the local member's own read action changes nothing.
	fresh := []ChatMessage{{ID: 5, SenderID: self, IsRead: false}}
	if got := ApplyReadEvent(fresh, self, self); got != 0 || fresh[0].IsRead {
		t.Fatalf("own read event applied: flipped=%d isRead=%v", got, fresh[0].IsRead)
	}
}

func TestValidateCreatedAtPassthrough(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	msg := ChatMessage{
		ID:          1,
		ChatRoomID:  9,
		SenderID:    2,
		MessageType: MessageTypeText,
		Content:     strptr("hi"),
		CreatedAt:   now,
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}
