package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/AC-trading/ac-trading/internal/config"
	"github.com/AC-trading/ac-trading/pkg/chatwire"
)

func newTestHub() *Hub {
	h := NewHub(config.WebSocketConfig{})
	go h.Run()
	return h
}

// testClient builds a client without a websocket connection; tests read
// straight from the Send channel instead of running the pumps.
func testClient(h *Hub, id string, memberID int64) *Client {
	return NewClient(id, memberID, "tester", h, nil, config.WebSocketConfig{})
}

func recvFrame(t *testing.T, c *Client) *chatwire.Frame {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var f chatwire.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("bad frame payload: %v", err)
		}
		return &f
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func expectNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToSubscribers(t *testing.T) {
	h := newTestHub()
	a := testClient(h, "client-a", 1)
	b := testClient(h, "client-b", 2)
	h.Register(a)
	h.Register(b)
	defer h.Unregister(a)
	defer h.Unregister(b)

	topic := chatwire.MessageTopic(5)
	h.Subscribe(a, topic)
	h.Subscribe(b, topic)
	if n := h.TopicSubscriberCount(topic); n != 2 {
		t.Fatalf("subscriber count = %d, want 2", n)
	}

	if err := h.BroadcastFrame(topic, map[string]string{"content": "hello"}, ""); err != nil {
		t.Fatalf("BroadcastFrame: %v", err)
	}

	for _, c := range []*Client{a, b} {
		f := recvFrame(t, c)
		if f.Type != chatwire.FrameMessage || f.Destination != topic {
			t.Fatalf("frame = %+v", f)
		}
		var body map[string]string
		if err := json.Unmarshal(f.Body, &body); err != nil || body["content"] != "hello" {
			t.Fatalf("frame body = %s (%v)", f.Body, err)
		}
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	h := newTestHub()
	a := testClient(h, "client-a", 1)
	b := testClient(h, "client-b", 2)
	h.Register(a)
	h.Register(b)
	defer h.Unregister(a)
	defer h.Unregister(b)

	topic := chatwire.ReadTopic(5)
	h.Subscribe(a, topic)
	h.Subscribe(b, topic)

	if err := h.BroadcastFrame(topic, int64(1), a.ID); err != nil {
		t.Fatalf("BroadcastFrame: %v", err)
	}

	f := recvFrame(t, b)
	var memberID int64
	if err := json.Unmarshal(f.Body, &memberID); err != nil || memberID != 1 {
		t.Fatalf("read body = %s (%v)", f.Body, err)
	}
	expectNoFrame(t, a)
}

func TestBroadcastIgnoresOtherTopics(t *testing.T) {
	h := newTestHub()
	a := testClient(h, "client-a", 1)
	h.Register(a)
	defer h.Unregister(a)

	h.Subscribe(a, chatwire.MessageTopic(5))
	if err := h.BroadcastFrame(chatwire.MessageTopic(6), "x", ""); err != nil {
		t.Fatalf("BroadcastFrame: %v", err)
	}
	expectNoFrame(t, a)
}

func TestUnsubscribe(t *testing.T) {
	h := newTestHub()
	a := testClient(h, "client-a", 1)
	h.Register(a)
	defer h.Unregister(a)

	topic := chatwire.MessageTopic(9)
	h.Subscribe(a, topic)
	h.Subscribe(a, topic) // idempotent
	if n := h.TopicSubscriberCount(topic); n != 1 {
		t.Fatalf("subscriber count = %d, want 1", n)
	}

	h.Unsubscribe(a, topic)
	if n := h.TopicSubscriberCount(topic); n != 0 {
		t.Fatalf("subscriber count after unsubscribe = %d", n)
	}

	if err := h.BroadcastFrame(topic, "x", ""); err != nil {
		t.Fatalf("BroadcastFrame: %v", err)
	}
	expectNoFrame(t, a)
}

func TestUnregisterDropsAllSubscriptions(t *testing.T) {
	h := newTestHub()
	a := testClient(h, "client-a", 1)
	h.Register(a)

	h.Subscribe(a, chatwire.MessageTopic(1))
	h.Subscribe(a, chatwire.ReadTopic(1))
	h.Unregister(a)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.TopicSubscriberCount(chatwire.MessageTopic(1)) == 0 &&
			h.TopicSubscriberCount(chatwire.ReadTopic(1)) == 0 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if h.TopicSubscriberCount(chatwire.MessageTopic(1)) != 0 {
		t.Fatal("unregister left topic subscriptions behind")
	}

	// The hub closes the send channel on unregister.
	select {
	case _, ok := <-a.Send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	h := newTestHub()
	a := testClient(h, "client-a", 1)
	h.Register(a)

	topic := chatwire.MessageTopic(3)
	h.Subscribe(a, topic)

	// Jam the send buffer so the next broadcast cannot be queued.
	for i := 0; i < cap(a.Send); i++ {
		a.Send <- []byte("{}")
	}
	if err := h.BroadcastFrame(topic, "overflow", ""); err != nil {
		t.Fatalf("BroadcastFrame: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.TopicSubscriberCount(topic) == 0 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("slow client was not unregistered")
}
