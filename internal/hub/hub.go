package hub

import (
	"encoding/json"
	"sync"

	"github.com/AC-trading/ac-trading/internal/config"
	"github.com/AC-trading/ac-trading/pkg/chatwire"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// Hub fans frames out to websocket clients by topic. Topics are the
// wire destinations, e.g. "chat.42" and "chat.42.read".
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	topics     map[string]map[string]*Client // topic -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *TopicMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

type TopicMessage struct {
	Topic   string
	Message []byte
	Exclude string // Client ID to exclude
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		topics:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *TopicMessage, 256),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for topic, subscribers := range h.topics {
					delete(subscribers, client.ID)
					if len(subscribers) == 0 {
						delete(h.topics, topic)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if subscribers, ok := h.topics[msg.Topic]; ok {
				for clientID, client := range subscribers {
					if clientID == msg.Exclude {
						continue
					}
					select {
					case client.Send <- msg.Message:
					default:
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds the client to a topic. Subscribing twice is a no-op.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[string]*Client)
	}
	h.topics[topic][client.ID] = client
	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldTopic, topic).Msg("client subscribed")
}

func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, ok := h.topics[topic]; ok {
		delete(subscribers, client.ID)
		if len(subscribers) == 0 {
			delete(h.topics, topic)
		}
	}
	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldTopic, topic).Msg("client unsubscribed")
}

// BroadcastFrame delivers a message frame to every subscriber of the
// topic, optionally excluding one client.
func (h *Hub) BroadcastFrame(topic string, body interface{}, exclude string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	frame := &chatwire.Frame{
		Type:        chatwire.FrameMessage,
		Destination: topic,
		Body:        payload,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	h.broadcast <- &TopicMessage{
		Topic:   topic,
		Message: data,
		Exclude: exclude,
	}
	return nil
}

func (h *Hub) TopicSubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subscribers, ok := h.topics[topic]; ok {
		return len(subscribers)
	}
	return 0
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
