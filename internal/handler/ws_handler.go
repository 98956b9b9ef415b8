package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AC-trading/ac-trading/internal/config"
	"github.com/AC-trading/ac-trading/internal/hub"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/chatwire"
	"github.com/AC-trading/ac-trading/pkg/jwt"
	"github.com/AC-trading/ac-trading/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler terminates chat websocket connections. The client opens the
// socket, sends a connect frame carrying its access token, then
// subscribes to room topics and publishes to the chat destinations.
type WSHandler struct {
	hub     *hub.Hub
	chat    service.ChatService
	members service.MemberService
	tokens  *jwt.Manager
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, chat service.ChatService, members service.MemberService, tokens *jwt.Manager, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		chat:    chat,
		members: members,
		tokens:  tokens,
		wsCfg:   wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client, ok := h.handshake(c, conn)
	if !ok {
		conn.Close()
		return
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleFrame)
}

// handshake authenticates the connection from its first frame. A token
// query parameter is accepted as a fallback for clients that cannot set
// up the connect frame, mirroring browser websocket limitations.
func (h *WSHandler) handshake(c *gin.Context, conn *websocket.Conn) (*hub.Client, bool) {
	token := c.Query("token")
	if token == "" {
		conn.SetReadDeadline(time.Now().Add(h.wsCfg.HandshakeTimeout))
		var frame chatwire.Frame
		if err := conn.ReadJSON(&frame); err != nil || frame.Type != chatwire.FrameConnect {
			writeFrame(conn, chatwire.NewErrorFrame(chatwire.CodeBadRequest, "expected connect frame"))
			return nil, false
		}
		token = frame.Token
		conn.SetReadDeadline(time.Time{})
	}

	claims, err := h.tokens.Validate(token)
	if err != nil || claims.Type != jwt.TypeAccess {
		writeFrame(conn, chatwire.NewErrorFrame(chatwire.CodeUnauthorized, "invalid token"))
		return nil, false
	}

	member, err := h.members.Resolve(c.Request.Context(), claims.MemberUUID)
	if err != nil {
		writeFrame(conn, chatwire.NewErrorFrame(chatwire.CodeUnauthorized, "unknown member"))
		return nil, false
	}

	client := hub.NewClient(uuid.New().String(), member.ID, member.Nickname, h.hub, conn, h.wsCfg)

	body, _ := json.Marshal(chatwire.ConnectedBody{MemberID: member.ID, Nickname: member.Nickname})
	writeFrame(conn, &chatwire.Frame{Type: chatwire.FrameConnected, Body: body})

	l := log.L()
	l.Info().
		Str(log.FieldClientID, client.ID).
		Int64(log.FieldMemberID, member.ID).
		Msg("websocket client connected")
	return client, true
}

func (h *WSHandler) handleFrame(client *hub.Client, message []byte) {
	var frame chatwire.Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "invalid frame"))
		return
	}

	ctx := context.Background()

	switch frame.Type {
	case chatwire.FrameSubscribe:
		h.handleSubscribe(ctx, client, frame.Destination)

	case chatwire.FrameUnsubscribe:
		h.hub.Unsubscribe(client, frame.Destination)

	case chatwire.FramePublish:
		h.handlePublish(ctx, client, &frame)

	case chatwire.FrameConnect:
		// Already authenticated; ignore.

	default:
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "unknown frame type"))
	}
}

func (h *WSHandler) handleSubscribe(ctx context.Context, client *hub.Client, topic string) {
	roomID, _, ok := chatwire.ParseTopic(topic)
	if !ok {
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "unknown topic"))
		return
	}

	if err := h.chat.CanAccessRoom(ctx, roomID, client.MemberID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotParticipant):
			client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeForbidden, "not a participant"))
		case errors.Is(err, repository.ErrRoomNotFound):
			client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "room not found"))
		default:
			client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeInternal, "subscription failed"))
		}
		return
	}

	h.hub.Subscribe(client, topic)
}

func (h *WSHandler) handlePublish(ctx context.Context, client *hub.Client, frame *chatwire.Frame) {
	switch frame.Destination {
	case chatwire.DestSend:
		var req chatwire.SendRequest
		if err := json.Unmarshal(frame.Body, &req); err != nil {
			client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "invalid send payload"))
			return
		}

		msg, err := h.chat.SaveMessage(ctx, client.MemberID, &req)
		if err != nil {
			h.publishError(client, err)
			return
		}
		if err := h.hub.BroadcastFrame(chatwire.MessageTopic(msg.ChatRoomID), msg, ""); err != nil {
			l := log.L()
			l.Error().Err(err).Int64(log.FieldRoomID, msg.ChatRoomID).Msg("failed to broadcast message")
		}

	case chatwire.DestRead:
		var req chatwire.ReadRequest
		if err := json.Unmarshal(frame.Body, &req); err != nil {
			client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "invalid read payload"))
			return
		}

		changed, err := h.chat.MarkMessagesRead(ctx, req.ChatRoomID, client.MemberID)
		if err != nil {
			h.publishError(client, err)
			return
		}
		if changed > 0 {
			// The read-receipt body is the reader's member id.
			if err := h.hub.BroadcastFrame(chatwire.ReadTopic(req.ChatRoomID), client.MemberID, ""); err != nil {
				l := log.L()
				l.Error().Err(err).Int64(log.FieldRoomID, req.ChatRoomID).Msg("failed to broadcast read receipt")
			}
		}

	default:
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "unknown destination"))
	}
}

func (h *WSHandler) publishError(client *hub.Client, err error) {
	switch {
	case errors.Is(err, service.ErrNotParticipant):
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeForbidden, "not a participant"))
	case errors.Is(err, service.ErrRoomLeft):
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeForbidden, "chat room was left"))
	case errors.Is(err, service.ErrInvalidMessage):
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "invalid message"))
	case errors.Is(err, repository.ErrRoomNotFound):
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeBadRequest, "room not found"))
	default:
		client.SendJSON(chatwire.NewErrorFrame(chatwire.CodeInternal, "publish failed"))
	}
}

func writeFrame(conn *websocket.Conn, frame *chatwire.Frame) {
	conn.WriteJSON(frame)
}
