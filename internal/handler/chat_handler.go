package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// ChatHandler serves chat room REST endpoints. Live messaging runs over
// the websocket endpoint; these routes cover room management, history
// and the trade lifecycle.
type ChatHandler struct {
	chat service.ChatService
}

func NewChatHandler(chat service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// CreateRoom handles POST /api/chat/rooms.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req domain.ChatRoomCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.chat.CreateRoom(c.Request.Context(), middleware.MemberUUID(c), req.PostID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListRooms handles GET /api/chat/rooms.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	page, size := pagination(c)
	resp, err := h.chat.ListRooms(c.Request.Context(), middleware.MemberUUID(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// GetRoom handles GET /api/chat/rooms/:id.
func (h *ChatHandler) GetRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.chat.GetRoom(c.Request.Context(), middleware.MemberUUID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// ListMessages handles GET /api/chat/rooms/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, size := pagination(c)
	resp, err := h.chat.ListMessages(c.Request.Context(), middleware.MemberUUID(c), id, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Reserve handles POST /api/chat/rooms/:id/reserve.
func (h *ChatHandler) Reserve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.chat.Reserve(c.Request.Context(), middleware.MemberUUID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Unreserve handles DELETE /api/chat/rooms/:id/reserve.
func (h *ChatHandler) Unreserve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.chat.Unreserve(c.Request.Context(), middleware.MemberUUID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Complete handles POST /api/chat/rooms/:id/complete.
func (h *ChatHandler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.chat.Complete(c.Request.Context(), middleware.MemberUUID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Leave handles DELETE /api/chat/rooms/:id.
func (h *ChatHandler) Leave(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.chat.Leave(c.Request.Context(), middleware.MemberUUID(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
