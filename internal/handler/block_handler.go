package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// BlockHandler serves member block endpoints.
type BlockHandler struct {
	blocks service.BlockService
}

func NewBlockHandler(blocks service.BlockService) *BlockHandler {
	return &BlockHandler{blocks: blocks}
}

// Block handles POST /api/blocks.
func (h *BlockHandler) Block(c *gin.Context) {
	var req domain.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.blocks.Block(c.Request.Context(), middleware.MemberUUID(c), req.MemberID); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Unblock handles DELETE /api/blocks/:id.
func (h *BlockHandler) Unblock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.blocks.Unblock(c.Request.Context(), middleware.MemberUUID(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// List handles GET /api/blocks.
func (h *BlockHandler) List(c *gin.Context) {
	resp, err := h.blocks.List(c.Request.Context(), middleware.MemberUUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}
