package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// ReviewHandler files post-trade reviews.
type ReviewHandler struct {
	reviews service.ReviewService
}

func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create handles POST /api/chat/rooms/:id/review.
func (h *ReviewHandler) Create(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.reviews.Create(c.Request.Context(), middleware.MemberUUID(c), id, &req); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
