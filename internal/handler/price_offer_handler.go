package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// PriceOfferHandler serves price negotiation endpoints.
type PriceOfferHandler struct {
	offers service.PriceOfferService
}

func NewPriceOfferHandler(offers service.PriceOfferService) *PriceOfferHandler {
	return &PriceOfferHandler{offers: offers}
}

// Create handles POST /api/posts/:id/price-offer.
func (h *PriceOfferHandler) Create(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.PriceOfferCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.offers.Create(c.Request.Context(), middleware.MemberUUID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListByPost handles GET /api/posts/:id/price-offer.
func (h *PriceOfferHandler) ListByPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.offers.ListByPost(c.Request.Context(), middleware.MemberUUID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Accept handles POST /api/price-offers/:id/accept.
func (h *PriceOfferHandler) Accept(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.offers.Accept(c.Request.Context(), middleware.MemberUUID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Reject handles POST /api/price-offers/:id/reject.
func (h *PriceOfferHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.offers.Reject(c.Request.Context(), middleware.MemberUUID(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
