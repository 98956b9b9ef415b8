package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// MemberHandler serves profile endpoints.
type MemberHandler struct {
	members service.MemberService
	reviews service.ReviewService
}

func NewMemberHandler(members service.MemberService, reviews service.ReviewService) *MemberHandler {
	return &MemberHandler{members: members, reviews: reviews}
}

// Me handles GET /api/members/me.
func (h *MemberHandler) Me(c *gin.Context) {
	resp, err := h.members.Me(c.Request.Context(), middleware.MemberUUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// SetupProfile handles POST /api/members/me/profile.
func (h *MemberHandler) SetupProfile(c *gin.Context) {
	var req domain.ProfileSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.members.SetupProfile(c.Request.Context(), middleware.MemberUUID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// UpdateProfile handles PUT /api/members/me/profile.
func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	var req domain.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.members.UpdateProfile(c.Request.Context(), middleware.MemberUUID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// GetProfile handles GET /api/members/:id.
func (h *MemberHandler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}

	resp, err := h.members.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// ListReviews handles GET /api/members/:id/reviews.
func (h *MemberHandler) ListReviews(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	page, size := pagination(c)

	resp, err := h.reviews.ListByMember(c.Request.Context(), id, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Withdraw handles DELETE /api/members/me.
func (h *MemberHandler) Withdraw(c *gin.Context) {
	if err := h.members.Withdraw(c.Request.Context(), middleware.MemberUUID(c)); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
