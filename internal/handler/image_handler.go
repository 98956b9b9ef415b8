package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// ImageHandler issues image upload destinations.
type ImageHandler struct {
	images service.ImageService
}

func NewImageHandler(images service.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// Presign handles POST /api/images/presign.
func (h *ImageHandler) Presign(c *gin.Context) {
	var req domain.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.images.PresignUpload(c.Request.Context(), middleware.MemberUUID(c), req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}
