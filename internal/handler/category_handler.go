package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// CategoryHandler serves the listing categories.
type CategoryHandler struct {
	categories repository.CategoryRepository
}

func NewCategoryHandler(categories repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, domain.CategoryListResponse{Categories: categories})
}
