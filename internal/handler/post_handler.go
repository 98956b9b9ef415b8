package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// PostHandler serves the trade listing endpoints.
type PostHandler struct {
	posts service.PostService
}

func NewPostHandler(posts service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(c *gin.Context) {
	var req domain.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.posts.Create(c.Request.Context(), middleware.MemberUUID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, resp)
}

// Get handles GET /api/posts/:id. Works anonymously; the viewer's like
// state only appears when authenticated.
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.posts.Get(c.Request.Context(), middleware.MemberUUID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// List handles GET /api/posts. Price filters require currencyType since
// bell and mile prices are not comparable.
func (h *PostHandler) List(c *gin.Context) {
	filter := domain.PostFilter{
		PostType:     c.Query("postType"),
		Status:       c.Query("status"),
		CurrencyType: c.Query("currencyType"),
		Keyword:      c.Query("keyword"),
	}
	filter.Page, filter.Size = pagination(c)

	if v := c.Query("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid categoryId")
			return
		}
		filter.CategoryID = id
	}
	if v := c.Query("minPrice"); v != "" {
		if filter.CurrencyType == "" {
			response.BadRequest(c, "price filters require currencyType")
			return
		}
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid minPrice")
			return
		}
		filter.MinPrice = &p
	}
	if v := c.Query("maxPrice"); v != "" {
		if filter.CurrencyType == "" {
			response.BadRequest(c, "price filters require currencyType")
			return
		}
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid maxPrice")
			return
		}
		filter.MaxPrice = &p
	}

	resp, err := h.posts.List(c.Request.Context(), middleware.MemberUUID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// ListMine handles GET /api/posts/me.
func (h *PostHandler) ListMine(c *gin.Context) {
	page, size := pagination(c)
	resp, err := h.posts.ListMine(c.Request.Context(), middleware.MemberUUID(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// ListLiked handles GET /api/posts/liked.
func (h *PostHandler) ListLiked(c *gin.Context) {
	page, size := pagination(c)
	resp, err := h.posts.ListLiked(c.Request.Context(), middleware.MemberUUID(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Update handles PUT /api/posts/:id.
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.posts.Update(c.Request.Context(), middleware.MemberUUID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, resp)
}

// Delete handles DELETE /api/posts/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), middleware.MemberUUID(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Bump handles POST /api/posts/:id/bump.
func (h *PostHandler) Bump(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.posts.Bump(c.Request.Context(), middleware.MemberUUID(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Like handles POST /api/posts/:id/like.
func (h *PostHandler) Like(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.posts.Like(c.Request.Context(), middleware.MemberUUID(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Unlike handles DELETE /api/posts/:id/like.
func (h *PostHandler) Unlike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.posts.Unlike(c.Request.Context(), middleware.MemberUUID(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
