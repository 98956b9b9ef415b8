package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/pkg/response"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagination reads zero-based page and size query parameters.
func pagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	if page < 0 {
		page = 0
	}
	size, _ = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// pathID reads the :id path parameter, replying 400 itself on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
