package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// pageParams reads page/page_size query params with sane bounds.
func pageParams(c *gin.Context, defaultSize int) (page, size, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size <= 0 || size > 100 {
		size = defaultSize
	}
	offset = (page - 1) * size
	return page, size, offset
}

// orderClause builds a safe ORDER BY from the sort/order query params.
// Unknown sort keys fall back to the id column.
func orderClause(c *gin.Context, allowed map[string]string) string {
	col, ok := allowed[c.DefaultQuery("sort", "id")]
	if !ok {
		col = allowed["id"]
	}
	dir := "ASC"
	if strings.EqualFold(c.DefaultQuery("order", "ASC"), "DESC") {
		dir = "DESC"
	}
	return col + " " + dir
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
