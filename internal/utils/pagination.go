package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/constants"
)

// PaginationParams is one page of a room or message listing
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// NewPaginationParams clamps page and limit and derives the offset. A limit
// outside [MinPageSize, MaxPageSize] falls back to defaultLimit.
func NewPaginationParams(page, limit, defaultLimit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = defaultLimit
	}
	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetPaginationParams reads ?page= and ?limit= from the request. Listings pass
// their own default page size, e.g. constants.MessagePageSize.
func GetPaginationParams(c *gin.Context, defaultLimit int) PaginationParams {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return NewPaginationParams(page, limit, defaultLimit)
}

// TotalPages is the number of pages needed to show total rows
func (p PaginationParams) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
