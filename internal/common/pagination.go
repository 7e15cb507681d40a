// File: internal/common/pagination.go
package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// GetLimitOffsetParams extracts limit/offset pagination parameters from the
// request query. Malformed or negative values fall back to the defaults
// rather than failing the request.
func GetLimitOffsetParams(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Pagination struct for paginated API responses.
type Pagination struct {
	TotalItems int64 `json:"total_items"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
}

// NewPagination builds the pagination envelope for a page fetched with the
// given limit/offset against totalItems matching rows.
func NewPagination(totalItems int64, limit, offset int) *Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return &Pagination{
		TotalItems: totalItems,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+limit) < totalItems,
	}
}
