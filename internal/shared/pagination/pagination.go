package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Default values.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination represents skip/limit parameters.
type Pagination struct {
	Skip  int `form:"skip" json:"skip"`
	Limit int `form:"limit" json:"limit"`
}

// New creates pagination clamped to [1, maxLimit] with the given default.
func New(skip, limit, defaultLimit, maxLimit int) *Pagination {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return &Pagination{Skip: skip, Limit: limit}
}

// FromQuery reads skip and limit from the query string.
// Malformed values fall back to the defaults.
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) *Pagination {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = defaultLimit
	}
	return New(skip, limit, defaultLimit, maxLimit)
}

// FromPage converts 1-based page numbering to skip/limit.
func FromPage(page, limit, defaultLimit, maxLimit int) *Pagination {
	if page < 1 {
		page = 1
	}
	p := New(0, limit, defaultLimit, maxLimit)
	p.Skip = (page - 1) * p.Limit
	return p
}

// Offset returns the offset for database queries.
func (p *Pagination) Offset() int {
	return p.Skip
}

// Page returns the 1-based page number.
func (p *Pagination) Page() int {
	if p.Limit < 1 {
		return 1
	}
	return p.Skip/p.Limit + 1
}

// TotalPages calculates the total number of pages.
func (p *Pagination) TotalPages(total int64) int {
	if total == 0 || p.Limit < 1 {
		return 0
	}
	pages := int(total) / p.Limit
	if int(total)%p.Limit > 0 {
		pages++
	}
	return pages
}
