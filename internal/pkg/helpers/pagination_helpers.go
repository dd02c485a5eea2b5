package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/escola/internal/app/models/dto"
)

const (
	// PageSize is the fixed number of rows on every list page
	PageSize    = 10
	DefaultPage = 1 // Default page is 1-based
	// MaxPage bounds the page so the row offset cannot overflow
	MaxPage = math.MaxInt32 / PageSize
)

func clampPage(page int) int {
	switch {
	case page < 1:
		return DefaultPage
	case page > MaxPage:
		return MaxPage
	}
	return page
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page int) (offset uint64, limit uint64) {
	page = clampPage(page)
	return uint64((page - 1) * PageSize), PageSize
}

// NewPaginationInfo creates the pagination block rendered under list views.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page int) dto.PaginationInfo {
	page = clampPage(page)

	totalPages := int(math.Ceil(float64(totalItems) / float64(PageSize)))

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    PageSize,
		TotalItems:  totalItems,
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
	}
}

// ParsePage extracts the 1-based page query parameter, falling back to page 1
func ParsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return DefaultPage
	}
	return clampPage(page)
}
