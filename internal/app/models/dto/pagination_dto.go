package dto

// PaginationInfo is the pager block under every list view
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	HasPrev     bool  `json:"hasPrev"`
	HasNext     bool  `json:"hasNext"`
	PrevPage    int   `json:"prevPage"`
	NextPage    int   `json:"nextPage"`
}

// Pages lists the page numbers shown in the pager
func (p PaginationInfo) Pages() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}
