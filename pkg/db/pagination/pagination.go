package pagination

// Pagination carries page/limit query parameters for offset paging.
type Pagination struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=10"` // Min 1, Max 100
}

// PageInfo describes the slice of a paginated result set.
type PageInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// Normalize clamps page and limit into usable bounds.
func (p Pagination) Normalize() (page, limit int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// BuildPageInfo computes totals for an offset-paginated result.
func BuildPageInfo(total int64, page, limit int) PageInfo {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return PageInfo{
		Total:      total,
		Page:       page,
		PerPage:    limit,
		TotalPages: totalPages,
	}
}
