package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

const MaxPageSize = 100

// NewPagination computes the window for a 1-based page over total items.
// From and To are 1-based and inclusive; both are 0 for an empty window.
func NewPagination(page, pageSize, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	totalPages := (total + pageSize - 1) / pageSize
	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int64(totalPages),
		TotalItems: int64(total),
		HasMore:    page < totalPages,
	}

	start := (page - 1) * pageSize
	if start < total {
		end := min(start+pageSize, total)
		p.From = start + 1
		p.To = end
	}
	return p
}

// Bounds returns the half-open slice bounds of the window.
func (p *Pagination) Bounds() (int, int) {
	if p.From == 0 {
		return 0, 0
	}
	return p.From - 1, p.To
}
