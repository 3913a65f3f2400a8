package query

// Window is a contiguous slice of an ordered result. Limit 0 means no limit.
type Window struct {
	Offset int
	Limit  int
}

// Unbounded selects everything.
var Unbounded = Window{}

func (w Window) Apply(n int) (start, end int) {
	start = min(w.Offset, n)
	end = n
	if w.Limit > 0 {
		end = min(start+w.Limit, n)
	}
	return start, end
}

type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Paginate expects page >= 1 and size >= 1; callers validate first.
func Paginate(page, size, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + size - 1) / size
	}
	return Pagination{
		Page:        page,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}

func (p Pagination) Window() Window {
	return Window{Offset: (p.Page - 1) * p.PageSize, Limit: p.PageSize}
}
