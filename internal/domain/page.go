package domain

// Page carries offset pagination metadata on list responses.
type Page struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

// NewPage computes pagination metadata. Pages are zero-based.
func NewPage(page, size int, total int64) Page {
	if size <= 0 {
		size = 20
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return Page{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalElements: total,
		HasNext:       page+1 < totalPages,
		HasPrevious:   page > 0 && total > 0,
	}
}
