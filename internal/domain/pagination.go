package domain

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortOrderAsc || o == SortOrderDesc
}

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func CalculatePagination(totalCount int64, page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	totalPages := 0
	if limit > 0 && totalCount > 0 {
		totalPages = int((totalCount + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// PageOffset converts a 1-based page into a row offset.
func PageOffset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}
