package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// maxPage keeps (page-1)*limit well inside int range.
	maxPage = 1_000_000
)

// Page is one slice of a listing plus totals.
type Page[T any] struct {
	Items       []T
	TotalCount  int64
	TotalPages  int
	CurrentPage int
	Limit       int
}

// normalizePagination applies defaults: page 1, limit 10, limit capped at 100.
// Pages beyond maxPage are clamped to it.
func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPage[T any](items []T, total int64, page, limit int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Page[T]{Items: items, TotalCount: total, TotalPages: pages, CurrentPage: page, Limit: limit}
}
