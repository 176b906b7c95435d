package repository

// Pagination bounds for list queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination carries the requested page window. Normalize applies the
// documented defaults and hard cap before the query runs.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize returns a copy with page defaulted to 1 and page size clamped
// to [1, MaxPageSize].
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized window.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
