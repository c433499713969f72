package shared

import "strings"

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// Offset returns the SQL offset for the filter's page
func (f Filter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// Limit returns the SQL limit for the filter's page size
func (f Filter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	return f.PageSize
}

// OrderClause builds the ORDER BY clause for the filter, using fallback
// when no ordering was requested. Column names come from a fixed set the
// interfaces layer validates; the direction is normalized here.
func (f Filter) OrderClause(fallback string) string {
	if f.OrderBy == "" {
		return fallback
	}
	dir := "ASC"
	if strings.EqualFold(f.OrderDir, "desc") {
		dir = "DESC"
	}
	return f.OrderBy + " " + dir
}
