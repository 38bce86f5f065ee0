package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxResultWindow is the deepest offset+limit a search may ask for; it
	// matches Elasticsearch's default index.max_result_window.
	MaxResultWindow = 10000
)

func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if page > MaxResultWindow {
		page = MaxResultWindow + 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
