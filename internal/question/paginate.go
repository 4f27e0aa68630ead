package question

import "strconv"

// PageSize is the fixed number of questions per page.
const PageSize = 10

// Paginate returns the 1-based page of items. A page past the end is empty, not an error.
func Paginate(page int, items []Question) []Question {
	if page < 1 {
		page = 1
	}
	// Bounds-check in pages; (page-1)*PageSize can overflow for huge pages.
	pages := (len(items) + PageSize - 1) / PageSize
	if page-1 >= pages {
		return []Question{}
	}
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ParsePage reads a page query value, defaulting to 1 when absent or invalid.
func ParsePage(raw string) int {
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
