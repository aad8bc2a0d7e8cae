// Package listutil parses list view parameters and paginates results.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// Params carries the state of a list view: page, free-text search and
// named exact-match filters.
type Params struct {
	Page    int
	Search  string
	Filters map[string]string
}

// Parse extracts page, q and the named filters from URL query values.
// POST: Page >= 1; Filters holds only recognised, non-empty keys
func Parse(q url.Values, filterKeys ...string) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	p := Params{Page: page, Search: strings.TrimSpace(q.Get("q")), Filters: make(map[string]string)}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			p.Filters[key] = v
		}
	}
	return p
}

// Filter returns the value of a named filter, or "" when unset.
func (p Params) Filter(key string) string {
	return p.Filters[key]
}

// Values encodes the params back to a query string. Page 1 is omitted.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	for k, val := range p.Filters {
		v.Set(k, val)
	}
	return v
}

// WithFilter returns params with key set to value. Changing a filter
// always returns to the first page.
func (p Params) WithFilter(key, value string) Params {
	next := p.clone()
	if value == "" {
		delete(next.Filters, key)
	} else {
		next.Filters[key] = value
	}
	next.Page = 1
	return next
}

// WithSearch returns params with a new search term on the first page.
func (p Params) WithSearch(search string) Params {
	next := p.clone()
	next.Search = strings.TrimSpace(search)
	next.Page = 1
	return next
}

// WithPage returns params on page n.
func (p Params) WithPage(n int) Params {
	next := p.clone()
	if n < 1 {
		n = 1
	}
	next.Page = n
	return next
}

// Href renders params as a link relative to path.
func (p Params) Href(path string) string {
	if enc := p.Values().Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

func (p Params) clone() Params {
	filters := make(map[string]string, len(p.Filters))
	for k, v := range p.Filters {
		filters[k] = v
	}
	return Params{Page: p.Page, Search: p.Search, Filters: filters}
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int
	Total      int // total matching rows
	TotalPages int
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0, perPage > 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the zero-based index of the first row on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// Pages lists every page number, for numbered controls.
func (p PageInfo) Pages() []int {
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.TotalPages > 1
}

// Paginate returns the slice of items on page together with its metadata.
// POST: an out-of-range page is clamped to the last page
func Paginate[T any](items []T, page, perPage int) ([]T, PageInfo) {
	info := NewPageInfo(page, perPage, len(items))
	start := info.Offset()
	end := start + info.PerPage
	if end > len(items) {
		end = len(items)
	}
	if start > end {
		start = end
	}
	return items[start:end], info
}
