package api

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/credibuy-console/internal/utils"
)

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the server advertised a following page.
func (p *Page[T]) HasNext() bool {
	return p != nil && utils.Value(p.Next) != ""
}

// HasPrevious reports whether the server advertised a preceding page.
func (p *Page[T]) HasPrevious() bool {
	return p != nil && utils.Value(p.Previous) != ""
}

// Query describes search, ordering, pagination and field filters for a list endpoint.
type Query struct {
	Search     string
	Page       int
	PageSize   int
	Ordering   string
	Descending bool
	Filters    map[string]string
}

// Values renders the query the way the credibuy API expects it.
// Filter keys are emitted in sorted order so the encoded string is stable.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Ordering != "" {
		ordering := q.Ordering
		if q.Descending {
			ordering = "-" + ordering
		}
		v.Set("ordering", ordering)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := q.Filters[k]; val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// MinSearchLength is the shortest search term worth sending for type-ahead lookups.
const MinSearchLength = 2

// Searchable reports whether term is long enough for a type-ahead lookup.
func Searchable(term string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(term)) >= MinSearchLength
}

// Empty returns a page with no results, used when a query is not worth sending.
func Empty[T any]() *Page[T] {
	return &Page[T]{Results: []T{}}
}
