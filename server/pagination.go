package server

import (
	"net/http"
	"strconv"
)

// pageSize matches the page size of the credibuy API.
const pageSize = 10

// maxPageLinks is how many numbered links are shown around the current page.
const maxPageLinks = 5

type PageLink struct {
	Number  int
	URL     string
	Current bool
}

type Pagination struct {
	Page       int
	TotalPages int
	Count      int
	From       int
	To         int
	PrevURL    string
	NextURL    string
	Links      []PageLink
}

// SortLink is a column header that toggles the ordering of a list.
type SortLink struct {
	URL    string
	Active bool
	Desc   bool
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func withParam(r *http.Request, key, value string) string {
	q := r.URL.Query()
	q.Set(key, value)
	return r.URL.Path + "?" + q.Encode()
}

func paginate(r *http.Request, page, count int) Pagination {
	totalPages := (count + pageSize - 1) / pageSize
	p := Pagination{
		Page:       page,
		TotalPages: totalPages,
		Count:      count,
	}
	if count == 0 {
		return p
	}
	p.From = (page-1)*pageSize + 1
	p.To = min(page*pageSize, count)
	if page > 1 {
		p.PrevURL = withParam(r, "page", strconv.Itoa(page-1))
	}
	if page < totalPages {
		p.NextURL = withParam(r, "page", strconv.Itoa(page+1))
	}

	start := max(1, page-maxPageLinks/2)
	end := min(totalPages, start+maxPageLinks-1)
	start = max(1, end-maxPageLinks+1)
	for n := start; n <= end; n++ {
		p.Links = append(p.Links, PageLink{Number: n, URL: withParam(r, "page", strconv.Itoa(n)), Current: n == page})
	}
	return p
}

// ordering reads ?ordering=field&dir=desc, falling back to def when field is not allowed.
func ordering(r *http.Request, def string, allowed ...string) (string, bool) {
	q := r.URL.Query()
	field := q.Get("ordering")
	desc := q.Get("dir") == "desc"
	for _, a := range allowed {
		if a == field {
			return field, desc
		}
	}
	return def, desc
}

// sortLinks builds the header links for each field; the active field flips direction.
func sortLinks(r *http.Request, current string, desc bool, fields ...string) map[string]SortLink {
	links := make(map[string]SortLink, len(fields))
	for _, f := range fields {
		q := r.URL.Query()
		q.Set("ordering", f)
		q.Del("page")
		dir := "asc"
		if f == current && !desc {
			dir = "desc"
		}
		q.Set("dir", dir)
		links[f] = SortLink{
			URL:    r.URL.Path + "?" + q.Encode(),
			Active: f == current,
			Desc:   f == current && desc,
		}
	}
	return links
}
