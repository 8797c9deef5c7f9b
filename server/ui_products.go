package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/products"
)

type ProductsPageData struct {
	Search     string
	Filter     products.Filter
	Products   []products.Product
	Pagination Pagination
	Sort       map[string]SortLink
	Error      string
}

// ProductsListHandler renders the product catalogue (GET /products).
func (s *Server) ProductsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		order, desc := ordering(r, products.FieldName, products.FieldName, products.FieldPrice, products.FieldTypeName)
		data := ProductsPageData{
			Search: strings.TrimSpace(q.Get("search")),
			Filter: products.Filter{
				Name:     strings.TrimSpace(q.Get("name")),
				Price:    strings.TrimSpace(q.Get("price")),
				TypeName: strings.TrimSpace(q.Get("type")),
			},
			Sort: sortLinks(r, order, desc, products.FieldName, products.FieldPrice, products.FieldTypeName),
		}

		query := api.Query{
			Search:     data.Search,
			Page:       pageParam(r),
			PageSize:   pageSize,
			Ordering:   order,
			Descending: desc,
		}
		page, err := s.services.Products.ListFiltered(r.Context(), query, data.Filter)
		if err != nil {
			if s.handledAuthError(w, r, err) {
				return
			}
			data.Error = inlineError(r, err, msgLoadFailed)
			s.renderPage(w, r, http.StatusOK, "products", "Productos", "products.html", data)
			return
		}

		data.Products = page.Results
		data.Pagination = paginate(r, query.Page, page.Count)
		s.renderPage(w, r, http.StatusOK, "products", "Productos", "products.html", data)
	}
}
