// Package products reads the credibuy product catalogue.
package products

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jrsteele09/credibuy-console/api"
)

const path = "/product/"

// Orderable and filterable fields.
const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldTypeName = "product_type__name"
)

type TypeStatus string

const (
	TypeActive   TypeStatus = "active"
	TypeInactive TypeStatus = "inactive"
)

type ProductType struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Status TypeStatus `json:"status"`
}

type Product struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	ProductType     int             `json:"product_type"`
	ProductTypeName string          `json:"product_type_name"`
}

// InStock reports whether a credit can still be assigned for the product.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Filter narrows a product listing by field. Empty values are ignored.
type Filter struct {
	Name     string
	Price    string
	TypeName string
}

func (f Filter) values() map[string]string {
	return map[string]string{
		FieldName:     f.Name,
		FieldPrice:    f.Price,
		FieldTypeName: f.TypeName,
	}
}

type Service struct {
	api *api.Client
}

func NewService(apiClient *api.Client) *Service {
	return &Service{api: apiClient}
}

// List returns one page of products matching q.
func (s *Service) List(ctx context.Context, q api.Query) (*api.Page[Product], error) {
	var page api.Page[Product]
	if err := s.api.Get(ctx, path, q.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListFiltered merges f into q before listing.
func (s *Service) ListFiltered(ctx context.Context, q api.Query, f Filter) (*api.Page[Product], error) {
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	for k, v := range f.values() {
		if v != "" {
			q.Filters[k] = v
		}
	}
	return s.List(ctx, q)
}

// Search is the type-ahead lookup. Terms shorter than api.MinSearchLength
// return an empty page without calling the API.
func (s *Service) Search(ctx context.Context, term string) (*api.Page[Product], error) {
	if !api.Searchable(term) {
		return api.Empty[Product](), nil
	}
	return s.List(ctx, api.Query{Search: strings.TrimSpace(term)})
}
