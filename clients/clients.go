// Package clients reads and creates credibuy customers.
package clients

import (
	"context"
	"strings"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/internal/validation"
)

const path = "/clients/"

// Orderable fields accepted by the API.
const (
	OrderByFirstName = "first_name"
	OrderByLastName  = "last_name"
	OrderByPhone     = "phone"
)

type Client struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

// FullName is how the dashboard labels a client.
func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NewClient is the create-client form.
type NewClient struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	IsActive  bool   `json:"is_active"`
	Address   string `json:"address" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

var messages = validation.Messages{
	"first_name.required": "El nombre es requerido",
	"last_name.required":  "El apellido es requerido",
	"email.required":      "El email es requerido",
	"email.email":         "Email inválido",
	"address.required":    "La dirección es requerida",
	"phone.required":      "El teléfono es requerido",
}

// Validate returns errors.FieldErrors describing every invalid field.
func (n NewClient) Validate() error {
	return validation.Struct(n, messages)
}

type Service struct {
	api *api.Client
}

func NewService(apiClient *api.Client) *Service {
	return &Service{api: apiClient}
}

// List returns one page of clients matching q.
func (s *Service) List(ctx context.Context, q api.Query) (*api.Page[Client], error) {
	var page api.Page[Client]
	if err := s.api.Get(ctx, path, q.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Search is the type-ahead lookup. Terms shorter than api.MinSearchLength
// return an empty page without calling the API.
func (s *Service) Search(ctx context.Context, term string) (*api.Page[Client], error) {
	if !api.Searchable(term) {
		return api.Empty[Client](), nil
	}
	return s.List(ctx, api.Query{Search: strings.TrimSpace(term)})
}

// Create validates n and submits it. Invalid input never reaches the API.
func (s *Service) Create(ctx context.Context, n NewClient) (*Client, error) {
	n.FirstName = strings.TrimSpace(n.FirstName)
	n.LastName = strings.TrimSpace(n.LastName)
	n.Email = strings.TrimSpace(n.Email)
	if err := n.Validate(); err != nil {
		return nil, err
	}
	var created Client
	if _, err := s.api.Post(ctx, path, n, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
