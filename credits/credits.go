// Package credits reads installment credits and their payments, marks payments
// and assigns new credits.
package credits

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/internal/validation"
)

const (
	listPath     = "/credit/"
	createPath   = "/credits/create/"
	paymentsPath = "/payments/"
)

// Orderable fields.
const (
	OrderByID        = "id"
	OrderByCreatedAt = "created_at"
	OrderByDebt      = "debt"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	// The API may also report these while a credit is being approved.
	StatusStarted  Status = "started"
	StatusInReview Status = "in_review"
	StatusRejected Status = "rejected"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentDelayed   PaymentStatus = "delayed"
)

type Credit struct {
	ID            int             `json:"id"`
	Client        int             `json:"client"`
	ClientName    string          `json:"client_name"`
	Product       int             `json:"product"`
	ProductName   string          `json:"product_name"`
	CreatedAt     api.Time        `json:"created_at"`
	Status        Status          `json:"status"`
	Debt          decimal.Decimal `json:"debt"`
	TotalPayments int             `json:"total_payments"`
}

type Payment struct {
	ID           int             `json:"id"`
	Credit       int             `json:"credit,omitempty"`
	Value        decimal.Decimal `json:"value"`
	DueDate      api.Time        `json:"due_to"`
	ValueDelayed decimal.Decimal `json:"value_delayed"`
	Paid         bool            `json:"paid"`
	Status       PaymentStatus   `json:"status"`
}

// FullCredit is a credit with its payments in the order the API returned them.
type FullCredit struct {
	Credit
	Payments []Payment `json:"payments"`
}

// NewCredit assigns a product to a client, payable in TotalPayments installments.
type NewCredit struct {
	Client        int `json:"client" validate:"gt=0"`
	Product       int `json:"product" validate:"gt=0"`
	TotalPayments int `json:"total_payments" validate:"gte=1"`
}

var messages = validation.Messages{
	"client.gt":          "Seleccione un cliente",
	"product.gt":         "Seleccione un producto",
	"total_payments.gte": "El número de pagos debe ser al menos 1",
}

func (n NewCredit) Validate() error {
	return validation.Struct(n, messages)
}

type Service struct {
	api *api.Client
}

func NewService(apiClient *api.Client) *Service {
	return &Service{api: apiClient}
}

// List returns one page of credits matching q.
func (s *Service) List(ctx context.Context, q api.Query) (*api.Page[Credit], error) {
	var page api.Page[Credit]
	if err := s.api.Get(ctx, listPath, q.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Credit, error) {
	var c Credit
	if err := s.api.Get(ctx, listPath+strconv.Itoa(id), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Payments returns the payments of credit id in API order.
func (s *Service) Payments(ctx context.Context, id int) ([]Payment, error) {
	var payments []Payment
	if err := s.api.Get(ctx, paymentsPath+"by-credit/"+strconv.Itoa(id), nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// Detail fetches the credit and then its payments.
func (s *Service) Detail(ctx context.Context, id int) (*FullCredit, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.Payments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &FullCredit{Credit: *c, Payments: payments}, nil
}

// MarkPayment asks the API to set the paid flag. The returned payment carries
// the status the server derived; callers should re-read the credit afterwards.
func (s *Service) MarkPayment(ctx context.Context, paymentID int, paid bool) (*Payment, error) {
	var p Payment
	body := struct {
		Paid bool `json:"paid"`
	}{Paid: paid}
	if err := s.api.Patch(ctx, paymentsPath+strconv.Itoa(paymentID)+"/", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create validates n and submits it. Only a 201 answer counts as success.
func (s *Service) Create(ctx context.Context, n NewCredit) (*Credit, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	var c Credit
	status, err := s.api.Post(ctx, createPath, n, &c)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("credits.Create: unexpected status %d", status)
	}
	return &c, nil
}
