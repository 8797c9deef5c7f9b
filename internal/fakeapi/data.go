package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jrsteele09/credibuy-console/internal/utils"
)

const pageSize = 10

type Client struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

type Product struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	Stock           int    `json:"stock"`
	ProductType     int    `json:"product_type"`
	ProductTypeName string `json:"product_type_name"`
}

type Credit struct {
	ID            int    `json:"id"`
	Client        int    `json:"client"`
	ClientName    string `json:"client_name"`
	Product       int    `json:"product"`
	ProductName   string `json:"product_name"`
	CreatedAt     string `json:"created_at"`
	Status        string `json:"status"`
	Debt          string `json:"debt"`
	TotalPayments int    `json:"total_payments"`
}

type Payment struct {
	ID           int    `json:"id"`
	Credit       int    `json:"credit"`
	Value        string `json:"value"`
	DueTo        string `json:"due_to"`
	ValueDelayed string `json:"value_delayed"`
	Status       string `json:"status"`
	Paid         bool   `json:"paid"`
}

type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (s *Server) seed() {
	s.Clients = []Client{
		{ID: 1, FirstName: "Ana", LastName: "Gómez", Email: "ana@example.co", IsActive: true, Address: "Calle 10 #5-20", Phone: "3001234567"},
		{ID: 2, FirstName: "Luis", LastName: "Pérez", Email: "luis@example.co", IsActive: true, Address: "Carrera 7 #80-12", Phone: "3107654321"},
	}
	s.Products = []Product{
		{ID: 1, Name: "Nevera", Description: "Nevera 300L", Price: "1500000.00", Stock: 4, ProductType: 1, ProductTypeName: "Electrodomésticos"},
		{ID: 2, Name: "Televisor", Description: "TV 55\"", Price: "2300000.00", Stock: 0, ProductType: 1, ProductTypeName: "Electrodomésticos"},
	}
	s.Credits = []Credit{
		{ID: 1, Client: 1, ClientName: "Ana Gómez", Product: 1, ProductName: "Nevera", CreatedAt: "2024-01-15T10:30:00Z", Status: "active", Debt: "150.00", TotalPayments: 3},
	}
	s.Payments = []Payment{
		{ID: 1, Credit: 1, Value: "100.00", DueTo: "2024-02-16", ValueDelayed: "110.00", Status: "completed", Paid: true},
		{ID: 2, Credit: 1, Value: "100.00", DueTo: "2024-03-16", ValueDelayed: "110.00", Status: "delayed", Paid: false},
		{ID: 3, Credit: 1, Value: "50.00", DueTo: "2024-04-16", ValueDelayed: "55.00", Status: "pending", Paid: false},
	}
}

func paginate[T any](r *http.Request, items []T) page[T] {
	n := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			n = v
		}
	}
	start := min((n-1)*pageSize, len(items))
	end := min(start+pageSize, len(items))

	p := page[T]{Count: len(items), Results: append([]T{}, items[start:end]...)}
	link := func(target int) *string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(target))
		return utils.Ptr(fmt.Sprintf("http://%s%s?%s", r.Host, r.URL.Path, q.Encode()))
	}
	if end < len(items) {
		p.Next = link(n + 1)
	}
	if n > 1 {
		p.Previous = link(n - 1)
	}
	return p
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	s.mu.Lock()
	var out []Client
	for _, c := range s.Clients {
		if matches(search, c.FirstName, c.LastName, c.Email, c.Phone) {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, out))
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	c.ID = len(s.Clients) + 1
	s.Clients = append(s.Clients, c)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	s.mu.Lock()
	var out []Product
	for _, p := range s.Products {
		if !matches(search, p.Name, p.Description, p.ProductTypeName) {
			continue
		}
		if name := q.Get("name"); name != "" && !matches(name, p.Name) {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, out))
}

func (s *Server) handleListCredits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []Credit
	for _, c := range s.Credits {
		if !matches(q.Get("search"), c.ClientName, c.Status) {
			continue
		}
		if status := q.Get("status"); status != "" && status != c.Status {
			continue
		}
		out = append(out, c)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, out))
}

func (s *Server) creditIndexLocked(id int) int {
	for i, c := range s.Credits {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) handleGetCredit(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	s.mu.Lock()
	i := s.creditIndexLocked(id)
	var c Credit
	if i >= 0 {
		c = s.Credits[i]
	}
	s.mu.Unlock()
	if i < 0 {
		notFound(w, "credit", r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePaymentsByCredit(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	s.mu.Lock()
	out := []Payment{}
	for _, p := range s.Payments {
		if p.Credit == id {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// handlePatchPayment mirrors the API: paying a payment lowers the credit debt and
// completes the credit once nothing is owed; unpaying reverses it.
func (s *Server) handlePatchPayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	var body struct {
		Paid *bool `json:"paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Paid == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"paid": "This field is required."})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Payments {
		p := &s.Payments[i]
		if p.ID != id {
			continue
		}
		ci := s.creditIndexLocked(p.Credit)
		if ci >= 0 && *body.Paid != p.Paid {
			credit := &s.Credits[ci]
			debt := decimal.RequireFromString(credit.Debt)
			value := decimal.RequireFromString(p.Value)
			if *body.Paid {
				debt = debt.Sub(value)
				if debt.LessThan(decimal.New(1, -5)) {
					debt = decimal.Zero
					credit.Status = "completed"
				}
			} else {
				if credit.Status == "completed" {
					credit.Status = "active"
				}
				debt = debt.Add(value)
			}
			credit.Debt = debt.StringFixed(2)
		}
		p.Paid = *body.Paid
		if p.Paid {
			p.Status = "completed"
		} else {
			p.Status = "pending"
		}
		writeJSON(w, http.StatusOK, *p)
		return
	}
	notFound(w, "payment", id)
}

func (s *Server) handleCreateCredit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Client        int `json:"client"`
		Product       int `json:"product"`
		TotalPayments int `json:"total_payments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	if body.TotalPayments < 1 {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"total_payments": {"Ensure this value is greater than or equal to 1."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var client *Client
	for i := range s.Clients {
		if s.Clients[i].ID == body.Client {
			client = &s.Clients[i]
		}
	}
	var product *Product
	for i := range s.Products {
		if s.Products[i].ID == body.Product {
			product = &s.Products[i]
		}
	}
	if client == nil || product == nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid client or product."}})
		return
	}
	if product.Stock <= 0 {
		writeJSON(w, http.StatusBadRequest, []string{"No products in stock"})
		return
	}
	product.Stock--

	n := decimal.NewFromInt(int64(body.TotalPayments))
	installment := decimal.RequireFromString(product.Price).Div(n).Round(2)
	credit := Credit{
		ID:            len(s.Credits) + 1,
		Client:        client.ID,
		ClientName:    client.FirstName + " " + client.LastName,
		Product:       product.ID,
		ProductName:   product.Name,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Status:        "active",
		Debt:          installment.Mul(n).StringFixed(2),
		TotalPayments: body.TotalPayments,
	}
	s.Credits = append(s.Credits, credit)
	for i := 1; i <= body.TotalPayments; i++ {
		s.Payments = append(s.Payments, Payment{
			ID:           len(s.Payments) + 1,
			Credit:       credit.ID,
			Value:        installment.StringFixed(2),
			DueTo:        time.Now().AddDate(0, i, 0).Format(time.DateOnly),
			ValueDelayed: installment.Mul(decimal.RequireFromString("1.1")).StringFixed(2),
			Status:       "pending",
		})
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":             credit.ID,
		"client":         credit.Client,
		"product":        credit.Product,
		"created_at":     credit.CreatedAt,
		"status":         credit.Status,
		"debt":           credit.Debt,
		"total_payments": credit.TotalPayments,
	})
}
