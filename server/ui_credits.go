package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/clients"
	"github.com/jrsteele09/credibuy-console/credits"
	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/products"
)

type CreditsPageData struct {
	Search     string
	Status     string
	Statuses   []credits.Status
	Credits    []credits.Credit
	Pagination Pagination
	Sort       map[string]SortLink
	Error      string
	Created    bool
}

type CreditDetailData struct {
	Credit  *credits.FullCredit
	Summary credits.Summary
	Error   string
}

type CreditFormData struct {
	ClientSearch  string
	ProductSearch string
	Clients       []clients.Client
	Products      []products.Product
	ClientID      int
	ProductID     int
	TotalPayments string
	Errors        errors.FieldErrors
	Error         string
}

var listedStatuses = []credits.Status{credits.StatusActive, credits.StatusCompleted}

// CreditsListHandler renders the paginated credit list (GET /credits).
func (s *Server) CreditsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		order, desc := ordering(r, credits.OrderByID, credits.OrderByID, credits.OrderByCreatedAt, credits.OrderByDebt)
		data := CreditsPageData{
			Search:   strings.TrimSpace(q.Get("search")),
			Statuses: listedStatuses,
			Sort:     sortLinks(r, order, desc, credits.OrderByID, credits.OrderByCreatedAt, credits.OrderByDebt),
			Created:  q.Get("created") == "1",
		}

		query := api.Query{
			Search:     data.Search,
			Page:       pageParam(r),
			PageSize:   pageSize,
			Ordering:   order,
			Descending: desc,
		}
		for _, st := range listedStatuses {
			if q.Get("status") == string(st) {
				data.Status = string(st)
				query.Filters = map[string]string{"status": data.Status}
			}
		}

		page, err := s.services.Credits.List(r.Context(), query)
		if err != nil {
			if s.handledAuthError(w, r, err) {
				return
			}
			data.Error = inlineError(r, err, msgLoadFailed)
			s.renderPage(w, r, http.StatusOK, "credits", "Créditos", "credits.html", data)
			return
		}

		data.Credits = page.Results
		data.Pagination = paginate(r, query.Page, page.Count)
		s.renderPage(w, r, http.StatusOK, "credits", "Créditos", "credits.html", data)
	}
}

// CreditDetailHandler renders a credit with its payments (GET /credits/{id}).
func (s *Server) CreditDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || id < 1 {
			http.NotFound(w, r)
			return
		}

		credit, err := s.services.Credits.Detail(r.Context(), id)
		if err != nil {
			if s.handledAuthError(w, r, err) {
				return
			}
			status := http.StatusOK
			if errors.Is(err, errors.ErrNotFound) {
				status = http.StatusNotFound
			}
			data := CreditDetailData{Error: inlineError(r, err, msgLoadFailed)}
			s.renderPage(w, r, status, "credits", "Crédito", "credit_detail.html", data)
			return
		}

		data := CreditDetailData{
			Credit:  credit,
			Summary: credits.Summarize(*credit),
			Error:   r.URL.Query().Get("error"),
		}
		s.renderPage(w, r, http.StatusOK, "credits", "Crédito #"+strconv.Itoa(credit.ID), "credit_detail.html", data)
	}
}

// PaymentToggleHandler sets the paid flag of a payment and goes back to the
// credit so the server-derived values are re-read.
func (s *Server) PaymentToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creditID, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		paymentID, err := strconv.Atoi(r.PathValue("paymentID"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		paid, err := strconv.ParseBool(r.FormValue("paid"))
		if err != nil {
			http.Error(w, "Invalid paid value", http.StatusBadRequest)
			return
		}

		detail := RouteCredits + "/" + strconv.Itoa(creditID)
		if _, err := s.services.Credits.MarkPayment(r.Context(), paymentID, paid); err != nil {
			if s.handledAuthError(w, r, err) {
				return
			}
			redirectWithError(w, r, detail, inlineError(r, err, msgSaveFailed))
			return
		}
		redirectSuccess(w, r, detail)
	}
}

func (s *Server) CreditNewGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := s.creditForm(w, r, r.URL.Query().Get)
		if !ok {
			return
		}
		s.renderPage(w, r, http.StatusOK, "credits", "Asignar crédito", "credit_new.html", data)
	}
}

// CreditNewPostHandler assigns a product to a client (POST /credits/new).
func (s *Server) CreditNewPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		data, ok := s.creditForm(w, r, r.FormValue)
		if !ok {
			return
		}

		totalPayments, _ := strconv.Atoi(data.TotalPayments)
		_, err := s.services.Credits.Create(r.Context(), credits.NewCredit{
			Client:        data.ClientID,
			Product:       data.ProductID,
			TotalPayments: totalPayments,
		})
		if err != nil {
			if s.handledAuthError(w, r, err) {
				return
			}
			var fields errors.FieldErrors
			if errors.As(err, &fields) {
				data.Errors = fields
			} else {
				data.Error = inlineError(r, err, msgCreditFailed)
			}
			s.renderPage(w, r, http.StatusUnprocessableEntity, "credits", "Asignar crédito", "credit_new.html", data)
			return
		}

		redirectSuccess(w, r, RouteCredits+"?created=1")
	}
}

// creditForm reads the assign-credit form and runs the client and product
// look-ups. It reports false when it already answered the request.
func (s *Server) creditForm(w http.ResponseWriter, r *http.Request, get func(string) string) (CreditFormData, bool) {
	data := CreditFormData{
		ClientSearch:  strings.TrimSpace(get("client_search")),
		ProductSearch: strings.TrimSpace(get("product_search")),
		TotalPayments: strings.TrimSpace(get("total_payments")),
	}
	data.ClientID, _ = strconv.Atoi(get("client"))
	data.ProductID, _ = strconv.Atoi(get("product"))
	if data.TotalPayments == "" {
		data.TotalPayments = "1"
	}

	clientPage, err := s.services.Clients.Search(r.Context(), data.ClientSearch)
	if err != nil {
		if s.handledAuthError(w, r, err) {
			return data, false
		}
		data.Error = inlineError(r, err, msgLoadFailed)
		return data, true
	}
	data.Clients = clientPage.Results

	productPage, err := s.services.Products.Search(r.Context(), data.ProductSearch)
	if err != nil {
		if s.handledAuthError(w, r, err) {
			return data, false
		}
		data.Error = inlineError(r, err, msgLoadFailed)
		return data, true
	}
	data.Products = productPage.Results
	return data, true
}
