package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/clients"
	"github.com/jrsteele09/credibuy-console/internal/errors"
)

type ClientsPageData struct {
	Search     string
	Active     string
	Clients    []clients.Client
	Pagination Pagination
	Sort       map[string]SortLink
	Error      string
	Created    bool
}

type ClientFormData struct {
	Form   clients.NewClient
	Errors errors.FieldErrors
	Error  string
}

// ClientsListHandler renders the paginated client search (GET /clients).
func (s *Server) ClientsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		order, desc := ordering(r, clients.OrderByFirstName, clients.OrderByFirstName, clients.OrderByLastName, clients.OrderByPhone)
		data := ClientsPageData{
			Search:  strings.TrimSpace(q.Get("search")),
			Active:  q.Get("active"),
			Sort:    sortLinks(r, order, desc, clients.OrderByFirstName, clients.OrderByLastName, clients.OrderByPhone),
			Created: q.Get("created") == "1",
		}

		query := api.Query{
			Search:     data.Search,
			Page:       pageParam(r),
			PageSize:   pageSize,
			Ordering:   order,
			Descending: desc,
		}
		switch data.Active {
		case "true", "false":
			query.Filters = map[string]string{"is_active": data.Active}
		default:
			data.Active = ""
		}

		page, err := s.services.Clients.List(r.Context(), query)
		if err != nil {
			if s.handledAuthError(w, r, err) {
				return
			}
			data.Error = inlineError(r, err, msgLoadFailed)
			s.renderPage(w, r, http.StatusOK, "clients", "Clientes", "clients.html", data)
			return
		}

		data.Clients = page.Results
		data.Pagination = paginate(r, query.Page, page.Count)
		s.renderPage(w, r, http.StatusOK, "clients", "Clientes", "clients.html", data)
	}
}

func (s *Server) ClientNewGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ClientFormData{Form: clients.NewClient{IsActive: true}}
		s.renderPage(w, r, http.StatusOK, "clients", "Nuevo cliente", "client_new.html", data)
	}
}

// ClientNewPostHandler validates and creates a client (POST /clients/new).
func (s *Server) ClientNewPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := clients.NewClient{
			FirstName: strings.TrimSpace(r.FormValue("first_name")),
			LastName:  strings.TrimSpace(r.FormValue("last_name")),
			Email:     strings.TrimSpace(r.FormValue("email")),
			IsActive:  r.FormValue("is_active") == "on" || r.FormValue("is_active") == "true",
			Address:   strings.TrimSpace(r.FormValue("address")),
			Phone:     strings.TrimSpace(r.FormValue("phone")),
		}

		if _, err := s.services.Clients.Create(r.Context(), form); err != nil {
			if s.handledAuthError(w, r, err) {
				return
			}
			data := ClientFormData{Form: form}
			var fields errors.FieldErrors
			if errors.As(err, &fields) {
				data.Errors = fields
			} else {
				data.Error = inlineError(r, err, msgSaveFailed)
			}
			s.renderPage(w, r, http.StatusUnprocessableEntity, "clients", "Nuevo cliente", "client_new.html", data)
			return
		}

		redirectSuccess(w, r, RouteClients+"?created=1")
	}
}
