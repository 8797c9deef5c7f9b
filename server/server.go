package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/auth"
	"github.com/jrsteele09/credibuy-console/clients"
	"github.com/jrsteele09/credibuy-console/credits"
	"github.com/jrsteele09/credibuy-console/internal/config"
	"github.com/jrsteele09/credibuy-console/products"
	"github.com/jrsteele09/credibuy-console/token/jwt"
)

// Session is the session state the dashboard drives.
type Session interface {
	auth.SessionState
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Claims(ctx context.Context) (*jwt.Claims, error)
}

type ClientService interface {
	List(ctx context.Context, q api.Query) (*api.Page[clients.Client], error)
	Search(ctx context.Context, term string) (*api.Page[clients.Client], error)
	Create(ctx context.Context, n clients.NewClient) (*clients.Client, error)
}

type ProductService interface {
	ListFiltered(ctx context.Context, q api.Query, f products.Filter) (*api.Page[products.Product], error)
	Search(ctx context.Context, term string) (*api.Page[products.Product], error)
}

type CreditService interface {
	List(ctx context.Context, q api.Query) (*api.Page[credits.Credit], error)
	Detail(ctx context.Context, id int) (*credits.FullCredit, error)
	MarkPayment(ctx context.Context, paymentID int, paid bool) (*credits.Payment, error)
	Create(ctx context.Context, n credits.NewCredit) (*credits.Credit, error)
}

// Services are the domain accessors behind the dashboard views.
type Services struct {
	Clients  ClientService
	Products ProductService
	Credits  CreditService
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	session   Session
	guard     *auth.Guard
	services  Services
	templates map[string]*template.Template
}

func New(cfg config.Config, session Session, services Services) (*Server, error) {
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		session:  session,
		guard:    auth.NewGuard(session),
		services: services,
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load templates: %w", err)
	}
	s.templates = templates

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}
