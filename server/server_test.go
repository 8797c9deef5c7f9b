package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/auth"
	"github.com/jrsteele09/credibuy-console/clients"
	"github.com/jrsteele09/credibuy-console/credits"
	"github.com/jrsteele09/credibuy-console/internal/config"
	"github.com/jrsteele09/credibuy-console/internal/fakeapi"
	"github.com/jrsteele09/credibuy-console/products"
	"github.com/jrsteele09/credibuy-console/server"
	"github.com/jrsteele09/credibuy-console/sessions/memstore"
	"github.com/jrsteele09/credibuy-console/token"
	"github.com/jrsteele09/credibuy-console/token/refresh"
	"github.com/jrsteele09/credibuy-console/transport"
)

const allowedOrigin = "http://app.example"

type testFixture struct {
	srv      *fakeapi.Server
	provider *auth.Provider
	server   *server.Server
}

// setupTestFixture wires the dashboard the way the CLI does, against the fake API.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()

	f := &testFixture{srv: fakeapi.New(t)}
	store := memstore.New()
	tokens := token.NewClient(f.srv.PlainClient(t))
	refresher := refresh.NewRefresher(store, tokens)

	tr := transport.New(store, refresher,
		transport.WithBase(f.srv.Client().Transport),
		transport.WithOnUnauthorized(func(ctx context.Context, _ error) {
			_ = f.provider.Logout(ctx)
		}))
	apiClient, err := api.New(f.srv.URL, tr.Client(5*time.Second))
	require.NoError(t, err)

	f.provider, err = auth.NewProvider(ctx, store, tokens, refresher)
	require.NoError(t, err)

	cfg, err := config.Load(ctx, envconfig.MapLookuper(map[string]string{
		"ENV":             "TEST",
		"SESSION_BACKEND": "memory",
		"ALLOWED_ORIGINS": allowedOrigin,
	}))
	require.NoError(t, err)

	f.server, err = server.New(cfg, f.provider, server.Services{
		Clients:  clients.NewService(apiClient),
		Products: products.NewService(apiClient),
		Credits:  credits.NewService(apiClient),
	})
	require.NoError(t, err)
	return f
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.provider.Login(context.Background(), fakeapi.Email, fakeapi.Password))
}

func (f *testFixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRouteRedirectsWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/credits?page=2", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login?next="+url.QueryEscape("/credits?page=2"), rec.Header().Get("Location"))
	require.Empty(t, f.srv.Requests(), "no API call is made without a session")
}

func TestIndexRedirectsToCredits(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/credits", rec.Header().Get("Location"))
}

func TestLoginPage(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/login?error=Oops&email=ana%40example.co", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Oops")
	require.Contains(t, rec.Body.String(), `value="ana@example.co"`)

	f.login(t)
	rec = f.do(t, http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/credits", rec.Header().Get("Location"))
}

func TestLoginSubmission(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		location string
		authed   bool
	}{
		{
			name:     "missing fields",
			form:     url.Values{"email": {fakeapi.Email}},
			location: "/login?error=" + url.QueryEscape("El email y la contraseña son requeridos") + "&email=" + url.QueryEscape(fakeapi.Email),
		},
		{
			name:     "wrong password",
			form:     url.Values{"email": {fakeapi.Email}, "password": {"nope"}},
			location: "/login?error=" + url.QueryEscape("Email o contraseña inválidos") + "&email=" + url.QueryEscape(fakeapi.Email),
		},
		{
			name:     "success goes to next",
			form:     url.Values{"email": {fakeapi.Email}, "password": {fakeapi.Password}, "next": {"/clients"}},
			location: "/clients",
			authed:   true,
		},
		{
			name:     "external next is ignored",
			form:     url.Values{"email": {fakeapi.Email}, "password": {fakeapi.Password}, "next": {"//evil.example"}},
			location: "/credits",
			authed:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)

			rec := f.do(t, http.MethodPost, "/auth/login", tt.form)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			require.Equal(t, tt.location, rec.Header().Get("Location"))
			require.Equal(t, tt.authed, f.provider.Authenticated())
		})
	}
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	before := len(f.srv.Requests())

	rec := f.do(t, http.MethodGet, "/auth/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	require.False(t, f.provider.Authenticated())
	require.Len(t, f.srv.Requests(), before, "logout does not call the API")
}

func TestCreditsList(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, "/credits?ordering=debt&dir=desc&status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Ana Gómez")
	require.Contains(t, body, "Nevera")
	require.Contains(t, body, "$ 150,00")
	require.Contains(t, body, "15/01/2024")
	require.Contains(t, body, "Activo")

	calls := f.srv.RequestsTo("/credit/")
	require.NotEmpty(t, calls)
	query, err := url.ParseQuery(calls[len(calls)-1].Query)
	require.NoError(t, err)
	require.Equal(t, "-debt", query.Get("ordering"))
	require.Equal(t, "active", query.Get("status"))
	require.Equal(t, "10", query.Get("page_size"))
}

func TestCreditDetail(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, "/credits/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "$ 150,00", "remaining debt")
	require.Contains(t, body, "$ 250,00", "total of all payments")
	require.Contains(t, body, "40.0%")
	require.Contains(t, body, "$ 110,00", "delayed payment asks for its delayed value")
	require.Contains(t, body, "Retrasado")
	require.Contains(t, body, "Pendiente")
}

func TestCreditDetailNotFound(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, "/credits/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "El registro solicitado no existe.")
}

func TestPaymentToggle(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodPost, "/credits/1/payments/3", url.Values{"paid": {"true"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/credits/1", rec.Header().Get("Location"))

	patches := f.srv.RequestsTo("/payments/3/")
	require.Len(t, patches, 1)
	require.JSONEq(t, `{"paid":true}`, patches[0].Body)

	rec = f.do(t, http.MethodGet, "/credits/1", nil)
	require.Contains(t, rec.Body.String(), "$ 100,00")
	require.Contains(t, rec.Body.String(), "60.0%")
}

func TestPaymentToggle_InvalidValue(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodPost, "/credits/1/payments/3", url.Values{"paid": {"maybe"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, f.srv.RequestsTo("/payments/3/"))
}

func TestClientsList(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, "/clients?search=luis&active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pérez")
	require.NotContains(t, rec.Body.String(), "Gómez")

	calls := f.srv.RequestsTo("/clients/")
	query, err := url.ParseQuery(calls[len(calls)-1].Query)
	require.NoError(t, err)
	require.Equal(t, "luis", query.Get("search"))
	require.Equal(t, "true", query.Get("is_active"))
	require.Equal(t, "first_name", query.Get("ordering"))
}

func TestClientCreate_ValidationErrorsStayLocal(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodPost, "/clients/new", url.Values{"email": {"not-an-email"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "El nombre es requerido")
	require.Contains(t, body, "Email inválido")
	require.Contains(t, body, `value="not-an-email"`)

	for _, r := range f.srv.RequestsTo("/clients/") {
		require.NotEqual(t, http.MethodPost, r.Method)
	}
}

func TestClientCreate(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodPost, "/clients/new", url.Values{
		"first_name": {"Marta"},
		"last_name":  {"Ruiz"},
		"email":      {"marta@example.co"},
		"address":    {"Calle 1"},
		"phone":      {"3000000000"},
		"is_active":  {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/clients?created=1", rec.Header().Get("Location"))
}

func TestProductsList(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, "/products?name=Televisor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Agotado")
	require.Contains(t, rec.Body.String(), "$ 2.300.000,00")
}

func TestCreditNew(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, "/credits/new?client_search=a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, f.srv.RequestsTo("/clients/"), "one character is not searched")

	rec = f.do(t, http.MethodGet, "/credits/new?client_search=Ana&product_search=Nevera", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ana Gómez")
	require.Contains(t, rec.Body.String(), "$ 1.500.000,00")

	rec = f.do(t, http.MethodPost, "/credits/new", url.Values{"client": {"1"}, "product": {"2"}, "total_payments": {"3"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Error al asignar el crédito")

	rec = f.do(t, http.MethodPost, "/credits/new", url.Values{"client": {"1"}, "product": {"1"}, "total_payments": {"0"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "El número de pagos debe ser al menos 1")

	rec = f.do(t, http.MethodPost, "/credits/new", url.Values{"client": {"1"}, "product": {"1"}, "total_payments": {"3"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/credits?created=1", rec.Header().Get("Location"))
	require.Len(t, f.srv.RequestsTo("/credits/create/"), 2)
}

func TestRevokedSessionRedirectsToLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.srv.ExpireAccess()
	f.srv.RevokeRefresh()

	rec := f.do(t, http.MethodGet, "/credits", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"))
	require.Eventually(t, func() bool { return !f.provider.Authenticated() }, time.Second, 10*time.Millisecond)
}

func TestFailedBackgroundRefreshAppliesOnNextNavigation(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.srv.RevokeRefresh()
	f.srv.SetRefreshDelay(100 * time.Millisecond)

	rec := f.do(t, http.MethodGet, "/credits", nil)
	require.Equal(t, http.StatusOK, rec.Code, "the view does not wait for the refresh")

	require.Eventually(t, func() bool { return !f.provider.Authenticated() }, 2*time.Second, 10*time.Millisecond)
	rec = f.do(t, http.MethodGet, "/credits", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"))
}

func TestSessionStatus(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Origin", allowedOrigin)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	require.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	f.login(t)
	rec = f.do(t, http.MethodGet, "/api/session", nil)
	require.Contains(t, rec.Body.String(), `"authenticated":true`)
	require.Contains(t, rec.Body.String(), `"user_id":"1"`)

	req = httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "http://other.example")
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndStatic(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "credibuy_console_")

	rec = f.do(t, http.MethodGet, "/css/console.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
	require.Contains(t, rec.Header().Get("Content-Type"), "charset=utf-8")
	require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	rec = f.do(t, http.MethodGet, "/css/missing.css", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
