// Package fakeapi is an in-process stand-in for the credibuy REST API used by tests.
//
// It issues short JWTs, rejects unknown or expired access tokens with 401 and
// records every request it sees so tests can assert on headers and retries.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/jrsteele09/credibuy-console/sessions/memstore"
	"github.com/jrsteele09/credibuy-console/token"
	"github.com/jrsteele09/credibuy-console/token/refresh"
	"github.com/jrsteele09/credibuy-console/transport"
)

var signingKey = []byte("fakeapi-signing-key")

// Credentials accepted by a fresh server.
const (
	Email    = "admin@credibuy.co"
	Password = "secret"
)

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization []string
	ContentType   string
	RequestID     string
	Body          string
}

type Server struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[string]string
	access        map[string]bool
	refresh       map[string]bool
	requests      []Request
	refreshDelay  time.Duration
	refreshStatus int
	failNext      map[string]int

	refreshCalls atomic.Int32

	Clients  []Client
	Products []Product
	Credits  []Credit
	Payments []Payment
}

// New starts a fake API with one user and a small seeded data set. It is closed with t.Cleanup.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    map[string]string{Email: Password},
		access:   map[string]bool{},
		refresh:  map[string]bool{},
		failNext: map[string]int{},
	}
	s.seed()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token/", s.handleObtain)
	mux.HandleFunc("POST /token/refresh/", s.handleRefresh)
	mux.Handle("GET /echo/", s.protected(s.handleEcho))
	mux.Handle("POST /echo/", s.protected(s.handleEcho))
	mux.Handle("GET /clients/", s.protected(s.handleListClients))
	mux.Handle("POST /clients/", s.protected(s.handleCreateClient))
	mux.Handle("GET /product/", s.protected(s.handleListProducts))
	mux.Handle("GET /credit/", s.protected(s.handleListCredits))
	mux.Handle("GET /credit/{id}", s.protected(s.handleGetCredit))
	mux.Handle("GET /payments/by-credit/{id}", s.protected(s.handlePaymentsByCredit))
	mux.Handle("PATCH /payments/{id}/", s.protected(s.handlePatchPayment))
	mux.Handle("POST /credits/create/", s.protected(s.handleCreateCredit))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// PlainClient returns an api.Client for this server without authentication.
func (s *Server) PlainClient(t testing.TB) *api.Client {
	t.Helper()
	c, err := api.New(s.URL, s.Client())
	if err != nil {
		t.Fatalf("fakeapi: %v", err)
	}
	return c
}

// Session logs in against the server and returns an api.Client that sends
// requests through the authenticated transport, together with its store.
func (s *Server) Session(t testing.TB) (*api.Client, sessions.Store) {
	t.Helper()
	store := memstore.NewWithSession(sessions.Session{AccessToken: s.IssueAccess(), RefreshToken: s.IssueRefresh()})
	tr := transport.New(store, refresh.NewRefresher(store, token.NewClient(s.PlainClient(t))),
		transport.WithBase(s.Client().Transport))
	c, err := api.New(s.URL, tr.Client(5*time.Second))
	if err != nil {
		t.Fatalf("fakeapi: %v", err)
	}
	return c, store
}

// AddUser registers credentials accepted by /token/.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// IssueAccess mints an access token the server accepts.
func (s *Server) IssueAccess() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueAccessLocked()
}

// IssueRefresh mints a refresh token the server accepts.
func (s *Server) IssueRefresh() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueRefreshLocked()
}

// ExpireAccess makes every access token issued so far answer 401.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = map[string]bool{}
}

// RevokeRefresh makes every refresh token issued so far rejected.
func (s *Server) RevokeRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = map[string]bool{}
}

// SetRefreshDelay slows down /token/refresh/ so concurrent callers overlap.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// SetRefreshStatus forces /token/refresh/ to answer with status. Zero restores normal behaviour.
func (s *Server) SetRefreshStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// FailNext makes the next n protected requests to path answer status 401 regardless of token.
func (s *Server) FailNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[path] = n
}

// RefreshCalls is the number of /token/refresh/ exchanges received.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the recorded requests whose path equals path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) issueAccessLocked() string {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": "access",
		"user_id":    1,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(5 * time.Minute).Unix(),
	})
	signed, err := tok.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.access[signed] = true
	return signed
}

func (s *Server) issueRefreshLocked() string {
	tok := "refresh-" + uuid.NewString()
	s.refresh[tok] = true
	return tok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Values("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		forced := s.failNext[r.URL.Path]
		if forced > 0 {
			s.failNext[r.URL.Path] = forced - 1
		}
		values := r.Header.Values("Authorization")
		ok := len(values) == 1 && strings.HasPrefix(values[0], "Bearer ") && s.access[strings.TrimPrefix(values[0], "Bearer ")]
		s.mu.Unlock()

		if forced > 0 || !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		h(w, r)
	})
}

func (s *Server) handleObtain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "email and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.users[body.Email]; !ok || pw != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access":  s.issueAccessLocked(),
		"refresh": s.issueRefreshLocked(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var body struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	delay, forced := s.refreshDelay, s.refreshStatus
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if forced != 0 {
		writeJSON(w, forced, map[string]string{"detail": http.StatusText(forced)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh[body.Refresh] {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": s.issueAccessLocked()})
}

func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	writeJSON(w, http.StatusOK, map[string]string{"method": r.Method, "body": string(body)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string, id any) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("%s %v not found", what, id)})
}
