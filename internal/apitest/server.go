// Package apitest поднимает фейковый REST API консоли поверх httptest.
// Сервер хранит данные в памяти, проверяет bearer-токены, записывает
// все входящие запросы и позволяет подменять ответы ошибками.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/venue-console/internal/lib/jwt"
	"github.com/magabrotheeeer/venue-console/internal/lib/password"
	"github.com/magabrotheeeer/venue-console/internal/models"
)

// TokenTTL срок жизни JWT, которые сервер выпускает пользователям без фиксированного токена.
const TokenTTL = time.Hour

const signingSecret = "apitest-secret"

// Request записанный входящий запрос.
type Request struct {
	RequestID     string
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          []byte
}

type account struct {
	hash  string
	token string
	user  models.User
}

type failure struct {
	status int
	body   string
}

// Server фейковый API.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account
	tokens       map[string]string
	counters     []models.Counter
	tickets      []models.Ticket
	guides       []models.Guide
	transactions []models.Transaction
	messages     []models.Message
	analytics    map[string]any
	failures     map[string]failure
	requests     []Request
	nextID       int64
	now          func() time.Time
	maker        *jwt.Maker
}

// NewServer запускает сервер и останавливает его по завершении теста.
func NewServer(t testing.TB) *Server {
	s := &Server{
		accounts:  make(map[string]*account),
		tokens:    make(map[string]string),
		analytics: make(map[string]any),
		failures:  make(map[string]failure),
		nextID:    1,
		now:       time.Now,
		maker:     jwt.NewMaker(signingSecret, TokenTTL),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.record, s.injectFailures)

	r.Post("/api/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Put("/api/auth/profile", s.changePassword)
		r.Put("/api/counters/change-password", s.changePassword)

		r.Get("/api/counters", s.listCounters)
		r.Post("/api/counters/register", s.registerCounter)
		r.Post("/api/counters", s.registerCounter)
		r.Put("/api/counters/{id}", s.updateCounter)
		r.Delete("/api/counters/{id}", s.deleteCounter)

		r.Get("/api/tickets", s.listTickets)
		r.Post("/api/tickets", s.createTicket)
		r.Put("/api/tickets/{id}", s.updateTicket)
		r.Delete("/api/tickets/{id}", s.deleteTicket)

		r.Get("/api/guides", s.listGuides)
		r.Post("/api/guides", s.createGuide)
		r.Put("/api/guides/{id}", s.updateGuide)
		r.Delete("/api/guides/{id}", s.deleteGuide)

		r.Get("/api/analytics/calendar", s.calendar)
		r.Get("/api/analytics/{period}", s.periodAnalytics)
		r.Put("/api/analytics/transactions/{id}", s.updateTransaction)
		r.Delete("/api/analytics/transactions/{id}", s.deleteTransaction)

		r.Post("/api/crm/send", s.sendMessage)
		r.Post("/api/crm/send-bulk", s.sendBulk)
		r.Get("/api/crm/messages", s.listMessages)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			RequestID:     middleware.GetReqID(r.Context()),
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		s.mu.Lock()
		a := s.accountFor(strings.TrimPrefix(header, "Bearer "))
		s.mu.Unlock()

		if a == nil {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accountFor находит учетную запись по фиксированному токену или по
// выпущенному сервером JWT. Вызывается под s.mu.
func (s *Server) accountFor(token string) *account {
	if username, ok := s.tokens[token]; ok {
		return s.accounts[username]
	}
	claims, err := s.maker.Parse(token)
	if err != nil {
		return nil
	}
	return s.accounts[claims.Username]
}

// AddUser регистрирует учетную запись. Непустой token выдается при каждом
// входе как есть, пустой означает выпуск подписанного JWT со сроком TokenTTL.
func (s *Server) AddUser(username, pass string, role models.Role, createdAt, token string) {
	hash, err := password.Hash(pass, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &account{
		hash:  hash,
		token: token,
		user:  models.User{Username: username, Role: role, CreatedAt: createdAt},
	}
	if token != "" {
		s.tokens[token] = username
	}
}

// CheckPassword сообщает, совпадает ли pass с текущим паролем пользователя.
func (s *Server) CheckPassword(username, pass string) bool {
	s.mu.Lock()
	a, ok := s.accounts[username]
	var hash string
	if ok {
		hash = a.hash
	}
	s.mu.Unlock()
	return ok && password.Compare(hash, pass) == nil
}

// FailOn заставляет сервер отвечать status с {"message": message} на method+path,
// пока не вызван ClearFailures.
func (s *Server) FailOn(method, path string, status int, message string) {
	body, _ := json.Marshal(models.ErrorBody{Message: message})
	s.FailOnRaw(method, path, status, string(body))
}

// FailOnRaw как FailOn, но с произвольным телом ответа.
func (s *Server) FailOnRaw(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// ClearFailures снимает все подмены.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Requests возвращает копию записанных запросов.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount число записанных запросов.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest последний записанный запрос.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// ResetRequests очищает журнал запросов.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// SetClock подменяет часы, которыми сервер проставляет createdAt/updatedAt.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Server) newID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, models.ErrorBody{Message: message})
}
