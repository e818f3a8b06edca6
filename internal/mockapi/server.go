// Package mockapi is an in-memory implementation of the inventory HTTP API
// for local development and integration tests.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/api"
)

// Roles issued by the mock server.
const (
	RoleAdmin   = "ADMIN"
	RoleCompany = "COMPANY"
)

const defaultTokenTTL = 12 * time.Hour

type account struct {
	id       int64
	username string
	password string
	role     string
	company  string
	active   bool
}

func (a *account) record() api.Company {
	return api.Company{ID: a.id, Username: a.username, CompanyName: a.company, Role: a.role, Active: a.active}
}

type grant struct {
	username string
	role     string
	expires  time.Time
}

// Server holds the mock API state.
type Server struct {
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	accounts map[string]*account
	lastUser int64
	grants   map[string]grant

	categories *table[api.Category]
	products   *table[api.Product]
	sales      *table[api.Sale]
	purchases  *table[api.Purchase]
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a server populated from seed.
func New(seed Seed, opts ...Option) *Server {
	s := &Server{
		logger:     zap.NewNop(),
		ttl:        defaultTokenTTL,
		now:        time.Now,
		accounts:   make(map[string]*account),
		grants:     make(map[string]grant),
		categories: newTable[api.Category](),
		products:   newTable[api.Product](),
		sales:      newTable[api.Sale](),
		purchases:  newTable[api.Purchase](),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, u := range seed.Users {
		role := u.Role
		if role == "" {
			role = RoleCompany
		}
		s.addAccountLocked(u.Username, u.Password, strings.ToUpper(role), u.Company, !u.Disabled)
	}
	for _, c := range seed.Categories {
		s.categories.create(func(id int64) api.Category { return api.Category{ID: id, Name: c.Name} })
	}
	for _, p := range seed.Products {
		s.products.create(func(id int64) api.Product {
			return api.Product{ID: id, Name: p.Name, CategoryID: p.Category, SKU: p.SKU, Price: p.Price, Qty: p.Qty, Description: p.Description}
		})
	}
	for _, l := range seed.Sales {
		s.sales.create(func(id int64) api.Sale { return api.Sale(buildLine(id, toLineInput(l))) })
	}
	for _, l := range seed.Purchases {
		s.purchases.create(func(id int64) api.Purchase { return api.Purchase(buildLine(id, toLineInput(l))) })
	}
	return s
}

// Handler returns the HTTP handler serving /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.requestLogging)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)

			mountCRUD(r, "/categories", s.categories, validateCategory, func(id int64, in api.CategoryInput) api.Category {
				return api.Category{ID: id, Name: strings.TrimSpace(in.Name)}
			})
			mountCRUD(r, "/products", s.products, validateProduct, func(id int64, in api.ProductInput) api.Product {
				return api.Product{
					ID: id, Name: strings.TrimSpace(in.Name), CategoryID: in.CategoryID, SKU: strings.TrimSpace(in.SKU),
					Price: in.Price, Qty: in.Qty, Description: strings.TrimSpace(in.Description),
				}
			})
			mountCRUD(r, "/sales", s.sales, validateLine, func(id int64, in api.LineInput) api.Sale {
				return api.Sale(buildLine(id, in))
			})
			mountCRUD(r, "/purchases", s.purchases, validateLine, func(id int64, in api.LineInput) api.Purchase {
				return api.Purchase(buildLine(id, in))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(RoleAdmin))
				r.Get("/companies", s.listCompanies)
				r.Put("/companies/{id}", s.setCompanyStatus)
			})
		})
	})
	return r
}

// Issue creates a token for username without a password check, for tests.
func (s *Server) Issue(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[username]
	if !ok {
		return "", fmt.Errorf("unknown user %q", username)
	}
	return s.issueLocked(username, acct.role), nil
}

// Revoke invalidates every issued token, as a server restart would.
func (s *Server) Revoke() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.grants)
	s.grants = make(map[string]grant)
	return n
}

func (s *Server) addAccountLocked(username, password, role, company string, active bool) *account {
	s.lastUser++
	acct := &account{id: s.lastUser, username: username, password: password, role: role, company: company, active: active}
	s.accounts[username] = acct
	return acct
}

func (s *Server) issueLocked(username, role string) string {
	token := uuid.NewString()
	s.grants[token] = grant{username: username, role: role, expires: s.now().Add(s.ttl)}
	return token
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	if !ok || acct.password != req.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if !acct.active {
		s.mu.Unlock()
		writeError(w, http.StatusForbidden, "account is disabled")
		return
	}
	token := s.issueLocked(req.Username, acct.role)
	s.mu.Unlock()

	s.logger.Info("login", zap.String("user", req.Username), zap.String("role", acct.role))
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: token, Role: acct.role})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < 4 {
		writeError(w, http.StatusBadRequest, "username and a password of at least 4 characters are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[username]; exists {
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	acct := s.addAccountLocked(username, req.Password, RoleCompany, strings.TrimSpace(req.CompanyName), true)
	writeJSON(w, http.StatusCreated, acct.record())
}

// listCompanies returns every company account in registration order.
func (s *Server) listCompanies(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := make([]api.Company, 0, len(s.accounts))
	for _, acct := range s.accounts {
		if acct.role == RoleCompany {
			out = append(out, acct.record())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

// setCompanyStatus activates or deactivates a company. Deactivation ends
// the company's open sessions.
func (s *Server) setCompanyStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in, ok := decodeInput(w, r, func(api.CompanyStatusInput) error { return nil })
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var target *account
	for _, acct := range s.accounts {
		if acct.id == id {
			target = acct
			break
		}
	}
	switch {
	case target == nil:
		writeError(w, http.StatusNotFound, fmt.Sprintf("companies %d not found", id))
		return
	case target.role != RoleCompany:
		writeError(w, http.StatusBadRequest, "user is not a company")
		return
	}

	target.active = in.Active
	if !in.Active {
		for token, g := range s.grants {
			if g.username == target.username {
				delete(s.grants, token)
			}
		}
	}
	s.logger.Info("company status", zap.String("user", target.username), zap.Bool("active", in.Active))
	writeJSON(w, http.StatusOK, target.record())
}

type grantKey struct{}

// bearerAuth rejects requests without a live token.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		s.mu.RLock()
		g, ok := s.grants[token]
		s.mu.RUnlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if s.now().After(g.expires) {
			s.mu.Lock()
			delete(s.grants, token)
			s.mu.Unlock()
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(withGrant(r.Context(), g)))
	})
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g, ok := grantFrom(r.Context())
			if !ok || g.role != role {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", s.now().Sub(start)))
	})
}

// mountCRUD serves list, create, update and delete for one table.
func mountCRUD[T any, In any](r chi.Router, path string, t *table[T], validate func(In) error, build func(int64, In) T) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, t.list())
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			in, ok := decodeInput(w, r, validate)
			if !ok {
				return
			}
			created := t.create(func(id int64) T { return build(id, in) })
			writeJSON(w, http.StatusCreated, created)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseID(w, r)
			if !ok {
				return
			}
			in, ok := decodeInput(w, r, validate)
			if !ok {
				return
			}
			updated := build(id, in)
			if !t.replace(id, updated) {
				writeError(w, http.StatusNotFound, fmt.Sprintf("%s %d not found", strings.TrimPrefix(path, "/"), id))
				return
			}
			writeJSON(w, http.StatusOK, updated)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseID(w, r)
			if !ok {
				return
			}
			if !t.remove(id) {
				writeError(w, http.StatusNotFound, fmt.Sprintf("%s %d not found", strings.TrimPrefix(path, "/"), id))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func decodeInput[In any](w http.ResponseWriter, r *http.Request, validate func(In) error) (In, bool) {
	var in In
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return in, false
	}
	if err := validate(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return in, false
	}
	return in, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func validateCategory(in api.CategoryInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

func validateProduct(in api.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(in.SKU) == "":
		return errors.New("sku is required")
	case in.CategoryID <= 0:
		return errors.New("categoryId is required")
	case in.Price < 0 || in.Qty < 0:
		return errors.New("price and qty must not be negative")
	}
	return nil
}

func validateLine(in api.LineInput) error {
	switch {
	case strings.TrimSpace(in.Item) == "":
		return errors.New("item is required")
	case in.Qty <= 0:
		return errors.New("qty must be positive")
	case in.Price < 0:
		return errors.New("price must not be negative")
	}
	return nil
}

// buildLine recomputes the total; the client's value is advisory.
func buildLine(id int64, in api.LineInput) api.Line {
	total := math.Round(float64(in.Qty)*in.Price*100) / 100
	return api.Line{ID: id, Item: strings.TrimSpace(in.Item), Qty: in.Qty, Price: in.Price, Total: total}
}

func toLineInput(l SeedLine) api.LineInput {
	return api.NewLineInput(l.Item, l.Qty, l.Price)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
