package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/resource"
	"github.com/five82/stockroom/internal/session"
)

// Resource paths below the API base.
const (
	CategoriesPath = "/categories"
	ProductsPath   = "/products"
	SalesPath      = "/sales"
	PurchasesPath  = "/purchases"
	CompaniesPath  = "/admin/companies"
)

// Role names matched against the signed-in credential.
const (
	RoleAdmin   = "admin"
	RoleCompany = "company"
)

// Snapshot is a consistent copy of every collection for the UI.
type Snapshot struct {
	Categories resource.State[api.Category]
	Products   resource.State[api.Product]
	Sales      resource.State[api.Sale]
	Purchases  resource.State[api.Purchase]
	Companies  resource.State[api.Company]

	LastRefresh         time.Time
	LastError           error
	ConsecutiveFailures int // refreshes in a row where every collection failed
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Loading reports whether any collection has an operation in flight.
func (s Snapshot) Loading() bool {
	return s.Categories.Loading || s.Products.Loading || s.Sales.Loading || s.Purchases.Loading ||
		s.Companies.Loading
}

// CategoryName resolves a product's category reference for display.
func (s Snapshot) CategoryName(id int64) string {
	for _, c := range s.Categories.Items {
		if c.ID == id {
			return c.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

// Store owns one collection per resource kind over a shared requester.
type Store struct {
	Categories *resource.Collection[api.Category]
	Products   *resource.Collection[api.Product]
	Sales      *resource.Collection[api.Sale]
	Purchases  *resource.Collection[api.Purchase]
	Companies  *resource.Collection[api.Company] // admin only

	creds CredentialSource

	mu       sync.RWMutex
	refresh  time.Time
	lastErr  error
	failures int
}

// CredentialSource reports the signed-in credential. session.Keeper and
// api.Credentials both satisfy it.
type CredentialSource interface {
	Get() (session.Credential, bool)
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithCredentials makes RefreshAll fetch only what the signed-in role may
// see. Without it every inventory collection is fetched.
func WithCredentials(src CredentialSource) StoreOption {
	return func(s *Store) { s.creds = src }
}

// NewStore creates empty, unloaded collections bound to req.
func NewStore(req api.Requester, logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	opt := resource.WithLogger(logger)
	s := &Store{
		Categories: resource.New[api.Category]("categories", CategoriesPath, req, opt),
		Products:   resource.New[api.Product]("products", ProductsPath, req, opt),
		Sales:      resource.New[api.Sale]("sales", SalesPath, req, opt),
		Purchases:  resource.New[api.Purchase]("purchases", PurchasesPath, req, opt),
		Companies:  resource.New[api.Company]("companies", CompaniesPath, req, opt),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Visible reports which collections the signed-in role works with: admins
// manage companies, companies manage inventory.
func (s *Store) Visible() (inventory, companies bool) {
	if s.creds == nil {
		return true, false
	}
	cred, ok := s.creds.Get()
	if !ok {
		return false, false
	}
	return cred.HasRole(RoleCompany), cred.HasRole(RoleAdmin)
}

// SetCompanyActive activates or deactivates company id. Admin only.
func (s *Store) SetCompanyActive(ctx context.Context, id int64, active bool) (api.Company, error) {
	return s.Companies.Update(ctx, id, api.CompanyStatusInput{Active: active})
}

// RefreshAll fetches every collection the signed-in role works with,
// concurrently. Collections are independent; one failing does not stop the
// others. With nothing to fetch it returns nil and records nothing.
func (s *Store) RefreshAll(ctx context.Context) error {
	inventory, companies := s.Visible()
	var fetches []func(context.Context) error
	if inventory {
		fetches = append(fetches,
			func(ctx context.Context) error { _, err := s.Categories.Fetch(ctx); return err },
			func(ctx context.Context) error { _, err := s.Products.Fetch(ctx); return err },
			func(ctx context.Context) error { _, err := s.Sales.Fetch(ctx); return err },
			func(ctx context.Context) error { _, err := s.Purchases.Fetch(ctx); return err },
		)
	}
	if companies {
		fetches = append(fetches, func(ctx context.Context) error { _, err := s.Companies.Fetch(ctx); return err })
	}
	if len(fetches) == 0 {
		return nil
	}

	errs := make([]error, len(fetches))
	var wg sync.WaitGroup
	for i, fetch := range fetches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fetch(ctx)
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	err := errors.Join(errs...)

	s.mu.Lock()
	s.refresh = time.Now()
	s.lastErr = err
	if failed == len(fetches) {
		s.failures++
	} else {
		s.failures = 0
	}
	s.mu.Unlock()
	return err
}

// OnChange registers fn to run after any collection changes state. fn runs
// on the goroutine that caused the change and must not block.
func (s *Store) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.Categories.OnChange(func(resource.Op, resource.State[api.Category]) { fn() })
	s.Products.OnChange(func(resource.Op, resource.State[api.Product]) { fn() })
	s.Sales.OnChange(func(resource.Op, resource.State[api.Sale]) { fn() })
	s.Purchases.OnChange(func(resource.Op, resource.State[api.Purchase]) { fn() })
	s.Companies.OnChange(func(resource.Op, resource.State[api.Company]) { fn() })
}

// Reset discards every collection, e.g. after logout.
func (s *Store) Reset() {
	s.Categories.Reset()
	s.Products.Reset()
	s.Sales.Reset()
	s.Purchases.Reset()
	s.Companies.Reset()

	s.mu.Lock()
	s.refresh = time.Time{}
	s.lastErr = nil
	s.failures = 0
	s.mu.Unlock()
}

// Snapshot returns copies of all collection states.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Categories: s.Categories.Snapshot(),
		Products:   s.Products.Snapshot(),
		Sales:      s.Sales.Snapshot(),
		Purchases:  s.Purchases.Snapshot(),
		Companies:  s.Companies.Snapshot(),
	}
	s.mu.RLock()
	snap.LastRefresh = s.refresh
	snap.LastError = s.lastErr
	snap.ConsecutiveFailures = s.failures
	s.mu.RUnlock()
	return snap
}
