package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Counts reports how many records each resource holds.
type Counts struct {
	Categories int
	Products   int
	Sales      int
	Purchases  int
	Companies  int
}

// Counts returns the current record counts.
func (s *Server) Counts() Counts {
	c := Counts{
		Categories: s.categories.len(),
		Products:   s.products.len(),
		Sales:      s.sales.len(),
		Purchases:  s.purchases.len(),
	}
	s.mu.RLock()
	for _, acct := range s.accounts {
		if acct.role == RoleCompany {
			c.Companies++
		}
	}
	s.mu.RUnlock()
	return c
}

// Serve listens on addr until ctx is cancelled. ready, when non-nil, receives
// the bound address once the listener is open.
func (s *Server) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	c := s.Counts()
	s.logger.Info("mock api listening",
		zap.String("addr", ln.Addr().String()),
		zap.Int("categories", c.Categories),
		zap.Int("products", c.Products),
		zap.Int("sales", c.Sales),
		zap.Int("purchases", c.Purchases),
		zap.Int("companies", c.Companies))
	if ready != nil {
		ready(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
