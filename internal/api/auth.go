package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/five82/stockroom/internal/session"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName,omitempty"`
}

// AuthResponse is returned by the session-establishment endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login exchanges username and password for a credential and stores it.
func (c *Client) Login(ctx context.Context, req LoginRequest) (session.Credential, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return session.Credential{}, fmt.Errorf("username and password are required")
	}
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return session.Credential{}, err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return session.Credential{}, fmt.Errorf("login response has no token")
	}
	cred := session.Credential{Token: resp.Token, Role: resp.Role}
	if err := c.creds.Set(cred); err != nil {
		return session.Credential{}, fmt.Errorf("store session: %w", err)
	}
	return cred, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return fmt.Errorf("username and password are required")
	}
	return c.Do(ctx, http.MethodPost, "/auth/register", req, nil)
}

// Logout forgets the stored credential.
func (c *Client) Logout() {
	c.creds.Clear()
}
