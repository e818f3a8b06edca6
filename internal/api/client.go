package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/session"
)

// Requester sends one JSON request. *Client implements it; tests may stub it.
type Requester interface {
	Do(ctx context.Context, method, path string, body, dest any) error
}

// Ensure Client implements Requester at compile time.
var _ Requester = (*Client)(nil)

// Credentials is the part of the session store the client needs.
type Credentials interface {
	Get() (session.Credential, bool)
	Set(session.Credential) error
	Clear()
}

// LoginPath is the location consumers switch to when the session ends.
const LoginPath = "/login"

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL   = "http://localhost:5050/api"
	defaultUserAgent = "stockroom/0.1"
	requestTimeout   = 15 * time.Second
	maxErrorBody     = 512
)

// Client talks to the inventory HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	creds     Credentials
	expired   func()
	location  func() string
	logger    *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithCredentials sets the store consulted for the bearer token and cleared
// when the server rejects the session.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		if creds != nil {
			c.creds = creds
		}
	}
}

// WithSessionExpired registers fn to run after the session is invalidated.
func WithSessionExpired(fn func()) Option {
	return func(c *Client) { c.expired = fn }
}

// WithLocation reports where the consumer currently is. While it returns
// LoginPath, 401/403 responses do not invalidate the session.
func WithLocation(fn func() string) Option {
	return func(c *Client) { c.location = fn }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		creds:     &session.Memory{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Credentials returns the store the client reads tokens from.
func (c *Client) Credentials() Credentials {
	return c.creds
}

// Do sends method to path below the base URL. A non-nil body is sent as JSON;
// a non-nil dest receives the decoded response.
func (c *Client) Do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	method = strings.ToUpper(method)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	reqURL := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &Error{Kind: KindNetwork, Method: method, Path: path, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, Path: path, Status: resp.StatusCode, Cause: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{
			Kind:    KindHTTP,
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, raw),
		}
		c.inspect(apiErr)
		return apiErr
	}

	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &Error{Kind: KindDecode, Method: method, Path: path, Status: resp.StatusCode, Cause: err}
	}
	return nil
}

// authorize attaches the bearer token unless path establishes a session.
func (c *Client) authorize(req *http.Request, path string) {
	if isSessionEndpoint(path) {
		return
	}
	cred, ok := c.creds.Get()
	if !ok || cred.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)
}

// inspect clears the session when the server rejects the credential.
func (c *Client) inspect(apiErr *Error) {
	if apiErr.Method == http.MethodOptions || strings.Contains(apiErr.Path, "/auth") {
		return
	}
	if apiErr.Status != http.StatusUnauthorized && apiErr.Status != http.StatusForbidden {
		return
	}
	if c.currentLocation() == LoginPath {
		return
	}

	c.creds.Clear()
	apiErr.SessionInvalidated = true
	c.logger.Warn("session invalidated",
		zap.String("method", apiErr.Method),
		zap.String("path", apiErr.Path),
		zap.Int("status", apiErr.Status))
	if c.expired != nil {
		c.expired()
	}
}

func (c *Client) currentLocation() string {
	if c.location == nil {
		return ""
	}
	return c.location()
}

func isSessionEndpoint(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/register")
}

func errorMessage(status int, raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Detail  string `json:"detail"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			for _, msg := range []string{payload.Message, payload.Error, payload.Detail} {
				if msg = strings.TrimSpace(msg); msg != "" {
					return msg
				}
			}
		}
	}
	if len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '<' {
		text := string(trimmed)
		return truncateUTF8(text, maxErrorBody)
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
