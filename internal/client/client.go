// Package client is a Go client for the storefront API. It keeps the
// session cookie in a jar, attaches the CSRF token to state-changing
// requests and mirrors the session state into client storage.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oblivions/storefront/internal/core/cart"
	"github.com/oblivions/storefront/internal/core/domain"
)

const (
	csrfHeader      = "CSRF-Token"
	defaultTimeout  = 20 * time.Second
	maxResponseSize = 1 << 20
)

// Client talks to one storefront server. It is not safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    Storage
	log        zerolog.Logger
	csrfToken  string
}

type Option func(*Client)

// WithHTTPClient uses hc for transport. A cookie jar is attached when hc
// has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithStorage(s Storage) Option {
	return func(c *Client) { c.storage = s }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	if c.storage == nil {
		c.storage = NewMemoryStorage()
	}
	return c, nil
}

// FetchCSRFToken obtains the token bound to the current session, starting
// an anonymous session when there is none.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	var resp struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/csrf-token", nil, &resp); err != nil {
		return "", err
	}
	c.csrfToken = resp.CSRFToken
	return resp.CSRFToken, nil
}

// Register creates an account. The server logs the new user in, so the
// mirror is updated too.
func (c *Client) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	var resp struct {
		Message string      `json:"message"`
		User    domain.User `json:"user"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.mutate(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return nil, err
	}
	if err := c.setMirror(SessionMirror{LoggedIn: true, Name: resp.User.Name, Role: resp.User.Role}); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (SessionMirror, error) {
	var resp struct {
		Message string `json:"message"`
		Name    string `json:"name"`
		Role    string `json:"role"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.mutate(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return SessionMirror{}, err
	}
	m := SessionMirror{LoggedIn: true, Name: resp.Name, Role: resp.Role}
	return m, c.setMirror(m)
}

// Logout ends the server session. The mirror and the CSRF token are
// dropped whatever the server answers.
func (c *Client) Logout(ctx context.Context) error {
	err := c.mutate(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.csrfToken = ""
	if mErr := c.setMirror(SessionMirror{}); mErr != nil && err == nil {
		err = mErr
	}
	return err
}

// Refresh replaces the mirror with the server's view of the session.
func (c *Client) Refresh(ctx context.Context) (SessionMirror, error) {
	var resp struct {
		Authenticated bool   `json:"authenticated"`
		Name          string `json:"name"`
		Role          string `json:"role"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/session", nil, &resp); err != nil {
		return SessionMirror{}, err
	}
	m := SessionMirror{LoggedIn: resp.Authenticated, Name: resp.Name, Role: resp.Role}
	return m, c.setMirror(m)
}

// Mirror returns the cached session state without contacting the server.
func (c *Client) Mirror() SessionMirror {
	return loadMirror(c.storage)
}

func (c *Client) AdminUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AdminOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) AdminOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	path := "/api/admin/orders/" + url.PathEscape(orderID) + "/items"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Products(ctx context.Context) ([]cart.Product, error) {
	var products []cart.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Cart opens the cart persisted in this client's storage.
func (c *Client) Cart(opts ...cart.Option) (*cart.Store, error) {
	return cart.NewStore(cartStorage{kv: c.storage}, opts...)
}

func (c *Client) setMirror(m SessionMirror) error {
	if err := saveMirror(c.storage, m); err != nil {
		return fmt.Errorf("save session mirror: %w", err)
	}
	return nil
}

// mutate sends a state-changing request with the CSRF token, fetching one
// first if needed. A rejected token is refreshed and the request retried
// once.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	if c.csrfToken == "" {
		if _, err := c.FetchCSRFToken(ctx); err != nil {
			return err
		}
	}

	err := c.doJSON(ctx, method, path, body, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden || apiErr.Message != "invalid csrf token" {
		return err
	}

	c.log.Debug().Str("path", path).Msg("csrf token rejected, refreshing")
	if _, err := c.FetchCSRFToken(ctx); err != nil {
		return err
	}
	return c.doJSON(ctx, method, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.csrfToken != "" {
		req.Header.Set(csrfHeader, c.csrfToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
