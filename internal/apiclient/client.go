// Package apiclient is a JSON-over-HTTP client for the external product API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fairyhunter13/product-console/internal/model"
	"github.com/fairyhunter13/product-console/internal/obs"
)

// ErrNoToken is returned by authenticated calls made without a token.
var ErrNoToken = errors.New("No authentication token")

// maxBody caps how much of a response body is read.
const maxBody = 4 << 20

// Client talks to the product API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// http.Client, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	if c.logger == nil {
		c.logger = obs.Logger
	}
	return c
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, cred model.Credentials) (string, error) {
	const op = "login"
	resp, err := c.do(ctx, http.MethodPost, "/login", "", cred)
	if err != nil {
		return "", &APIError{Op: op, Message: "Login failed", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", &APIError{Op: op, Status: resp.StatusCode, Message: "Login failed", Err: err}
	}
	if !ok(resp.StatusCode) {
		return "", &APIError{Op: op, Status: resp.StatusCode, Message: serverMessage(body, "Login failed")}
	}
	var lr model.LoginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", &APIError{Op: op, Status: resp.StatusCode, Message: "Login failed", Err: err}
	}
	if lr.Token == "" {
		return "", &APIError{Op: op, Status: resp.StatusCode, Message: "Login failed", Err: errors.New("empty token in response")}
	}
	return lr.Token, nil
}

// ListProducts fetches every product visible to token.
func (c *Client) ListProducts(ctx context.Context, token string) ([]model.Product, error) {
	const op, msg = "list_products", "Failed to fetch products"
	if token == "" {
		return nil, ErrNoToken
	}
	resp, err := c.do(ctx, http.MethodGet, "/products", token, nil)
	if err != nil {
		return nil, &APIError{Op: op, Message: msg, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: msg, Err: err}
	}
	if !ok(resp.StatusCode) {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	products, err := DecodeProducts(body)
	if err != nil {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: msg, Err: err}
	}
	return products, nil
}

// FindProduct lists products and returns the one with id.
func (c *Client) FindProduct(ctx context.Context, token string, id model.ID) (model.Product, bool, error) {
	ps, err := c.ListProducts(ctx, token)
	if err != nil {
		return model.Product{}, false, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, true, nil
		}
	}
	return model.Product{}, false, nil
}

// CreateProduct posts a new product. The id field is not sent.
func (c *Client) CreateProduct(ctx context.Context, token string, p model.Product) error {
	p.ID = ""
	return c.mutate(ctx, "create_product", http.MethodPost, "/products", token, p, "Failed to create product")
}

// UpdateProduct replaces the product identified by p.ID.
func (c *Client) UpdateProduct(ctx context.Context, token string, p model.Product) error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", model.ErrValidation)
	}
	return c.mutate(ctx, "update_product", http.MethodPut, productPath(p.ID), token, p, "Failed to update product")
}

// DeleteProduct removes the product with id.
func (c *Client) DeleteProduct(ctx context.Context, token string, id model.ID) error {
	if id == "" {
		return fmt.Errorf("%w: product id is required", model.ErrValidation)
	}
	return c.mutate(ctx, "delete_product", http.MethodDelete, productPath(id), token, nil, "Failed to delete product")
}

func (c *Client) mutate(ctx context.Context, op, method, path, token string, payload any, msg string) error {
	if token == "" {
		return ErrNoToken
	}
	resp, err := c.do(ctx, method, path, token, payload)
	if err != nil {
		return &APIError{Op: op, Message: msg, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	if !ok(resp.StatusCode) {
		return &APIError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := obs.RequestIDFromContext(ctx)
	if reqID != "" {
		req.Header.Set("X-Request-Id", reqID)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api_request_failed", "method", method, "path", path, "error", err, "request_id", reqID)
		return nil, err
	}
	c.logger.Debug("api_request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
		"request_id", reqID,
	)
	return resp, nil
}

func productPath(id model.ID) string {
	return "/products/" + url.PathEscape(string(id))
}

func ok(status int) bool { return status >= 200 && status < 300 }

// serverMessage extracts the "error" field of a JSON error body.
func serverMessage(body []byte, fallback string) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return fallback
}
