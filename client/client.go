// Package client is a Go client for the Vendora API. It owns the persisted
// credential pair and refreshes expired access tokens transparently: a 401
// triggers at most one refresh-and-replay per request, and a failed refresh
// clears the stored credentials.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/vendora/vendora/internal/domain"
)

type Client struct {
	baseURL string
	store   CredentialStore
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// wrapped by the refresh interceptor.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, store CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &refreshTransport{
		base:    base,
		store:   store,
		baseURL: c.baseURL,
	}

	return c
}

// Credentials returns the current credential pair.
func (c *Client) Credentials() Credentials {
	return c.store.Get()
}

// Logout clears the stored credential pair.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// APIError carries the backend's error payload.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Auth operations

func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UserInfo, error) {
	var out struct {
		Message string           `json:"message"`
		User    *domain.UserInfo `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*domain.UserInfo, error) {
	var out struct {
		Message string           `json:"message"`
		User    *domain.UserInfo `json:"user"`
	}
	req := domain.VerifyOTPRequest{Email: email, OTP: otp}
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-otp", req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	req := domain.ResendOTPRequest{Email: email}
	return c.do(ctx, http.MethodPost, "/api/auth/resend-otp", req, nil)
}

// Login authenticates and stores the returned credential pair.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	req := domain.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}

	if err := c.store.Set(Credentials{
		User:         out.User,
		Token:        out.Token,
		RefreshToken: out.RefreshToken,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist credentials: %w", err)
	}

	return &out, nil
}

// Product operations

// ListProductsOptions are the listing query parameters.
type ListProductsOptions struct {
	Page   int    `url:"page,omitempty"`
	Limit  int    `url:"limit,omitempty"`
	Search string `url:"search,omitempty"`
}

func (c *Client) ListProducts(ctx context.Context, opts *ListProductsOptions) (*domain.ProductList, error) {
	path := "/api/products"
	if opts != nil {
		values, err := query.Values(opts)
		if err != nil {
			return nil, err
		}
		if encoded := values.Encode(); encoded != "" {
			path += "?" + encoded
		}
	}

	var out domain.ProductList
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, req *domain.CreateProductRequest) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req *domain.UpdateProductRequest) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalog operations

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/products/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	var out []domain.Unit
	if err := c.do(ctx, http.MethodGet, "/api/products/units", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do issues a JSON request. Non-2xx responses are returned as *APIError so
// callers see the backend's message and code.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
