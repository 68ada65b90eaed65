package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/vendora/vendora/client"
	"github.com/vendora/vendora/internal/domain"
)

// fakeAPI is a minimal backend: it accepts one login, issues counted tokens,
// and rejects any access token that is not the current one.
type fakeAPI struct {
	mux *http.ServeMux

	currentToken  string
	refreshCalls  int32
	productCalls  int32
	refreshStatus int  // 0 means 200
	rejectAll     bool // 401 every product call regardless of token
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{mux: http.NewServeMux(), currentToken: "access-1"}

	f.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "supersecret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password", "code": "INVALID_CREDENTIALS"})
			return
		}
		json.NewEncoder(w).Encode(domain.LoginResponse{
			Message:      "Login successful",
			User:         &domain.UserInfo{ID: 1, Role: domain.RoleVendor, Email: req.Email},
			Token:        f.currentToken,
			RefreshToken: "refresh-1",
		})
	})

	f.mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.refreshCalls, 1)

		if f.refreshStatus != 0 {
			w.WriteHeader(f.refreshStatus)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid refresh token", "code": "INVALID_TOKEN"})
			return
		}

		var req domain.RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != "refresh-1" {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid refresh token", "code": "INVALID_TOKEN"})
			return
		}

		f.currentToken = "access-2"
		json.NewEncoder(w).Encode(map[string]string{"token": f.currentToken})
	})

	f.mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.productCalls, 1)

		if f.rejectAll || r.Header.Get("Authorization") != "Bearer "+f.currentToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Authentication failed: Invalid token", "code": "INVALID_TOKEN"})
			return
		}
		json.NewEncoder(w).Encode(domain.ProductList{Products: []domain.Product{{ID: 1, Name: "Apples"}}, Total: 1, Page: 1, Pages: 1})
	})

	f.mux.HandleFunc("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.currentToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Authentication failed: Invalid token", "code": "INVALID_TOKEN"})
			return
		}
		var req domain.CreateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid JSON format", "code": "INVALID_INPUT"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Product{ID: 2, Name: req.Name, Price: req.Price})
	})

	return f
}

func setup(t *testing.T) (*fakeAPI, *client.Client, *client.MemStore) {
	t.Helper()

	api := newFakeAPI()
	srv := httptest.NewServer(api.mux)
	t.Cleanup(srv.Close)

	store := client.NewMemStore()
	return api, client.New(srv.URL, store), store
}

func login(t *testing.T, c *client.Client) {
	t.Helper()
	if _, err := c.Login(context.Background(), "ada@example.com", "supersecret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
}

func TestLoginPersistsCredentials(t *testing.T) {
	_, c, store := setup(t)
	login(t, c)

	creds := store.Get()
	if creds.Token != "access-1" || creds.RefreshToken != "refresh-1" {
		t.Errorf("stored tokens = %q/%q, want access-1/refresh-1", creds.Token, creds.RefreshToken)
	}
	if creds.User == nil || creds.User.Email != "ada@example.com" {
		t.Error("stored credentials must include the user")
	}
}

func TestLoginFailureReturnsAPIError(t *testing.T) {
	_, c, store := setup(t)

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "INVALID_CREDENTIALS" {
		t.Errorf("got %d/%s, want 401/INVALID_CREDENTIALS", apiErr.StatusCode, apiErr.Code)
	}
	if store.Get().Token != "" {
		t.Error("failed login must not store credentials")
	}
}

// An expired access token triggers exactly one refresh and a transparent
// replay; the caller sees only the successful result.
func TestExpiredTokenRefreshedAndReplayedOnce(t *testing.T) {
	api, c, store := setup(t)
	login(t, c)

	// Invalidate the access token server-side, as if it expired
	api.currentToken = "access-2"
	api.refreshCalls = 0
	api.productCalls = 0

	list, err := c.ListProducts(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListProducts should succeed after transparent refresh: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}

	if n := atomic.LoadInt32(&api.refreshCalls); n != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", n)
	}
	if n := atomic.LoadInt32(&api.productCalls); n != 2 {
		t.Errorf("product calls = %d, want 2 (401 then replay)", n)
	}
	if store.Get().Token != "access-2" {
		t.Errorf("store token = %q, want refreshed access-2", store.Get().Token)
	}
	if store.Get().RefreshToken != "refresh-1" {
		t.Error("refresh token must not rotate")
	}
}

// Requests with a body are replayed with the body intact.
func TestRefreshReplaysRequestBody(t *testing.T) {
	api, c, _ := setup(t)
	login(t, c)

	api.currentToken = "access-2"

	product, err := c.CreateProduct(context.Background(), &domain.CreateProductRequest{
		Name: "Bananas", Price: 1.25, CategoryID: 1, SubCategoryID: 10, Quantity: 1, UnitID: 100,
	})
	if err != nil {
		t.Fatalf("CreateProduct should succeed after refresh: %v", err)
	}
	if product.Name != "Bananas" {
		t.Errorf("replayed body lost: name = %q", product.Name)
	}
	if n := atomic.LoadInt32(&api.refreshCalls); n != 1 {
		t.Errorf("refresh calls = %d, want 1", n)
	}
}

// A failed refresh clears the stored credentials and surfaces
// ErrRefreshFailed; there is no second replay attempt.
func TestRefreshFailureLogsOut(t *testing.T) {
	api, c, store := setup(t)
	login(t, c)

	api.currentToken = "access-2"
	api.refreshStatus = http.StatusForbidden

	_, err := c.ListProducts(context.Background(), nil)
	if !errors.Is(err, client.ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}

	creds := store.Get()
	if creds.Token != "" || creds.RefreshToken != "" || creds.User != nil {
		t.Error("credentials must be cleared after refresh failure")
	}
	if n := atomic.LoadInt32(&api.refreshCalls); n != 1 {
		t.Errorf("refresh calls = %d, want 1", n)
	}
}

// Without a refresh token the 401 propagates untouched.
func TestNoRefreshTokenPropagates401(t *testing.T) {
	api, c, _ := setup(t)
	api.currentToken = "something-else"

	_, err := c.ListProducts(context.Background(), nil)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if n := atomic.LoadInt32(&api.refreshCalls); n != 0 {
		t.Errorf("refresh calls = %d, want 0", n)
	}
}

// A second 401 after a successful refresh is not retried again.
func TestReplay401NotRetried(t *testing.T) {
	api, c, _ := setup(t)
	login(t, c)

	// Even the refreshed token is rejected
	api.rejectAll = true

	_, err := c.ListProducts(context.Background(), nil)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if n := atomic.LoadInt32(&api.refreshCalls); n != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", n)
	}
	if n := atomic.LoadInt32(&api.productCalls); n != 2 {
		t.Errorf("product calls = %d, want 2 (no second replay)", n)
	}
}

// A hand-built request whose body cannot be re-read is not replayed; the
// original 401 comes back instead of an empty-payload retry.
func TestNonReplayableBodyPropagates401(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.mux)
	t.Cleanup(srv.Close)

	store := client.NewMemStore()
	hc := &http.Client{}
	c := client.New(srv.URL, store, client.WithHTTPClient(hc))

	if _, err := c.Login(context.Background(), "ada@example.com", "supersecret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	api.currentToken = "access-2"

	// Wrapping the reader hides its concrete type, so GetBody stays nil
	body := io.NopCloser(strings.NewReader(`{"name":"Bananas"}`))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/products", body)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.GetBody = nil
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&api.refreshCalls); n != 0 {
		t.Errorf("refresh calls = %d, want 0 for a non-replayable request", n)
	}
}

func TestListProductsQueryEncoding(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(domain.ProductList{Products: []domain.Product{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := client.New(srv.URL, client.NewMemStore())
	if _, err := c.ListProducts(context.Background(), &client.ListProductsOptions{Page: 2, Limit: 5, Search: "red apple"}); err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if gotQuery != "limit=5&page=2&search=red+apple" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestLogoutClearsStore(t *testing.T) {
	_, c, store := setup(t)
	login(t, c)

	if err := c.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if store.Get() != (client.Credentials{}) {
		t.Error("store must be empty after logout")
	}
}
