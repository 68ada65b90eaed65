package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vendora/vendora/internal/domain"
)

// CreateProduct creates a product scoped to the calling vendor
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), claims.Sub, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// ListProducts returns the vendor's paginated products with online/offline counts
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	query := domain.ListProductsQuery{
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Limit = n
		}
	}

	list, err := h.productService.ListProducts(r.Context(), claims.Sub, &query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GetProduct returns one of the caller's own products
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID", "INVALID_INPUT")
		return
	}

	product, err := h.productService.GetProduct(r.Context(), claims.Sub, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct updates one of the caller's own products
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID", "INVALID_INPUT")
		return
	}

	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), claims.Sub, id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
