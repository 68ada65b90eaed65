package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendora/vendora/internal/domain"
)

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handlers) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID", "INVALID_INPUT")
		return
	}

	var req domain.CreateSubCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	subCategory, err := h.catalogService.CreateSubCategory(r.Context(), categoryID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, subCategory)
}

func (h *Handlers) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID", "INVALID_INPUT")
		return
	}

	subCategories, err := h.catalogService.ListSubCategories(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if subCategories == nil {
		subCategories = []domain.SubCategory{}
	}
	writeJSON(w, http.StatusOK, subCategories)
}

func (h *Handlers) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	unit, err := h.catalogService.CreateUnit(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, unit)
}

func (h *Handlers) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.catalogService.ListUnits(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if units == nil {
		units = []domain.Unit{}
	}
	writeJSON(w, http.StatusOK, units)
}
