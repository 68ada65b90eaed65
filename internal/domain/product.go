package domain

import (
	"fmt"
	"strings"
	"time"
)

type Product struct {
	ID            int64     `json:"id"`
	VendorID      int64     `json:"vendor"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	CategoryID    int64     `json:"category"`
	SubCategoryID int64     `json:"subcategory"`
	Quantity      int       `json:"quantity"`
	UnitID        int64     `json:"unit"`
	Stock         int       `json:"stock"`
	SKU           string    `json:"sku,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Online        bool      `json:"online"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Product) IsOutOfStock() bool {
	return p.Stock == 0
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SubCategory struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CategoryID  int64     `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Unit struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	CategoryID    int64   `json:"category"`
	SubCategoryID int64   `json:"subcategory"`
	Quantity      int     `json:"quantity"`
	UnitID        int64   `json:"unit"`
	Stock         int     `json:"stock"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Online        bool    `json:"online"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	CategoryID    *int64   `json:"category,omitempty"`
	SubCategoryID *int64   `json:"subcategory,omitempty"`
	Quantity      *int     `json:"quantity,omitempty"`
	UnitID        *int64   `json:"unit,omitempty"`
	Stock         *int     `json:"stock,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
	Online        *bool    `json:"online,omitempty"`
}

// ProductList is the paginated listing payload, including online/offline
// counts so the storefront can render the toggle summary without extra calls.
type ProductList struct {
	Products     []Product `json:"products"`
	Total        int64     `json:"total"`
	OnlineCount  int64     `json:"onlineCount"`
	OfflineCount int64     `json:"offlineCount"`
	Page         int       `json:"page"`
	Pages        int       `json:"pages"`
}

type ListProductsQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateSubCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateUnitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Validation methods
func (r *CreateProductRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if r.Price <= 0 {
		return fmt.Errorf("product price is required")
	}
	if r.CategoryID == 0 {
		return fmt.Errorf("category is required")
	}
	if r.SubCategoryID == 0 {
		return fmt.Errorf("subcategory is required")
	}
	if r.Quantity < 1 {
		return fmt.Errorf("quantity is required")
	}
	if r.UnitID == 0 {
		return fmt.Errorf("unit is required")
	}
	if r.Stock < 0 {
		return fmt.Errorf("stock is required")
	}
	return nil
}

func (r *UpdateProductRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if r.Price != nil && *r.Price <= 0 {
		return fmt.Errorf("product price must be positive")
	}
	if r.Quantity != nil && *r.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if r.Stock != nil && *r.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return nil
}

func (r *CreateCategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	return nil
}

func (r *CreateSubCategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("subcategory name is required")
	}
	return nil
}

func (r *CreateUnitRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("unit name is required")
	}
	return nil
}

func (q *ListProductsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 10
	}
	q.Search = strings.TrimSpace(q.Search)
}
