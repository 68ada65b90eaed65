package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/service"
	"github.com/vendora/vendora/pkg/events"
)

// ---------- Mocks ----------

type mockProductRepo struct {
	nextID   int64
	products map[int64]*domain.Product

	listErr  error
	countErr error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{nextID: 1, products: make(map[int64]*domain.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, vendorID int64, req *domain.CreateProductRequest, sku string) (*domain.Product, error) {
	p := &domain.Product{
		ID:            m.nextID,
		VendorID:      vendorID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Quantity:      req.Quantity,
		UnitID:        req.UnitID,
		Stock:         req.Stock,
		SKU:           sku,
		ImageURL:      req.ImageURL,
		Online:        req.Online,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.nextID++
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepo) FindByVendorAndName(_ context.Context, vendorID int64, name string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.VendorID == vendorID && p.Name == name {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockProductRepo) Update(_ context.Context, vendorID, id int64, req *domain.UpdateProductRequest) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok || p.VendorID != vendorID {
		return nil, nil
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Online != nil {
		p.Online = *req.Online
	}
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (m *mockProductRepo) List(_ context.Context, vendorID int64, limit, offset int, search string) ([]domain.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var all []domain.Product
	for id := int64(1); id < m.nextID; id++ {
		p, ok := m.products[id]
		if !ok || p.VendorID != vendorID {
			continue
		}
		all = append(all, *p)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockProductRepo) CountByVendor(_ context.Context, vendorID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, p := range m.products {
		if p.VendorID == vendorID {
			n++
		}
	}
	return n, nil
}

func (m *mockProductRepo) CountOnline(_ context.Context, vendorID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, p := range m.products {
		if p.VendorID == vendorID && p.Online {
			n++
		}
	}
	return n, nil
}

type mockCatalogRepo struct {
	categories    map[int64]*domain.Category
	subcategories map[int64]*domain.SubCategory
	units         map[int64]*domain.Unit
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		categories: map[int64]*domain.Category{
			1: {ID: 1, Name: "Produce"},
			2: {ID: 2, Name: "Dairy"},
		},
		subcategories: map[int64]*domain.SubCategory{
			10: {ID: 10, Name: "Fruits", CategoryID: 1},
			20: {ID: 20, Name: "Cheese", CategoryID: 2},
		},
		units: map[int64]*domain.Unit{
			100: {ID: 100, Name: "kg"},
		},
	}
}

func (m *mockCatalogRepo) CreateCategory(_ context.Context, req *domain.CreateCategoryRequest) (*domain.Category, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCatalogRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCatalogRepo) FindCategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	return m.categories[id], nil
}

func (m *mockCatalogRepo) CreateSubCategory(_ context.Context, categoryID int64, req *domain.CreateSubCategoryRequest) (*domain.SubCategory, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCatalogRepo) ListSubCategories(_ context.Context, categoryID int64) ([]domain.SubCategory, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCatalogRepo) FindSubCategory(_ context.Context, id, categoryID int64) (*domain.SubCategory, error) {
	sc, ok := m.subcategories[id]
	if !ok || sc.CategoryID != categoryID {
		return nil, nil
	}
	return sc, nil
}

func (m *mockCatalogRepo) CreateUnit(_ context.Context, req *domain.CreateUnitRequest) (*domain.Unit, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCatalogRepo) ListUnits(_ context.Context) ([]domain.Unit, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCatalogRepo) FindUnitByID(_ context.Context, id int64) (*domain.Unit, error) {
	return m.units[id], nil
}

// ---------- Helpers ----------

func productSetup() (service.ProductService, *mockProductRepo) {
	products := newMockProductRepo()
	svc := service.NewProductService(products, newMockCatalogRepo(), events.NoopEventBus{})
	return svc, products
}

func validCreateRequest() *domain.CreateProductRequest {
	return &domain.CreateProductRequest{
		Name:          "Apples",
		Price:         2.50,
		CategoryID:    1,
		SubCategoryID: 10,
		Quantity:      1,
		UnitID:        100,
		Stock:         40,
		Online:        true,
	}
}

// ---------- CreateProduct ----------

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *domain.CreateProductRequest)
	}{
		{"missing name", func(r *domain.CreateProductRequest) { r.Name = "" }},
		{"zero price", func(r *domain.CreateProductRequest) { r.Price = 0 }},
		{"negative price", func(r *domain.CreateProductRequest) { r.Price = -1 }},
		{"missing category", func(r *domain.CreateProductRequest) { r.CategoryID = 0 }},
		{"missing subcategory", func(r *domain.CreateProductRequest) { r.SubCategoryID = 0 }},
		{"zero quantity", func(r *domain.CreateProductRequest) { r.Quantity = 0 }},
		{"missing unit", func(r *domain.CreateProductRequest) { r.UnitID = 0 }},
		{"negative stock", func(r *domain.CreateProductRequest) { r.Stock = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, products := productSetup()

			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.CreateProduct(context.Background(), 1, req)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(products.products) != 0 {
				t.Error("nothing should be persisted on validation failure")
			}
		})
	}
}

func TestCreateProductUnknownCatalogRefs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *domain.CreateProductRequest)
	}{
		{"unknown category", func(r *domain.CreateProductRequest) { r.CategoryID = 99 }},
		{"unknown subcategory", func(r *domain.CreateProductRequest) { r.SubCategoryID = 99 }},
		{"unknown unit", func(r *domain.CreateProductRequest) { r.UnitID = 99 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := productSetup()

			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.CreateProduct(context.Background(), 1, req)
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestCreateProductRejectsMismatchedSubcategory(t *testing.T) {
	svc, _ := productSetup()

	// Subcategory 20 belongs to category 2, not category 1
	req := validCreateRequest()
	req.CategoryID = 1
	req.SubCategoryID = 20

	_, err := svc.CreateProduct(context.Background(), 1, req)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for subcategory outside the category, got %v", err)
	}
}

func TestCreateProductAssignsSKU(t *testing.T) {
	svc, _ := productSetup()

	product, err := svc.CreateProduct(context.Background(), 1, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if product.SKU == "" {
		t.Error("created product must carry a generated SKU")
	}
	if product.VendorID != 1 {
		t.Errorf("expected vendor 1, got %d", product.VendorID)
	}
}

func TestCreateProductDuplicateNameSameVendor(t *testing.T) {
	svc, _ := productSetup()

	if _, err := svc.CreateProduct(context.Background(), 1, validCreateRequest()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.CreateProduct(context.Background(), 1, validCreateRequest())
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Another vendor may use the same product name
	if _, err := svc.CreateProduct(context.Background(), 2, validCreateRequest()); err != nil {
		t.Errorf("same name under a different vendor should succeed: %v", err)
	}
}

// ---------- ListProducts ----------

func seedProducts(t *testing.T, svc service.ProductService, vendorID int64, names []string, online []bool) {
	t.Helper()
	for i, name := range names {
		req := validCreateRequest()
		req.Name = name
		req.Online = online[i]
		if _, err := svc.CreateProduct(context.Background(), vendorID, req); err != nil {
			t.Fatalf("seed %q failed: %v", name, err)
		}
	}
}

func TestListProductsCountsAndPages(t *testing.T) {
	svc, _ := productSetup()

	seedProducts(t, svc,
		1,
		[]string{"Apples", "Bananas", "Cherries", "Dates", "Elderberries"},
		[]bool{true, true, false, false, false},
	)

	list, err := svc.ListProducts(context.Background(), 1, &domain.ListProductsQuery{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if list.Total != 5 {
		t.Errorf("total = %d, want 5", list.Total)
	}
	if list.OnlineCount != 2 || list.OfflineCount != 3 {
		t.Errorf("online/offline = %d/%d, want 2/3", list.OnlineCount, list.OfflineCount)
	}
	if len(list.Products) != 2 {
		t.Errorf("page size = %d, want 2", len(list.Products))
	}
	if list.Page != 1 || list.Pages != 3 {
		t.Errorf("page/pages = %d/%d, want 1/3", list.Page, list.Pages)
	}
}

func TestListProductsCountsCoverAllPagesNotJustCurrent(t *testing.T) {
	svc, _ := productSetup()

	seedProducts(t, svc,
		1,
		[]string{"Apples", "Bananas", "Cherries"},
		[]bool{true, false, true},
	)

	// Page 2 holds one product, but the counts span the whole inventory
	list, err := svc.ListProducts(context.Background(), 1, &domain.ListProductsQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if len(list.Products) != 1 {
		t.Errorf("page 2 size = %d, want 1", len(list.Products))
	}
	if list.Total != 3 || list.OnlineCount != 2 || list.OfflineCount != 1 {
		t.Errorf("total/online/offline = %d/%d/%d, want 3/2/1", list.Total, list.OnlineCount, list.OfflineCount)
	}
}

func TestListProductsEmptyInventory(t *testing.T) {
	svc, _ := productSetup()

	list, err := svc.ListProducts(context.Background(), 1, &domain.ListProductsQuery{})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if list.Products == nil {
		t.Error("products must be an empty slice, not nil")
	}
	if list.Total != 0 || list.OnlineCount != 0 || list.OfflineCount != 0 {
		t.Errorf("counts = %d/%d/%d, want zeros", list.Total, list.OnlineCount, list.OfflineCount)
	}
	if list.Page != 1 {
		t.Errorf("page = %d, want normalized 1", list.Page)
	}
}

func TestListProductsNormalizesQuery(t *testing.T) {
	svc, _ := productSetup()

	seedProducts(t, svc, 1, []string{"Apples"}, []bool{true})

	list, err := svc.ListProducts(context.Background(), 1, &domain.ListProductsQuery{Page: -3, Limit: 500})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if list.Page != 1 {
		t.Errorf("page = %d, want 1", list.Page)
	}
	if list.Pages != 1 {
		t.Errorf("pages = %d, want 1", list.Pages)
	}
}

func TestListProductsScopedToVendor(t *testing.T) {
	svc, _ := productSetup()

	seedProducts(t, svc, 1, []string{"Apples", "Bananas"}, []bool{true, true})
	seedProducts(t, svc, 2, []string{"Cheddar"}, []bool{true})

	list, err := svc.ListProducts(context.Background(), 2, &domain.ListProductsQuery{})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if list.Total != 1 || len(list.Products) != 1 {
		t.Fatalf("vendor 2 should see exactly one product, got total=%d len=%d", list.Total, len(list.Products))
	}
	if list.Products[0].Name != "Cheddar" {
		t.Errorf("expected Cheddar, got %s", list.Products[0].Name)
	}
}

func TestListProductsPropagatesQueryErrors(t *testing.T) {
	products := newMockProductRepo()
	products.countErr = errors.New("connection reset")
	svc := service.NewProductService(products, newMockCatalogRepo(), events.NoopEventBus{})

	if _, err := svc.ListProducts(context.Background(), 1, &domain.ListProductsQuery{}); err == nil {
		t.Error("expected error when a count query fails")
	}
}

// ---------- GetProduct ----------

func TestGetProductScopedToVendor(t *testing.T) {
	svc, _ := productSetup()

	created, err := svc.CreateProduct(context.Background(), 1, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	got, err := svc.GetProduct(context.Background(), 1, created.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got product %d, want %d", got.ID, created.ID)
	}

	// Another vendor's lookup is indistinguishable from a missing product
	if _, err := svc.GetProduct(context.Background(), 2, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign vendor, got %v", err)
	}

	if _, err := svc.GetProduct(context.Background(), 1, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

// ---------- UpdateProduct ----------

func TestUpdateProductPartial(t *testing.T) {
	svc, _ := productSetup()

	created, err := svc.CreateProduct(context.Background(), 1, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	online := false
	stock := 7
	updated, err := svc.UpdateProduct(context.Background(), 1, created.ID, &domain.UpdateProductRequest{
		Online: &online,
		Stock:  &stock,
	})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}

	if updated.Online || updated.Stock != 7 {
		t.Errorf("online/stock = %v/%d, want false/7", updated.Online, updated.Stock)
	}
	// Untouched fields survive
	if updated.Name != created.Name || updated.Price != created.Price {
		t.Error("unset fields must keep their values")
	}
}

func TestUpdateProductValidation(t *testing.T) {
	svc, _ := productSetup()

	created, err := svc.CreateProduct(context.Background(), 1, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	empty := ""
	if _, err := svc.UpdateProduct(context.Background(), 1, created.ID, &domain.UpdateProductRequest{Name: &empty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}

	negative := -5.0
	if _, err := svc.UpdateProduct(context.Background(), 1, created.ID, &domain.UpdateProductRequest{Price: &negative}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestUpdateProductForeignVendorNotFound(t *testing.T) {
	svc, products := productSetup()

	req := validCreateRequest()
	req.Online = false
	created, err := svc.CreateProduct(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	online := true
	_, err = svc.UpdateProduct(context.Background(), 2, created.ID, &domain.UpdateProductRequest{Online: &online})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign vendor update, got %v", err)
	}
	if products.products[created.ID].Online {
		t.Error("foreign vendor update must not change the row")
	}
}
