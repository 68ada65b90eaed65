package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/repo/postgres"
	"github.com/vendora/vendora/pkg/events"
	"github.com/vendora/vendora/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type ProductService interface {
	CreateProduct(ctx context.Context, vendorID int64, req *domain.CreateProductRequest) (*domain.Product, error)
	ListProducts(ctx context.Context, vendorID int64, query *domain.ListProductsQuery) (*domain.ProductList, error)
	GetProduct(ctx context.Context, vendorID, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, vendorID, id int64, req *domain.UpdateProductRequest) (*domain.Product, error)
}

type productService struct {
	productRepo postgres.ProductRepository
	catalogRepo postgres.CatalogRepository
	eventBus    events.EventBus
}

func NewProductService(
	productRepo postgres.ProductRepository,
	catalogRepo postgres.CatalogRepository,
	eventBus events.EventBus,
) ProductService {
	return &productService{
		productRepo: productRepo,
		catalogRepo: catalogRepo,
		eventBus:    eventBus,
	}
}

func (s *productService) CreateProduct(ctx context.Context, vendorID int64, req *domain.CreateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	category, err := s.catalogRepo.FindCategoryByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category not found", domain.ErrNotFound)
	}

	subCategory, err := s.catalogRepo.FindSubCategory(ctx, req.SubCategoryID, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subcategory: %w", err)
	}
	if subCategory == nil {
		return nil, fmt.Errorf("%w: subcategory not found for the provided category", domain.ErrNotFound)
	}

	unit, err := s.catalogRepo.FindUnitByID(ctx, req.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up unit: %w", err)
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: unit not found", domain.ErrNotFound)
	}

	existing, err := s.productRepo.FindByVendorAndName(ctx, vendorID, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: product already exists", domain.ErrAlreadyExists)
	}

	sku := generateSKU(req.Name)

	product, err := s.productRepo.Create(ctx, vendorID, req, sku)
	if err != nil {
		if err == postgres.ErrDuplicate {
			return nil, fmt.Errorf("%w: product already exists", domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.ProductCreated, events.ProductCreatedEvent{
		ProductID: product.ID,
		VendorID:  product.VendorID,
		Name:      product.Name,
		CreatedAt: product.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish product.created event", "error", err, "product_id", product.ID)
	}

	return product, nil
}

// ListProducts runs the page query and the two counts concurrently, the way
// the storefront expects them in one payload.
func (s *productService) ListProducts(ctx context.Context, vendorID int64, query *domain.ListProductsQuery) (*domain.ProductList, error) {
	query.Normalize()
	offset := (query.Page - 1) * query.Limit

	var (
		products    []domain.Product
		total       int64
		onlineCount int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		products, err = s.productRepo.List(gctx, vendorID, query.Limit, offset, query.Search)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.productRepo.CountByVendor(gctx, vendorID)
		return err
	})
	g.Go(func() error {
		var err error
		onlineCount, err = s.productRepo.CountOnline(gctx, vendorID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	pages := int(total) / query.Limit
	if int(total)%query.Limit != 0 {
		pages++
	}

	return &domain.ProductList{
		Products:     products,
		Total:        total,
		OnlineCount:  onlineCount,
		OfflineCount: total - onlineCount,
		Page:         query.Page,
		Pages:        pages,
	}, nil
}

func (s *productService) GetProduct(ctx context.Context, vendorID, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	// Products from other vendors are indistinguishable from missing ones.
	if product == nil || product.VendorID != vendorID {
		return nil, fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, vendorID, id int64, req *domain.UpdateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	product, err := s.productRepo.Update(ctx, vendorID, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product not found or you do not have permission to edit this product", domain.ErrNotFound)
	}

	if err := s.eventBus.Publish(ctx, events.ProductUpdated, events.ProductUpdatedEvent{
		ProductID: product.ID,
		VendorID:  product.VendorID,
		Online:    product.Online,
		UpdatedAt: product.UpdatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish product.updated event", "error", err, "product_id", product.ID)
	}

	return product, nil
}

func generateSKU(name string) string {
	prefix := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}
