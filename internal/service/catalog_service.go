package service

import (
	"context"
	"fmt"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/repo/postgres"
)

type CatalogService interface {
	CreateCategory(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateSubCategory(ctx context.Context, categoryID int64, req *domain.CreateSubCategoryRequest) (*domain.SubCategory, error)
	ListSubCategories(ctx context.Context, categoryID int64) ([]domain.SubCategory, error)
	CreateUnit(ctx context.Context, req *domain.CreateUnitRequest) (*domain.Unit, error)
	ListUnits(ctx context.Context) ([]domain.Unit, error)
}

type catalogService struct {
	catalogRepo postgres.CatalogRepository
}

func NewCatalogService(catalogRepo postgres.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

func (s *catalogService) CreateCategory(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	category, err := s.catalogRepo.CreateCategory(ctx, req)
	if err != nil {
		if err == postgres.ErrDuplicate {
			return nil, fmt.Errorf("%w: category already exists", domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) CreateSubCategory(ctx context.Context, categoryID int64, req *domain.CreateSubCategoryRequest) (*domain.SubCategory, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	category, err := s.catalogRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category not found", domain.ErrNotFound)
	}

	subCategory, err := s.catalogRepo.CreateSubCategory(ctx, categoryID, req)
	if err != nil {
		if err == postgres.ErrDuplicate {
			return nil, fmt.Errorf("%w: subcategory already exists in this category", domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}

	return subCategory, nil
}

func (s *catalogService) ListSubCategories(ctx context.Context, categoryID int64) ([]domain.SubCategory, error) {
	subCategories, err := s.catalogRepo.ListSubCategories(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	return subCategories, nil
}

func (s *catalogService) CreateUnit(ctx context.Context, req *domain.CreateUnitRequest) (*domain.Unit, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	unit, err := s.catalogRepo.CreateUnit(ctx, req)
	if err != nil {
		if err == postgres.ErrDuplicate {
			return nil, fmt.Errorf("%w: unit already exists", domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	return unit, nil
}

func (s *catalogService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	units, err := s.catalogRepo.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}
