package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vendora/vendora/internal/domain"
)

type CatalogRepository interface {
	CreateCategory(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	FindCategoryByID(ctx context.Context, id int64) (*domain.Category, error)

	CreateSubCategory(ctx context.Context, categoryID int64, req *domain.CreateSubCategoryRequest) (*domain.SubCategory, error)
	ListSubCategories(ctx context.Context, categoryID int64) ([]domain.SubCategory, error)
	FindSubCategory(ctx context.Context, id, categoryID int64) (*domain.SubCategory, error)

	CreateUnit(ctx context.Context, req *domain.CreateUnitRequest) (*domain.Unit, error)
	ListUnits(ctx context.Context) ([]domain.Unit, error)
	FindUnitByID(ctx context.Context, id int64) (*domain.Unit, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) CreateCategory(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.Category, error) {
	const q = `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Category
	err := r.pool.QueryRow(ctx, q, req.Name, req.Description).Scan(
		&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return &c, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *catalogRepository) FindCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Category
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &c, err
}

func (r *catalogRepository) CreateSubCategory(ctx context.Context, categoryID int64, req *domain.CreateSubCategoryRequest) (*domain.SubCategory, error) {
	const q = `
		INSERT INTO subcategories (name, category_id, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, category_id, description, created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var sc domain.SubCategory
	err := r.pool.QueryRow(ctx, q, req.Name, categoryID, req.Description).Scan(
		&sc.ID, &sc.Name, &sc.CategoryID, &sc.Description, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return &sc, nil
}

func (r *catalogRepository) ListSubCategories(ctx context.Context, categoryID int64) ([]domain.SubCategory, error) {
	const q = `
		SELECT id, name, category_id, description, created_at, updated_at
		FROM subcategories
		WHERE category_id = $1
		ORDER BY name`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subCategories []domain.SubCategory
	for rows.Next() {
		var sc domain.SubCategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.CategoryID, &sc.Description, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		subCategories = append(subCategories, sc)
	}

	return subCategories, rows.Err()
}

func (r *catalogRepository) FindSubCategory(ctx context.Context, id, categoryID int64) (*domain.SubCategory, error) {
	const q = `
		SELECT id, name, category_id, description, created_at, updated_at
		FROM subcategories
		WHERE id = $1 AND category_id = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var sc domain.SubCategory
	err := r.pool.QueryRow(ctx, q, id, categoryID).Scan(
		&sc.ID, &sc.Name, &sc.CategoryID, &sc.Description, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &sc, err
}

func (r *catalogRepository) CreateUnit(ctx context.Context, req *domain.CreateUnitRequest) (*domain.Unit, error) {
	const q = `
		INSERT INTO units (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.Unit
	err := r.pool.QueryRow(ctx, q, req.Name, req.Description).Scan(
		&u.ID, &u.Name, &u.Description, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return &u, nil
}

func (r *catalogRepository) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM units ORDER BY name`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		var u domain.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Description, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	return units, rows.Err()
}

func (r *catalogRepository) FindUnitByID(ctx context.Context, id int64) (*domain.Unit, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM units WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.Unit
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.Description, &u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &u, err
}
