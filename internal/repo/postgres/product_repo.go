package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vendora/vendora/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, vendorID int64, req *domain.CreateProductRequest, sku string) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByVendorAndName(ctx context.Context, vendorID int64, name string) (*domain.Product, error)
	Update(ctx context.Context, vendorID, id int64, req *domain.UpdateProductRequest) (*domain.Product, error)
	List(ctx context.Context, vendorID int64, limit, offset int, search string) ([]domain.Product, error)
	CountByVendor(ctx context.Context, vendorID int64) (int64, error)
	CountOnline(ctx context.Context, vendorID int64) (int64, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productCols = `id, vendor_id, name, description, price, category_id, subcategory_id,
	quantity, unit_id, stock, sku, image_url, online, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.VendorID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.SubCategoryID,
		&p.Quantity, &p.UnitID, &p.Stock, &p.SKU, &p.ImageURL, &p.Online, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, vendorID int64, req *domain.CreateProductRequest, sku string) (*domain.Product, error) {
	const q = `
		INSERT INTO products (vendor_id, name, description, price, category_id, subcategory_id,
			quantity, unit_id, stock, sku, image_url, online)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + productCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.pool.QueryRow(ctx, q,
		vendorID, req.Name, req.Description, req.Price, req.CategoryID, req.SubCategoryID,
		req.Quantity, req.UnitID, req.Stock, sku, req.ImageURL, req.Online,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return p, nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *productRepository) FindByVendorAndName(ctx context.Context, vendorID int64, name string) (*domain.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE vendor_id = $1 AND name = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.pool.QueryRow(ctx, q, vendorID, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// Update is scoped to the owning vendor: a matching row must carry both the
// product id and the caller's vendor id, otherwise no rows update.
func (r *productRepository) Update(ctx context.Context, vendorID, id int64, req *domain.UpdateProductRequest) (*domain.Product, error) {
	const q = `
		UPDATE products
		SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			price = COALESCE($5, price),
			category_id = COALESCE($6, category_id),
			subcategory_id = COALESCE($7, subcategory_id),
			quantity = COALESCE($8, quantity),
			unit_id = COALESCE($9, unit_id),
			stock = COALESCE($10, stock),
			image_url = COALESCE($11, image_url),
			online = COALESCE($12, online),
			updated_at = now()
		WHERE id = $1 AND vendor_id = $2
		RETURNING ` + productCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.pool.QueryRow(ctx, q, id, vendorID,
		req.Name, req.Description, req.Price, req.CategoryID, req.SubCategoryID,
		req.Quantity, req.UnitID, req.Stock, req.ImageURL, req.Online,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *productRepository) List(ctx context.Context, vendorID int64, limit, offset int, search string) ([]domain.Product, error) {
	const q = `
		SELECT ` + productCols + `
		FROM products
		WHERE vendor_id = $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, vendorID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.VendorID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.SubCategoryID,
			&p.Quantity, &p.UnitID, &p.Stock, &p.SKU, &p.ImageURL, &p.Online, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *productRepository) CountByVendor(ctx context.Context, vendorID int64) (int64, error) {
	const q = `SELECT count(*) FROM products WHERE vendor_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int64
	err := r.pool.QueryRow(ctx, q, vendorID).Scan(&count)
	return count, err
}

func (r *productRepository) CountOnline(ctx context.Context, vendorID int64) (int64, error) {
	const q = `SELECT count(*) FROM products WHERE vendor_id = $1 AND online = true`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int64
	err := r.pool.QueryRow(ctx, q, vendorID).Scan(&count)
	return count, err
}
