package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/huynhvq/inventory-tracker/internal/apperr"
	"github.com/huynhvq/inventory-tracker/internal/model"
	"github.com/huynhvq/inventory-tracker/internal/storage/db"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SkuExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, sku, quantity, price, category, created_at, updated_at`

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO products (id, name, sku, quantity, price, category, created_at, updated_at)
		VALUES (@id, @name, @sku, @quantity, @price, @category, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"sku":        product.Sku,
		"quantity":   product.Quantity,
		"price":      price,
		"category":   product.Category,
		"created_at": product.CreatedAt,
		"updated_at": product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("create product: %w", mapConstraintErr(err))
	}

	return nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name       = @name,
			sku        = @sku,
			quantity   = @quantity,
			price      = @price,
			category   = @category,
			updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"sku":        product.Sku,
		"quantity":   product.Quantity,
		"price":      price,
		"category":   product.Category,
		"updated_at": product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", mapConstraintErr(err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

// SkuExists reports whether another product already claims the given sku.
// excludeID carries the product being updated; pass uuid.Nil on create.
func (r productRepository) SkuExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM products WHERE sku = $1 AND id <> $2
		)
	`, sku, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sku exists: %w", err)
	}

	return exists, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product model.Product
		price   pgtype.Numeric
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Sku,
		&product.Quantity,
		&price,
		&product.Category,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	priceVal, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}
	product.Price = priceVal.Float64

	return product, nil
}

func numericFromFloat(f float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%f", f)); err != nil {
		return n, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}

// mapConstraintErr converts a unique violation on the sku constraint into
// the domain error. Constraint enforcement in the database is the second
// line of defense behind the service-level pre-check.
func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "products_sku_key" {
		return apperr.SkuAlreadyExistsErr.WrapParent(err)
	}
	return err
}
