package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	perrors "github.com/supplychain/orchestrator/internal/errors"
)

// uniqueViolation is the SQLSTATE code for a unique constraint violation.
const uniqueViolation = "23505"

const productColumns = "id, sku, name, description, price, weight, dimensions, is_active, created_at, updated_at"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindByID retrieves a product by its unique identifier. Soft-deleted products
// are returned like any other row.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	row := p.db.QueryRow(ctx, query, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves products matching the filter with pagination support.
// Results are ordered by ID ascending for deterministic pagination.
func (p *PgStore) FindAll(ctx context.Context, filter ListFilter, offset, limit int64) ([]Product, error) {
	var whereClauses []string
	var queryArgs []any
	argID := 1

	if filter.Name != nil && *filter.Name != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE $%d", argID))
		queryArgs = append(queryArgs, "%"+*filter.Name+"%")
		argID++
	}
	// filter.CategoryID is accepted but never applied: the products table has
	// no category relation.
	if filter.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_active = $%d", argID))
		queryArgs = append(queryArgs, *filter.IsActive)
		argID++
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY id ASC LIMIT $%d OFFSET $%d",
		productColumns, whereCondition, argID, argID+1)
	queryArgs = append(queryArgs, limit, offset)

	rows, err := p.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}
	return products, nil
}

// ExistsBySKU reports whether any product carries the given SKU, including
// soft-deleted rows.
func (p *PgStore) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)", sku).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check SKU existence: %w", err)
	}
	return exists, nil
}

// Create adds a new product to the system. The unique constraint on sku is the
// authoritative guard against concurrent creates racing on the same SKU.
// Returns ErrSKUAlreadyExists on a SKU collision.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	query := fmt.Sprintf(`
		INSERT INTO products (sku, name, description, price, weight, dimensions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, productColumns)

	row := p.db.QueryRow(ctx, query,
		params.SKU, params.Name, params.Description, params.Price,
		params.Weight, params.Dimensions, params.IsActive,
	)
	product, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, perrors.ErrSKUAlreadyExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update applies only the fields present in the patch and stamps updated_at.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, patch UpdatePatch) (*Product, error) {
	setClauses := []string{"updated_at = now()"}
	var queryArgs []any
	argID := 1

	appendSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		queryArgs = append(queryArgs, value)
		argID++
	}
	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Price != nil {
		appendSet("price", *patch.Price)
	}
	if patch.Weight != nil {
		appendSet("weight", *patch.Weight)
	}
	if patch.Dimensions != nil {
		appendSet("dimensions", *patch.Dimensions)
	}
	if patch.IsActive != nil {
		appendSet("is_active", *patch.IsActive)
	}

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, productColumns)
	queryArgs = append(queryArgs, id)

	row := p.db.QueryRow(ctx, query, queryArgs...)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// SoftDelete marks a product inactive. The row and all its fields remain
// retrievable via FindByID. Deleting an already-inactive product succeeds.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) SoftDelete(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, "UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// scanProduct scans a single product row from either a pgx.Row or pgx.Rows.
func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Weight,
		&product.Dimensions,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
