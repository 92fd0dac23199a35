// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"
)

// Product is a row in the products table. Dimensions is an opaque JSON-encoded
// string; the service stores it verbatim and never parses it.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description *string
	Price       float64
	Weight      *float64
	Dimensions  *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ListFilter carries the optional filters for FindAll. CategoryID is accepted
// for API compatibility but never applied: no category relation exists.
type ListFilter struct {
	Name       *string
	CategoryID *int64
	IsActive   *bool
}

// CreateParams carries the caller-supplied fields for a new product.
type CreateParams struct {
	SKU         string
	Name        string
	Description *string
	Price       float64
	Weight      *float64
	Dimensions  *string
	IsActive    bool
}

// UpdatePatch carries only the fields the caller explicitly supplied.
// A nil slot leaves the corresponding column unchanged. SKU and ID are
// immutable and deliberately have no slot here.
type UpdatePatch struct {
	Name        *string
	Description *string
	Price       *float64
	Weight      *float64
	Dimensions  *string
	IsActive    *bool
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier, regardless
	// of its active flag: soft-deleted products remain retrievable.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns products matching the filter, ordered by ID ascending.
	// Offset and limit are passed through to the database unclamped.
	// Returns an empty slice if no products match.
	FindAll(ctx context.Context, filter ListFilter, offset, limit int64) ([]Product, error)

	// ExistsBySKU reports whether any product, active or not, carries the SKU.
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// Create adds a new product. The database assigns the ID and created_at;
	// updated_at stays unset until the first update.
	// Returns ErrSKUAlreadyExists when the SKU is already taken.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// Update applies only the fields present in the patch and stamps
	// updated_at. Returns ErrProductNotFound if no product exists with the
	// given ID; no write occurs in that case.
	Update(ctx context.Context, id int64, patch UpdatePatch) (*Product, error)

	// SoftDelete marks a product inactive, keeping the row. It is idempotent
	// for already-inactive products.
	// Returns ErrProductNotFound if no product exists with the given ID.
	SoftDelete(ctx context.Context, id int64) error
}
