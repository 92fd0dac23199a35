// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"time"

	perrors "github.com/supplychain/orchestrator/internal/errors"
	"github.com/supplychain/orchestrator/internal/store"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindAll returns products matching the query filters.
	// Returns an empty slice if no products match.
	FindAll(ctx context.Context, query ListQuery) ([]ProductDto, error)

	// FindByID retrieves a single product by its unique identifier, including
	// the placeholder inventory aggregates. Soft-deleted products are returned
	// like any other.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDetailDto, error)

	// Create adds a new product to the catalog.
	// Returns ErrSKUAlreadyExists when the SKU is already taken.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update applies a partial patch to an existing product. Only fields
	// present in the patch change; SKU and ID are immutable.
	// Returns ErrProductNotFound if no product exists with the given ID,
	// ErrSKUImmutable if the patch tries to change the SKU.
	Update(ctx context.Context, id int64, patch ProductUpdateDto) (*ProductDto, error)

	// SoftDelete marks a product inactive without removing the row. It is
	// idempotent for already-inactive products.
	// Returns ErrProductNotFound if no product exists with the given ID.
	SoftDelete(ctx context.Context, id int64) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ListQuery carries the filters and pagination for FindAll. CategoryID is
// accepted for API compatibility but has no effect: no category relation
// exists in the catalog.
type ListQuery struct {
	Name       *string
	CategoryID *int64
	IsActive   *bool
	Skip       int64
	Limit      int64
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Dimensions is an opaque JSON-encoded string, stored verbatim.
type ProductCreateDto struct {
	SKU         string   `json:"sku"         validate:"required,max=100"`
	Name        string   `json:"name"        validate:"required,max=200"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"       validate:"required,gt=0"`
	Weight      *float64 `json:"weight"`
	Dimensions  *string  `json:"dimensions"`
	IsActive    *bool    `json:"is_active"`
}

// ProductUpdateDto is a partial patch: a nil field leaves the stored value
// unchanged. SKU is carried only so an attempt to change it can be rejected.
type ProductUpdateDto struct {
	SKU         *string  `json:"sku"`
	Name        *string  `json:"name"        validate:"omitempty,max=200"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"       validate:"omitempty,gt=0"`
	Weight      *float64 `json:"weight"`
	Dimensions  *string  `json:"dimensions"`
	IsActive    *bool    `json:"is_active"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64      `json:"id"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Price       float64    `json:"price"`
	Weight      *float64   `json:"weight"`
	Dimensions  *string    `json:"dimensions"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// ProductDetailDto is a ProductDto enriched with inventory aggregates.
// The inventory and supplier integrations are not implemented, so the
// aggregates always carry their defaults.
type ProductDetailDto struct {
	ProductDto
	TotalInventory int              `json:"total_inventory"`
	StockStatus    string           `json:"stock_status"`
	Suppliers      []map[string]any `json:"suppliers"`
}

// FindAll retrieves products matching the query and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context, query ListQuery) ([]ProductDto, error) {
	filter := store.ListFilter{
		Name:       query.Name,
		CategoryID: query.CategoryID,
		IsActive:   query.IsActive,
	}
	products, err := s.repository.FindAll(ctx, filter, query.Skip, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDetailDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDetailDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDetailDto(product), nil
}

// Create creates a new product and returns it as a ProductDto. The SKU
// existence check is a fast path; the store's unique constraint remains the
// authoritative guard against concurrent creates.
// Returns ErrSKUAlreadyExists when the SKU is already taken.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	exists, err := s.repository.ExistsBySKU(ctx, product.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to check SKU %q: %w", product.SKU, err)
	}
	if exists {
		return nil, fmt.Errorf("SKU %q is already taken: %w", product.SKU, perrors.ErrSKUAlreadyExists)
	}

	isActive := true
	if product.IsActive != nil {
		isActive = *product.IsActive
	}
	created, err := s.repository.Create(ctx, store.CreateParams{
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Weight:      product.Weight,
		Dimensions:  product.Dimensions,
		IsActive:    isActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(created), nil
}

// Update applies a partial patch to an existing product and returns the
// updated record. A patch carrying a SKU equal to the stored one is tolerated;
// any other SKU value is rejected.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id int64, patch ProductUpdateDto) (*ProductDto, error) {
	if patch.SKU != nil {
		current, err := s.repository.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
		}
		if *patch.SKU != current.SKU {
			return nil, fmt.Errorf("cannot change SKU of product %d: %w", id, perrors.ErrSKUImmutable)
		}
	}

	updated, err := s.repository.Update(ctx, id, store.UpdatePatch{
		Name:        patch.Name,
		Description: patch.Description,
		Price:       patch.Price,
		Weight:      patch.Weight,
		Dimensions:  patch.Dimensions,
		IsActive:    patch.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	return toDto(updated), nil
}

// SoftDelete marks a product inactive.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repository.SoftDelete(ctx, id)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Weight:      product.Weight,
		Dimensions:  product.Dimensions,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// toDetailDto converts a store.Product to a ProductDetailDto with the
// placeholder aggregates defaulted.
func toDetailDto(product *store.Product) *ProductDetailDto {
	return &ProductDetailDto{
		ProductDto:     *toDto(product),
		TotalInventory: 0,
		StockStatus:    "Unknown",
		Suppliers:      nil,
	}
}
