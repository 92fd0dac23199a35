// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product exists with the given ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrSKUAlreadyExists is returned when a create collides with an existing
	// SKU, active or soft-deleted.
	ErrSKUAlreadyExists = errors.New("product SKU already exists")

	// ErrSKUImmutable is returned when an update tries to change a product's SKU.
	ErrSKUImmutable = errors.New("product SKU is immutable")
)
