// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	producterrors "github.com/supplychain/orchestrator/internal/errors"
	"github.com/supplychain/orchestrator/internal/service"
	"github.com/supplychain/orchestrator/pkg/web"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.SoftDelete)
		})
	})

	r.Get("/", h.Root)
	r.Get("/healthz", h.HealthCheck)
}

// FindAll retrieves a list of products with optional filtering.
// Query parameters: skip (default 0), limit (default 100), name (substring,
// case-insensitive), category_id (accepted, currently inert), is_active
// (default true).
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	skip, ok := web.ParseQueryInt(r, w, mLogger, "skip", defaultSkip)
	if !ok {
		return
	}
	limit, ok := web.ParseQueryInt(r, w, mLogger, "limit", defaultLimit)
	if !ok {
		return
	}
	isActive, ok := web.ParseQueryBool(r, w, mLogger, "is_active", true)
	if !ok {
		return
	}

	query := service.ListQuery{
		IsActive: &isActive,
		Skip:     skip,
		Limit:    limit,
	}
	if name := r.URL.Query().Get("name"); name != "" {
		query.Name = &name
	}
	if r.URL.Query().Get("category_id") != "" {
		categoryID, ok := web.ParseQueryInt(r, w, mLogger, "category_id", 0)
		if !ok {
			return
		}
		query.CategoryID = &categoryID
	}

	mLogger.DebugContext(r.Context(), "Received request to list products", "skip", skip, "limit", limit)
	list, err := h.service.FindAll(r.Context(), query)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID, including the placeholder inventory
// aggregates. Soft-deleted products are returned like any other.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "SKU", found.SKU)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&productCreateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "SKU", productCreateDto.SKU)
	if !h.validateStruct(w, r, mLogger, productCreateDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		if errors.Is(err, producterrors.ErrSKUAlreadyExists) {
			mLogger.WarnContext(r.Context(), "Duplicate SKU", "SKU", productCreateDto.SKU)
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Product with SKU %s already exists", productCreateDto.SKU))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "SKU", newProduct.SKU)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update applies a partial patch to an existing product. Fields absent from
// the request body keep their stored values.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	var patch service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, patch) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, producterrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
		case errors.Is(err, producterrors.ErrSKUImmutable):
			mLogger.WarnContext(r.Context(), "Attempt to change immutable SKU", "ID", id)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Product SKU cannot be changed")
		default:
			mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %d", id))
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "SKU", updated.SKU)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// SoftDelete marks a product inactive. The record stays retrievable by ID.
func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deactivated", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// Root returns the API welcome payload.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{
		"message": "Welcome to the Supply Chain Orchestrator API",
		"docs":    "/docs",
		"version": "1.0.0",
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validateStruct runs struct validation and writes the field-level error map
// on failure. Returns true when the value is valid.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, v any) bool {
	if err := h.validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
