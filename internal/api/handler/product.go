package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/api/response"
	"github.com/prodtrack/prodtrack/internal/product"
)

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	products *product.Service
	logger   zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *product.Service, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// Catalog handles GET /api/products - the full catalog grouped by category.
func (h *ProductHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.products.Catalog(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "load catalog")
		return
	}

	products := make(map[string][]models.CatalogProduct, len(catalog))
	for category, items := range catalog {
		products[category] = models.NewCatalogProducts(items)
	}

	response.JSON(w, r, http.StatusOK, models.CatalogResponse{
		Success:    true,
		Categories: product.CategoryNames,
		Products:   products,
	})
}

// Category handles GET /api/products/{category} - one category's products.
func (h *ProductHandler) Category(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	items, err := h.products.Category(r.Context(), category)
	if err != nil {
		h.writeServiceError(w, r, err, "list category")
		return
	}

	response.JSON(w, r, http.StatusOK, struct {
		Success  bool                    `json:"success"`
		Category string                  `json:"category"`
		Products []models.CatalogProduct `json:"products"`
	}{Success: true, Category: category, Products: models.NewCatalogProducts(items)})
}

// AddProduct handles POST /api/products/{category} - add a catalog product.
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var input models.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Name == "" {
		response.BadRequest(w, r, "name is required", []models.FieldError{
			{Field: "name", Message: "must not be empty", Code: "required"},
		})
		return
	}

	p, err := h.products.Add(r.Context(), category, input.Name)
	if err != nil {
		h.writeServiceError(w, r, err, "add product")
		return
	}

	location := fmt.Sprintf("/api/products/%s/%s", p.Category, p.ProductID)
	response.Created(w, r, location, models.NewCatalogProduct(p))
}

// RemoveProduct handles DELETE /api/products/{category}/{productID}.
func (h *ProductHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	productID := chi.URLParam(r, "productID")

	if err := h.products.Remove(r.Context(), category, productID); err != nil {
		h.writeServiceError(w, r, err, "remove product")
		return
	}
	response.NoContent(w, r)
}

func (h *ProductHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, product.ErrUnknownCategory):
		response.BadRequest(w, r, "unknown product category", []models.FieldError{
			{Field: "category", Message: "must be one of: pt, ph, tb, st, gn", Code: "oneof"},
		})
	case errors.Is(err, product.ErrProductNotFound):
		response.NotFound(w, r, "product not found")
	case errors.Is(err, product.ErrProductExists):
		response.Conflict(w, r, "product already exists")
	case errors.Is(err, product.ErrStoreUnavailable):
		response.ServiceUnavailable(w, r, "product store unavailable")
	default:
		h.logger.Error().Err(err).Str("op", op).Msg("product operation failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
