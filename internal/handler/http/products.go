package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/entremotivator/Syncup/internal/repository"
	redisrepo "github.com/entremotivator/Syncup/internal/repository/redis"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

// ProductHandler serves mirrored catalog products. Reads go through the
// Redis cache first and fall back to the Postgres mirror.
type ProductHandler struct {
	products repository.ProductRepository
	cache    *redisrepo.ProductCache
	logger   *slog.Logger
}

// NewProductHandler creates a new product HTTP handler. The cache may be nil,
// in which case every read hits the mirror directly.
func NewProductHandler(products repository.ProductRepository, cache *redisrepo.ProductCache, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, cache: cache, logger: logger}
}

// Get handles GET /api/v1/products/{productID}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "product ID must be a positive integer"},
		})
		return
	}

	if h.cache != nil {
		if product, err := h.cache.Get(r.Context(), id); err == nil {
			writeJSON(w, http.StatusOK, response{Data: product})
			return
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "product cache read failed",
				slog.Int64("wc_product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	product, err := h.products.GetByWCID(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Save(r.Context(), product); err != nil {
			h.logger.WarnContext(r.Context(), "product cache write failed",
				slog.Int64("wc_product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}
