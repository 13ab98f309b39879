package http

import (
	"log/slog"
	"net/http"

	"github.com/entremotivator/Syncup/internal/repository"
	"github.com/entremotivator/Syncup/pkg/middleware"
	"github.com/entremotivator/Syncup/pkg/pagination"
)

// OrderHandler handles HTTP requests for mirrored orders.
type OrderHandler struct {
	orders repository.OrderRepository
	logger *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orders repository.OrderRepository, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	key := middleware.IdentityKeyFromContext(r.Context())
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	params := pagination.FromRequest(r)
	orders, total, err := h.orders.ListByIdentity(r.Context(), key, params.PerPage, params.Offset)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: pagination.NewResult(orders, total, params)})
}

// Summary handles GET /api/v1/orders/summary
func (h *OrderHandler) Summary(w http.ResponseWriter, r *http.Request) {
	key := middleware.IdentityKeyFromContext(r.Context())
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	summary, err := h.orders.Summary(r.Context(), key)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: summary})
}
