package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/entremotivator/Syncup/internal/service"
	"github.com/entremotivator/Syncup/pkg/middleware"
	"github.com/entremotivator/Syncup/pkg/validator"
)

// UsageHandler handles HTTP requests for the query ledger.
type UsageHandler struct {
	service *service.UsageService
	logger  *slog.Logger
}

// NewUsageHandler creates a new usage HTTP handler.
func NewUsageHandler(svc *service.UsageService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{service: svc, logger: logger}
}

// --- Request/Response DTOs ---

// IncrementRequest is the optional JSON request body for counting a query.
type IncrementRequest struct {
	QueryType string         `json:"query_type" validate:"omitempty,max=50"`
	QueryData map[string]any `json:"query_data"`
}

// UsageResponse is the JSON response body for usage reads.
type UsageResponse struct {
	IdentityKey string `json:"identity_key"`
	Used        int    `json:"used"`
	Limit       int    `json:"limit"`
	Remaining   int    `json:"remaining"`
	LastQuery   any    `json:"last_query,omitempty"`
}

// LimitResponse is the JSON response body for the limit check.
type LimitResponse struct {
	Allowed bool `json:"allowed"`
	Used    int  `json:"used"`
	Limit   int  `json:"limit"`
}

// --- Handlers ---

// Get handles GET /api/v1/usage
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, email, ok := h.identity(w, r)
	if !ok {
		return
	}

	record, err := h.service.GetUsage(r.Context(), key, email)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: UsageResponse{
		IdentityKey: record.IdentityKey,
		Used:        record.Queries,
		Limit:       h.service.Limit(),
		Remaining:   record.Remaining(h.service.Limit()),
		LastQuery:   record.LastQuery,
	}})
}

// Increment handles POST /api/v1/usage/increment
func (h *UsageHandler) Increment(w http.ResponseWriter, r *http.Request) {
	key, email, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req IncrementRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, response{
				Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
			})
			return
		}
		if err := validator.Validate(req); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	record, err := h.service.IncrementUsage(r.Context(), key, email)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if req.QueryType != "" {
		// History is a trail, not a ledger: a failed write does not undo
		// the counted query.
		_ = h.service.LogQuery(r.Context(), key, email, req.QueryType, req.QueryData)
	}

	writeJSON(w, http.StatusOK, response{Data: UsageResponse{
		IdentityKey: record.IdentityKey,
		Used:        record.Queries,
		Limit:       h.service.Limit(),
		Remaining:   record.Remaining(h.service.Limit()),
		LastQuery:   record.LastQuery,
	}})
}

// Limit handles GET /api/v1/usage/limit
func (h *UsageHandler) Limit(w http.ResponseWriter, r *http.Request) {
	key, email, ok := h.identity(w, r)
	if !ok {
		return
	}

	allowed, record, err := h.service.CheckLimit(r.Context(), key, email)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: LimitResponse{
		Allowed: allowed,
		Used:    record.Queries,
		Limit:   h.service.Limit(),
	}})
}

// History handles GET /api/v1/usage/history
func (h *UsageHandler) History(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.identity(w, r)
	if !ok {
		return
	}

	records, err := h.service.UsageHistory(r.Context(), key)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: records})
}

func (h *UsageHandler) identity(w http.ResponseWriter, r *http.Request) (key, email string, ok bool) {
	key = middleware.IdentityKeyFromContext(r.Context())
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return "", "", false
	}
	// The identity key is the billing email on every login path.
	return key, key, true
}
