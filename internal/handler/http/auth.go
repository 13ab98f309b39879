package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/service"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
	"github.com/entremotivator/Syncup/pkg/validator"
)

// sessionHeader carries the session ID issued at login.
const sessionHeader = "X-Session-ID"

// AuthHandler handles HTTP requests for login, logout and session validation.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// --- Request/Response DTOs ---

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse is the JSON response body for a successful login.
type LoginResponse struct {
	SessionID     string      `json:"session_id"`
	Token         string      `json:"token"`
	Email         string      `json:"email"`
	DisplayName   string      `json:"display_name"`
	Tier          domain.Tier `json:"tier"`
	Permissions   []string    `json:"permissions"`
	ProductIDs    []int64     `json:"product_ids"`
	PurchaseCount int         `json:"purchase_count"`
	TotalSpent    float64     `json:"total_spent"`
	Strategy      string      `json:"strategy"`
}

// SessionResponse is the JSON response body for session validation.
type SessionResponse struct {
	SessionID     string      `json:"session_id"`
	Authenticated bool        `json:"authenticated"`
	Email         string      `json:"email"`
	DisplayName   string      `json:"display_name"`
	Tier          domain.Tier `json:"tier"`
	Strategy      string      `json:"strategy"`
}

// --- Handlers ---

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
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

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: LoginResponse{
		SessionID:     result.SessionID,
		Token:         result.SessionToken,
		Email:         result.Identity.Email,
		DisplayName:   result.Identity.DisplayName,
		Tier:          result.Entitlement.Tier,
		Permissions:   result.Entitlement.Permissions,
		ProductIDs:    result.Entitlement.ProductIDs,
		PurchaseCount: result.Entitlement.PurchaseCount,
		TotalSpent:    result.Entitlement.TotalSpent,
		Strategy:      result.Strategy,
	}})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "missing " + sessionHeader + " header"},
		})
		return
	}

	h.service.Logout(r.Context(), sessionID)

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "logged_out"}})
}

// Validate handles GET /api/v1/auth/validate
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "missing " + sessionHeader + " header"},
		})
		return
	}

	sess, err := h.service.CheckAuthentication(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: SessionResponse{
		SessionID:     sess.ID,
		Authenticated: sess.Authenticated,
		Email:         sess.Identity.Email,
		DisplayName:   sess.Identity.DisplayName,
		Tier:          sess.Entitlement.Tier,
		Strategy:      sess.AuthStrategy,
	}})
}

// --- Shared response helpers ---

type response struct {
	Data   any            `json:"data,omitempty"`
	Error  *errorResponse `json:"error,omitempty"`
	Notice string         `json:"notice,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeAppError(w http.ResponseWriter, _ *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		message = err.Error()
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
		message = err.Error()
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrGatewayUnavail):
		code = "GATEWAY_UNAVAILABLE"
		message = "storefront gateway unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Code: code, Message: message},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}
