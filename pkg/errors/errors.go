package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal error")
	ErrConflict          = errors.New("conflict")
	ErrServiceUnavail    = errors.New("service unavailable")
	ErrGatewayUnavail    = errors.New("gateway unavailable")
	ErrConfigUnavailable = errors.New("configuration unavailable")
	ErrStoreWrite        = errors.New("store write failed")
	ErrNoPurchases       = errors.New("no qualifying purchase")
	ErrQuotaExceeded     = errors.New("usage quota exceeded")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NoPurchases creates a 403 error for an identity with no qualifying purchase.
// This is a definitive business-rule denial, distinct from GatewayUnavailable:
// the commerce API answered and the answer was "no completed orders".
func NoPurchases(email string) *AppError {
	return &AppError{
		Code:    "NO_PURCHASES",
		Message: fmt.Sprintf("no product purchases found for %s", email),
		Status:  http.StatusForbidden,
		Err:     ErrNoPurchases,
	}
}

// GatewayUnavailable creates a 503 error for a transient commerce/identity
// gateway failure (timeout, connection refused, non-2xx). Callers that show
// data treat this as an empty result; callers that decide access surface a
// "try again" message rather than a denial.
func GatewayUnavailable(err error) *AppError {
	return &AppError{
		Code:    "GATEWAY_UNAVAILABLE",
		Message: "storefront gateway is unreachable, try again shortly",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrGatewayUnavail, err),
	}
}

// ConfigUnavailable creates a 503 error for missing gateway or store
// credentials. Operations degrade to empty/false rather than fault.
func ConfigUnavailable(component string) *AppError {
	return &AppError{
		Code:    "CONFIG_UNAVAILABLE",
		Message: fmt.Sprintf("%s configuration is not available", component),
		Status:  http.StatusServiceUnavailable,
		Err:     ErrConfigUnavailable,
	}
}

// StoreWrite creates a 500 error for a failed persistent-store write. The
// synchronizer logs it and returns false; it never propagates past the
// component boundary.
func StoreWrite(collection string, err error) *AppError {
	return &AppError{
		Code:    "STORE_WRITE_FAILED",
		Message: fmt.Sprintf("write to %s failed", collection),
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrStoreWrite, err),
	}
}

// QuotaExceeded creates a 429 error for an identity over its usage limit.
func QuotaExceeded(used, limit int) *AppError {
	return &AppError{
		Code:    "QUOTA_EXCEEDED",
		Message: fmt.Sprintf("usage limit reached (%d/%d queries)", used, limit),
		Status:  http.StatusTooManyRequests,
		Err:     ErrQuotaExceeded,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNoPurchases):
		return http.StatusForbidden
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrServiceUnavail), errors.Is(err, ErrGatewayUnavail),
		errors.Is(err, ErrConfigUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
