package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingHeader(t *testing.T) {
	mw := Auth(func(token string) (*Claims, error) {
		t.Fatal("validator should not be called")
		return nil, nil
	})

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usage", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuth_MalformedHeader(t *testing.T) {
	mw := Auth(func(token string) (*Claims, error) { return nil, nil })

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	mw := Auth(func(token string) (*Claims, error) {
		return nil, errors.New("expired")
	})

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestAuth_ValidTokenInjectsClaims(t *testing.T) {
	mw := Auth(func(token string) (*Claims, error) {
		assert.Equal(t, "good-token", token)
		return &Claims{IdentityKey: "buyer@example.com", Tier: "premium"}, nil
	})

	var gotKey, gotTier string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = IdentityKeyFromContext(r.Context())
		gotTier = TierFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer@example.com", gotKey)
	assert.Equal(t, "premium", gotTier)
}

func TestRequireTier_Allows(t *testing.T) {
	authMw := Auth(func(token string) (*Claims, error) {
		return &Claims{IdentityKey: "k", Tier: "enterprise"}, nil
	})
	tierMw := RequireTier("premium", "enterprise")

	req := httptest.NewRequest(http.MethodGet, "/sync/orders", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	authMw(tierMw(okHandler())).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTier_Denies(t *testing.T) {
	authMw := Auth(func(token string) (*Claims, error) {
		return &Claims{IdentityKey: "k", Tier: "basic"}, nil
	})
	tierMw := RequireTier("enterprise")

	req := httptest.NewRequest(http.MethodGet, "/sync/orders", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	authMw(tierMw(okHandler())).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
