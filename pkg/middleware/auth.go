package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	identityKeyKey contextKeyType = "identity_key"
	tierKey        contextKeyType = "tier"
)

// Claims represents the token claims extracted by the auth middleware.
type Claims struct {
	IdentityKey string `json:"identity_key"`
	Email       string `json:"email"`
	Tier        string `json:"tier"`
}

// TokenValidator is a function that validates a session token and returns
// claims. This lets the auth service inject its own validation logic.
type TokenValidator func(token string) (*Claims, error)

// Auth middleware validates session tokens and injects identity claims into context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			claims, err := validate(parts[1])
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKeyKey, claims.IdentityKey)
			ctx = context.WithValue(ctx, tierKey, claims.Tier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTier middleware checks that the authenticated identity holds one of
// the given tiers.
func RequireTier(tiers ...string) func(http.Handler) http.Handler {
	tierSet := make(map[string]struct{}, len(tiers))
	for _, t := range tiers {
		tierSet[t] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := TierFromContext(r.Context())
			if _, ok := tierSet[tier]; !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "FORBIDDEN",
					"message": "membership tier does not permit this operation",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityKeyFromContext extracts the identity key from the request context.
func IdentityKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(identityKeyKey).(string); ok {
		return key
	}
	return ""
}

// TierFromContext extracts the membership tier from the request context.
func TierFromContext(ctx context.Context) string {
	if tier, ok := ctx.Value(tierKey).(string); ok {
		return tier
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
