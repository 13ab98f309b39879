package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/entremotivator/Syncup/internal/domain"
)

// Claims represents the JWT claims for a session token.
type Claims struct {
	IdentityKey string      `json:"identity_key"`
	Email       string      `json:"email"`
	Tier        domain.Tier `json:"tier"`
	jwt.RegisteredClaims
}

// JWTManager handles session token generation and validation. Session tokens
// are issued by this service and are distinct from the WordPress JWT, which
// is only ever relayed back to WordPress for validation.
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

// NewJWTManager creates a new JWT manager with the given secret and session expiry.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// GenerateSessionToken creates a signed session token for an identity.
func (m *JWTManager) GenerateSessionToken(identityKey, email string, tier domain.Tier) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		IdentityKey: identityKey,
		Email:       email,
		Tier:        tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			Issuer:    "syncup",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signedToken, nil
}

// ValidateSessionToken parses and validates a session token, returning the claims.
func (m *JWTManager) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}

	return claims, nil
}
