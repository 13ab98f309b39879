package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entremotivator/Syncup/internal/domain"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret-at-least-32-characters!!", 12*time.Hour)

	token, err := m.GenerateSessionToken("alice@example.com", "alice@example.com", domain.TierPremium)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.IdentityKey)
	assert.Equal(t, domain.TierPremium, claims.Tier)
	assert.Equal(t, "syncup", claims.Issuer)
}

func TestJWTManager_ValidateSessionToken_Expired(t *testing.T) {
	m := NewJWTManager("test-secret-at-least-32-characters!!", -time.Minute)

	token, err := m.GenerateSessionToken("alice@example.com", "alice@example.com", domain.TierBasic)
	require.NoError(t, err)

	_, err = m.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestJWTManager_ValidateSessionToken_WrongSecret(t *testing.T) {
	issuer := NewJWTManager("test-secret-at-least-32-characters!!", time.Hour)
	verifier := NewJWTManager("another-secret-also-32-characters!!!", time.Hour)

	token, err := issuer.GenerateSessionToken("alice@example.com", "alice@example.com", domain.TierBasic)
	require.NoError(t, err)

	_, err = verifier.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestJWTManager_ValidateSessionToken_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret-at-least-32-characters!!", time.Hour)

	_, err := m.ValidateSessionToken("not-a-jwt")
	assert.Error(t, err)
}
