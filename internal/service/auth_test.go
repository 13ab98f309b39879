package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/entremotivator/Syncup/internal/auth"
	"github.com/entremotivator/Syncup/internal/config"
	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/event"
	"github.com/entremotivator/Syncup/internal/gateway"
	"github.com/entremotivator/Syncup/internal/session"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

type authFixture struct {
	gw       *mockGateway
	resolver *mockResolver
	idRepo   *mockIdentityRepository
	usage    *mockUsageRepository
	sessions *session.Store
	svc      *AuthService
}

func newAuthFixture(t *testing.T, strategy string) *authFixture {
	t.Helper()
	f := &authFixture{
		gw:       &mockGateway{configured: true},
		resolver: new(mockResolver),
		idRepo:   new(mockIdentityRepository),
		usage:    new(mockUsageRepository),
		sessions: session.NewStore(24 * time.Hour),
	}
	logger := testLogger()
	f.svc = NewAuthService(
		f.gw, f.resolver, f.idRepo, f.usage, f.sessions,
		auth.NewJWTManager("test-secret-at-least-32-characters!!", 12*time.Hour),
		event.NewProducer(nil, logger),
		strategy,
		logger,
	)
	return f
}

func goodToken() *gateway.TokenResponse {
	return &gateway.TokenResponse{
		Token:           "wp-jwt-abc",
		UserEmail:       "alice@example.com",
		UserNicename:    "alice",
		UserDisplayName: "Alice Smith",
	}
}

func goodProfile() *gateway.WPUser {
	return &gateway.WPUser{
		ID:           42,
		Email:        "alice@example.com",
		Username:     "alice",
		Roles:        []string{"customer"},
		Capabilities: map[string]bool{"read": true},
	}
}

func purchaseList(n int) []domain.Purchase {
	out := make([]domain.Purchase, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Purchase{
			ProductID:   int64(100 + i),
			ProductName: "Product",
			Quantity:    1,
			Total:       10.00,
			OrderID:     int64(500 + i),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Login, purchase strategy
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	f.gw.On("IssueToken", mock.Anything, "alice", "secret").Return(goodToken(), nil)
	f.gw.On("Me", mock.Anything, "wp-jwt-abc").Return(goodProfile(), nil)
	f.gw.On("FindCustomer", mock.Anything, "alice@example.com").
		Return(&gateway.WCCustomer{ID: 9, Email: "alice@example.com"}, nil)
	f.resolver.On("ResolvePurchases", mock.Anything, "alice@example.com").Return(purchaseList(3), nil)
	f.idRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Identity")).Return(nil)
	f.usage.On("GetOrCreate", mock.Anything, "alice@example.com", "alice@example.com").
		Return(&domain.UsageRecord{IdentityKey: "alice@example.com", Queries: 0}, nil)

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionToken)
	assert.Equal(t, domain.TierPremium, result.Entitlement.Tier)
	assert.Equal(t, 3, result.Entitlement.PurchaseCount)
	require.NotNil(t, result.Identity.WPUserID)
	assert.Equal(t, int64(42), *result.Identity.WPUserID)
	require.NotNil(t, result.Identity.WCCustomerID)
	assert.Equal(t, int64(9), *result.Identity.WCCustomerID)
	assert.True(t, result.Identity.ProductAccess)
	require.NotNil(t, result.Identity.LastLogin)

	sess, ok := f.sessions.Get(result.SessionID)
	require.True(t, ok)
	st := sess.Snapshot()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "wp-jwt-abc", st.WPToken)
	assert.Equal(t, "alice@example.com", st.Identity.Email)

	f.idRepo.AssertExpectations(t)
}

func TestAuthService_Login_NoPurchasesIsDenied(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	f.gw.On("IssueToken", mock.Anything, "alice", "secret").Return(goodToken(), nil)
	f.gw.On("Me", mock.Anything, "wp-jwt-abc").Return(goodProfile(), nil)
	f.resolver.On("ResolvePurchases", mock.Anything, "alice@example.com").Return(purchaseList(0), nil)

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoPurchases))

	// A denied login leaves no trace: no mirror write, no usage record, no session.
	f.idRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	f.usage.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, f.sessions.Len())
}

func TestAuthService_Login_BadCredentialsFallsBackToCustomer(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	f.gw.On("IssueToken", mock.Anything, "alice@example.com", "wrong").
		Return(nil, apperrors.Unauthorized("invalid credentials"))
	f.gw.On("FindCustomer", mock.Anything, "alice@example.com").
		Return(&gateway.WCCustomer{ID: 9, Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}, nil)
	f.resolver.On("ResolvePurchases", mock.Anything, "alice@example.com").Return(purchaseList(1), nil)
	f.idRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Identity")).Return(nil)
	f.usage.On("GetOrCreate", mock.Anything, "alice@example.com", "alice@example.com").
		Return(&domain.UsageRecord{IdentityKey: "alice@example.com"}, nil)

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice@example.com", Password: "wrong"})
	require.NoError(t, err)

	assert.Equal(t, domain.TierBasic, result.Entitlement.Tier)
	sess, ok := f.sessions.Get(result.SessionID)
	require.True(t, ok)
	assert.Empty(t, sess.Snapshot().WPToken, "customer-only login carries no WordPress token")
}

func TestAuthService_Login_BadCredentialsAndNoCustomerIsDenied(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	f.gw.On("IssueToken", mock.Anything, "mallory", "wrong").
		Return(nil, apperrors.Unauthorized("invalid credentials"))
	f.gw.On("FindCustomer", mock.Anything, "mallory").Return(nil, nil)

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "mallory", Password: "wrong"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.False(t, errors.Is(err, apperrors.ErrGatewayUnavail))
	assert.Zero(t, f.sessions.Len())
}

func TestAuthService_Login_OutageIsNotDenial(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	f.gw.On("IssueToken", mock.Anything, "alice", "secret").
		Return(nil, apperrors.GatewayUnavailable(errors.New("connection refused")))

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGatewayUnavail))
	assert.False(t, errors.Is(err, apperrors.ErrUnauthorized))
	f.gw.AssertNotCalled(t, "FindCustomer", mock.Anything, mock.Anything)
}

func TestAuthService_Login_NotConfigured(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)
	f.gw.configured = false

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfigUnavailable))
}

func TestAuthService_Login_MirrorWriteFailureBlocksSession(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	f.gw.On("IssueToken", mock.Anything, "alice", "secret").Return(goodToken(), nil)
	f.gw.On("Me", mock.Anything, "wp-jwt-abc").Return(goodProfile(), nil)
	f.gw.On("FindCustomer", mock.Anything, "alice@example.com").
		Return(&gateway.WCCustomer{ID: 9, Email: "alice@example.com"}, nil)
	f.resolver.On("ResolvePurchases", mock.Anything, "alice@example.com").Return(purchaseList(1), nil)
	f.idRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Identity")).
		Return(errors.New("connection reset"))

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreWrite))
	assert.Zero(t, f.sessions.Len(), "no session may exist without a mirrored identity")
}

func TestAuthService_Login_ProfileFetchFailureIsNonFatal(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	f.gw.On("IssueToken", mock.Anything, "alice", "secret").Return(goodToken(), nil)
	f.gw.On("Me", mock.Anything, "wp-jwt-abc").
		Return(nil, apperrors.GatewayUnavailable(errors.New("timeout")))
	f.gw.On("FindCustomer", mock.Anything, "alice@example.com").
		Return(&gateway.WCCustomer{ID: 9, Email: "alice@example.com"}, nil)
	f.resolver.On("ResolvePurchases", mock.Anything, "alice@example.com").Return(purchaseList(1), nil)
	f.idRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Identity")).Return(nil)
	f.usage.On("GetOrCreate", mock.Anything, "alice@example.com", "alice@example.com").
		Return(&domain.UsageRecord{IdentityKey: "alice@example.com"}, nil)

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Nil(t, result.Identity.WPUserID, "profile enrichment is best-effort")
	assert.Equal(t, "alice@example.com", result.Identity.Email)
}

// ---------------------------------------------------------------------------
// Login, other strategies
// ---------------------------------------------------------------------------

func TestAuthService_Login_JWTStrategySkipsPurchaseGate(t *testing.T) {
	f := newAuthFixture(t, config.StrategyJWT)

	f.gw.On("IssueToken", mock.Anything, "alice", "secret").Return(goodToken(), nil)
	f.gw.On("Me", mock.Anything, "wp-jwt-abc").Return(goodProfile(), nil)
	f.gw.On("FindCustomer", mock.Anything, "alice@example.com").Return(nil, nil)
	f.resolver.On("ResolvePurchases", mock.Anything, "alice@example.com").Return(purchaseList(0), nil)
	f.idRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Identity")).Return(nil)
	f.usage.On("GetOrCreate", mock.Anything, "alice@example.com", "alice@example.com").
		Return(&domain.UsageRecord{IdentityKey: "alice@example.com"}, nil)

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, domain.TierNone, result.Entitlement.Tier)
	assert.False(t, result.Identity.ProductAccess)
}

func TestAuthService_Login_CustomerStrategyNeverIssuesToken(t *testing.T) {
	f := newAuthFixture(t, config.StrategyCustomer)

	f.gw.On("FindCustomer", mock.Anything, "alice@example.com").
		Return(&gateway.WCCustomer{ID: 9, Email: "alice@example.com"}, nil)
	f.resolver.On("ResolvePurchases", mock.Anything, "alice@example.com").Return(purchaseList(5), nil)
	f.idRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Identity")).Return(nil)
	f.usage.On("GetOrCreate", mock.Anything, "alice@example.com", "alice@example.com").
		Return(&domain.UsageRecord{IdentityKey: "alice@example.com"}, nil)

	result, err := f.svc.Login(context.Background(), LoginInput{Username: "alice@example.com", Password: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, domain.TierEnterprise, result.Entitlement.Tier)
	f.gw.AssertNotCalled(t, "IssueToken", mock.Anything, mock.Anything, mock.Anything)
}

// ---------------------------------------------------------------------------
// CheckAuthentication / Logout
// ---------------------------------------------------------------------------

func TestAuthService_CheckAuthentication_Valid(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	sess := f.sessions.GetOrCreate("")
	sess.Authenticate(domain.Identity{Email: "alice@example.com"}, domain.Entitlement{Tier: domain.TierBasic}, "wp-jwt-abc", "purchase")

	f.gw.On("ValidateToken", mock.Anything, "wp-jwt-abc").Return(nil)

	got, err := f.svc.CheckAuthentication(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, got.Authenticated)
}

func TestAuthService_CheckAuthentication_StaleTokenTearsDownSession(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	sess := f.sessions.GetOrCreate("")
	sess.Authenticate(domain.Identity{Email: "alice@example.com"}, domain.Entitlement{Tier: domain.TierBasic}, "wp-jwt-abc", "purchase")

	f.gw.On("ValidateToken", mock.Anything, "wp-jwt-abc").
		Return(apperrors.Unauthorized("wordpress token is no longer valid"))

	_, err := f.svc.CheckAuthentication(context.Background(), sess.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	st := sess.Snapshot()
	assert.False(t, st.Authenticated, "validation failure must clear the whole session")
	assert.Empty(t, st.WPToken)
	assert.Empty(t, st.Identity.Email)
}

func TestAuthService_CheckAuthentication_UnknownSession(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	_, err := f.svc.CheckAuthentication(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestAuthService_CheckAuthentication_CustomerSessionSkipsGateway(t *testing.T) {
	f := newAuthFixture(t, config.StrategyCustomer)

	sess := f.sessions.GetOrCreate("")
	sess.Authenticate(domain.Identity{Email: "alice@example.com"}, domain.Entitlement{Tier: domain.TierBasic}, "", "customer")

	got, err := f.svc.CheckAuthentication(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, got.Authenticated)
	f.gw.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
}

func TestAuthService_Logout_IsUnconditional(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	sess := f.sessions.GetOrCreate("")
	sess.Authenticate(domain.Identity{Email: "alice@example.com"}, domain.Entitlement{Tier: domain.TierBasic}, "wp-jwt-abc", "purchase")

	// No gateway expectations: logout must work with WordPress down.
	f.svc.Logout(context.Background(), sess.ID)

	assert.Zero(t, f.sessions.Len())
	assert.False(t, sess.Snapshot().Authenticated)
	f.gw.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
}

func TestAuthService_Logout_UnknownSessionIsNoop(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)
	f.svc.Logout(context.Background(), "missing")
	assert.Zero(t, f.sessions.Len())
}

// ---------------------------------------------------------------------------
// ValidateSessionToken
// ---------------------------------------------------------------------------

func TestAuthService_ValidateSessionToken(t *testing.T) {
	f := newAuthFixture(t, config.StrategyPurchase)

	m := auth.NewJWTManager("test-secret-at-least-32-characters!!", 12*time.Hour)
	token, err := m.GenerateSessionToken("alice@example.com", "alice@example.com", domain.TierPremium)
	require.NoError(t, err)

	claims, err := f.svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.IdentityKey)
	assert.Equal(t, "premium", claims.Tier)

	_, err = f.svc.ValidateSessionToken("garbage")
	assert.Error(t, err)
}
