package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/entremotivator/Syncup/internal/auth"
	"github.com/entremotivator/Syncup/internal/config"
	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/event"
	"github.com/entremotivator/Syncup/internal/repository"
	"github.com/entremotivator/Syncup/internal/session"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
	"github.com/entremotivator/Syncup/pkg/middleware"
)

// AuthService orchestrates login against the WordPress gateway: token issue,
// profile fetch, entitlement gate, identity mirror, session population.
type AuthService struct {
	gateway      Gateway
	resolver     EntitlementResolver
	identityRepo repository.IdentityRepository
	usageRepo    repository.UsageRepository
	sessions     *session.Store
	jwtManager   *auth.JWTManager
	producer     *event.Producer
	strategy     string
	logger       *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	gw Gateway,
	resolver EntitlementResolver,
	identityRepo repository.IdentityRepository,
	usageRepo repository.UsageRepository,
	sessions *session.Store,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	strategy string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		gateway:      gw,
		resolver:     resolver,
		identityRepo: identityRepo,
		usageRepo:    usageRepo,
		sessions:     sessions,
		jwtManager:   jwtManager,
		producer:     producer,
		strategy:     strategy,
		logger:       logger,
	}
}

// LoginInput holds the parameters for a login attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	SessionID    string
	SessionToken string
	Identity     domain.Identity
	Entitlement  domain.Entitlement
	Strategy     string
}

// Login runs the configured authentication strategy. A denial (bad
// credentials, no qualifying purchases) and a gateway outage come back as
// different errors so the caller can tell "go away" from "try again".
//
// The identity mirror upsert must succeed before the session is populated:
// a session is never authenticated against state the store does not hold.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if !s.gateway.Configured() {
		return nil, apperrors.ConfigUnavailable("gateway")
	}

	switch s.strategy {
	case config.StrategyCustomer:
		return s.loginViaCustomer(ctx, input.Username)
	case config.StrategyJWT:
		return s.loginViaToken(ctx, input, false)
	default: // config.StrategyPurchase
		result, err := s.loginViaToken(ctx, input, true)
		if err != nil && errors.Is(err, apperrors.ErrUnauthorized) && !errors.Is(err, apperrors.ErrNoPurchases) {
			// WordPress rejected the credentials; the username may still be
			// a storefront customer email.
			s.logger.InfoContext(ctx, "wordpress auth rejected, trying customer lookup",
				slog.String("username", input.Username),
			)
			return s.loginViaCustomer(ctx, input.Username)
		}
		return result, err
	}
}

// loginViaToken authenticates against the WordPress JWT endpoint and, when
// gate is set, requires at least one completed purchase.
func (s *AuthService) loginViaToken(ctx context.Context, input LoginInput, gate bool) (*LoginResult, error) {
	token, err := s.gateway.IssueToken(ctx, input.Username, input.Password)
	if err != nil {
		return nil, err
	}

	identity := domain.Identity{
		Email:       token.UserEmail,
		Username:    token.UserNicename,
		DisplayName: token.UserDisplayName,
	}

	// The profile fetch enriches the identity but is not load-bearing: the
	// token response already carries enough to log in.
	if user, err := s.gateway.Me(ctx, token.Token); err != nil {
		s.logger.WarnContext(ctx, "profile fetch failed, using token response fields",
			slog.String("email", identity.Email),
			slog.String("error", err.Error()),
		)
	} else {
		identity.WPUserID = &user.ID
		identity.Roles = user.Roles
		identity.Capabilities = user.Capabilities
		if user.Email != "" {
			identity.Email = user.Email
		}
	}

	return s.completeLogin(ctx, identity, token.Token, gate)
}

// loginViaCustomer authenticates purely by storefront customer lookup. No
// password is involved; access rides entirely on purchase history.
func (s *AuthService) loginViaCustomer(ctx context.Context, email string) (*LoginResult, error) {
	customer, err := s.gateway.FindCustomer(ctx, email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.Unauthorized("no storefront customer matches this email")
	}

	identity := domain.Identity{
		WCCustomerID: &customer.ID,
		Email:        customer.Email,
		Username:     customer.Username,
		DisplayName:  customer.DisplayName(),
	}

	return s.completeLogin(ctx, identity, "", true)
}

func (s *AuthService) completeLogin(ctx context.Context, identity domain.Identity, wpToken string, gate bool) (*LoginResult, error) {
	purchases, err := s.resolver.ResolvePurchases(ctx, identity.Email)
	if err != nil {
		if gate {
			return nil, err
		}
		s.logger.WarnContext(ctx, "entitlement resolution failed, proceeding without purchases",
			slog.String("email", identity.Email),
			slog.String("error", err.Error()),
		)
		purchases = nil
	}
	if gate && len(purchases) == 0 {
		return nil, apperrors.NoPurchases(identity.Email)
	}

	entitlement := domain.EntitlementFromPurchases(purchases)
	now := time.Now().UTC()
	identity.PurchasedProducts = entitlement.ProductIDs
	identity.ProductAccess = len(purchases) > 0
	identity.LastLogin = &now

	if identity.WCCustomerID == nil {
		// Best-effort: link the WooCommerce customer so later syncs skip
		// the lookup.
		if customer, err := s.gateway.FindCustomer(ctx, identity.Email); err == nil && customer != nil {
			identity.WCCustomerID = &customer.ID
		}
	}

	if err := s.identityRepo.Upsert(ctx, &identity); err != nil {
		s.logger.ErrorContext(ctx, "identity mirror write failed",
			slog.String("identity_key", identity.Key()),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.StoreWrite("identities", err)
	}

	if _, err := s.usageRepo.GetOrCreate(ctx, identity.Key(), identity.Email); err != nil {
		s.logger.WarnContext(ctx, "usage record init failed",
			slog.String("identity_key", identity.Key()),
			slog.String("error", err.Error()),
		)
	}

	sess := s.sessions.GetOrCreate("")
	sess.Authenticate(identity, entitlement, wpToken, s.strategy)

	sessionToken, err := s.jwtManager.GenerateSessionToken(identity.Key(), identity.Email, entitlement.Tier)
	if err != nil {
		sess.Teardown()
		return nil, apperrors.Internal(err)
	}

	_ = s.producer.PublishIdentitySynced(ctx, &identity, entitlement.Tier, entitlement.PurchaseCount)

	s.logger.InfoContext(ctx, "login succeeded",
		slog.String("identity_key", identity.Key()),
		slog.String("tier", string(entitlement.Tier)),
		slog.Int("purchases", entitlement.PurchaseCount),
	)

	return &LoginResult{
		SessionID:    sess.ID,
		SessionToken: sessionToken,
		Identity:     identity,
		Entitlement:  entitlement,
		Strategy:     s.strategy,
	}, nil
}

// CheckAuthentication re-validates a session against the gateway. Any
// validation failure tears the session down entirely, so callers observe
// either a fully authenticated session or none at all.
func (s *AuthService) CheckAuthentication(ctx context.Context, sessionID string) (session.State, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return session.State{}, apperrors.Unauthorized("not authenticated")
	}

	st := sess.Snapshot()
	if !st.Authenticated {
		return session.State{}, apperrors.Unauthorized("not authenticated")
	}

	if st.WPToken != "" {
		if err := s.gateway.ValidateToken(ctx, st.WPToken); err != nil {
			s.logger.InfoContext(ctx, "wordpress token validation failed, tearing down session",
				slog.String("identity_key", st.Identity.Key()),
				slog.String("error", err.Error()),
			)
			sess.Teardown()
			return session.State{}, apperrors.Unauthorized("session is no longer valid")
		}
	}

	sess.Touch()
	return sess.Snapshot(), nil
}

// Logout tears the session down unconditionally. The gateway is never
// called: logging out must work when WordPress is down.
func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	if sess, ok := s.sessions.Get(sessionID); ok {
		snap := sess.Snapshot()
		s.logger.InfoContext(ctx, "logout",
			slog.String("identity_key", snap.Identity.Key()),
		)
		sess.Teardown()
		s.sessions.Delete(sessionID)
	}
}

// ValidateSessionToken adapts the JWT manager to the middleware contract.
func (s *AuthService) ValidateSessionToken(token string) (*middleware.Claims, error) {
	claims, err := s.jwtManager.ValidateSessionToken(token)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		IdentityKey: claims.IdentityKey,
		Email:       claims.Email,
		Tier:        string(claims.Tier),
	}, nil
}
