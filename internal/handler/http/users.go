package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/repository"
	"github.com/entremotivator/Syncup/internal/service"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
	"github.com/entremotivator/Syncup/pkg/middleware"
)

// staleDataNotice is attached when the storefront is unreachable and the
// response falls back to mirrored data.
const staleDataNotice = "storefront unreachable; showing last mirrored data"

// UserHandler handles HTTP requests for the authenticated identity.
type UserHandler struct {
	identities repository.IdentityRepository
	resolver   service.EntitlementResolver
	logger     *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(identities repository.IdentityRepository, resolver service.EntitlementResolver, logger *slog.Logger) *UserHandler {
	return &UserHandler{identities: identities, resolver: resolver, logger: logger}
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	key := middleware.IdentityKeyFromContext(r.Context())
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	identity, err := h.identities.GetByKey(r.Context(), key)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: identity})
}

// Entitlement handles GET /api/v1/users/me/entitlement
//
// When the storefront is unreachable the endpoint degrades to the mirrored
// purchase list instead of failing: a gateway outage must not lock a paying
// user out of the dashboard.
func (h *UserHandler) Entitlement(w http.ResponseWriter, r *http.Request) {
	key := middleware.IdentityKeyFromContext(r.Context())
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	purchases, err := h.resolver.CachedPurchases(r.Context(), key)
	if err != nil {
		if errors.Is(err, apperrors.ErrGatewayUnavail) || errors.Is(err, apperrors.ErrConfigUnavailable) {
			h.writeMirroredEntitlement(w, r, key)
			return
		}
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: domain.EntitlementFromPurchases(purchases)})
}

func (h *UserHandler) writeMirroredEntitlement(w http.ResponseWriter, r *http.Request, key string) {
	identity, err := h.identities.GetByKey(r.Context(), key)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	tier := domain.TierForCount(len(identity.PurchasedProducts))
	entitlement := domain.Entitlement{
		Tier:          tier,
		Permissions:   domain.PermissionsForTier(tier),
		ProductIDs:    identity.PurchasedProducts,
		PurchaseCount: len(identity.PurchasedProducts),
	}

	h.logger.WarnContext(r.Context(), "serving mirrored entitlement",
		slog.String("identity_key", key),
	)
	writeJSON(w, http.StatusOK, response{Data: entitlement, Notice: staleDataNotice})
}
