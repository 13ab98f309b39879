package entitlement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/gateway"
	redisrepo "github.com/entremotivator/Syncup/internal/repository/redis"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

// Storefront is the slice of the WooCommerce gateway the resolver needs.
type Storefront interface {
	// FindCustomer looks up a customer by billing email. A missing customer
	// is (nil, nil), not an error.
	FindCustomer(ctx context.Context, email string) (*gateway.WCCustomer, error)
	// ListCompletedOrders returns a customer's completed orders.
	ListCompletedOrders(ctx context.Context, customerID int64) ([]gateway.WCOrder, error)
}

// Resolver turns a billing email into purchases, a membership tier and a
// permission set by reading completed storefront orders.
type Resolver struct {
	store  Storefront
	cache  *redisrepo.PurchaseCache
	logger *slog.Logger
}

// NewResolver creates a resolver. cache may be nil, in which case every read
// goes to the storefront.
func NewResolver(store Storefront, cache *redisrepo.PurchaseCache, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// ResolvePurchases fetches an identity's deduplicated purchases straight from
// the storefront, refreshing the cache on the way out. Login uses this path
// so an entitlement decision never rides on stale data.
//
// A customer that does not exist resolves to an empty purchase list with no
// error: "no purchases" is a definitive answer. A storefront outage is an
// error the caller must not mistake for a denial.
func (r *Resolver) ResolvePurchases(ctx context.Context, email string) ([]domain.Purchase, error) {
	customer, err := r.store.FindCustomer(ctx, email)
	if err != nil {
		return nil, err
	}

	// An unknown customer resolves to an empty list, and that list is cached
	// like any other so repeated dashboard reads do not pound the storefront.
	purchases := []domain.Purchase{}
	if customer != nil {
		orders, err := r.store.ListCompletedOrders(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			purchases = append(purchases, o.Purchases()...)
		}
		purchases = domain.DedupPurchases(purchases)
	}

	if r.cache != nil {
		if err := r.cache.Save(ctx, email, purchases); err != nil {
			r.logger.WarnContext(ctx, "failed to cache purchases",
				slog.String("identity_key", email),
				slog.String("error", err.Error()),
			)
		}
	}
	return purchases, nil
}

// CachedPurchases returns an identity's purchases, serving from the cache
// when possible. Dashboard reads use this path.
func (r *Resolver) CachedPurchases(ctx context.Context, email string) ([]domain.Purchase, error) {
	if r.cache != nil {
		purchases, err := r.cache.Get(ctx, email)
		if err == nil {
			return purchases, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			r.logger.WarnContext(ctx, "purchase cache read failed",
				slog.String("identity_key", email),
				slog.String("error", err.Error()),
			)
		}
	}
	return r.ResolvePurchases(ctx, email)
}

// ResolveEntitlement computes an identity's tier and permissions from a fresh
// storefront read.
func (r *Resolver) ResolveEntitlement(ctx context.Context, email string) (domain.Entitlement, error) {
	purchases, err := r.ResolvePurchases(ctx, email)
	if err != nil {
		return domain.Entitlement{}, err
	}
	return domain.EntitlementFromPurchases(purchases), nil
}

// HasAccess reports whether an identity may use the product. With no required
// product IDs any purchase grants access; otherwise at least one required
// product must appear among the identity's purchases.
func (r *Resolver) HasAccess(ctx context.Context, email string, requiredProductIDs []int64) (bool, error) {
	purchases, err := r.CachedPurchases(ctx, email)
	if err != nil {
		return false, err
	}
	if len(requiredProductIDs) == 0 {
		return len(purchases) > 0, nil
	}

	owned := make(map[int64]struct{}, len(purchases))
	for _, p := range purchases {
		owned[p.ProductID] = struct{}{}
	}
	for _, id := range requiredProductIDs {
		if _, ok := owned[id]; ok {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops an identity's cached purchases, forcing the next read to
// hit the storefront.
func (r *Resolver) Invalidate(ctx context.Context, email string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, email); err != nil {
		r.logger.WarnContext(ctx, "failed to invalidate purchase cache",
			slog.String("identity_key", email),
			slog.String("error", err.Error()),
		)
	}
}
