package service

import (
	"context"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/gateway"
)

// Gateway is the slice of the WordPress/WooCommerce client the services
// depend on. *gateway.Client satisfies it.
type Gateway interface {
	// Configured reports whether storefront credentials are present.
	Configured() bool
	// IssueToken exchanges WordPress credentials for a JWT.
	IssueToken(ctx context.Context, username, password string) (*gateway.TokenResponse, error)
	// ValidateToken checks a previously issued WordPress JWT.
	ValidateToken(ctx context.Context, token string) error
	// Me fetches the WordPress profile behind a token.
	Me(ctx context.Context, token string) (*gateway.WPUser, error)
	// FindCustomer looks up a WooCommerce customer by billing email.
	FindCustomer(ctx context.Context, email string) (*gateway.WCCustomer, error)
	// ListCompletedOrders returns a customer's completed orders.
	ListCompletedOrders(ctx context.Context, customerID int64) ([]gateway.WCOrder, error)
	// ListProducts returns a page of the product catalog.
	ListProducts(ctx context.Context, page, perPage int) ([]gateway.WCProduct, error)
}

// EntitlementResolver turns a billing email into purchases and permissions.
// *entitlement.Resolver satisfies it.
type EntitlementResolver interface {
	ResolvePurchases(ctx context.Context, email string) ([]domain.Purchase, error)
	CachedPurchases(ctx context.Context, email string) ([]domain.Purchase, error)
	ResolveEntitlement(ctx context.Context, email string) (domain.Entitlement, error)
	HasAccess(ctx context.Context, email string, requiredProductIDs []int64) (bool, error)
	Invalidate(ctx context.Context, email string)
}
