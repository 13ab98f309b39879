package repository

import (
	"context"

	"github.com/entremotivator/Syncup/internal/domain"
)

// IdentityRepository persists mirrored storefront identities.
type IdentityRepository interface {
	// Upsert inserts or updates an identity. Matching priority is
	// wp_user_id, then wc_customer_id, then email.
	Upsert(ctx context.Context, identity *domain.Identity) error

	// GetByKey retrieves an identity by its identity key (email).
	GetByKey(ctx context.Context, key string) (*domain.Identity, error)
}

// OrderRepository persists mirrored WooCommerce orders.
type OrderRepository interface {
	// Upsert inserts or updates an order keyed by its WooCommerce order ID.
	Upsert(ctx context.Context, order *domain.Order) error

	// ListByIdentity returns an identity's mirrored orders, newest first,
	// with the total count for pagination.
	ListByIdentity(ctx context.Context, identityKey string, limit, offset int) ([]domain.Order, int, error)

	// Summary aggregates an identity's mirrored orders.
	Summary(ctx context.Context, identityKey string) (*domain.OrderSummary, error)
}

// ProductRepository persists the mirrored product catalog.
type ProductRepository interface {
	// Upsert inserts or updates a product keyed by its WooCommerce product ID.
	Upsert(ctx context.Context, product *domain.Product) error

	// GetByWCID retrieves a product by its WooCommerce ID.
	GetByWCID(ctx context.Context, wcProductID int64) (*domain.Product, error)
}

// UsageRepository persists per-identity usage counters.
type UsageRepository interface {
	// GetOrCreate returns the usage record for an identity, creating a zero
	// record when none exists.
	GetOrCreate(ctx context.Context, identityKey, email string) (*domain.UsageRecord, error)

	// Update writes the counter and last-query timestamp back.
	Update(ctx context.Context, record *domain.UsageRecord) error
}

// HistoryRepository persists the query history log.
type HistoryRepository interface {
	// Insert appends one query record.
	Insert(ctx context.Context, record *domain.QueryRecord) error

	// ListRecent returns an identity's most recent queries, newest first.
	ListRecent(ctx context.Context, identityKey string, limit int) ([]domain.QueryRecord, error)
}
