package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/entremotivator/Syncup/internal/domain"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

const (
	purchaseKeyPrefix = "purchases:"
	productKeyPrefix  = "product:"
)

// PurchaseCache caches resolved purchase lists per identity key. Login always
// bypasses it and re-reads the storefront, so a stale entry can only ever
// serve dashboard reads between logins.
type PurchaseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPurchaseCache creates a new Redis-backed purchase cache.
func NewPurchaseCache(client *redis.Client, ttl time.Duration) *PurchaseCache {
	return &PurchaseCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the cached purchases for an identity key.
func (c *PurchaseCache) Get(ctx context.Context, identityKey string) ([]domain.Purchase, error) {
	key := purchaseKeyPrefix + identityKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("purchases", identityKey)
		}
		return nil, fmt.Errorf("redis get purchases: %w", err)
	}

	var purchases []domain.Purchase
	if err := json.Unmarshal(data, &purchases); err != nil {
		return nil, fmt.Errorf("unmarshal purchases: %w", err)
	}

	return purchases, nil
}

// Save caches an identity's purchases with the configured TTL.
func (c *PurchaseCache) Save(ctx context.Context, identityKey string, purchases []domain.Purchase) error {
	key := purchaseKeyPrefix + identityKey

	data, err := json.Marshal(purchases)
	if err != nil {
		return fmt.Errorf("marshal purchases: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set purchases: %w", err)
	}

	return nil
}

// Invalidate drops the cached purchases for an identity key.
func (c *PurchaseCache) Invalidate(ctx context.Context, identityKey string) error {
	if err := c.client.Del(ctx, purchaseKeyPrefix+identityKey).Err(); err != nil {
		return fmt.Errorf("redis del purchases: %w", err)
	}
	return nil
}

// ProductCache caches individual storefront products by WooCommerce ID.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache creates a new Redis-backed product cache.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached product by its WooCommerce ID.
func (c *ProductCache) Get(ctx context.Context, wcProductID int64) (*domain.Product, error) {
	key := productKeyPrefix + strconv.FormatInt(wcProductID, 10)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("product", strconv.FormatInt(wcProductID, 10))
		}
		return nil, fmt.Errorf("redis get product: %w", err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	return &product, nil
}

// Save caches a product with the configured TTL.
func (c *ProductCache) Save(ctx context.Context, product *domain.Product) error {
	key := productKeyPrefix + strconv.FormatInt(product.WCProductID, 10)

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}

	return nil
}
