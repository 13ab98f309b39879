package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/pkg/database"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order mirror repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Upsert inserts or updates an order keyed by its WooCommerce order ID.
// Re-running a sync advances synced_at and refreshes every mirrored field.
func (r *OrderRepository) Upsert(ctx context.Context, o *domain.Order) error {
	o.SyncedAt = time.Now().UTC()

	query := `
		INSERT INTO order_mirror (wc_order_id, identity_key, wc_customer_id, status,
			total, subtotal, tax_total, currency, date_created, date_completed,
			product_count, product_names, billing_email, billing_phone,
			shipping_method, payment_method, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (wc_order_id) DO UPDATE
		SET identity_key = EXCLUDED.identity_key,
		    wc_customer_id = EXCLUDED.wc_customer_id,
		    status = EXCLUDED.status,
		    total = EXCLUDED.total,
		    subtotal = EXCLUDED.subtotal,
		    tax_total = EXCLUDED.tax_total,
		    currency = EXCLUDED.currency,
		    date_created = EXCLUDED.date_created,
		    date_completed = EXCLUDED.date_completed,
		    product_count = EXCLUDED.product_count,
		    product_names = EXCLUDED.product_names,
		    billing_email = EXCLUDED.billing_email,
		    billing_phone = EXCLUDED.billing_phone,
		    shipping_method = EXCLUDED.shipping_method,
		    payment_method = EXCLUDED.payment_method,
		    synced_at = EXCLUDED.synced_at`

	_, err := r.db.Exec(ctx, query,
		o.WCOrderID,
		o.IdentityKey,
		o.WCCustomerID,
		o.Status,
		o.Total,
		o.Subtotal,
		o.TaxTotal,
		o.Currency,
		o.DateCreated,
		o.DateCompleted,
		o.ProductCount,
		o.ProductNames,
		o.BillingEmail,
		o.BillingPhone,
		o.ShippingMethod,
		o.PaymentMethod,
		o.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert order %d: %w", o.WCOrderID, err)
	}
	return nil
}

// ListByIdentity returns an identity's mirrored orders, newest first.
func (r *OrderRepository) ListByIdentity(ctx context.Context, identityKey string, limit, offset int) ([]domain.Order, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM order_mirror WHERE identity_key = $1`, identityKey,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `
		SELECT id, wc_order_id, identity_key, wc_customer_id, status,
		       total, subtotal, tax_total, currency, date_created, date_completed,
		       product_count, product_names, billing_email, billing_phone,
		       shipping_method, payment_method, synced_at
		FROM order_mirror
		WHERE identity_key = $1
		ORDER BY date_created DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, identityKey, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.WCOrderID,
			&o.IdentityKey,
			&o.WCCustomerID,
			&o.Status,
			&o.Total,
			&o.Subtotal,
			&o.TaxTotal,
			&o.Currency,
			&o.DateCreated,
			&o.DateCompleted,
			&o.ProductCount,
			&o.ProductNames,
			&o.BillingEmail,
			&o.BillingPhone,
			&o.ShippingMethod,
			&o.PaymentMethod,
			&o.SyncedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, total, nil
}

// Summary aggregates an identity's mirrored orders in one pass.
func (r *OrderRepository) Summary(ctx context.Context, identityKey string) (*domain.OrderSummary, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0),
		       MIN(date_created), MAX(date_created), MAX(currency)
		FROM order_mirror
		WHERE identity_key = $1
		GROUP BY status`

	rows, err := r.db.Query(ctx, query, identityKey)
	if err != nil {
		return nil, fmt.Errorf("summarize orders: %w", err)
	}
	defer rows.Close()

	summary := &domain.OrderSummary{StatusCounts: make(map[string]int)}
	for rows.Next() {
		var (
			status   string
			count    int
			spent    float64
			first    time.Time
			latest   time.Time
			currency *string
		)
		if err := rows.Scan(&status, &count, &spent, &first, &latest, &currency); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}

		summary.StatusCounts[status] = count
		summary.TotalOrders += count
		summary.TotalSpent += spent
		if currency != nil && summary.Currency == "" {
			summary.Currency = *currency
		}
		if summary.FirstOrderAt == nil || first.Before(*summary.FirstOrderAt) {
			f := first
			summary.FirstOrderAt = &f
		}
		if summary.LatestOrderAt == nil || latest.After(*summary.LatestOrderAt) {
			l := latest
			summary.LatestOrderAt = &l
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}
