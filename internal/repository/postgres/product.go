package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/pkg/database"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product mirror repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts or updates a product keyed by its WooCommerce product ID.
func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	p.SyncedAt = time.Now().UTC()

	query := `
		INSERT INTO product_mirror (wc_product_id, name, slug, status, type,
			description, short_description, sku, price, regular_price, sale_price,
			stock_status, stock_quantity, categories, tags, images,
			date_created, date_modified, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (wc_product_id) DO UPDATE
		SET name = EXCLUDED.name,
		    slug = EXCLUDED.slug,
		    status = EXCLUDED.status,
		    type = EXCLUDED.type,
		    description = EXCLUDED.description,
		    short_description = EXCLUDED.short_description,
		    sku = EXCLUDED.sku,
		    price = EXCLUDED.price,
		    regular_price = EXCLUDED.regular_price,
		    sale_price = EXCLUDED.sale_price,
		    stock_status = EXCLUDED.stock_status,
		    stock_quantity = EXCLUDED.stock_quantity,
		    categories = EXCLUDED.categories,
		    tags = EXCLUDED.tags,
		    images = EXCLUDED.images,
		    date_created = EXCLUDED.date_created,
		    date_modified = EXCLUDED.date_modified,
		    synced_at = EXCLUDED.synced_at`

	_, err := r.db.Exec(ctx, query,
		p.WCProductID,
		p.Name,
		p.Slug,
		p.Status,
		p.Type,
		p.Description,
		p.ShortDescription,
		p.SKU,
		p.Price,
		p.RegularPrice,
		p.SalePrice,
		p.StockStatus,
		p.StockQuantity,
		p.Categories,
		p.Tags,
		p.Images,
		p.DateCreated,
		p.DateModified,
		p.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product %d: %w", p.WCProductID, err)
	}
	return nil
}

// GetByWCID retrieves a product by its WooCommerce ID.
func (r *ProductRepository) GetByWCID(ctx context.Context, wcProductID int64) (*domain.Product, error) {
	query := `
		SELECT id, wc_product_id, name, slug, status, type,
		       description, short_description, sku, price, regular_price, sale_price,
		       stock_status, stock_quantity, categories, tags, images,
		       date_created, date_modified, synced_at
		FROM product_mirror
		WHERE wc_product_id = $1`

	var p domain.Product
	err := r.db.QueryRow(ctx, query, wcProductID).Scan(
		&p.ID,
		&p.WCProductID,
		&p.Name,
		&p.Slug,
		&p.Status,
		&p.Type,
		&p.Description,
		&p.ShortDescription,
		&p.SKU,
		&p.Price,
		&p.RegularPrice,
		&p.SalePrice,
		&p.StockStatus,
		&p.StockQuantity,
		&p.Categories,
		&p.Tags,
		&p.Images,
		&p.DateCreated,
		&p.DateModified,
		&p.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
