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

// IdentityRepository implements repository.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	db database.DBTX
}

// NewIdentityRepository creates a new PostgreSQL-backed identity repository.
func NewIdentityRepository(db database.DBTX) *IdentityRepository {
	return &IdentityRepository{db: db}
}

const identityColumns = `id, wp_user_id, wc_customer_id, email, username, display_name,
	roles, capabilities, purchased_products, product_access, last_login, created_at, updated_at`

// Upsert inserts or updates an identity. An existing row is matched by
// wp_user_id first, then wc_customer_id, then email, mirroring how the
// storefront identifies returning users.
func (r *IdentityRepository) Upsert(ctx context.Context, i *domain.Identity) error {
	now := time.Now().UTC()
	i.UpdatedAt = now

	update := `
		UPDATE identities
		SET wp_user_id = COALESCE($1, wp_user_id),
		    wc_customer_id = COALESCE($2, wc_customer_id),
		    email = $3, username = $4, display_name = $5,
		    roles = $6, capabilities = $7, purchased_products = $8,
		    product_access = $9, last_login = $10, updated_at = $11
		WHERE `

	args := []any{
		i.WPUserID, i.WCCustomerID, i.Email, i.Username, i.DisplayName,
		i.Roles, i.Capabilities, i.PurchasedProducts,
		i.ProductAccess, i.LastLogin, i.UpdatedAt,
	}

	switch {
	case i.WPUserID != nil:
		update += `wp_user_id = $12`
		args = append(args, *i.WPUserID)
	case i.WCCustomerID != nil:
		update += `wc_customer_id = $12`
		args = append(args, *i.WCCustomerID)
	default:
		update += `email = $12`
		args = append(args, i.Email)
	}

	ct, err := r.db.Exec(ctx, update, args...)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	insert := `
		INSERT INTO identities (wp_user_id, wc_customer_id, email, username, display_name,
			roles, capabilities, purchased_products, product_access, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (email) DO UPDATE
		SET wp_user_id = COALESCE(EXCLUDED.wp_user_id, identities.wp_user_id),
		    wc_customer_id = COALESCE(EXCLUDED.wc_customer_id, identities.wc_customer_id),
		    username = EXCLUDED.username, display_name = EXCLUDED.display_name,
		    roles = EXCLUDED.roles, capabilities = EXCLUDED.capabilities,
		    purchased_products = EXCLUDED.purchased_products,
		    product_access = EXCLUDED.product_access,
		    last_login = EXCLUDED.last_login, updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, insert,
		i.WPUserID, i.WCCustomerID, i.Email, i.Username, i.DisplayName,
		i.Roles, i.Capabilities, i.PurchasedProducts,
		i.ProductAccess, i.LastLogin, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("identity", "email", i.Email)
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// GetByKey retrieves an identity by its identity key (email).
func (r *IdentityRepository) GetByKey(ctx context.Context, key string) (*domain.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE email = $1`

	var i domain.Identity
	err := r.db.QueryRow(ctx, query, key).Scan(
		&i.ID,
		&i.WPUserID,
		&i.WCCustomerID,
		&i.Email,
		&i.Username,
		&i.DisplayName,
		&i.Roles,
		&i.Capabilities,
		&i.PurchasedProducts,
		&i.ProductAccess,
		&i.LastLogin,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	return &i, nil
}
