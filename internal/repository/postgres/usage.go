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

// UsageRepository implements repository.UsageRepository using PostgreSQL.
type UsageRepository struct {
	db database.DBTX
}

// NewUsageRepository creates a new PostgreSQL-backed usage repository.
func NewUsageRepository(db database.DBTX) *UsageRepository {
	return &UsageRepository{db: db}
}

const usageColumns = `id, identity_key, email, queries, last_query, created_at`

// GetOrCreate returns the usage record for an identity, lazily creating a
// zero record on first read.
func (r *UsageRepository) GetOrCreate(ctx context.Context, identityKey, email string) (*domain.UsageRecord, error) {
	record, err := r.get(ctx, identityKey)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	insert := `
		INSERT INTO usage_records (identity_key, email, queries, created_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (identity_key) DO NOTHING`

	if _, err := r.db.Exec(ctx, insert, identityKey, email, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("create usage record: %w", err)
	}
	return r.get(ctx, identityKey)
}

// Update writes the counter and last-query timestamp back.
func (r *UsageRepository) Update(ctx context.Context, record *domain.UsageRecord) error {
	query := `
		UPDATE usage_records
		SET queries = $1, last_query = $2
		WHERE identity_key = $3`

	ct, err := r.db.Exec(ctx, query, record.Queries, record.LastQuery, record.IdentityKey)
	if err != nil {
		return fmt.Errorf("update usage record: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("usage record", record.IdentityKey)
	}
	return nil
}

func (r *UsageRepository) get(ctx context.Context, identityKey string) (*domain.UsageRecord, error) {
	query := `
		SELECT ` + usageColumns + `
		FROM usage_records
		WHERE identity_key = $1`

	var u domain.UsageRecord
	err := r.db.QueryRow(ctx, query, identityKey).Scan(
		&u.ID,
		&u.IdentityKey,
		&u.Email,
		&u.Queries,
		&u.LastQuery,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan usage record: %w", err)
	}
	return &u, nil
}
