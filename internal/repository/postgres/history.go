package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/pkg/database"
)

// HistoryRepository implements repository.HistoryRepository using PostgreSQL.
type HistoryRepository struct {
	db database.DBTX
}

// NewHistoryRepository creates a new PostgreSQL-backed query history repository.
func NewHistoryRepository(db database.DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert appends one query record.
func (r *HistoryRepository) Insert(ctx context.Context, q *domain.QueryRecord) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO query_history (identity_key, email, query_type, query_data, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		q.IdentityKey,
		q.Email,
		q.QueryType,
		q.QueryData,
		q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}

// ListRecent returns an identity's most recent queries, newest first.
func (r *HistoryRepository) ListRecent(ctx context.Context, identityKey string, limit int) ([]domain.QueryRecord, error) {
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, identity_key, email, query_type, query_data, created_at
		FROM query_history
		WHERE identity_key = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, identityKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list query history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.QueryRecord, 0, limit)
	for rows.Next() {
		var q domain.QueryRecord
		if err := rows.Scan(
			&q.ID,
			&q.IdentityKey,
			&q.Email,
			&q.QueryType,
			&q.QueryData,
			&q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan query record: %w", err)
		}
		records = append(records, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query history: %w", err)
	}
	return records, nil
}
