package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/pkg/database"
)

func newHistoryTestFixture(t *testing.T) (*HistoryRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewHistoryRepository(mock)
	return repo, mock
}

func TestHistoryRepository_Insert_Success(t *testing.T) {
	repo, mock := newHistoryTestFixture(t)
	defer mock.Close()

	q := &domain.QueryRecord{
		IdentityKey: "alice@example.com",
		Email:       "alice@example.com",
		QueryType:   "search",
		QueryData:   map[string]any{"term": "premium"},
	}

	mock.ExpectExec("INSERT INTO query_history").
		WithArgs(q.IdentityKey, q.Email, q.QueryType, q.QueryData, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Insert(context.Background(), q)
	assert.NoError(t, err)
	assert.False(t, q.CreatedAt.IsZero(), "Insert should stamp created_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_ListRecent_Success(t *testing.T) {
	repo, mock := newHistoryTestFixture(t)
	defer mock.Close()

	newer := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	rows := pgxmock.NewRows([]string{"id", "identity_key", "email", "query_type", "query_data", "created_at"}).
		AddRow(int64(2), "alice@example.com", "alice@example.com", "analytics", map[string]any{"report": "sales"}, newer).
		AddRow(int64(1), "alice@example.com", "alice@example.com", "search", map[string]any{"term": "premium"}, older)

	mock.ExpectQuery("SELECT .+ FROM query_history").
		WithArgs("alice@example.com", 50).
		WillReturnRows(rows)

	records, err := repo.ListRecent(context.Background(), "alice@example.com", 50)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "analytics", records[0].QueryType, "newest first")
	assert.Equal(t, "search", records[1].QueryType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_ListRecent_DefaultsLimit(t *testing.T) {
	repo, mock := newHistoryTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM query_history").
		WithArgs("alice@example.com", 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "identity_key", "email", "query_type", "query_data", "created_at"}))

	records, err := repo.ListRecent(context.Background(), "alice@example.com", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
