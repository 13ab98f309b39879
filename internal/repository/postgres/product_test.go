package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/pkg/database"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func sampleProduct() *domain.Product {
	created := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	modified := created.Add(24 * time.Hour)
	stock := 15
	return &domain.Product{
		ID:               int64(33),
		WCProductID:      101,
		Name:             "Premium Plugin",
		Slug:             "premium-plugin",
		Status:           "publish",
		Type:             "simple",
		Description:      "Full description",
		ShortDescription: "Short",
		SKU:              "PP-101",
		Price:            49.00,
		RegularPrice:     59.00,
		SalePrice:        49.00,
		StockStatus:      "instock",
		StockQuantity:    &stock,
		Categories:       []string{"Plugins"},
		Tags:             []string{"premium"},
		Images:           []string{"https://cdn.example.com/pp.png"},
		DateCreated:      &created,
		DateModified:     &modified,
	}
}

func productColumnNames() []string {
	return []string{
		"id", "wc_product_id", "name", "slug", "status", "type",
		"description", "short_description", "sku", "price", "regular_price", "sale_price",
		"stock_status", "stock_quantity", "categories", "tags", "images",
		"date_created", "date_modified", "synced_at",
	}
}

func productRow(p *domain.Product) *pgxmock.Rows {
	return pgxmock.NewRows(productColumnNames()).AddRow(
		p.ID, p.WCProductID, p.Name, p.Slug, p.Status, p.Type,
		p.Description, p.ShortDescription, p.SKU, p.Price, p.RegularPrice, p.SalePrice,
		p.StockStatus, p.StockQuantity, p.Categories, p.Tags, p.Images,
		p.DateCreated, p.DateModified, p.SyncedAt,
	)
}

// ---------------------------------------------------------------------------
// Upsert
// ---------------------------------------------------------------------------

func TestProductRepository_Upsert_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectExec("INSERT INTO product_mirror").
		WithArgs(
			p.WCProductID, p.Name, p.Slug, p.Status, p.Type,
			p.Description, p.ShortDescription, p.SKU, p.Price, p.RegularPrice, p.SalePrice,
			p.StockStatus, p.StockQuantity, p.Categories, p.Tags, p.Images,
			p.DateCreated, p.DateModified, pgxmock.AnyArg(), // synced_at
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Upsert(context.Background(), p)
	assert.NoError(t, err)
	assert.False(t, p.SyncedAt.IsZero(), "Upsert should stamp synced_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByWCID
// ---------------------------------------------------------------------------

func TestProductRepository_GetByWCID_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectQuery("SELECT .+ FROM product_mirror WHERE wc_product_id =").
		WithArgs(p.WCProductID).
		WillReturnRows(productRow(p))

	got, err := repo.GetByWCID(context.Background(), p.WCProductID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Slug, got.Slug)
	assert.Equal(t, p.StockQuantity, got.StockQuantity)
	assert.Equal(t, p.Categories, got.Categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByWCID_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM product_mirror WHERE wc_product_id =").
		WithArgs(int64(999)).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByWCID(context.Background(), 999)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
