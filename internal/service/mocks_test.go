package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/gateway"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Mock Gateway ---

type mockGateway struct {
	mock.Mock
	configured bool
}

func (m *mockGateway) Configured() bool {
	return m.configured
}

func (m *mockGateway) IssueToken(ctx context.Context, username, password string) (*gateway.TokenResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TokenResponse), args.Error(1)
}

func (m *mockGateway) ValidateToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockGateway) Me(ctx context.Context, token string) (*gateway.WPUser, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.WPUser), args.Error(1)
}

func (m *mockGateway) FindCustomer(ctx context.Context, email string) (*gateway.WCCustomer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.WCCustomer), args.Error(1)
}

func (m *mockGateway) ListCompletedOrders(ctx context.Context, customerID int64) ([]gateway.WCOrder, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.WCOrder), args.Error(1)
}

func (m *mockGateway) ListProducts(ctx context.Context, page, perPage int) ([]gateway.WCProduct, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.WCProduct), args.Error(1)
}

// --- Mock Entitlement Resolver ---

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolvePurchases(ctx context.Context, email string) ([]domain.Purchase, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Purchase), args.Error(1)
}

func (m *mockResolver) CachedPurchases(ctx context.Context, email string) ([]domain.Purchase, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Purchase), args.Error(1)
}

func (m *mockResolver) ResolveEntitlement(ctx context.Context, email string) (domain.Entitlement, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Entitlement), args.Error(1)
}

func (m *mockResolver) HasAccess(ctx context.Context, email string, requiredProductIDs []int64) (bool, error) {
	args := m.Called(ctx, email, requiredProductIDs)
	return args.Bool(0), args.Error(1)
}

func (m *mockResolver) Invalidate(ctx context.Context, email string) {
	m.Called(ctx, email)
}

// --- Mock Identity Repository ---

type mockIdentityRepository struct {
	mock.Mock
}

func (m *mockIdentityRepository) Upsert(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepository) GetByKey(ctx context.Context, key string) (*domain.Identity, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

// --- Mock Order Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) ListByIdentity(ctx context.Context, identityKey string, limit, offset int) ([]domain.Order, int, error) {
	args := m.Called(ctx, identityKey, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) Summary(ctx context.Context, identityKey string) (*domain.OrderSummary, error) {
	args := m.Called(ctx, identityKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderSummary), args.Error(1)
}

// --- Mock Product Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByWCID(ctx context.Context, wcProductID int64) (*domain.Product, error) {
	args := m.Called(ctx, wcProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// --- Mock Usage Repository ---

type mockUsageRepository struct {
	mock.Mock
}

func (m *mockUsageRepository) GetOrCreate(ctx context.Context, identityKey, email string) (*domain.UsageRecord, error) {
	args := m.Called(ctx, identityKey, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageRecord), args.Error(1)
}

func (m *mockUsageRepository) Update(ctx context.Context, record *domain.UsageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// --- Mock History Repository ---

type mockHistoryRepository struct {
	mock.Mock
}

func (m *mockHistoryRepository) Insert(ctx context.Context, record *domain.QueryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockHistoryRepository) ListRecent(ctx context.Context, identityKey string, limit int) ([]domain.QueryRecord, error) {
	args := m.Called(ctx, identityKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueryRecord), args.Error(1)
}
