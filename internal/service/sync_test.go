package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/event"
	"github.com/entremotivator/Syncup/internal/gateway"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

type syncFixture struct {
	gw       *mockGateway
	idRepo   *mockIdentityRepository
	orders   *mockOrderRepository
	products *mockProductRepository
	svc      *SyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		gw:       &mockGateway{configured: true},
		idRepo:   new(mockIdentityRepository),
		orders:   new(mockOrderRepository),
		products: new(mockProductRepository),
	}
	logger := testLogger()
	f.svc = NewSyncService(f.gw, f.idRepo, f.orders, f.products, event.NewProducer(nil, logger), logger)
	return f
}

func wcOrder(id int64) gateway.WCOrder {
	return gateway.WCOrder{
		ID:         id,
		CustomerID: 9,
		Status:     "completed",
		Currency:   "USD",
		Total:      "38.50",
		LineItems: []gateway.WCLineItem{
			{ProductID: 101, Name: "Premium Plugin", Quantity: 1, Total: "35.00"},
		},
	}
}

func syncIdentity() *domain.Identity {
	customerID := int64(9)
	return &domain.Identity{Email: "alice@example.com", WCCustomerID: &customerID}
}

// ---------------------------------------------------------------------------
// UpsertIdentity / UpsertOrder / UpsertProduct
// ---------------------------------------------------------------------------

func TestSyncService_UpsertIdentity(t *testing.T) {
	f := newSyncFixture(t)
	identity := syncIdentity()

	f.idRepo.On("Upsert", mock.Anything, identity).Return(nil).Once()
	assert.True(t, f.svc.UpsertIdentity(context.Background(), identity))

	f.idRepo.On("Upsert", mock.Anything, identity).Return(errors.New("connection reset")).Once()
	assert.False(t, f.svc.UpsertIdentity(context.Background(), identity),
		"a store failure is reported as false, never raised")
}

func TestSyncService_UpsertOrder(t *testing.T) {
	f := newSyncFixture(t)
	order := &domain.Order{WCOrderID: 5001, IdentityKey: "alice@example.com"}

	f.orders.On("Upsert", mock.Anything, order).Return(nil).Once()
	assert.True(t, f.svc.UpsertOrder(context.Background(), order))

	f.orders.On("Upsert", mock.Anything, order).Return(errors.New("connection reset")).Once()
	assert.False(t, f.svc.UpsertOrder(context.Background(), order))
}

func TestSyncService_UpsertProduct(t *testing.T) {
	f := newSyncFixture(t)
	product := &domain.Product{WCProductID: 101, Name: "Premium Plugin"}

	f.products.On("Upsert", mock.Anything, product).Return(nil).Once()
	assert.True(t, f.svc.UpsertProduct(context.Background(), product))
}

// ---------------------------------------------------------------------------
// SyncOrders
// ---------------------------------------------------------------------------

func TestSyncService_SyncOrders_Success(t *testing.T) {
	f := newSyncFixture(t)
	identity := syncIdentity()

	f.gw.On("ListCompletedOrders", mock.Anything, int64(9)).
		Return([]gateway.WCOrder{wcOrder(1), wcOrder(2)}, nil)
	f.orders.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	report, err := f.svc.SyncOrders(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Zero(t, report.Failed)
	f.gw.AssertNotCalled(t, "FindCustomer", mock.Anything, mock.Anything)
}

func TestSyncService_SyncOrders_PartialFailureDoesNotAbort(t *testing.T) {
	f := newSyncFixture(t)
	identity := syncIdentity()

	f.gw.On("ListCompletedOrders", mock.Anything, int64(9)).
		Return([]gateway.WCOrder{wcOrder(1), wcOrder(2), wcOrder(3)}, nil)

	f.orders.On("Upsert", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.WCOrderID == 2
	})).Return(errors.New("connection reset"))
	f.orders.On("Upsert", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.WCOrderID != 2
	})).Return(nil)

	report, err := f.svc.SyncOrders(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []int64{2}, report.FailedIDs)
}

func TestSyncService_SyncOrders_LooksUpCustomerWhenUnlinked(t *testing.T) {
	f := newSyncFixture(t)
	identity := &domain.Identity{Email: "alice@example.com"}

	f.gw.On("FindCustomer", mock.Anything, "alice@example.com").
		Return(&gateway.WCCustomer{ID: 9, Email: "alice@example.com"}, nil)
	f.gw.On("ListCompletedOrders", mock.Anything, int64(9)).
		Return([]gateway.WCOrder{wcOrder(1)}, nil)
	f.orders.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	report, err := f.svc.SyncOrders(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
}

func TestSyncService_SyncOrders_NoCustomer(t *testing.T) {
	f := newSyncFixture(t)
	identity := &domain.Identity{Email: "nobody@example.com"}

	f.gw.On("FindCustomer", mock.Anything, "nobody@example.com").Return(nil, nil)

	report, err := f.svc.SyncOrders(context.Background(), identity)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSyncService_SyncOrders_GatewayOutage(t *testing.T) {
	f := newSyncFixture(t)
	identity := syncIdentity()

	f.gw.On("ListCompletedOrders", mock.Anything, int64(9)).
		Return(nil, apperrors.GatewayUnavailable(errors.New("connection refused")))

	report, err := f.svc.SyncOrders(context.Background(), identity)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGatewayUnavail))
}

// ---------------------------------------------------------------------------
// SyncProducts
// ---------------------------------------------------------------------------

func TestSyncService_SyncProducts_PagesThroughCatalog(t *testing.T) {
	f := newSyncFixture(t)

	fullPage := make([]gateway.WCProduct, productPageSize)
	for i := range fullPage {
		fullPage[i] = gateway.WCProduct{ID: int64(i + 1), Name: "Product", Status: "publish"}
	}
	lastPage := []gateway.WCProduct{{ID: 200, Name: "Tail Product", Status: "publish"}}

	f.gw.On("ListProducts", mock.Anything, 1, productPageSize).Return(fullPage, nil)
	f.gw.On("ListProducts", mock.Anything, 2, productPageSize).Return(lastPage, nil)
	f.products.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	report, err := f.svc.SyncProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, productPageSize+1, report.Succeeded)
	f.gw.AssertNumberOfCalls(t, "ListProducts", 2)
}

func TestSyncService_SyncProducts_MidCatalogOutageReportsProgress(t *testing.T) {
	f := newSyncFixture(t)

	fullPage := make([]gateway.WCProduct, productPageSize)
	for i := range fullPage {
		fullPage[i] = gateway.WCProduct{ID: int64(i + 1), Name: "Product", Status: "publish"}
	}

	f.gw.On("ListProducts", mock.Anything, 1, productPageSize).Return(fullPage, nil)
	f.gw.On("ListProducts", mock.Anything, 2, productPageSize).
		Return(nil, apperrors.GatewayUnavailable(errors.New("connection refused")))
	f.products.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	report, err := f.svc.SyncProducts(context.Background())
	require.Error(t, err)
	require.NotNil(t, report, "pages already mirrored still count")
	assert.Equal(t, productPageSize, report.Succeeded)
}
