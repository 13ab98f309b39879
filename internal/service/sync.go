package service

import (
	"context"
	"log/slog"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/event"
	"github.com/entremotivator/Syncup/internal/repository"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

// productPageSize is how many catalog products are fetched per gateway page.
const productPageSize = 100

// SyncService mirrors storefront data into the local store. Every upsert is
// idempotent and keyed by the external ID; a store failure is logged and
// reported as false, never raised past this boundary.
type SyncService struct {
	gateway      Gateway
	identityRepo repository.IdentityRepository
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(
	gw Gateway,
	identityRepo repository.IdentityRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		gateway:      gw,
		identityRepo: identityRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		producer:     producer,
		logger:       logger,
	}
}

// UpsertIdentity mirrors one identity. Returns whether the write landed.
func (s *SyncService) UpsertIdentity(ctx context.Context, identity *domain.Identity) bool {
	if err := s.identityRepo.Upsert(ctx, identity); err != nil {
		s.logger.ErrorContext(ctx, "identity mirror write failed",
			slog.String("identity_key", identity.Key()),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// UpsertOrder mirrors one order. Returns whether the write landed.
func (s *SyncService) UpsertOrder(ctx context.Context, order *domain.Order) bool {
	if err := s.orderRepo.Upsert(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "order mirror write failed",
			slog.Int64("wc_order_id", order.WCOrderID),
			slog.String("error", err.Error()),
		)
		return false
	}
	_ = s.producer.PublishOrderMirrored(ctx, order)
	return true
}

// UpsertProduct mirrors one product. Returns whether the write landed.
func (s *SyncService) UpsertProduct(ctx context.Context, product *domain.Product) bool {
	if err := s.productRepo.Upsert(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "product mirror write failed",
			slog.Int64("wc_product_id", product.WCProductID),
			slog.String("error", err.Error()),
		)
		return false
	}
	_ = s.producer.PublishProductMirrored(ctx, product)
	return true
}

// SyncOrders fetches an identity's completed orders from the gateway and
// mirrors each one independently. One bad order does not abort the batch;
// the report says what landed and what did not.
func (s *SyncService) SyncOrders(ctx context.Context, identity *domain.Identity) (*domain.SyncReport, error) {
	customerID, err := s.customerID(ctx, identity)
	if err != nil {
		return nil, err
	}

	orders, err := s.gateway.ListCompletedOrders(ctx, customerID)
	if err != nil {
		return nil, err
	}

	report := &domain.SyncReport{}
	for i := range orders {
		order := orders[i].ToDomain(identity.Key())
		if s.UpsertOrder(ctx, &order) {
			report.Succeeded++
		} else {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, order.WCOrderID)
		}
	}

	s.logger.InfoContext(ctx, "order sync finished",
		slog.String("identity_key", identity.Key()),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

// SyncProducts mirrors the storefront product catalog page by page with the
// same partial-failure discipline as SyncOrders.
func (s *SyncService) SyncProducts(ctx context.Context) (*domain.SyncReport, error) {
	report := &domain.SyncReport{}

	for page := 1; ; page++ {
		products, err := s.gateway.ListProducts(ctx, page, productPageSize)
		if err != nil {
			// A mid-catalog outage still reports the pages that landed.
			if report.Succeeded > 0 || report.Failed > 0 {
				s.logger.WarnContext(ctx, "product sync aborted mid-catalog",
					slog.Int("page", page),
					slog.String("error", err.Error()),
				)
				return report, err
			}
			return nil, err
		}

		for i := range products {
			product := products[i].ToDomain()
			if s.UpsertProduct(ctx, &product) {
				report.Succeeded++
			} else {
				report.Failed++
				report.FailedIDs = append(report.FailedIDs, product.WCProductID)
			}
		}

		if len(products) < productPageSize {
			break
		}
	}

	s.logger.InfoContext(ctx, "product sync finished",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *SyncService) customerID(ctx context.Context, identity *domain.Identity) (int64, error) {
	if identity.WCCustomerID != nil {
		return *identity.WCCustomerID, nil
	}
	customer, err := s.gateway.FindCustomer(ctx, identity.Email)
	if err != nil {
		return 0, err
	}
	if customer == nil {
		return 0, apperrors.NotFound("customer", identity.Email)
	}
	return customer.ID, nil
}
