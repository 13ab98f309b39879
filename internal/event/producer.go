package event

import (
	"context"
	"log/slog"

	pkgkafka "github.com/entremotivator/Syncup/pkg/kafka"

	"github.com/entremotivator/Syncup/internal/domain"
)

// Kafka topics for sync domain events.
var (
	TopicIdentitySynced  = pkgkafka.Topic("identity", "synced")
	TopicOrderMirrored   = pkgkafka.Topic("order", "mirrored")
	TopicProductMirrored = pkgkafka.Topic("product", "mirrored")
	TopicQuotaExceeded   = pkgkafka.Topic("quota", "exceeded")
)

// Aggregate type constants.
const (
	AggregateTypeIdentity = "identity"
	AggregateTypeOrder    = "order"
	AggregateTypeProduct  = "product"
	AggregateTypeUsage    = "usage"
)

// Source identifier for events originating from this service.
const Source = "syncup"

// IdentitySyncedData is the payload for an identity.synced event.
type IdentitySyncedData struct {
	IdentityKey   string      `json:"identity_key"`
	Email         string      `json:"email"`
	Tier          domain.Tier `json:"tier"`
	PurchaseCount int         `json:"purchase_count"`
	ProductAccess bool        `json:"product_access"`
}

// OrderMirroredData is the payload for an order.mirrored event.
type OrderMirroredData struct {
	WCOrderID   int64   `json:"wc_order_id"`
	IdentityKey string  `json:"identity_key"`
	Status      string  `json:"status"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

// ProductMirroredData is the payload for a product.mirrored event.
type ProductMirroredData struct {
	WCProductID int64  `json:"wc_product_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Status      string `json:"status"`
}

// QuotaExceededData is the payload for a quota.exceeded event.
type QuotaExceededData struct {
	IdentityKey string `json:"identity_key"`
	Email       string `json:"email"`
	Used        int    `json:"used"`
	Limit       int    `json:"limit"`
}

// Producer publishes sync domain events to Kafka. Publishing is best-effort:
// every method logs a failure and returns it, and callers on user-visible
// paths ignore the returned error.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer. kafka may be nil, turning every
// publish into a no-op for deployments without a broker.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishIdentitySynced publishes an identity.synced event.
func (p *Producer) PublishIdentitySynced(ctx context.Context, identity *domain.Identity, tier domain.Tier, purchaseCount int) error {
	data := IdentitySyncedData{
		IdentityKey:   identity.Key(),
		Email:         identity.Email,
		Tier:          tier,
		PurchaseCount: purchaseCount,
		ProductAccess: identity.ProductAccess,
	}
	return p.publish(ctx, TopicIdentitySynced, identity.Key(), AggregateTypeIdentity, data)
}

// PublishOrderMirrored publishes an order.mirrored event.
func (p *Producer) PublishOrderMirrored(ctx context.Context, order *domain.Order) error {
	data := OrderMirroredData{
		WCOrderID:   order.WCOrderID,
		IdentityKey: order.IdentityKey,
		Status:      order.Status,
		Total:       order.Total,
		Currency:    order.Currency,
	}
	return p.publish(ctx, TopicOrderMirrored, order.IdentityKey, AggregateTypeOrder, data)
}

// PublishProductMirrored publishes a product.mirrored event.
func (p *Producer) PublishProductMirrored(ctx context.Context, product *domain.Product) error {
	data := ProductMirroredData{
		WCProductID: product.WCProductID,
		Name:        product.Name,
		Slug:        product.Slug,
		Status:      product.Status,
	}
	return p.publish(ctx, TopicProductMirrored, product.Slug, AggregateTypeProduct, data)
}

// PublishQuotaExceeded publishes a quota.exceeded event.
func (p *Producer) PublishQuotaExceeded(ctx context.Context, identityKey, email string, used, limit int) error {
	data := QuotaExceededData{
		IdentityKey: identityKey,
		Email:       email,
		Used:        used,
		Limit:       limit,
	}
	return p.publish(ctx, TopicQuotaExceeded, identityKey, AggregateTypeUsage, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if p.kafka == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to create event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("aggregate_id", aggregateID),
			slog.String("error", err.Error()),
		)
		return err
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
