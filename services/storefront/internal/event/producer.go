package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/logger"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated       = pkgkafka.Topic("cart", "updated")
	TopicCartCleared       = pkgkafka.Topic("cart", "cleared")
	TopicOrdersUnavailable = pkgkafka.Topic("orders", "unavailable")
)

// Aggregate type constants.
const (
	AggregateTypeCart    = "cart"
	AggregateTypeAccount = "account"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string          `json:"session_id"`
	Mutation  string          `json:"mutation"`
	Items     []CartItemData  `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	Key       string          `json:"key"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// OrdersUnavailableData is the payload for an orders.unavailable event.
type OrdersUnavailableData struct {
	UserID  string `json:"user_id"`
	Outcome string `json:"outcome"`
}

// Publisher is the subset of *pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka. Publishing is best
// effort: failures are logged and never reach the caller.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// ForSession returns a cart observer that publishes the session's changes.
func (p *Producer) ForSession(sessionID string) service.CartObserver {
	return &cartObserver{producer: p, sessionID: sessionID}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, change service.CartChange) error {
	items := make([]CartItemData, len(change.Cart.Items))
	for i, item := range change.Cart.Items {
		items[i] = CartItemData{
			Key:       item.Key,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID: sessionID,
		Mutation:  change.Mutation,
		Items:     items,
		ItemCount: change.Cart.ItemCount(),
		Subtotal:  change.Cart.Subtotal(),
	}

	if err := p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.String("mutation", change.Mutation),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	if err := p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, CartClearedData{SessionID: sessionID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
	)
	return nil
}

// OrdersUnavailable implements service.Notifier.
func (p *Producer) OrdersUnavailable(ctx context.Context, notice service.OrdersUnavailableNotice) {
	data := OrdersUnavailableData{UserID: notice.UserID, Outcome: string(notice.Outcome)}
	if err := p.publish(ctx, TopicOrdersUnavailable, notice.UserID, AggregateTypeAccount, data); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish orders.unavailable event",
			slog.String("user_id", notice.UserID),
			slog.String("error", err.Error()),
		)
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

type cartObserver struct {
	producer  *Producer
	sessionID string
}

func (o *cartObserver) CartChanged(ctx context.Context, change service.CartChange) {
	var err error
	if change.Mutation == service.MutationClear {
		err = o.producer.PublishCartCleared(ctx, o.sessionID)
	} else {
		err = o.producer.PublishCartUpdated(ctx, o.sessionID, change)
	}
	if err != nil {
		o.producer.logger.ErrorContext(ctx, "failed to publish cart event",
			slog.String("session_id", o.sessionID),
			slog.String("mutation", change.Mutation),
			slog.String("error", err.Error()),
		)
	}
}
