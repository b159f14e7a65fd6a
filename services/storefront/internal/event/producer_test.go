package event

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

type published struct {
	topic string
	event *pkgkafka.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, event: event})
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", TopicCartUpdated)
	assert.Equal(t, "storefront.cart.cleared", TopicCartCleared)
	assert.Equal(t, "storefront.orders.unavailable", TopicOrdersUnavailable)
}

func TestCartObserver_PublishesUpdate(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, newTestLogger())
	ctx := logger.WithCorrelationID(context.Background(), "corr-7")

	p.ForSession("sess-1").CartChanged(ctx, service.CartChange{
		Mutation: service.MutationAddItem,
		Cart: domain.Cart{Items: []domain.CartItem{
			{Key: "k1", ProductID: 42, Name: "Denim", UnitPrice: decimal.RequireFromString("129.00"), Quantity: 2},
		}},
	})

	require.Len(t, pub.events, 1)
	got := pub.events[0]
	assert.Equal(t, TopicCartUpdated, got.topic)
	assert.Equal(t, "sess-1", got.event.AggregateID)
	assert.Equal(t, AggregateTypeCart, got.event.AggregateType)
	assert.Equal(t, "corr-7", got.event.CorrelationID)

	var data CartUpdatedData
	require.NoError(t, got.event.UnmarshalData(&data))
	assert.Equal(t, service.MutationAddItem, data.Mutation)
	assert.Equal(t, 2, data.ItemCount)
	assert.True(t, decimal.RequireFromString("258").Equal(data.Subtotal))
	require.Len(t, data.Items, 1)
	assert.Equal(t, "k1", data.Items[0].Key)
}

func TestCartObserver_PublishesClear(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, newTestLogger())

	p.ForSession("sess-2").CartChanged(context.Background(), service.CartChange{Mutation: service.MutationClear})

	require.Len(t, pub.events, 1)
	assert.Equal(t, TopicCartCleared, pub.events[0].topic)

	var data CartClearedData
	require.NoError(t, pub.events[0].event.UnmarshalData(&data))
	assert.Equal(t, "sess-2", data.SessionID)
}

func TestOrdersUnavailable(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, newTestLogger())

	p.OrdersUnavailable(context.Background(), service.OrdersUnavailableNotice{UserID: "42", Outcome: service.OutcomeUnavailable})

	require.Len(t, pub.events, 1)
	assert.Equal(t, TopicOrdersUnavailable, pub.events[0].topic)

	var data OrdersUnavailableData
	require.NoError(t, pub.events[0].event.UnmarshalData(&data))
	assert.Equal(t, "42", data.UserID)
	assert.Equal(t, "unavailable", data.Outcome)
}

func TestPublishFailure_IsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("leader not available")}
	p := NewProducer(pub, newTestLogger())

	err := p.PublishCartCleared(context.Background(), "sess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")

	assert.NotPanics(t, func() {
		p.ForSession("sess").CartChanged(context.Background(), service.CartChange{Mutation: service.MutationRemoveItem})
		p.OrdersUnavailable(context.Background(), service.OrdersUnavailableNotice{UserID: "1"})
	})
}
