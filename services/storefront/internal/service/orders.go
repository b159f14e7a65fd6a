package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

// OrderSourceName identifies which endpoint produced a result.
type OrderSourceName string

const (
	SourcePrimary   OrderSourceName = "primary"
	SourceSecondary OrderSourceName = "secondary"
	SourceNone      OrderSourceName = "none"
)

// RetrievalOutcome classifies a FetchOrders call.
type RetrievalOutcome string

const (
	// OutcomeFound means an endpoint returned at least one order.
	OutcomeFound RetrievalOutcome = "found"
	// OutcomeEmpty means both endpoints answered successfully with no orders.
	OutcomeEmpty RetrievalOutcome = "empty"
	// OutcomeUnavailable means no orders were obtained and at least one
	// endpoint failed.
	OutcomeUnavailable RetrievalOutcome = "unavailable"
	// OutcomeInvalidID means the identifier standardized to "" and no
	// endpoint was called.
	OutcomeInvalidID RetrievalOutcome = "invalid_id"
)

// OrdersResult is the value of FetchOrders. Orders is never nil.
type OrdersResult struct {
	UserID  string           `json:"user_id"`
	Orders  []domain.Order   `json:"orders"`
	Source  OrderSourceName  `json:"source"`
	Outcome RetrievalOutcome `json:"outcome"`
}

// OrdersUnavailableNotice is sent when neither endpoint produced orders.
type OrdersUnavailableNotice struct {
	UserID  string
	Outcome RetrievalOutcome
}

// Notifier is the side channel for failures that FetchOrders absorbs.
type Notifier interface {
	OrdersUnavailable(ctx context.Context, notice OrdersUnavailableNotice)
}

// OrderCoordinator fetches a user's orders from the primary endpoint and
// falls back to the secondary. It holds no per-call state.
type OrderCoordinator struct {
	source   repository.OrderSource
	notifier Notifier
	logger   *slog.Logger
}

// NewOrderCoordinator creates a coordinator. notifier may be nil.
func NewOrderCoordinator(source repository.OrderSource, notifier Notifier, logger *slog.Logger) *OrderCoordinator {
	return &OrderCoordinator{source: source, notifier: notifier, logger: logger}
}

// FetchOrders never fails. Each endpoint is attempted at most once; the
// secondary is tried whenever the primary errors, answers not OK, or answers
// with zero orders.
func (c *OrderCoordinator) FetchOrders(ctx context.Context, rawUserID any) OrdersResult {
	userID := StandardizeUserID(rawUserID)
	if userID == "" {
		orderRetrievals.WithLabelValues(string(OutcomeInvalidID)).Inc()
		c.logger.WarnContext(ctx, "order retrieval skipped: invalid user id")
		return OrdersResult{Orders: []domain.Order{}, Source: SourceNone, Outcome: OutcomeInvalidID}
	}

	failed := false

	for _, attempt := range []struct {
		name  OrderSourceName
		fetch func(context.Context, string) (repository.OrderFetch, error)
	}{
		{SourcePrimary, c.source.FetchPrimary},
		{SourceSecondary, c.source.FetchSecondary},
	} {
		orders, ok := c.try(ctx, attempt.name, attempt.fetch, userID)
		if !ok {
			failed = true
			continue
		}
		if len(orders) > 0 {
			orderRetrievals.WithLabelValues(string(OutcomeFound)).Inc()
			return OrdersResult{UserID: userID, Orders: orders, Source: attempt.name, Outcome: OutcomeFound}
		}
	}

	outcome := OutcomeEmpty
	if failed {
		outcome = OutcomeUnavailable
	}
	orderRetrievals.WithLabelValues(string(outcome)).Inc()
	c.logger.InfoContext(ctx, "orders unavailable",
		slog.String("user_id", userID),
		slog.String("outcome", string(outcome)),
	)
	if c.notifier != nil {
		c.notifier.OrdersUnavailable(ctx, OrdersUnavailableNotice{UserID: userID, Outcome: outcome})
	}

	return OrdersResult{UserID: userID, Orders: []domain.Order{}, Source: SourceNone, Outcome: outcome}
}

// try runs one endpoint. ok is false when the endpoint errored or answered
// not OK.
func (c *OrderCoordinator) try(ctx context.Context, name OrderSourceName, fetch func(context.Context, string) (repository.OrderFetch, error), userID string) ([]domain.Order, bool) {
	res, err := fetch(ctx, userID)
	switch {
	case err != nil:
		orderFetches.WithLabelValues(string(name), "error").Inc()
		c.logger.WarnContext(ctx, "order endpoint failed",
			slog.String("source", string(name)),
			slog.String("error", err.Error()),
		)
		return nil, false
	case !res.OK:
		orderFetches.WithLabelValues(string(name), "not_ok").Inc()
		return nil, false
	case len(res.Orders) == 0:
		orderFetches.WithLabelValues(string(name), "empty").Inc()
		return nil, true
	default:
		orderFetches.WithLabelValues(string(name), "found").Inc()
		return res.Orders, true
	}
}
