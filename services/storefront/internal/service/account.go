package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

// AccountView is what the account page renders. Profile carries the
// backfilled addresses; nothing is written back to the profile store.
type AccountView struct {
	Profile       domain.Profile   `json:"profile"`
	Orders        []domain.Order   `json:"orders"`
	OrdersSource  OrderSourceName  `json:"orders_source"`
	OrdersOutcome RetrievalOutcome `json:"orders_outcome"`
	Backfill      Backfill         `json:"backfill"`
}

// AccountService assembles account views.
type AccountService struct {
	profiles repository.ProfileRepository
	orders   *OrderCoordinator
	logger   *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(profiles repository.ProfileRepository, orders *OrderCoordinator, logger *slog.Logger) *AccountService {
	return &AccountService{profiles: profiles, orders: orders, logger: logger}
}

// GetAccountView loads the profile of rawUserID, fetches the user's orders
// and fills missing addresses from them.
func (s *AccountService) GetAccountView(ctx context.Context, rawUserID any) (*AccountView, error) {
	userID := StandardizeUserID(rawUserID)
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get account view: %w", err)
	}
	if profile == nil {
		return nil, apperrors.NotFound("profile", userID)
	}

	result := s.orders.FetchOrders(ctx, userID)
	patched, backfill := ReconcileProfile(*profile, result.Orders)

	if backfill.Any() {
		s.logger.InfoContext(ctx, "profile addresses backfilled from order history",
			slog.String("user_id", userID),
			slog.String("shipping_from_order", backfill.ShippingFromOrder),
			slog.String("billing_from_order", backfill.BillingFromOrder),
		)
	}

	return &AccountView{
		Profile:       patched,
		Orders:        result.Orders,
		OrdersSource:  result.Source,
		OrdersOutcome: result.Outcome,
		Backfill:      backfill,
	}, nil
}
