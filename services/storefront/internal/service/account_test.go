package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

func newTestAccountService(profiles *mockProfileRepository, source *mockOrderSource) *AccountService {
	logger := newTestLogger()
	return NewAccountService(profiles, NewOrderCoordinator(source, nil, logger), logger)
}

func TestGetAccountView_BackfillsFromOrders(t *testing.T) {
	profiles := new(mockProfileRepository)
	source := new(mockOrderSource)
	ctx := context.Background()

	profiles.On("Get", ctx, "42").Return(&domain.Profile{UserID: "42", FirstName: "Ada"}, nil)
	source.On("FetchPrimary", ctx, "42").Return(repository.OrderFetch{OK: true, Orders: []domain.Order{
		{ID: "A", CreatedAt: day(2025, 1, 1), ShippingAddress: addr("9 Old Road")},
		{ID: "B", CreatedAt: day(2025, 2, 1), BillingAddress: addr("1 Rue X")},
	}}, nil)

	view, err := newTestAccountService(profiles, source).GetAccountView(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, "Ada", view.Profile.FirstName)
	assert.Equal(t, "9 Old Road", view.Profile.ShippingAddress.AddressLine1)
	assert.Equal(t, "1 Rue X", view.Profile.BillingAddress.AddressLine1)
	assert.Equal(t, Backfill{ShippingFromOrder: "A", BillingFromOrder: "B"}, view.Backfill)
	assert.Equal(t, SourcePrimary, view.OrdersSource)
	assert.Equal(t, OutcomeFound, view.OrdersOutcome)
	assert.Len(t, view.Orders, 2)

	profiles.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestGetAccountView_OrdersUnavailableStillRenders(t *testing.T) {
	profiles := new(mockProfileRepository)
	source := new(mockOrderSource)
	ctx := context.Background()

	profile := &domain.Profile{UserID: "42", ShippingAddress: addr("7 Home Lane")}
	profiles.On("Get", ctx, "42").Return(profile, nil)
	source.On("FetchPrimary", ctx, "42").Return(repository.OrderFetch{}, errors.New("down"))
	source.On("FetchSecondary", ctx, "42").Return(repository.OrderFetch{OK: false}, nil)

	view, err := newTestAccountService(profiles, source).GetAccountView(ctx, "42")

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnavailable, view.OrdersOutcome)
	assert.Empty(t, view.Orders)
	assert.Equal(t, "7 Home Lane", view.Profile.ShippingAddress.AddressLine1)
	assert.Nil(t, view.Profile.BillingAddress)
	assert.False(t, view.Backfill.Any())
}

func TestGetAccountView_InvalidID(t *testing.T) {
	profiles := new(mockProfileRepository)
	source := new(mockOrderSource)

	_, err := newTestAccountService(profiles, source).GetAccountView(context.Background(), "  ")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	profiles.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetAccountView_ProfileNotFound(t *testing.T) {
	profiles := new(mockProfileRepository)
	source := new(mockOrderSource)
	ctx := context.Background()

	profiles.On("Get", ctx, "9").Return(nil, nil)

	_, err := newTestAccountService(profiles, source).GetAccountView(ctx, "9")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	source.AssertNotCalled(t, "FetchPrimary", mock.Anything, mock.Anything)
}

func TestGetAccountView_ProfileStoreError(t *testing.T) {
	profiles := new(mockProfileRepository)
	source := new(mockOrderSource)
	ctx := context.Background()

	profiles.On("Get", ctx, "9").Return(nil, errors.New("connection reset"))

	_, err := newTestAccountService(profiles, source).GetAccountView(ctx, "9")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
