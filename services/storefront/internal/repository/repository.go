package repository

import (
	"context"
	"errors"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// ErrMalformedSnapshot marks a saved cart that exists but cannot be used.
// Callers discard such a snapshot; every other Load error is an I/O failure.
var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// CartSnapshotStore persists the serialized item list of one cart.
type CartSnapshotStore interface {
	// Load returns the saved items in order, or an empty list when nothing
	// has been saved yet. Undecodable data is reported as
	// ErrMalformedSnapshot.
	Load(ctx context.Context) ([]domain.CartItem, error)

	// Save overwrites the snapshot with the full item list.
	Save(ctx context.Context, items []domain.CartItem) error
}

// SnapshotStoreFactory returns the snapshot store for a browser session.
type SnapshotStoreFactory func(sessionID string) CartSnapshotStore

// OrderFetch is the answer of one order endpoint. OK is false when the
// endpoint responded with a non-success status.
type OrderFetch struct {
	OK     bool
	Orders []domain.Order
}

// OrderSource lists a user's historical orders through two independent
// endpoints. Both expect a standardized user ID.
type OrderSource interface {
	FetchPrimary(ctx context.Context, userID string) (OrderFetch, error)
	FetchSecondary(ctx context.Context, userID string) (OrderFetch, error)
}

// ProfileRepository reads account profiles.
type ProfileRepository interface {
	// Get returns nil, nil when no profile exists for userID.
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}
