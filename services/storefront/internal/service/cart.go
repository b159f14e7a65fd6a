package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

// ErrSideEffectFailed wraps every failure of a mutation's side effect (price
// lookup, latency wait cancelled). It is the only error a mutation returns.
var ErrSideEffectFailed = errors.New("cart side effect failed")

// Outcome tags the result of a cart mutation.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeNoop    Outcome = "noop"
)

// Result is the value of a settled mutation. Item is the added or updated
// line when there is one.
type Result struct {
	Outcome Outcome          `json:"outcome"`
	Item    *domain.CartItem `json:"item,omitempty"`
}

// Applied reports whether the mutation changed the cart.
func (r Result) Applied() bool {
	return r.Outcome == OutcomeApplied
}

// Mutation names used in events, logs and metrics.
const (
	MutationAddItem        = "add_item"
	MutationUpdateQuantity = "update_quantity"
	MutationRemoveItem     = "remove_item"
	MutationClear          = "clear"
)

// PriceLookup resolves a product's name and unit price.
type PriceLookup interface {
	LookupProduct(ctx context.Context, productID int64) (domain.ProductQuote, error)
}

// CartChange describes an applied mutation.
type CartChange struct {
	Mutation string
	Cart     domain.Cart
}

// CartObserver is notified after every applied mutation.
type CartObserver interface {
	CartChanged(ctx context.Context, change CartChange)
}

// CartStoreOption configures a CartStore.
type CartStoreOption func(*CartStore)

// WithCartObserver registers an observer for applied mutations.
func WithCartObserver(o CartObserver) CartStoreOption {
	return func(s *CartStore) { s.observer = o }
}

// WithMutationLatency makes UpdateQuantity, RemoveItem and Clear suspend for
// d before committing.
func WithMutationLatency(d time.Duration) CartStoreOption {
	return func(s *CartStore) { s.latency = d }
}

// WithKeyGenerator replaces the UUID line key generator.
func WithKeyGenerator(fn func() string) CartStoreOption {
	return func(s *CartStore) { s.newKey = fn }
}

// CartStore holds one cart in memory and mirrors it to a snapshot store.
//
// Mutations are not serialized. Each one reads the items when issued,
// suspends at its side effect, then commits a complete new list, so the
// mutation that resolves last decides the final state.
type CartStore struct {
	snapshots repository.CartSnapshotStore
	catalog   PriceLookup
	logger    *slog.Logger
	observer  CartObserver
	latency   time.Duration
	newKey    func() string

	mu    sync.RWMutex
	items []domain.CartItem

	// persistMu keeps snapshot writes in the same order as in-memory commits.
	persistMu sync.Mutex

	pending atomic.Int64
}

// NewCartStore creates an empty store. Call Initialize to restore the
// saved snapshot.
func NewCartStore(snapshots repository.CartSnapshotStore, catalog PriceLookup, logger *slog.Logger, opts ...CartStoreOption) *CartStore {
	s := &CartStore{
		snapshots: snapshots,
		catalog:   catalog,
		logger:    logger,
		newKey:    uuid.NewString,
		items:     []domain.CartItem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize replaces the in-memory cart with the saved snapshot. A malformed
// snapshot, or one that breaks the cart invariants, is discarded and the cart
// starts empty. Any other load failure is returned and the cart is left as
// it was, so the saved snapshot is never overwritten by an empty one.
func (s *CartStore) Initialize(ctx context.Context) error {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	items, err := s.snapshots.Load(ctx)
	if err != nil && !errors.Is(err, repository.ErrMalformedSnapshot) {
		cartSnapshotErrors.WithLabelValues("load").Inc()
		return fmt.Errorf("load cart snapshot: %w", err)
	}
	if err == nil {
		if verr := (domain.Cart{Items: items}).Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", repository.ErrMalformedSnapshot, verr)
		}
	}
	if err != nil {
		cartSnapshotErrors.WithLabelValues("discard").Inc()
		s.logger.WarnContext(ctx, "discarding cart snapshot",
			slog.String("error", err.Error()),
		)
		items = nil
	}

	s.mu.Lock()
	s.items = domain.CloneItems(items)
	s.mu.Unlock()
	return nil
}

// AddItem looks up productID and appends a new line with a fresh key. A
// quantity below 1 adds a single unit. Lines are never merged, even for a
// product already in the cart.
func (s *CartStore) AddItem(ctx context.Context, productID int64, quantity int) (Result, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	if quantity < 1 {
		quantity = 1
	}
	base := s.Items()

	quote, err := s.catalog.LookupProduct(ctx, productID)
	if err != nil {
		return Result{}, s.failed(ctx, MutationAddItem, fmt.Errorf("%w: price lookup for product %d: %w", ErrSideEffectFailed, productID, err))
	}

	item := domain.CartItem{
		Key:       s.newKey(),
		ProductID: productID,
		Name:      quote.Name,
		UnitPrice: quote.UnitPrice,
		Quantity:  quantity,
		ImageRef:  quote.ImageRef,
	}
	s.commit(ctx, MutationAddItem, append(base, item))

	return s.applied(MutationAddItem, &item), nil
}

// UpdateQuantity sets the quantity of the line with key. A quantity below 1
// and an unknown key are no-ops.
func (s *CartStore) UpdateQuantity(ctx context.Context, key string, quantity int) (Result, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	if quantity < 1 {
		return s.noop(MutationUpdateQuantity), nil
	}
	base := s.Items()

	if err := s.wait(ctx); err != nil {
		return Result{}, s.failed(ctx, MutationUpdateQuantity, err)
	}

	idx := domain.Cart{Items: base}.IndexOf(key)
	if idx < 0 {
		return s.noop(MutationUpdateQuantity), nil
	}
	base[idx].Quantity = quantity
	updated := base[idx]
	s.commit(ctx, MutationUpdateQuantity, base)

	return s.applied(MutationUpdateQuantity, &updated), nil
}

// RemoveItem drops the line with key. An unknown key is a no-op.
func (s *CartStore) RemoveItem(ctx context.Context, key string) (Result, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	base := s.Items()

	if err := s.wait(ctx); err != nil {
		return Result{}, s.failed(ctx, MutationRemoveItem, err)
	}

	idx := domain.Cart{Items: base}.IndexOf(key)
	if idx < 0 {
		return s.noop(MutationRemoveItem), nil
	}
	removed := base[idx]
	s.commit(ctx, MutationRemoveItem, append(base[:idx], base[idx+1:]...))

	return s.applied(MutationRemoveItem, &removed), nil
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) (Result, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	if err := s.wait(ctx); err != nil {
		return Result{}, s.failed(ctx, MutationClear, err)
	}

	s.commit(ctx, MutationClear, []domain.CartItem{})
	return s.applied(MutationClear, nil), nil
}

// Items returns a copy of the current lines.
func (s *CartStore) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneItems(s.items)
}

// Snapshot returns the current cart.
func (s *CartStore) Snapshot() domain.Cart {
	return domain.Cart{Items: s.Items()}
}

// ItemCount returns the sum of quantities.
func (s *CartStore) ItemCount() int {
	return s.Snapshot().ItemCount()
}

// Subtotal returns the sum of unit price × quantity.
func (s *CartStore) Subtotal() decimal.Decimal {
	return s.Snapshot().Subtotal()
}

// Pending returns the number of operations in flight.
func (s *CartStore) Pending() int {
	return int(s.pending.Load())
}

// Loading reports whether any operation is in flight.
func (s *CartStore) Loading() bool {
	return s.Pending() > 0
}

func (s *CartStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSideEffectFailed, err)
		}
		return nil
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrSideEffectFailed, ctx.Err())
	}
}

// commit swaps in next and persists it. Snapshot failures are logged only.
func (s *CartStore) commit(ctx context.Context, mutation string, next []domain.CartItem) {
	persistCtx := context.WithoutCancel(ctx)

	s.persistMu.Lock()
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
	err := s.snapshots.Save(persistCtx, domain.CloneItems(next))
	s.persistMu.Unlock()

	if err != nil {
		cartSnapshotErrors.WithLabelValues("save").Inc()
		s.logger.ErrorContext(ctx, "failed to save cart snapshot",
			slog.String("mutation", mutation),
			slog.String("error", err.Error()),
		)
	}

	if s.observer != nil {
		s.observer.CartChanged(persistCtx, CartChange{
			Mutation: mutation,
			Cart:     domain.Cart{Items: domain.CloneItems(next)},
		})
	}
}

func (s *CartStore) applied(mutation string, item *domain.CartItem) Result {
	cartMutations.WithLabelValues(mutation, string(OutcomeApplied)).Inc()
	return Result{Outcome: OutcomeApplied, Item: item}
}

func (s *CartStore) noop(mutation string) Result {
	cartMutations.WithLabelValues(mutation, string(OutcomeNoop)).Inc()
	return Result{Outcome: OutcomeNoop}
}

func (s *CartStore) failed(ctx context.Context, mutation string, err error) error {
	cartMutations.WithLabelValues(mutation, "failed").Inc()
	s.logger.WarnContext(ctx, "cart mutation failed",
		slog.String("mutation", mutation),
		slog.String("error", err.Error()),
	)
	return err
}
