package service

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

// --- Mock Snapshot Store ---

type mockSnapshotStore struct {
	mock.Mock
}

func (m *mockSnapshotStore) Load(ctx context.Context) ([]domain.CartItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *mockSnapshotStore) Save(ctx context.Context, items []domain.CartItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

// --- Mock Catalog ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) LookupProduct(ctx context.Context, productID int64) (domain.ProductQuote, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.ProductQuote), args.Error(1)
}

// gatedCatalog blocks every lookup until the test releases that product.
type gatedCatalog struct {
	entered chan int64
	mu      sync.Mutex
	gates   map[int64]chan struct{}
}

func newGatedCatalog(ids ...int64) *gatedCatalog {
	g := &gatedCatalog{entered: make(chan int64, len(ids)), gates: make(map[int64]chan struct{})}
	for _, id := range ids {
		g.gates[id] = make(chan struct{})
	}
	return g
}

func (g *gatedCatalog) LookupProduct(ctx context.Context, productID int64) (domain.ProductQuote, error) {
	g.mu.Lock()
	gate := g.gates[productID]
	g.mu.Unlock()

	g.entered <- productID
	select {
	case <-gate:
	case <-ctx.Done():
		return domain.ProductQuote{}, ctx.Err()
	}
	return quote(productID, "10.00"), nil
}

func (g *gatedCatalog) release(productID int64) {
	close(g.gates[productID])
}

// --- Mock Order Source ---

type mockOrderSource struct {
	mock.Mock
}

func (m *mockOrderSource) FetchPrimary(ctx context.Context, userID string) (repository.OrderFetch, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repository.OrderFetch), args.Error(1)
}

func (m *mockOrderSource) FetchSecondary(ctx context.Context, userID string) (repository.OrderFetch, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repository.OrderFetch), args.Error(1)
}

// --- Mock Notifier ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrdersUnavailable(ctx context.Context, notice OrdersUnavailableNotice) {
	m.Called(ctx, notice)
}

// --- Mock Profile Repository ---

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// --- Recording Observer ---

type recordingObserver struct {
	mu      sync.Mutex
	changes []CartChange
}

func (o *recordingObserver) CartChanged(_ context.Context, change CartChange) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, change)
}

func (o *recordingObserver) mutations() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.changes))
	for _, c := range o.changes {
		names = append(names, c.Mutation)
	}
	return names
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func quote(id int64, price string) domain.ProductQuote {
	return domain.ProductQuote{
		ProductID: id,
		Name:      "Product",
		UnitPrice: decimal.RequireFromString(price),
	}
}

// sequentialKeys returns a key generator producing k1, k2, ...
func sequentialKeys() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "k" + strconv.Itoa(n)
	}
}
