package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

const maxSessionIDLength = 128

// ObserverFactory returns the observer for a session's cart, or nil.
type ObserverFactory func(sessionID string) CartObserver

// RegistryLimits bounds the sessions a CartRegistry keeps in memory. Evicted
// sessions are restored from their snapshot on the next request.
type RegistryLimits struct {
	// IdleTTL evicts sessions unused for this long. Zero keeps them.
	IdleTTL time.Duration
	// MaxSessions caps the sessions held; zero means no cap.
	MaxSessions int
}

type registryEntry struct {
	store *CartStore
	ready chan struct{}
	// err is set before ready is closed when initialization failed.
	err      error
	lastUsed atomic.Int64
}

func (e *registryEntry) isReady() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// evictable reports whether e can be dropped without losing in-flight work.
func (e *registryEntry) evictable() bool {
	return e.isReady() && e.store.Pending() == 0
}

// CartRegistry owns one CartStore per browser session. Stores are created
// and initialized on first use.
type CartRegistry struct {
	snapshots repository.SnapshotStoreFactory
	catalog   PriceLookup
	observers ObserverFactory
	limits    RegistryLimits
	logger    *slog.Logger
	opts      []CartStoreOption
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewCartRegistry creates an empty registry. opts apply to every store it
// creates; observers may be nil.
func NewCartRegistry(snapshots repository.SnapshotStoreFactory, catalog PriceLookup, observers ObserverFactory, limits RegistryLimits, logger *slog.Logger, opts ...CartStoreOption) *CartRegistry {
	return &CartRegistry{
		snapshots: snapshots,
		catalog:   catalog,
		observers: observers,
		limits:    limits,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		entries:   make(map[string]*registryEntry),
	}
}

// Get returns the store of sessionID, restoring its snapshot the first time
// the session is seen. Concurrent first calls share one initialization. When
// the snapshot cannot be read the session is not kept and Get returns a
// ServiceUnavailable error, so a later call retries the load.
func (r *CartRegistry) Get(ctx context.Context, sessionID string) (*CartStore, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if len(sessionID) > maxSessionIDLength {
		return nil, apperrors.InvalidInput("session id is too long")
	}

	r.mu.Lock()
	entry, ok := r.entries[sessionID]
	if !ok {
		r.makeRoomLocked()
		entry = &registryEntry{store: r.newStore(sessionID), ready: make(chan struct{})}
		r.entries[sessionID] = entry
		cartSessions.Set(float64(len(r.entries)))
	}
	entry.lastUsed.Store(r.now().UnixNano())
	r.mu.Unlock()

	if !ok {
		return r.initialize(ctx, sessionID, entry)
	}

	select {
	case <-entry.ready:
		if entry.err != nil {
			return nil, entry.err
		}
		return entry.store, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *CartRegistry) initialize(ctx context.Context, sessionID string, entry *registryEntry) (*CartStore, error) {
	// The load outlives the first request so a client disconnect cannot fail
	// the session for concurrent callers.
	if err := entry.store.Initialize(context.WithoutCancel(ctx)); err != nil {
		r.logger.ErrorContext(ctx, "failed to open cart session",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		entry.err = apperrors.ServiceUnavailable("cart is temporarily unavailable")

		r.mu.Lock()
		if r.entries[sessionID] == entry {
			delete(r.entries, sessionID)
			cartSessions.Set(float64(len(r.entries)))
		}
		r.mu.Unlock()

		close(entry.ready)
		return nil, entry.err
	}

	close(entry.ready)
	r.logger.DebugContext(ctx, "cart session opened", slog.String("session_id", sessionID))
	return entry.store, nil
}

// Evict forgets the store of sessionID. The saved snapshot is kept.
func (r *CartRegistry) Evict(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[sessionID]; !ok {
		return false
	}
	delete(r.entries, sessionID)
	cartSessions.Set(float64(len(r.entries)))
	return true
}

// Sweep evicts sessions idle for longer than IdleTTL and returns how many
// were dropped. Sessions with mutations in flight are kept.
func (r *CartRegistry) Sweep() int {
	if r.limits.IdleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := r.sweepLocked()
	if evicted > 0 {
		cartSessions.Set(float64(len(r.entries)))
		r.logger.Debug("evicted idle cart sessions", slog.Int("count", evicted))
	}
	return evicted
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *CartRegistry) Run(ctx context.Context, interval time.Duration) {
	if r.limits.IdleTTL <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len returns the number of sessions held.
func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *CartRegistry) sweepLocked() int {
	if r.limits.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.limits.IdleTTL).UnixNano()
	evicted := 0
	for id, e := range r.entries {
		if e.lastUsed.Load() <= cutoff && e.evictable() {
			delete(r.entries, id)
			evicted++
		}
	}
	cartSessionEvictions.WithLabelValues("idle").Add(float64(evicted))
	return evicted
}

// makeRoomLocked frees a slot for a new session when the registry is full,
// first by dropping idle sessions, then the least recently used one.
func (r *CartRegistry) makeRoomLocked() {
	if r.limits.MaxSessions <= 0 || len(r.entries) < r.limits.MaxSessions {
		return
	}
	if r.sweepLocked() > 0 && len(r.entries) < r.limits.MaxSessions {
		return
	}

	var (
		oldestID string
		oldest   int64
	)
	for id, e := range r.entries {
		if !e.evictable() {
			continue
		}
		if used := e.lastUsed.Load(); oldestID == "" || used < oldest {
			oldestID, oldest = id, used
		}
	}
	if oldestID == "" {
		r.logger.Warn("cart registry over capacity, no session can be evicted",
			slog.Int("sessions", len(r.entries)),
		)
		return
	}
	delete(r.entries, oldestID)
	cartSessionEvictions.WithLabelValues("capacity").Inc()
}

func (r *CartRegistry) newStore(sessionID string) *CartStore {
	opts := append([]CartStoreOption(nil), r.opts...)
	if r.observers != nil {
		if o := r.observers(sessionID); o != nil {
			opts = append(opts, WithCartObserver(o))
		}
	}
	logger := r.logger.With(slog.String("session_id", sessionID))
	return NewCartStore(r.snapshots(sessionID), r.catalog, logger, opts...)
}
