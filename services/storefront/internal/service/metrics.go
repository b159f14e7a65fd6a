package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation and outcome (applied, noop, failed)",
		},
		[]string{"operation", "outcome"},
	)

	cartSnapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_snapshot_errors_total",
			Help: "Cart snapshot failures by op (load, discard, save)",
		},
		[]string{"op"},
	)

	cartSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cart_sessions",
			Help: "Number of cart stores held by the registry",
		},
	)

	cartSessionEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_session_evictions_total",
			Help: "Cart sessions dropped from the registry by reason (idle, capacity)",
		},
		[]string{"reason"},
	)

	orderFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_fetches_total",
			Help: "Order endpoint attempts by source and result (found, empty, not_ok, error)",
		},
		[]string{"source", "result"},
	)

	orderRetrievals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_retrievals_total",
			Help: "Order retrievals by final outcome",
		},
		[]string{"outcome"},
	)

	addressBackfills = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_address_backfills_total",
			Help: "Profile addresses filled from order history, by kind",
		},
		[]string{"kind"},
	)
)
