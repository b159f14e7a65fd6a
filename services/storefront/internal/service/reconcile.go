package service

import (
	"sort"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// SelectLatestAddress returns a copy of the kind address of the most recent
// order that carries a valid one, or nil. Orders with equal CreatedAt keep
// their input order. orders is not modified.
func SelectLatestAddress(orders []domain.Order, kind domain.AddressKind) *domain.AddressRecord {
	addr, _ := latestAddress(orders, kind)
	return addr
}

func latestAddress(orders []domain.Order, kind domain.AddressKind) (*domain.AddressRecord, string) {
	if len(orders) == 0 {
		return nil, ""
	}

	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	for _, o := range sorted {
		if addr := o.Address(kind); addr.Valid() {
			return addr.Clone(), o.ID
		}
	}
	return nil, ""
}

// Backfill records which order each filled address came from.
type Backfill struct {
	ShippingFromOrder string `json:"shipping_from_order,omitempty"`
	BillingFromOrder  string `json:"billing_from_order,omitempty"`
}

// Any reports whether an address was filled.
func (b Backfill) Any() bool {
	return b.ShippingFromOrder != "" || b.BillingFromOrder != ""
}

// ReconcileProfile returns a copy of profile whose missing or invalid
// shipping and billing addresses are filled, independently, from the latest
// qualifying order. The input profile is left untouched.
func ReconcileProfile(profile domain.Profile, orders []domain.Order) (domain.Profile, Backfill) {
	patched := profile.Clone()
	var backfill Backfill

	for _, kind := range []domain.AddressKind{domain.AddressShipping, domain.AddressBilling} {
		if patched.Address(kind).Valid() {
			continue
		}
		addr, orderID := latestAddress(orders, kind)
		if addr == nil {
			continue
		}
		patched.SetAddress(kind, addr)
		addressBackfills.WithLabelValues(string(kind)).Inc()
		if kind == domain.AddressShipping {
			backfill.ShippingFromOrder = orderID
		} else {
			backfill.BillingFromOrder = orderID
		}
	}

	return patched, backfill
}
