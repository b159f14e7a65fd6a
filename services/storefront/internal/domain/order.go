package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state reported by the order backend.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusCompleted, OrderStatusOnHold, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a read-only projection of a historical order.
type Order struct {
	ID              string          `json:"id"`
	Status          OrderStatus     `json:"status"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
	ShippingAddress *AddressRecord  `json:"shipping_address"`
	BillingAddress  *AddressRecord  `json:"billing_address"`
	LineItems       []OrderLineItem `json:"line_items"`
}

// Address returns the order's address of the given kind, possibly nil.
func (o Order) Address(kind AddressKind) *AddressRecord {
	switch kind {
	case AddressShipping:
		return o.ShippingAddress
	case AddressBilling:
		return o.BillingAddress
	}
	return nil
}

// OrderLineItem is one product line of an order.
type OrderLineItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns UnitPrice × Quantity.
func (l OrderLineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
