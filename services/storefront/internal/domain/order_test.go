package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusProcessing, OrderStatusCompleted, OrderStatusOnHold, OrderStatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestOrder_Address(t *testing.T) {
	ship := &AddressRecord{AddressLine1: "1 Main St"}
	bill := &AddressRecord{AddressLine1: "2 Side St"}
	o := Order{ShippingAddress: ship, BillingAddress: bill}

	assert.Same(t, ship, o.Address(AddressShipping))
	assert.Same(t, bill, o.Address(AddressBilling))
	assert.Nil(t, o.Address(AddressKind("pickup")))
}

func TestOrderLineItem_LineTotal(t *testing.T) {
	l := OrderLineItem{Quantity: 3, UnitPrice: price("2.50")}
	assert.True(t, price("7.50").Equal(l.LineTotal()))
}

func TestAddressRecord_Valid(t *testing.T) {
	var nilAddr *AddressRecord
	assert.False(t, nilAddr.Valid())
	assert.False(t, (&AddressRecord{}).Valid())
	assert.False(t, (&AddressRecord{AddressLine1: "   \t"}).Valid())
	assert.True(t, (&AddressRecord{AddressLine1: "1 Rue X"}).Valid())
}

func TestParseAddressKind(t *testing.T) {
	k, err := ParseAddressKind(" Billing ")
	require.NoError(t, err)
	assert.Equal(t, AddressBilling, k)

	_, err = ParseAddressKind("pickup")
	assert.Error(t, err)
}

func TestProfile_CloneIsDeep(t *testing.T) {
	p := Profile{UserID: "42", ShippingAddress: &AddressRecord{AddressLine1: "1 Main St"}}
	c := p.Clone()
	c.ShippingAddress.AddressLine1 = "changed"
	c.SetAddress(AddressBilling, &AddressRecord{AddressLine1: "new"})

	assert.Equal(t, "1 Main St", p.ShippingAddress.AddressLine1)
	assert.Nil(t, p.BillingAddress)
	assert.Equal(t, "new", c.Address(AddressBilling).AddressLine1)
}
