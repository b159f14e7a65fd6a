package domain

// Profile is a customer's account record.
type Profile struct {
	UserID          string         `json:"user_id"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone,omitempty"`
	ShippingAddress *AddressRecord `json:"shipping_address"`
	BillingAddress  *AddressRecord `json:"billing_address"`
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	p.ShippingAddress = p.ShippingAddress.Clone()
	p.BillingAddress = p.BillingAddress.Clone()
	return p
}

// Address returns the profile's address of the given kind, possibly nil.
func (p Profile) Address(kind AddressKind) *AddressRecord {
	switch kind {
	case AddressShipping:
		return p.ShippingAddress
	case AddressBilling:
		return p.BillingAddress
	}
	return nil
}

// SetAddress replaces the address of the given kind.
func (p *Profile) SetAddress(kind AddressKind, addr *AddressRecord) {
	switch kind {
	case AddressShipping:
		p.ShippingAddress = addr
	case AddressBilling:
		p.BillingAddress = addr
	}
}
