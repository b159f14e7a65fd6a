package domain

import (
	"fmt"
	"strings"
)

// AddressKind selects which address of an order or profile is meant.
type AddressKind string

const (
	AddressShipping AddressKind = "shipping"
	AddressBilling  AddressKind = "billing"
)

// ParseAddressKind accepts "shipping" or "billing", case-insensitively.
func ParseAddressKind(s string) (AddressKind, error) {
	kind := AddressKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown address kind %q", s)
	}
	return kind, nil
}

// Valid reports whether k is a known kind.
func (k AddressKind) Valid() bool {
	return k == AddressShipping || k == AddressBilling
}

// AddressRecord is a postal address as carried on orders and profiles.
type AddressRecord struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// Valid reports whether the address has a non-blank first line.
func (a *AddressRecord) Valid() bool {
	return a != nil && strings.TrimSpace(a.AddressLine1) != ""
}

// Clone returns a copy of a, or nil.
func (a *AddressRecord) Clone() *AddressRecord {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
