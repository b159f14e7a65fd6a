package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// SimulatedCatalog answers price lookups from a fixed table after a random
// delay in [0, maxLatency].
type SimulatedCatalog struct {
	products   map[int64]domain.ProductQuote
	maxLatency time.Duration
}

// NewSimulatedCatalog creates a catalog serving products. A nil table uses
// DefaultProducts.
func NewSimulatedCatalog(products []domain.ProductQuote, maxLatency time.Duration) *SimulatedCatalog {
	if products == nil {
		products = DefaultProducts()
	}
	table := make(map[int64]domain.ProductQuote, len(products))
	for _, p := range products {
		table[p.ProductID] = p
	}
	return &SimulatedCatalog{products: table, maxLatency: maxLatency}
}

// DefaultProducts is the built-in price table.
func DefaultProducts() []domain.ProductQuote {
	return []domain.ProductQuote{
		{ProductID: 1, Name: "Organic Cotton Tee", UnitPrice: decimal.RequireFromString("24.00"), ImageRef: "tee.jpg"},
		{ProductID: 2, Name: "Linen Shirt", UnitPrice: decimal.RequireFromString("49.90"), ImageRef: "linen-shirt.jpg"},
		{ProductID: 3, Name: "Wool Beanie", UnitPrice: decimal.RequireFromString("18.50"), ImageRef: "beanie.jpg"},
		{ProductID: 4, Name: "Canvas Tote", UnitPrice: decimal.RequireFromString("15.00"), ImageRef: "tote.jpg"},
		{ProductID: 42, Name: "Selvedge Denim", UnitPrice: decimal.RequireFromString("129.00"), ImageRef: "denim.jpg"},
	}
}

// LookupProduct waits a random delay then returns the quote for productID.
func (c *SimulatedCatalog) LookupProduct(ctx context.Context, productID int64) (domain.ProductQuote, error) {
	if c.maxLatency > 0 {
		delay := time.Duration(rand.Int64N(int64(c.maxLatency) + 1)) // #nosec G404
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domain.ProductQuote{}, ctx.Err()
		}
	}

	quote, ok := c.products[productID]
	if !ok {
		return domain.ProductQuote{}, apperrors.NotFound("product", fmt.Sprint(productID))
	}
	return quote, nil
}
