package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartItem is a single cart line. Key is the only mutation handle and is
// never derived from ProductID, so the same product may appear on several
// lines.
type CartItem struct {
	Key       string          `json:"key"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image_ref,omitempty"`
}

// LineTotal returns UnitPrice × Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProductQuote is the catalog's answer to a price lookup.
type ProductQuote struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image_url,omitempty"`
}

// Cart is an ordered list of cart lines.
type Cart struct {
	Items []CartItem `json:"items"`
}

// ItemCount returns the sum of quantities over all lines.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the sum of line totals.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// IndexOf returns the position of the line with key, or -1.
func (c Cart) IndexOf(key string) int {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return i
		}
	}
	return -1
}

// Validate checks that every key is present and unique and every quantity
// is at least 1.
func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c.Items))
	for i, item := range c.Items {
		if item.Key == "" {
			return fmt.Errorf("item %d: empty key", i)
		}
		if _, dup := seen[item.Key]; dup {
			return fmt.Errorf("item %d: duplicate key %q", i, item.Key)
		}
		seen[item.Key] = struct{}{}
		if item.Quantity < 1 {
			return fmt.Errorf("item %q: quantity %d below 1", item.Key, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("item %q: negative unit price", item.Key)
		}
	}
	return nil
}

// CloneItems returns a copy of items that shares no backing array.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return []CartItem{}
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
