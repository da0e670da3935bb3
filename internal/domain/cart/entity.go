// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
	ErrInvalidItem = errors.New("cart: invalid item")
)

// keySep joins the parts of an identity key.
// key = productId__size__scent (size/scent may be empty but the separators stay,
// so "p1__L__" and "p1____" are distinct keys).
const keySep = "__"

// Item represents "one line item" in a cart.
// Uniqueness is defined by (productId, size, scent) — see Key().
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Scent     string  `json:"scent,omitempty"`
}

// Key returns the identity key for this item.
func (it Item) Key() string {
	return MakeKey(it.ProductID, it.Size, it.Scent)
}

// MakeKey builds the deterministic composite key used to deduplicate entries.
func MakeKey(productID, size, scent string) string {
	return strings.TrimSpace(productID) + keySep + strings.TrimSpace(size) + keySep + strings.TrimSpace(scent)
}

// Subtotal is price * quantity for one line.
func (it Item) Subtotal() float64 {
	return it.Price * float64(it.Quantity)
}

// Cart represents the cart of one owner.
//   - Items: ordered list, insertion order preserved
//   - no duplicate identity keys (Add merges into the existing entry)
//   - quantity <= 0 is never stored; such a mutation removes the entry
type Cart struct {
	Items []Item `json:"items"`

	// UpdatedAt is refreshed on each mutation (touch()).
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCart creates a cart from items (nil is treated as empty).
// Input is normalized: blank product ids and non-positive quantities are dropped,
// duplicate keys are merged in first-seen order.
func NewCart(items []Item, now time.Time) *Cart {
	return &Cart{
		Items:     normalizeAndMerge(items),
		UpdatedAt: now,
	}
}

// Add increases quantity for the item's identity key.
// qty must be >= 1; if the key already exists, its quantity is incremented
// (the entry keeps its position — insertion order is never disturbed).
func (c *Cart) Add(it Item, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	pid := strings.TrimSpace(it.ProductID)
	if pid == "" || qty <= 0 || it.Price < 0 {
		return ErrInvalidItem
	}
	it.ProductID = pid
	it.Size = strings.TrimSpace(it.Size)
	it.Scent = strings.TrimSpace(it.Scent)
	it.Name = strings.TrimSpace(it.Name)
	it.Quantity = qty

	if c.Items == nil {
		c.Items = []Item{}
	}

	idx := findItemIndex(c.Items, it.Key())
	if idx >= 0 {
		c.Items[idx].Quantity += qty
		// refresh display fields (name/price/image may have changed upstream)
		c.Items[idx].Name = it.Name
		c.Items[idx].Price = it.Price
		c.Items[idx].Image = it.Image
	} else {
		c.Items = append(c.Items, it)
	}

	c.touch(now)
	return nil
}

// SetQty sets quantity for the identity key.
// If qty <= 0, the entry is removed. Setting qty on an absent key is a no-op
// (the storefront never creates lines through the quantity stepper).
func (c *Cart) SetQty(key string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(key) == "" {
		return ErrInvalidItem
	}

	idx := findItemIndex(c.Items, key)
	if idx < 0 {
		return nil
	}

	if qty <= 0 {
		c.Items = removeIndex(c.Items, idx)
	} else {
		c.Items[idx].Quantity = qty
	}

	c.touch(now)
	return nil
}

// Remove removes the identity key from the cart. Absent key is a no-op.
func (c *Cart) Remove(key string, now time.Time) error {
	return c.SetQty(key, 0, now)
}

// Clear empties the cart. Clearing an already-empty cart is safe.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Items = []Item{}
	c.touch(now)
}

// Find returns the item for the identity key.
func (c *Cart) Find(key string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	idx := findItemIndex(c.Items, key)
	if idx < 0 {
		return Item{}, false
	}
	return c.Items[idx], true
}

// Total is the sum of price * quantity over all entries (0 for an empty cart).
func (c *Cart) Total() float64 {
	if c == nil {
		return 0
	}
	return TotalOf(c.Items)
}

// TotalOf sums price * quantity over items.
func TotalOf(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
}

// ----------------------------
// Helpers
// ----------------------------

func findItemIndex(items []Item, key string) int {
	for i := range items {
		if items[i].Key() == key {
			return i
		}
	}
	return -1
}

func removeIndex(items []Item, idx int) []Item {
	if idx < 0 || idx >= len(items) {
		return items
	}
	// preserve order
	return append(items[:idx], items[idx+1:]...)
}

// normalizeAndMerge drops invalid entries and merges duplicate keys.
// IMPORTANT: first-seen order is preserved (the UI lists the cart in the order
// the buyer added things; do not sort).
func normalizeAndMerge(src []Item) []Item {
	out := make([]Item, 0, len(src))
	byKey := map[string]int{}

	for _, it := range src {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.Size = strings.TrimSpace(it.Size)
		it.Scent = strings.TrimSpace(it.Scent)
		if it.ProductID == "" || it.Quantity <= 0 || it.Price < 0 {
			continue
		}

		k := it.Key()
		if idx, ok := byKey[k]; ok {
			out[idx].Quantity += it.Quantity
			continue
		}
		byKey[k] = len(out)
		out = append(out, it)
	}
	return out
}
