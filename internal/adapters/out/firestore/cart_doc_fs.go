// internal/adapters/out/firestore/cart_doc_fs.go
package firestore

import (
	"strings"
	"time"

	cartdom "aromelle/internal/domain/cart"
)

// cartDoc is the persisted shape of a cart document.
type cartDoc struct {
	Items     []cartItemDoc `firestore:"items"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

type cartItemDoc struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	Price     float64 `firestore:"price"`
	Image     string  `firestore:"image"`
	Quantity  int     `firestore:"quantity"`
	Size      string  `firestore:"size"`
	Scent     string  `firestore:"scent"`
}

func cartDocFromItems(items []cartdom.Item, now time.Time) cartDoc {
	docItems := make([]cartItemDoc, 0, len(items))
	for _, it := range items {
		docItems = append(docItems, cartItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Scent:     it.Scent,
		})
	}
	return cartDoc{Items: docItems, UpdatedAt: now}
}

// itemsFromSnapshotData parses a raw doc map with backward compatibility:
// numbers may arrive as int64 or float64 depending on the writer, and missing
// fields fall back to zero values. Invalid lines are dropped, not fatal.
func itemsFromSnapshotData(data map[string]any) []cartdom.Item {
	raw, ok := data["items"].([]any)
	if !ok {
		return []cartdom.Item{}
	}

	items := make([]cartdom.Item, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}

		it := cartdom.Item{
			ProductID: docString(m, "productId"),
			Name:      docString(m, "name"),
			Price:     docFloat(m, "price"),
			Image:     docString(m, "image"),
			Quantity:  docInt(m, "quantity", "qty"),
			Size:      docString(m, "size"),
			Scent:     docString(m, "scent"),
		}
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		items = append(items, it)
	}
	return items
}

func docString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func docFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// docInt tries keys in order (old writers used "qty").
func docInt(m map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := m[key].(type) {
		case int64:
			return int(v)
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return 0
}
