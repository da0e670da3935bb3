// internal/adapters/out/firestore/cart_doc_fs_test.go
package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "aromelle/internal/domain/cart"
)

func TestItemsFromSnapshotDataTolerantParse(t *testing.T) {
	data := map[string]any{
		"items": []any{
			map[string]any{
				"productId": "1",
				"name":      "Rose Candle",
				"price":     int64(500), // int64 from an old writer
				"quantity":  int64(2),
				"size":      "L",
				"scent":     "Rose",
			},
			map[string]any{
				"productId": "2",
				"price":     350.0,
				"qty":       float64(1), // legacy field name + float
			},
			map[string]any{"productId": "", "quantity": int64(1)}, // dropped
			map[string]any{"productId": "3", "quantity": int64(0)}, // dropped
			"garbage", // dropped
		},
	}

	items := itemsFromSnapshotData(data)
	require.Len(t, items, 2)

	assert.Equal(t, "1", items[0].ProductID)
	assert.InDelta(t, 500.0, items[0].Price, 1e-9)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Rose", items[0].Scent)

	assert.Equal(t, "2", items[1].ProductID)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestItemsFromSnapshotDataMissingItems(t *testing.T) {
	assert.Empty(t, itemsFromSnapshotData(map[string]any{}))
	assert.Empty(t, itemsFromSnapshotData(map[string]any{"items": "not-a-list"}))
}

func TestCartDocFromItemsRoundShape(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := cartDocFromItems([]cartdom.Item{
		{ProductID: "1", Name: "Rose Candle", Price: 500, Quantity: 2, Size: "L", Scent: "Rose"},
	}, now)

	require.Len(t, doc.Items, 1)
	assert.Equal(t, "1", doc.Items[0].ProductID)
	assert.Equal(t, 2, doc.Items[0].Quantity)
	assert.Equal(t, now, doc.UpdatedAt)
}
