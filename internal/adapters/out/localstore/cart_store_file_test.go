// internal/adapters/out/localstore/cart_store_file_test.go
package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "aromelle/internal/domain/cart"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.json")
	return NewFileStoreWithClock(path, fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)})
}

func TestLoadAbsentFileIsEmpty(t *testing.T) {
	s := newTestStore(t)

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpsertPersistsAndMerges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := cartdom.ItemInput{ProductID: "1", Name: "Rose Candle", Price: 500, Quantity: 2, Size: "L", Scent: "Rose"}
	_, err := s.Upsert(ctx, in)
	require.NoError(t, err)

	in.Quantity = 1
	items, err := s.Upsert(ctx, in)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.InDelta(t, 1500.0, cartdom.TotalOf(items), 1e-9)

	// survives a fresh store on the same path
	reopened := NewFileStore(s.Path())
	items, err = reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestSetQtyZeroRemovesLine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, cartdom.ItemInput{ProductID: "1", Price: 500, Quantity: 2, Size: "L"})
	require.NoError(t, err)

	items, err := s.SetQty(ctx, cartdom.MakeKey("1", "L", ""), 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, cartdom.ItemInput{ProductID: "1", Price: 500, Quantity: 1})
	require.NoError(t, err)

	items, err := s.Remove(ctx, cartdom.MakeKey("ghost", "", ""))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestClearIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, cartdom.ItemInput{ProductID: "1", Price: 500, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWatcherSeesExternalWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	changed := make(chan []cartdom.Item, 1)
	w, err := s.Watch(ctx, func(items []cartdom.Item) {
		select {
		case changed <- items:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	// another "tab" writes the slot
	other := NewFileStore(s.Path())
	_, err = other.Upsert(ctx, cartdom.ItemInput{ProductID: "9", Price: 100, Quantity: 1})
	require.NoError(t, err)

	select {
	case items := <-changed:
		require.Len(t, items, 1)
		assert.Equal(t, "9", items[0].ProductID)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the external write")
	}
}
