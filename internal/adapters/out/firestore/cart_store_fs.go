// internal/adapters/out/firestore/cart_store_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "aromelle/internal/domain/cart"
)

// CartStoreFS implements cart.Store straight against Firestore — the kiosk
// variant, where the device's service account lives in the shop's GCP project
// and skipping the REST hop is cheaper than proxying.
//
// Collection design:
// - collection: carts
// - docId: ownerId (buyer uid or kiosk device id) — docId is the source of truth
// - fields: items(array), updatedAt
type CartStoreFS struct {
	client  *firestore.Client
	ownerID string
	clock   cartdom.Clock
}

func NewCartStoreFS(client *firestore.Client, ownerID string) *CartStoreFS {
	return &CartStoreFS{
		client:  client,
		ownerID: strings.TrimSpace(ownerID),
		clock:   cartdom.SystemClock{},
	}
}

func (s *CartStoreFS) doc() *firestore.DocumentRef {
	return s.client.Collection("carts").Doc(s.ownerID)
}

func (s *CartStoreFS) guard() error {
	if s == nil || s.client == nil {
		return errors.New("cart_store_fs: firestore client is nil")
	}
	if s.ownerID == "" {
		return errors.New("cart_store_fs: ownerID is empty")
	}
	return nil
}

// Load returns the owner's items; a missing doc is an empty cart.
func (s *CartStoreFS) Load(ctx context.Context) ([]cartdom.Item, error) {
	if err := s.guard(); err != nil {
		return []cartdom.Item{}, err
	}

	snap, err := s.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []cartdom.Item{}, nil
		}
		return []cartdom.Item{}, err
	}

	// Parse snap.Data() by hand instead of DataTo: older writers stored items
	// with drifting field types and a rigid struct decode turns that into a
	// hard failure for the whole cart page.
	return itemsFromSnapshotData(snap.Data()), nil
}

func (s *CartStoreFS) save(ctx context.Context, items []cartdom.Item) error {
	// Overwrite full doc (simple & predictable).
	_, err := s.doc().Set(ctx, cartDocFromItems(items, s.clock.Now()))
	return err
}

// Upsert performs the add-or-increment merge, then overwrites the doc.
func (s *CartStoreFS) Upsert(ctx context.Context, in cartdom.ItemInput) ([]cartdom.Item, error) {
	if err := s.guard(); err != nil {
		return []cartdom.Item{}, err
	}

	items, err := s.Load(ctx)
	if err != nil {
		return []cartdom.Item{}, err
	}

	now := s.clock.Now()
	c := cartdom.NewCart(items, now)
	if err := c.Add(in.Item(), in.Quantity, now); err != nil {
		return c.Items, err
	}
	if err := s.save(ctx, c.Items); err != nil {
		return c.Items, err
	}
	return c.Items, nil
}

// SetQty sets quantity for an identity key (qty <= 0 removes), then overwrites.
func (s *CartStoreFS) SetQty(ctx context.Context, key string, qty int) ([]cartdom.Item, error) {
	if err := s.guard(); err != nil {
		return []cartdom.Item{}, err
	}

	items, err := s.Load(ctx)
	if err != nil {
		return []cartdom.Item{}, err
	}

	now := s.clock.Now()
	c := cartdom.NewCart(items, now)
	if err := c.SetQty(key, qty, now); err != nil {
		return c.Items, err
	}
	if err := s.save(ctx, c.Items); err != nil {
		return c.Items, err
	}
	return c.Items, nil
}

// Remove removes an identity key. Absent key is a no-op.
func (s *CartStoreFS) Remove(ctx context.Context, key string) ([]cartdom.Item, error) {
	return s.SetQty(ctx, key, 0)
}

// Clear deletes the cart doc. Deleting an absent doc is fine (idempotent).
func (s *CartStoreFS) Clear(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.doc().Delete(ctx)
	if err != nil && status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}
