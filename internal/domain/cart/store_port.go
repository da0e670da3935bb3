// internal/domain/cart/store_port.go
package cart

import (
	"context"
	"strings"
	"time"
)

// Store is a persistence port for the cart of the current owner.
//
// Two shipped implementations:
//   - localstore.FileStore: one JSON file (device-local cart, anonymous buyer)
//   - httpapi.Client:       REST cart resource (signed-in buyer, server owns state)
//
// A direct-Firestore variant exists for kiosk builds that live inside the
// shop's GCP project (adapters/out/firestore).
//
// Contract:
//   - every mutation returns the post-mutation item list, so callers can fan
//     fresh state out to subscribers without a second read
//   - quantity <= 0 handed to Upsert/SetQty must end in removal, never be stored
//   - Remove/SetQty on an absent key is a no-op, not an error
type Store interface {
	// Load returns the current item list. Not-found / empty backing state is
	// an empty list, not an error.
	Load(ctx context.Context) ([]Item, error)

	// Upsert performs the add-or-increment merge for in's identity key.
	Upsert(ctx context.Context, in ItemInput) ([]Item, error)

	// SetQty sets the quantity for an identity key; qty <= 0 removes the line.
	SetQty(ctx context.Context, key string, qty int) ([]Item, error)

	// Remove removes an identity key (with its size/scent disambiguators).
	Remove(ctx context.Context, key string) ([]Item, error)

	// Clear removes all items for the current owner. Idempotent.
	Clear(ctx context.Context) error
}

// ItemInput is the add-to-cart payload handed to a Store.
// Quantity defaults to 1 at the facade; by the time it reaches a Store it is >= 1.
type ItemInput struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Scent     string  `json:"scent,omitempty"`
}

// Key returns the identity key for the payload.
func (in ItemInput) Key() string {
	return MakeKey(in.ProductID, in.Size, in.Scent)
}

// Item converts the payload to a domain item.
func (in ItemInput) Item() Item {
	return Item{
		ProductID: strings.TrimSpace(in.ProductID),
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Image:     strings.TrimSpace(in.Image),
		Quantity:  in.Quantity,
		Size:      strings.TrimSpace(in.Size),
		Scent:     strings.TrimSpace(in.Scent),
	}
}

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
