// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	cartdom "aromelle/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// Notifier reports an operation outcome to the buyer.
// severity is one of notify's constants ("info" / "success" / "error").
type Notifier interface {
	Display(message, severity string)
}

// CartUsecase is the one stable surface every page talks to, regardless of
// which store variant backs it (file, REST, direct Firestore). The active
// store is chosen at construction — no ambient globals.
//
// Every successful mutation broadcasts the fresh item list to subscribers, so
// independent fragments (header badge, cart page listing) refresh without
// knowing about each other.
type CartUsecase struct {
	store    cartdom.Store
	notifier Notifier

	mu   sync.Mutex
	subs []func([]cartdom.Item)
}

func NewCartUsecase(store cartdom.Store) *CartUsecase {
	return &CartUsecase{store: store}
}

// NewCartUsecaseWithNotifier wires outcome reporting.
// notifier may be nil (outcomes land in the log via error returns only).
func NewCartUsecaseWithNotifier(store cartdom.Store, notifier Notifier) *CartUsecase {
	return &CartUsecase{store: store, notifier: notifier}
}

// Subscribe registers a cart-changed listener. Listeners receive the full
// post-mutation item list, synchronously, in registration order.
func (uc *CartUsecase) Subscribe(fn func(items []cartdom.Item)) {
	if uc == nil || fn == nil {
		return
	}
	uc.mu.Lock()
	uc.subs = append(uc.subs, fn)
	uc.mu.Unlock()
}

func (uc *CartUsecase) broadcast(items []cartdom.Item) {
	uc.mu.Lock()
	subs := make([]func([]cartdom.Item), len(uc.subs))
	copy(subs, uc.subs)
	uc.mu.Unlock()

	for _, fn := range subs {
		fn(items)
	}
}

// GetCart returns the current items. Any failure degrades to an empty list —
// the page renders either way, prior UI state stays untouched.
func (uc *CartUsecase) GetCart(ctx context.Context) []cartdom.Item {
	if uc == nil || uc.store == nil {
		return []cartdom.Item{}
	}

	items, err := uc.store.Load(ctx)
	if err != nil {
		uc.reportFailure(err)
		return []cartdom.Item{}
	}
	return items
}

// AddToCart normalizes the payload and delegates the add-or-increment merge.
// qty 0 means "default to 1"; negative qty is an invalid argument.
func (uc *CartUsecase) AddToCart(ctx context.Context, in cartdom.ItemInput) ([]cartdom.Item, error) {
	if uc == nil || uc.store == nil {
		return []cartdom.Item{}, ErrCartInvalidArgument
	}

	if strings.TrimSpace(in.ProductID) == "" || in.Price < 0 || in.Quantity < 0 {
		return []cartdom.Item{}, ErrCartInvalidArgument
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	items, err := uc.store.Upsert(ctx, in)
	if err != nil {
		uc.reportFailure(err)
		return items, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		uc.display(name+" added to cart", "success")
	} else {
		uc.display("Added to cart", "success")
	}
	uc.broadcast(items)
	return items, nil
}

// RemoveFromCart removes one line. Removing an absent key is a no-op, and is
// still broadcast (the listing re-renders from the returned state).
func (uc *CartUsecase) RemoveFromCart(ctx context.Context, key string) ([]cartdom.Item, error) {
	if uc == nil || uc.store == nil {
		return []cartdom.Item{}, ErrCartInvalidArgument
	}
	if strings.TrimSpace(key) == "" {
		return []cartdom.Item{}, ErrCartInvalidArgument
	}

	items, err := uc.store.Remove(ctx, key)
	if err != nil {
		uc.reportFailure(err)
		return items, err
	}

	uc.display("Removed from cart", "info")
	uc.broadcast(items)
	return items, nil
}

// UpdateCartItemQuantity sets the quantity for one line; qty <= 0 removes it
// (a non-positive quantity is never persisted).
func (uc *CartUsecase) UpdateCartItemQuantity(ctx context.Context, key string, qty int) ([]cartdom.Item, error) {
	if uc == nil || uc.store == nil {
		return []cartdom.Item{}, ErrCartInvalidArgument
	}
	if strings.TrimSpace(key) == "" {
		return []cartdom.Item{}, ErrCartInvalidArgument
	}

	items, err := uc.store.SetQty(ctx, key, qty)
	if err != nil {
		uc.reportFailure(err)
		return items, err
	}

	uc.display("Cart updated", "success")
	uc.broadcast(items)
	return items, nil
}

// ClearCart empties the cart. Idempotent; clearing twice is safe.
func (uc *CartUsecase) ClearCart(ctx context.Context) error {
	if uc == nil || uc.store == nil {
		return ErrCartInvalidArgument
	}

	if err := uc.store.Clear(ctx); err != nil {
		uc.reportFailure(err)
		return err
	}

	uc.display("Cart cleared", "info")
	uc.broadcast([]cartdom.Item{})
	return nil
}

// CalculateCartTotal is the exact sum of price * quantity over all entries.
// An empty (or unreadable) cart totals to 0.
func (uc *CartUsecase) CalculateCartTotal(ctx context.Context) float64 {
	return cartdom.TotalOf(uc.GetCart(ctx))
}

// ----------------------------
// outcome reporting
// ----------------------------

func (uc *CartUsecase) display(message, severity string) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Display(message, severity)
}

// reportFailure maps the error taxonomy to buyer-facing notifications:
// - unauthorized  → sign-in prompt (credential already evicted by the adapter)
// - remote error  → server message verbatim
// - network       → generic retry-later text, operation abandoned
// - anything else → logged, generic text
func (uc *CartUsecase) reportFailure(err error) {
	var re *cartdom.RemoteError

	switch {
	case errors.Is(err, cartdom.ErrUnauthorized):
		uc.display("Please sign in to keep using your cart", "error")
	case errors.As(err, &re):
		uc.display(re.Message, "error")
	case errors.Is(err, cartdom.ErrNetwork):
		uc.display("Could not reach the shop. Please try again.", "error")
	case errors.Is(err, cartdom.ErrInvalidItem):
		uc.display("That item could not be added", "error")
	default:
		log.Printf("[cart_usecase] operation failed: %v", err)
		uc.display("Something went wrong with your cart", "error")
	}
}
