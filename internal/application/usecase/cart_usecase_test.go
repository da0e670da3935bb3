// internal/application/usecase/cart_usecase_test.go
package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "aromelle/internal/domain/cart"
)

// memStore is an in-memory cart.Store for facade tests.
type memStore struct {
	cart    *cartdom.Cart
	loadErr error
	failAll error
}

func newMemStore() *memStore {
	return &memStore{cart: cartdom.NewCart(nil, time.Now())}
}

func (m *memStore) Load(ctx context.Context) ([]cartdom.Item, error) {
	if m.loadErr != nil {
		return []cartdom.Item{}, m.loadErr
	}
	return m.cart.Items, nil
}

func (m *memStore) Upsert(ctx context.Context, in cartdom.ItemInput) ([]cartdom.Item, error) {
	if m.failAll != nil {
		return []cartdom.Item{}, m.failAll
	}
	if err := m.cart.Add(in.Item(), in.Quantity, time.Now()); err != nil {
		return m.cart.Items, err
	}
	return m.cart.Items, nil
}

func (m *memStore) SetQty(ctx context.Context, key string, qty int) ([]cartdom.Item, error) {
	if m.failAll != nil {
		return []cartdom.Item{}, m.failAll
	}
	if err := m.cart.SetQty(key, qty, time.Now()); err != nil {
		return m.cart.Items, err
	}
	return m.cart.Items, nil
}

func (m *memStore) Remove(ctx context.Context, key string) ([]cartdom.Item, error) {
	return m.SetQty(ctx, key, 0)
}

func (m *memStore) Clear(ctx context.Context) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.cart.Clear(time.Now())
	return nil
}

type fakeNotifier struct {
	messages   []string
	severities []string
}

func (f *fakeNotifier) Display(message, severity string) {
	f.messages = append(f.messages, message)
	f.severities = append(f.severities, severity)
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	uc := NewCartUsecase(newMemStore())

	items, err := uc.AddToCart(context.Background(), cartdom.ItemInput{ProductID: "1", Price: 500})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddToCartRejectsInvalidArguments(t *testing.T) {
	uc := NewCartUsecase(newMemStore())
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "", Price: 500})
	assert.ErrorIs(t, err, ErrCartInvalidArgument)

	_, err = uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "1", Price: -1})
	assert.ErrorIs(t, err, ErrCartInvalidArgument)

	_, err = uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "1", Price: 500, Quantity: -2})
	assert.ErrorIs(t, err, ErrCartInvalidArgument)
}

func TestRepeatedAddsMergeIntoOneLine(t *testing.T) {
	uc := NewCartUsecase(newMemStore())
	ctx := context.Background()

	in := cartdom.ItemInput{ProductID: "1", Price: 500, Size: "L", Scent: "Rose", Quantity: 2}
	_, err := uc.AddToCart(ctx, in)
	require.NoError(t, err)

	in.Quantity = 1
	items, err := uc.AddToCart(ctx, in)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.InDelta(t, 1500.0, uc.CalculateCartTotal(ctx), 1e-9)
}

func TestMutationsBroadcastCartChanged(t *testing.T) {
	uc := NewCartUsecase(newMemStore())
	ctx := context.Background()

	var events [][]cartdom.Item
	uc.Subscribe(func(items []cartdom.Item) {
		events = append(events, items)
	})

	_, err := uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "1", Price: 500, Quantity: 2})
	require.NoError(t, err)
	_, err = uc.UpdateCartItemQuantity(ctx, cartdom.MakeKey("1", "", ""), 5)
	require.NoError(t, err)
	require.NoError(t, uc.ClearCart(ctx))

	require.Len(t, events, 3)
	assert.Equal(t, 2, events[0][0].Quantity)
	assert.Equal(t, 5, events[1][0].Quantity)
	assert.Empty(t, events[2])
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	uc := NewCartUsecase(newMemStore())
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "1", Price: 500, Quantity: 2})
	require.NoError(t, err)

	items, err := uc.UpdateCartItemQuantity(ctx, cartdom.MakeKey("1", "", ""), 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	uc := NewCartUsecase(newMemStore())
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "1", Price: 500})
	require.NoError(t, err)

	items, err := uc.RemoveFromCart(ctx, cartdom.MakeKey("ghost", "", ""))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGetCartDegradesToEmptyOnFailure(t *testing.T) {
	store := newMemStore()
	store.loadErr = cartdom.ErrNetwork

	notifier := &fakeNotifier{}
	uc := NewCartUsecaseWithNotifier(store, notifier)

	items := uc.GetCart(context.Background())
	assert.Empty(t, items)
	assert.Zero(t, uc.CalculateCartTotal(context.Background()))

	require.NotEmpty(t, notifier.messages)
	assert.Equal(t, "error", notifier.severities[0])
}

func TestUnauthorizedFailurePromptsSignIn(t *testing.T) {
	store := newMemStore()
	store.failAll = cartdom.ErrUnauthorized

	notifier := &fakeNotifier{}
	uc := NewCartUsecaseWithNotifier(store, notifier)

	_, err := uc.AddToCart(context.Background(), cartdom.ItemInput{ProductID: "1", Price: 500})
	assert.ErrorIs(t, err, cartdom.ErrUnauthorized)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "sign in")
}

func TestRemoteErrorMessageSurfacedVerbatim(t *testing.T) {
	store := newMemStore()
	store.failAll = &cartdom.RemoteError{Status: 422, Message: "out of stock: Rose Candle (L)"}

	notifier := &fakeNotifier{}
	uc := NewCartUsecaseWithNotifier(store, notifier)

	_, err := uc.AddToCart(context.Background(), cartdom.ItemInput{ProductID: "1", Price: 500})
	require.Error(t, err)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "out of stock: Rose Candle (L)", notifier.messages[0])
}

func TestSuccessNotificationsAreEmitted(t *testing.T) {
	notifier := &fakeNotifier{}
	uc := NewCartUsecaseWithNotifier(newMemStore(), notifier)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "1", Name: "Rose Candle", Price: 500})
	require.NoError(t, err)
	require.NoError(t, uc.ClearCart(ctx))

	require.Len(t, notifier.messages, 2)
	assert.Equal(t, "Rose Candle added to cart", notifier.messages[0])
	assert.Equal(t, "success", notifier.severities[0])
	assert.Equal(t, "Cart cleared", notifier.messages[1])
}

func TestClearCartIsIdempotent(t *testing.T) {
	uc := NewCartUsecase(newMemStore())
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, cartdom.ItemInput{ProductID: "1", Price: 500})
	require.NoError(t, err)

	require.NoError(t, uc.ClearCart(ctx))
	require.NoError(t, uc.ClearCart(ctx))
	assert.Empty(t, uc.GetCart(ctx))
}
