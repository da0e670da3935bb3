// internal/adapters/out/localstore/cart_store_file.go
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cartdom "aromelle/internal/domain/cart"
)

var (
	// ErrCorrupt marks a cart file that could not be decoded.
	// Load() recovers from it silently (empty cart); it is surfaced only in logs.
	ErrCorrupt = errors.New("localstore: cart file corrupt")
)

// FileStore implements cart.Store against one JSON file.
//
// Layout: a single JSON-encoded array of items (no schema version field yet;
// known blocker for future migrations, kept for compatibility with the slot
// the web build writes).
//
// Policies:
//   - absent or corrupt file → empty cart, logged, never fatal
//   - writes are atomic (temp file + rename) so a crashed write cannot corrupt
//     the previous cart
type FileStore struct {
	path  string
	clock cartdom.Clock

	mu sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  strings.TrimSpace(path),
		clock: cartdom.SystemClock{},
	}
}

// NewFileStoreWithClock is useful for tests.
func NewFileStoreWithClock(path string, clock cartdom.Clock) *FileStore {
	if clock == nil {
		clock = cartdom.SystemClock{}
	}
	return &FileStore{path: strings.TrimSpace(path), clock: clock}
}

// Path returns the backing file path (used by Watcher).
func (s *FileStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Load reads the persisted item list.
// Absent file or corrupt JSON yields an empty list and a nil error — the cart
// page must render either way.
func (s *FileStore) Load(ctx context.Context) ([]cartdom.Item, error) {
	if s == nil || s.path == "" {
		return []cartdom.Item{}, errors.New("localstore: store is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(), nil
}

func (s *FileStore) loadLocked() []cartdom.Item {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[localstore] read %s failed: %v (treating as empty)", s.path, err)
		}
		return []cartdom.Item{}
	}

	var items []cartdom.Item
	if err := json.Unmarshal(b, &items); err != nil {
		// corrupt slot: recover as empty, do not propagate (%w keeps ErrCorrupt matchable in logs)
		log.Printf("[localstore] %v (path=%s): %v", ErrCorrupt, s.path, err)
		return []cartdom.Item{}
	}

	// re-apply invariants on the way in; old writers may have stored duplicates
	return cartdom.NewCart(items, s.clock.Now()).Items
}

func (s *FileStore) saveLocked(items []cartdom.Item) error {
	if items == nil {
		items = []cartdom.Item{}
	}

	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore: encode cart: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("localstore: mkdir %s: %w", dir, err)
	}

	// temp file + rename keeps the previous cart intact if the write dies
	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return fmt.Errorf("localstore: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localstore: write cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: close cart: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: replace cart: %w", err)
	}
	return nil
}

// Upsert performs the add-or-increment merge, then persists.
func (s *FileStore) Upsert(ctx context.Context, in cartdom.ItemInput) ([]cartdom.Item, error) {
	if s == nil || s.path == "" {
		return []cartdom.Item{}, errors.New("localstore: store is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	c := cartdom.NewCart(s.loadLocked(), now)
	if err := c.Add(in.Item(), in.Quantity, now); err != nil {
		return c.Items, err
	}
	if err := s.saveLocked(c.Items); err != nil {
		return c.Items, err
	}
	return c.Items, nil
}

// SetQty sets quantity for an identity key (qty <= 0 removes), then persists.
func (s *FileStore) SetQty(ctx context.Context, key string, qty int) ([]cartdom.Item, error) {
	if s == nil || s.path == "" {
		return []cartdom.Item{}, errors.New("localstore: store is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	c := cartdom.NewCart(s.loadLocked(), now)
	if err := c.SetQty(key, qty, now); err != nil {
		return c.Items, err
	}
	if err := s.saveLocked(c.Items); err != nil {
		return c.Items, err
	}
	return c.Items, nil
}

// Remove removes an identity key, then persists. Absent key is a no-op.
func (s *FileStore) Remove(ctx context.Context, key string) ([]cartdom.Item, error) {
	return s.SetQty(ctx, key, 0)
}

// Clear truncates the slot to an empty list. Idempotent.
func (s *FileStore) Clear(ctx context.Context) error {
	if s == nil || s.path == "" {
		return errors.New("localstore: store is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked([]cartdom.Item{})
}
