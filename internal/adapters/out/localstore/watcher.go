// internal/adapters/out/localstore/watcher.go
package localstore

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	cartdom "aromelle/internal/domain/cart"
)

// Watcher observes the cart file for writes made by another process — the
// desktop analog of the browser "storage" event firing in a second tab.
//
// Reconcile policy is last-write-wins: the watcher only re-reads and hands the
// fresh list to the callback, it never merges (see DESIGN.md, open question).
type Watcher struct {
	store    *FileStore
	fw       *fsnotify.Watcher
	onChange func([]cartdom.Item)

	// debounce: editors and atomic renames produce event bursts
	debounce time.Duration

	mu      sync.Mutex
	pending *time.Timer
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// Watch starts observing the store's file. onChange receives the re-loaded
// item list after each external write. Close() stops the watcher.
func (s *FileStore) Watch(ctx context.Context, onChange func([]cartdom.Item)) (*Watcher, error) {
	if s == nil || s.path == "" {
		return nil, errors.New("localstore: store is not configured")
	}
	if onChange == nil {
		return nil, errors.New("localstore: onChange is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// watch the directory, not the file: atomic rename replaces the inode
	dir := filepath.Dir(s.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		store:    s,
		fw:       fw,
		onChange: onChange,
		debounce: 200 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		running:  true,
	}

	go w.run(ctx)
	log.Printf("[localstore] watching %s", s.path)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	target := filepath.Clean(w.store.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("[localstore] watch error: %v", err)
		}
	}
}

// schedule coalesces a burst of events into one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		items, err := w.store.Load(context.Background())
		if err != nil {
			log.Printf("[localstore] reload after external write failed: %v", err)
			return
		}
		w.onChange(items)
	})
}

// Close stops the watcher and waits for the event loop to drain.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()

	close(w.stopCh)
	err := w.fw.Close()
	<-w.doneCh
	return err
}
