package snapshot

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the snapshot artifact into a Store when the
// file changes on disk, debouncing rapid event bursts. The
// producer writes via rename, so watching the parent directory
// catches replacements that a direct file watch would miss.
type Watcher struct {
	path     string
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	pending bool
}

// NewWatcher creates a watcher for the snapshot at path that
// publishes successful reloads into store.
func NewWatcher(
	path string, store *Store, debounce time.Duration,
) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     path,
		store:    store,
		watcher:  fsw,
		debounce: debounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins processing file events in a goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop stops the watcher and waits for the loop to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		w.watcher.Close()
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("snapshot watcher error: %v", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

// flush reloads the artifact if a change is pending. A reload
// failure keeps the previous snapshot active.
func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = false
	w.mu.Unlock()
	if !pending {
		return
	}

	snap, err := Load(w.path)
	if err != nil {
		log.Printf("reloading snapshot: %v", err)
		return
	}
	w.store.Swap(snap)
	log.Printf("snapshot reloaded: %s to %s (%d days, %d users)",
		snap.DateRange.Start, snap.DateRange.End,
		len(snap.Daily), len(snap.Users))
}
