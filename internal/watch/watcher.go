// Package watch invalidates cached entry files when something outside
// the service (an editor, a sync client) touches the data directory.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/store/markdown"
)

const debounceWindow = 50 * time.Millisecond

// Watcher follows the data directory and drops the markdown store
// cache for any entry file that changes on disk. Edits made through
// the API invalidate the cache themselves; this covers everyone else.
type Watcher struct {
	manager *markdown.Manager
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New builds a watcher over the manager's root.
func New(manager *markdown.Manager, log zerolog.Logger) *Watcher {
	return &Watcher{
		manager: manager,
		log:     log,
		pending: make(map[string]*time.Timer),
	}
}

// Run watches until the context is cancelled. Project directories
// created while running are picked up as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := w.manager.Root()
	if err := fw.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			_ = fw.Add(filepath.Join(root, e.Name()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event)
		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(werr).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = fw.Add(event.Name)
			return
		}
	}
	if filepath.Base(event.Name) != markdown.EntryFileName {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	w.debounce(event.Name)
}

// debounce coalesces the burst of events an atomic rename produces
// into one invalidation.
func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(debounceWindow)
		return
	}
	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.manager.Invalidate(path)
		w.log.Debug().Str("path", path).Msg("entry file changed on disk, cache invalidated")
	})
}
