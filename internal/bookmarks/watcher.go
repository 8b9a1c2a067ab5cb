package bookmarks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/perchbrowser/perch/internal/logging"
)

// Watcher notifies on external edits to the bookmark file so open windows
// can refresh their bookmark state. It watches the parent directory because
// editors often replace the file via rename, which drops a watch on the
// file itself.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	onEdit  func([]string)
}

// NewWatcher creates a Watcher for store. onEdit receives the fresh
// bookmark list after every relevant filesystem event.
func NewWatcher(store *Store, onEdit func([]string)) (*Watcher, error) {
	if onEdit == nil {
		return nil, fmt.Errorf("bookmarks: onEdit callback cannot be nil")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("bookmarks: failed to create watcher: %w", err)
	}

	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("bookmarks: failed to create directory: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("bookmarks: failed to watch %s: %w", dir, err)
	}

	return &Watcher{store: store, watcher: fw, onEdit: onEdit}, nil
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	target := filepath.Clean(w.store.Path())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			urls, err := w.store.List()
			if err != nil {
				log.Warn().Err(err).Msg("failed to reload bookmarks after file change")
				continue
			}
			log.Debug().Int("count", len(urls)).Str("op", event.Op.String()).Msg("bookmark file changed")
			w.onEdit(urls)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("bookmark watcher error")
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
