package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period before a batch of changes is emitted
const DefaultInterval = 250 * time.Millisecond

// Filter decides which paths the watcher reports
type Filter interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher reports batches of changed source files under a set of roots
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	filter    Filter
	handles   func(path string) bool
	logger    *slog.Logger
}

// New creates a recursive watcher on every directory under roots that the
// filter does not exclude. handles reports whether a file is worth rescanning.
func New(roots []string, filter Filter, handles func(string) bool, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(DefaultInterval),
		filter:    filter,
		handles:   handles,
		logger:    logger,
	}

	for _, root := range roots {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && filter.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if watchErr := fsWatcher.Add(path); watchErr != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
			}
			return nil
		})
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}

	return w, nil
}

// Changes returns the channel of debounced, sorted path batches
func (w *Watcher) Changes() <-chan []string {
	return w.debouncer.Output()
}

// Run processes file system events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.filter.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !event.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
		return
	}
	if !w.handles(path) || w.filter.ShouldIgnore(path) {
		return
	}

	w.logger.Debug("change detected", "path", path, "op", event.Op.String())
	w.debouncer.Add(path)
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
