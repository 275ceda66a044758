// Package watch notices when another sundown invocation rewrites the
// schedule store.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
)

// StoreWatcher watches the directory holding the store file, since writers
// may replace the file rather than write it in place.
type StoreWatcher struct {
	path           string
	watcher        *fsnotify.Watcher
	onChange       func()
	debouncePeriod time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
	ownWriteUntil time.Time
	started       bool
	closed        bool
	done          chan struct{}
}

func New(storePath string, onChange func()) (*StoreWatcher, error) {
	abs, err := filepath.Abs(storePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve store path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	return &StoreWatcher{
		path:           abs,
		watcher:        watcher,
		onChange:       onChange,
		debouncePeriod: constants.WatchDebounce,
		done:           make(chan struct{}),
	}, nil
}

// MarkOwnWrite suppresses change events for the writes this process is
// about to make. A save can produce several events, so the mark covers a
// short window instead of a single event.
func (w *StoreWatcher) MarkOwnWrite() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ownWriteUntil = time.Now().Add(2 * w.debouncePeriod)
}

func (w *StoreWatcher) isOwnWrite() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Now().Before(w.ownWriteUntil)
}

func (w *StoreWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	go w.watchLoop()
}

func (w *StoreWatcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if w.isOwnWrite() {
				logger.Debug("Store watcher ignoring own write", "file", event.Name)
				continue
			}

			logger.Info("Store watcher detected change", "file", event.Name, "op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Store watcher error", "error", err)
		}
	}
}

func (w *StoreWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.onChange)
}

// Close stops watching and drops any pending reload
func (w *StoreWatcher) Close() error {
	w.mu.Lock()
	w.closed = true
	started := w.started
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	return err
}
