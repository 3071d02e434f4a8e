// Package reload watches a podboard workspace and reports which
// collection changed on disk.
package reload

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a collection must stay quiet before its
// reload fires.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc is called with the name of a collection whose files changed.
type ReloadFunc func(collection string) error

// LogFunc is called to log messages.
type LogFunc func(format string, args ...interface{})

// Watcher monitors collection directories and triggers debounced reloads.
type Watcher struct {
	baseDir  string
	reloadFn ReloadFunc
	logFn    LogFunc
	debounce time.Duration
	only     string

	fs        *fsnotify.Watcher
	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once

	inflight sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
	started bool
	closed  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// Only restricts reloads to one collection.
func Only(collection string) Option {
	return func(w *Watcher) { w.only = collection }
}

// NewWatcher creates a watcher over baseDir, the .podboard directory.
// logFn may be nil.
func NewWatcher(baseDir string, reloadFn ReloadFunc, logFn LogFunc, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logFn == nil {
		logFn = func(string, ...interface{}) {}
	}

	w := &Watcher{
		baseDir:  filepath.Clean(baseDir),
		reloadFn: reloadFn,
		logFn:    logFn,
		debounce: DefaultDebounce,
		fs:       fsWatcher,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds the watches and begins processing events.
func (w *Watcher) Start() error {
	if err := w.fs.Add(w.baseDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.watchDir(filepath.Join(w.baseDir, entry.Name()))
		}
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.processEvents()
	return nil
}

// Close stops the watcher, cancels pending reloads and waits for any
// reload already running. It must not be called from a ReloadFunc.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.stopChan)
		w.fs.Close()

		w.mu.Lock()
		w.closed = true
		started := w.started
		for _, timer := range w.pending {
			timer.Stop()
		}
		w.pending = nil
		w.mu.Unlock()

		if started {
			<-w.doneChan
		}
		w.inflight.Wait()
	})
}

func (w *Watcher) watchDir(dir string) {
	if err := w.fs.Add(dir); err != nil {
		w.logFn("Warning: could not watch %s: %v", dir, err)
		return
	}
	w.logFn("Watching %s", dir)
}

func (w *Watcher) processEvents() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logFn("Watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A collection created after Start.
	if event.Has(fsnotify.Create) && filepath.Dir(path) == w.baseDir {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.watchDir(path)
			return
		}
	}

	// Atomic writes land as a Create of the renamed temp file.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !isCollectionFile(filepath.Base(path)) {
		return
	}

	name := w.collectionOf(path)
	if name == "" || (w.only != "" && name != w.only) {
		return
	}

	w.logFn("Change detected: %s", path)
	w.schedule(name)
}

func isCollectionFile(filename string) bool {
	return filename == "records.jsonl" || filename == "config.json"
}

// collectionOf returns the collection a path belongs to, or "" when the
// path is not directly inside a collection directory.
func (w *Watcher) collectionOf(path string) string {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || parts[0] == ".." || strings.HasPrefix(parts[0], ".") {
		return ""
	}
	return parts[0]
}

func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if timer, ok := w.pending[name]; ok {
		timer.Stop()
	}
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.fire(name)
	})
}

func (w *Watcher) fire(name string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, name)
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	if err := w.reloadFn(name); err != nil {
		w.logFn("Error reloading %s: %v", name, err)
	}
}
