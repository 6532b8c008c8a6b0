package assets

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changed files under watched directories. Paths are
// delivered on Changes after a quiet period; nothing else leaves the
// watcher goroutine, so consumers drain Changes on their own loop.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	changes  chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool

	done chan struct{}
	log  *zap.Logger
}

// NewWatcher creates a watcher. A debounce of zero uses DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		changes:  make(chan string, 64),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
		log:      logger.Named("watcher"),
	}
	go w.run()
	return w, nil
}

// Add watches a directory (non-recursive) or a single file.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if err := w.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	w.log.Debug("watching", zap.String("path", abs))
	return nil
}

// Changes delivers cleaned absolute paths of changed files.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Drain returns every pending change without blocking, deduplicated.
func (w *Watcher) Drain() []string {
	var paths []string
	seen := make(map[string]bool)
	for {
		select {
		case p := <-w.changes:
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		default:
			return paths
		}
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.schedule(filepath.Clean(event.Name))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule restarts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}

		select {
		case w.changes <- path:
		default:
			w.log.Warn("change dropped, queue full", zap.String("path", path))
		}
	})
}

// Close stops the watcher and pending timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}
