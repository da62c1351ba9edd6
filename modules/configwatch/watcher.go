package configwatch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/provenhq/platform"
)

const eventSource = "platform.configwatch"

// debounceWindow collapses the bursts of writes editors and atomic-save
// tools produce for a single logical change.
const debounceWindow = 100 * time.Millisecond

// ChangeData is the payload of a config.changed event.
type ChangeData struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// Watcher turns filesystem writes to registered config files into platform
// events. It watches parent directories rather than the files themselves,
// since editors typically replace files on save and a direct file watch
// dies with the old inode.
type Watcher struct {
	logger  platform.Logger
	subject platform.Subject
	fsw     *fsnotify.Watcher

	mu       sync.Mutex
	files    map[string]struct{}
	dirs     map[string]struct{}
	lastSeen map[string]time.Time
	started  bool
	done     chan struct{}
}

// NewWatcher creates a watcher emitting through subject.
func NewWatcher(logger platform.Logger, subject platform.Subject) (*Watcher, error) {
	if logger == nil {
		logger = platform.NopLogger()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	return &Watcher{
		logger:   logger,
		subject:  subject,
		fsw:      fsw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		lastSeen: make(map[string]time.Time),
		done:     make(chan struct{}),
	}, nil
}

// Watch registers a config file. Events are emitted only for registered
// files even though the whole parent directory is watched.
func (w *Watcher) Watch(path string) error {
	clean := filepath.Clean(path)
	dir := filepath.Dir(clean)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, watched := w.dirs[dir]; !watched {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %q: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[clean] = struct{}{}
	w.logger.Info("Watching config file", "path", clean)
	return nil
}

// Start launches the event loop. Starting twice is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.loop()
}

// Close stops the event loop and releases the underlying watcher. It is
// safe to call regardless of Start.
func (w *Watcher) Close() error {
	err := w.fsw.Close()

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	clean := filepath.Clean(event.Name)
	now := time.Now()

	w.mu.Lock()
	if _, tracked := w.files[clean]; !tracked {
		w.mu.Unlock()
		return
	}
	if last, seen := w.lastSeen[clean]; seen && now.Sub(last) < debounceWindow {
		w.mu.Unlock()
		return
	}
	w.lastSeen[clean] = now
	w.mu.Unlock()

	w.logger.Info("Config file changed", "path", clean, "op", event.Op.String())
	if w.subject == nil {
		return
	}
	changed := platform.NewEvent(platform.EventTypeConfigChanged, eventSource, ChangeData{
		Path: clean,
		Op:   event.Op.String(),
	})
	if err := w.subject.NotifyObservers(context.Background(), changed); err != nil {
		w.logger.Warn("Config change notification failed", "path", clean, "error", err)
	}
}
