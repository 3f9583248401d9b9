package localstore

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchDebounce     = 150 * time.Millisecond
	watchPollInterval = 2 * time.Second
)

// Watcher fires a callback when another process rewrites the state file.
// It combines fsnotify on the state file's directory with a slow poll
// fallback for filesystems where rename events are unreliable. Rapid event
// bursts are debounced, and writes made by this process's own Store are
// suppressed via the SavedAt revision.
type Watcher struct {
	store    *Store
	onChange func()
	logger   *log.Logger

	mu       sync.Mutex
	lastSeen int64
	debounce *time.Timer

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewWatcher(store *Store, onChange func(), logger *log.Logger) *Watcher {
	return &Watcher{
		store:    store,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins watching in a background goroutine. If the fsnotify watcher
// cannot be created, the poll loop alone carries the notifications.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.lastSeen = w.store.Revision()
	w.mu.Unlock()

	go w.run()
}

// Stop shuts the watcher down and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// CheckOnce performs one synchronous change check, for tests and for forcing
// a refresh without waiting on the poll interval.
func (w *Watcher) CheckOnce() {
	w.check()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	var events chan fsnotify.Event
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		if w.logger != nil {
			w.logger.Printf("Watcher: fsnotify unavailable, polling only: %v", err)
		}
	} else {
		defer fw.Close()
		// Watch the directory: saves land via rename, which replaces the
		// inode the file path pointed at.
		if err := fw.Add(filepath.Dir(w.store.StatePath())); err != nil {
			if w.logger != nil {
				w.logger.Printf("Watcher: watch failed, polling only: %v", err)
			}
		} else {
			events = fw.Events
		}
	}

	poll := time.NewTicker(watchPollInterval)
	defer poll.Stop()

	for {
		select {
		case <-w.stopCh:
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.mu.Unlock()
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Base(ev.Name) == stateFileName {
				w.scheduleCheck()
			}
		case <-poll.C:
			w.check()
		}
	}
}

func (w *Watcher) scheduleCheck() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, w.check)
}

func (w *Watcher) check() {
	rev := w.store.Revision()

	w.mu.Lock()
	if rev == 0 || rev == w.lastSeen {
		w.mu.Unlock()
		return
	}
	w.lastSeen = rev
	w.mu.Unlock()

	if w.store.WasWrittenBySelf(rev) {
		return
	}
	if w.logger != nil {
		w.logger.Printf("Watcher: state file changed externally")
	}
	w.onChange()
}
