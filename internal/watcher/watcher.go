// Package watcher monitors the configured roots and broadcasts change
// events, enriched with fresh metadata, via callbacks.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/CageChen/nativefs/internal/config"
	nfs "github.com/CageChen/nativefs/internal/fs"
	"github.com/CageChen/nativefs/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

// File system event types.
const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "update"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return "unknown"
}

// Event represents a file system change below a root. Info is nil when
// the entry no longer exists.
type Event struct {
	Type    EventType
	Path    string
	Alias   string // Alias of the root containing Path
	Rel     string // Path relative to the root, slash separated
	Backend string // FileSystem that produced Info
	Info    *nfs.FileInfo
}

// Callback is a function called when file changes occur
type Callback func(Event)

// FSFactory returns the FileSystem used to inspect a root.
type FSFactory func(root string) nfs.FileSystem

type watchedRoot struct {
	config.Root
	fs nfs.FileSystem
}

// Watcher monitors file system changes in the configured roots
type Watcher struct {
	watcher   *fsnotify.Watcher
	cfg       *config.Config
	fsFor     FSFactory
	logger    *logging.Logger
	roots     []watchedRoot
	callbacks []Callback
	mu        sync.RWMutex
	done      chan struct{}
}

// New creates a new file system watcher
func New(cfg *config.Config, fsFor FSFactory) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher: w,
		cfg:     cfg,
		fsFor:   fsFor,
		logger:  logging.GetLogger().WithPrefix("watcher"),
		done:    make(chan struct{}),
	}, nil
}

// OnChange registers a callback for file change events
func (w *Watcher) OnChange(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins watching all configured roots
func (w *Watcher) Start() error {
	for _, root := range w.cfg.Roots {
		w.AddRoot(root)
	}

	go w.eventLoop()
	return nil
}

// AddRoot starts watching a root added after Start.
func (w *Watcher) AddRoot(root config.Root) {
	w.mu.Lock()
	w.roots = append(w.roots, watchedRoot{Root: root, fs: w.fsFor(root.Path)})
	w.mu.Unlock()

	err := filepath.Walk(root.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root.Path && w.cfg.IsExcluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Cannot watch %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("Failed to walk root %s: %v", root.Path, err)
	}
}

// RemoveRoot stops dispatching events for the root at path.
func (w *Watcher) RemoveRoot(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range w.roots {
		if r.Path == path {
			w.roots = append(w.roots[:i], w.roots[i+1:]...)
			break
		}
	}
	for _, p := range w.watcher.WatchList() {
		if !within(path, p) {
			continue
		}
		// Directories of a nested root keep their watch
		covered := false
		for _, r := range w.roots {
			if within(r.Path, p) {
				covered = true
				break
			}
		}
		if !covered {
			_ = w.watcher.Remove(p)
		}
	}
}

// within reports whether p is root or below it.
func within(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error: %v", err)
		}
	}
}

// rootFor returns the innermost root containing path.
func (w *Watcher) rootFor(path string) (watchedRoot, string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var best watchedRoot
	bestRel := ""
	found := false
	for _, r := range w.roots {
		rel, err := filepath.Rel(r.Path, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if !found || len(r.Path) > len(best.Path) {
			best, bestRel, found = r, filepath.ToSlash(rel), true
		}
	}
	return best, bestRel, found
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.cfg.IsExcluded(event.Name) {
		return
	}

	root, rel, ok := w.rootFor(event.Name)
	if !ok {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventRemove
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventRename
	default:
		return
	}

	e := Event{
		Type:    eventType,
		Path:    event.Name,
		Alias:   root.Alias,
		Rel:     rel,
		Backend: root.fs.Name(),
	}
	if info, err := root.fs.Stat(rel); err == nil {
		e.Info = &info
		// A new directory needs its own watch
		if eventType == EventCreate && info.IsDir {
			_ = w.watcher.Add(event.Name)
		}
	}
	w.logger.Trace("%s %s/%s", eventType, root.Alias, rel)

	w.mu.RLock()
	callbacks := make([]Callback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(e)
	}
}
