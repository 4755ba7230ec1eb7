package resource

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// HotReloadMode selects how the watcher finds changed program sources.
type HotReloadMode int

const (
	// HotReloadModePoll stats every program source on each Poll.
	HotReloadModePoll HotReloadMode = iota

	// HotReloadModeNotify subscribes to file system events and only stats sources that changed.
	HotReloadModeNotify

	// HotReloadModeOff disables hot reloading.
	HotReloadModeOff
)

// ParseHotReloadMode maps a configuration string to a HotReloadMode.
//
// Parameters:
//   - name: "poll", "notify" or "off"; empty means poll
//
// Returns:
//   - HotReloadMode: the mode
//   - error: error if the name is not recognized
func ParseHotReloadMode(name string) (HotReloadMode, error) {
	switch name {
	case "", "poll":
		return HotReloadModePoll, nil
	case "notify":
		return HotReloadModeNotify, nil
	case "off":
		return HotReloadModeOff, nil
	default:
		return HotReloadModePoll, fmt.Errorf("unknown hot reload mode %q", name)
	}
}

// watcher is the implementation of the Watcher interface.
type watcher struct {
	registry Registry
	mode     HotReloadMode

	notify  *fsnotify.Watcher
	watched map[string]bool
	dirty   map[string]bool
}

// Watcher reloads programs whose source file changed since they were compiled.
// It is driven from the frame loop; Poll never blocks.
type Watcher interface {
	// Poll reloads every program whose source modification time is newer than its LastWrite.
	//
	// Returns:
	//   - []ProgramID: the programs reloaded by this call
	Poll() []ProgramID

	// Mode returns the active hot reload mode.
	Mode() HotReloadMode

	// Close stops file system notifications.
	//
	// Returns:
	//   - error: error if the notifier could not be closed
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher creates a watcher over every program in the registry, including programs loaded later.
// Notify mode falls back to polling if the platform notifier cannot be created.
//
// Parameters:
//   - registry: the registry whose programs are watched
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the watcher
func NewWatcher(registry Registry, options ...WatcherBuilderOption) Watcher {
	w := &watcher{
		registry: registry,
		mode:     HotReloadModePoll,
		watched:  make(map[string]bool),
		dirty:    make(map[string]bool),
	}
	for _, opt := range options {
		opt(w)
	}

	if w.mode == HotReloadModeNotify {
		n, err := fsnotify.NewWatcher()
		if err != nil {
			log.Printf("[Watcher] file notifications unavailable, polling instead: %v", err)
			w.mode = HotReloadModePoll
		} else {
			w.notify = n
		}
	}
	return w
}

func (w *watcher) Mode() HotReloadMode {
	return w.mode
}

func (w *watcher) Poll() []ProgramID {
	switch w.mode {
	case HotReloadModeOff:
		return nil
	case HotReloadModeNotify:
		w.subscribe()
		w.drain()
	}

	// several programs may share one source file, so dirty paths are cleared only after every program is checked
	var dirty map[string]bool
	if w.mode == HotReloadModeNotify {
		dirty = w.dirty
		w.dirty = make(map[string]bool)
	}

	var reloaded []ProgramID
	for i, p := range w.registry.Programs() {
		if dirty != nil && !dirty[filepath.Clean(p.Path)] {
			continue
		}

		info, err := os.Stat(p.Path)
		if err != nil {
			continue
		}
		if info.ModTime().After(p.LastWrite) {
			id := ProgramID(i)
			w.registry.Reload(id, info.ModTime())
			reloaded = append(reloaded, id)
		}
	}
	return reloaded
}

// subscribe adds the directories of programs loaded since the last Poll.
func (w *watcher) subscribe() {
	for _, p := range w.registry.Programs() {
		dir := filepath.Dir(filepath.Clean(p.Path))
		if w.watched[dir] {
			continue
		}
		w.watched[dir] = true
		if err := w.notify.Add(dir); err != nil {
			log.Printf("[Watcher] failed to watch %s: %v", dir, err)
		}
	}
}

// drain consumes pending events without blocking.
func (w *watcher) drain() {
	for {
		select {
		case event, ok := <-w.notify.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Chmod) {
				w.dirty[filepath.Clean(event.Name)] = true
			}
		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			log.Printf("[Watcher] %v", err)
		default:
			return
		}
	}
}

func (w *watcher) Close() error {
	if w.notify == nil {
		return nil
	}
	err := w.notify.Close()
	w.notify = nil
	if w.mode == HotReloadModeNotify {
		w.mode = HotReloadModeOff
	}
	return err
}
