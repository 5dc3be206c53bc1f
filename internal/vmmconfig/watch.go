package vmmconfig

import (
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher live-reloads a Config file, publishing the latest successfully
// reloaded (and deployment-compatible) Config on Updates. It mirrors the teacher
// codebase's internal/runtime/vfs.FSNotifyWatcher: a raw *fsnotify.Watcher
// wrapped in a typed channel, with a background goroutine pumping events.
type Watcher struct {
	path    string
	current Config
	w       *fsnotify.Watcher
	updates chan Config
	logger  *log.Logger
}

// NewWatcher starts watching the file at path for changes, beginning from
// the already-loaded initial configuration.
func NewWatcher(path string, initial Config, logger *log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("vmmconfig: create watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("vmmconfig: watch %s: %w", path, err)
	}

	cw := &Watcher{
		path:    path,
		current: initial,
		w:       w,
		updates: make(chan Config, 1),
		logger:  logger,
	}

	go cw.loop()

	return cw, nil
}

// Updates delivers each reloaded configuration that passed validation and
// kept the same compile-time deployment widths as the one currently in
// effect. A reload that would change OffsetWidth/VirtualAddressWidth/
// PhysicalAddressWidth is logged and dropped: those constants are fixed for
// the lifetime of a running deployment. The channel holds one update; if an
// earlier update has not been received yet, it is replaced by the newer one.
func (w *Watcher) Updates() <-chan Config {
	return w.updates
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.w.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.reload()
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}

			if w.logger != nil {
				w.logger.Printf("vmmconfig: watch error: %v", err)
			}
		}
	}
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		if w.logger != nil {
			w.logger.Printf("vmmconfig: reload %s failed: %v", w.path, err)
		}

		return
	}

	if !sameDeployment(w.current, next) {
		if w.logger != nil {
			w.logger.Printf("vmmconfig: ignoring reload of %s: deployment widths cannot change at runtime", w.path)
		}

		return
	}

	w.current = next

	select {
	case w.updates <- next:
	default:
		// Drop the stale pending update in favor of the fresher one.
		select {
		case <-w.updates:
		default:
		}

		w.updates <- next
	}
}
