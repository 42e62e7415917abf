// Package watcher monitors the knowledge directory for file changes so
// edited documents are re-ingested without a restart.
package watcher

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Operation classifies a file event.
type Operation int

// File operations emitted by the watcher.
const (
	Created Operation = iota
	Modified
	Removed
)

// Event is one change to a watched knowledge file.
type Event struct {
	Path string
	Op   Operation
}

// Watcher wraps fsnotify and filters events to knowledge file types.
type Watcher struct {
	fs         *fsnotify.Watcher
	extensions []string
}

// New creates a watcher for the given file extensions (defaults to
// .txt and .md).
func New(extensions []string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md"}
	}
	return &Watcher{fs: fs, extensions: extensions}, nil
}

// Watch starts monitoring dir and emits filtered events until ctx is
// cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.fs.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan Event, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if !w.watched(ev.Name) {
					continue
				}

				var op Operation
				switch {
				case ev.Op.Has(fsnotify.Create):
					op = Created
				case ev.Op.Has(fsnotify.Write):
					op = Modified
				case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
					op = Removed
				default:
					continue
				}

				select {
				case events <- Event{Path: ev.Name, Op: op}:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.fs.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) watched(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
