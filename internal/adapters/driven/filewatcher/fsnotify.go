// Package filewatcher re-triggers checks when a watched file changes.
package filewatcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// Verify interface compliance.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a file through its parent directory so that editors
// which save by rename are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{watcher: w, debounce: debounce}, nil
}

// Watch starts monitoring path.
func (w *Watcher) Watch(ctx context.Context, path string) (<-chan string, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := w.watcher.Add(filepath.Dir(target)); err != nil {
		return nil, err
	}

	changes := make(chan string, 1)

	go func() {
		defer close(changes)

		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case changes <- target:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher: %v", err)
			}
		}
	}()

	return changes, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
