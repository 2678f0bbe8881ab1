package driven

import "context"

// FileWatcher reports changes to a single file.
type FileWatcher interface {
	// Watch emits the file's path each time it is written, created or
	// replaced. The channel closes when ctx is cancelled.
	Watch(ctx context.Context, path string) (<-chan string, error)

	// Stop releases the underlying watcher.
	Stop() error
}
