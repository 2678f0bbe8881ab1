package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultDebounce(t *testing.T) {
	w, err := New(0)
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestWatch_EmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notice.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	w, err := New(20 * time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("子供"), 0o600))

	select {
	case got := <-changes:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notice.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	w, err := New(20 * time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("b"), 0o600))

	select {
	case got := <-changes:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notice.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	w, err := New(0)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.Watch(ctx, path)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	w, err := New(0)
	require.NoError(t, err)
	defer w.Stop()

	_, err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "x.txt"))
	assert.Error(t, err)
}
