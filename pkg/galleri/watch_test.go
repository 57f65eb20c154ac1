package galleri

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherNoticesRewrite(t *testing.T) {
	dir := t.TempDir()
	p := writePNG(t, dir, "edit.png", 1, 1)

	d := NewDetector()
	w, err := NewWatcher(d)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, w.SetDir(dir))
	d.Reset(dir)
	assert.False(t, d.Check(dir))

	// Rewriting an existing file leaves the directory mtime alone.
	require.NoError(t, os.WriteFile(p, []byte("rewritten"), 0o644))

	assert.Eventually(t, func() bool { return d.Check(dir) }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherSetDir(t *testing.T) {
	d := NewDetector()
	w, err := NewWatcher(d)
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	require.NoError(t, w.SetDir(dir))
	require.NoError(t, w.SetDir(dir))
	require.NoError(t, w.SetDir(t.TempDir()))
	require.NoError(t, w.SetDir(""))
	assert.Error(t, w.SetDir(filepath.Join(dir, "missing")))
}
