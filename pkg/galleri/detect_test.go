package galleri

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bump moves the mtime of dir forward so tests don't depend on timestamp granularity.
func bump(t *testing.T, dir string, by time.Duration) {
	t.Helper()
	st, err := os.Stat(dir)
	require.NoError(t, err)
	mt := st.ModTime().Add(by)
	require.NoError(t, os.Chtimes(dir, mt, mt))
}

func TestDirModTime(t *testing.T) {
	dir := t.TempDir()
	mt, ok := DirModTime(dir)
	assert.True(t, ok)
	assert.False(t, mt.IsZero())

	_, ok = DirModTime(filepath.Join(dir, "missing"))
	assert.False(t, ok)

	_, ok = DirModTime("")
	assert.False(t, ok)
}

func TestDetectorCheck(t *testing.T) {
	dir := t.TempDir()
	d := NewDetector()
	d.Reset(dir)

	assert.False(t, d.Check(dir))
	assert.False(t, d.Check(dir))

	writePNG(t, dir, "new.png", 1, 1)
	bump(t, dir, time.Second)

	assert.True(t, d.Check(dir))
	assert.False(t, d.Check(dir), "a positive check advances the seen time")

	require.NoError(t, os.Remove(filepath.Join(dir, "new.png")))
	bump(t, dir, 2*time.Second)
	assert.True(t, d.Check(dir))
	assert.False(t, d.Check(dir))
}

func TestDetectorFreshSeesExistingDir(t *testing.T) {
	dir := t.TempDir()
	d := NewDetector()
	assert.True(t, d.Check(dir), "nothing has been seen yet")
	assert.False(t, d.Check(dir))
}

func TestDetectorUnconfigured(t *testing.T) {
	d := NewDetector()
	assert.False(t, d.Check(""))
	assert.True(t, d.Reset("").IsZero())
	assert.Equal(t, float64(0), Seconds(d.ModTime("")))
}

func TestDetectorUpdatedSince(t *testing.T) {
	dir := t.TempDir()
	d := NewDetector()
	seen := d.Reset(dir)

	updated, cur := d.UpdatedSince(dir, seen)
	assert.False(t, updated)
	assert.Equal(t, seen, cur)

	bump(t, dir, time.Second)
	updated, cur = d.UpdatedSince(dir, seen)
	assert.True(t, updated)
	assert.True(t, cur.After(seen))

	// UpdatedSince does not advance the detector.
	assert.True(t, d.Check(dir))
}

func TestDetectorTouch(t *testing.T) {
	dir := t.TempDir()
	d := NewDetector()
	d.Reset(dir)

	// An in-place rewrite does not move the directory mtime.
	d.Touch(time.Now().Add(time.Hour))
	assert.True(t, d.Check(dir))
	assert.False(t, d.Check(dir))

	d.Touch(time.Now().Add(-time.Hour))
	assert.False(t, d.Check(dir), "older touches are ignored")

	d.Forget()
	assert.False(t, d.Check(dir))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, float64(0), Seconds(time.Time{}))
	assert.InDelta(t, 1700000000.5, Seconds(time.Unix(1700000000, 500000000)), 1e-6)
}
