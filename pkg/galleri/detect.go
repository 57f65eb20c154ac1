package galleri

import (
	"os"
	"sync"
	"time"

	"k8s.io/klog/v2"
)

// DirModTime returns the modification time of the directory itself. It changes
// when entries are added or removed, not when an existing file is rewritten.
func DirModTime(path string) (time.Time, bool) {
	if path == "" {
		return time.Time{}, false
	}
	st, err := os.Stat(path)
	if err != nil {
		klog.V(1).Infof("stat %s: %v", path, err)
		return time.Time{}, false
	}
	return st.ModTime(), true
}

// Seconds converts t to fractional Unix seconds, the form clients see.
func Seconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}

// Detector remembers the last directory change a client was told about.
//
// A positive Check advances the remembered time, so with several clients
// polling one of them may see a stale false for one extra interval.
type Detector struct {
	mu      sync.Mutex
	seen    time.Time
	touched time.Time
}

// NewDetector returns a detector that has seen nothing yet.
func NewDetector() *Detector {
	return &Detector{}
}

// current returns the later of the directory mtime and the last watcher event.
func (d *Detector) current(path string) time.Time {
	mt, _ := DirModTime(path)
	if d.touched.After(mt) {
		return d.touched
	}
	return mt
}

// ModTime returns the effective modification time of path.
func (d *Detector) ModTime(path string) time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current(path)
}

// Reset records the current state of path as seen and returns it.
func (d *Detector) Reset(path string) time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = d.current(path)
	return d.seen
}

// UpdatedSince reports whether path changed after since, along with its
// effective modification time. It does not touch the seen time.
func (d *Detector) UpdatedSince(path string, since time.Time) (bool, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updatedSince(path, since)
}

func (d *Detector) updatedSince(path string, since time.Time) (bool, time.Time) {
	cur := d.current(path)
	return cur.After(since), cur
}

// Check reports whether path changed since it was last seen, advancing the
// seen time when it has.
func (d *Detector) Check(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	updated, cur := d.updatedSince(path, d.seen)
	if !updated {
		return false
	}
	klog.V(1).Infof("%s changed: %s -> %s", path, d.seen, cur)
	d.seen = cur
	return true
}

// Touch records a change observed out of band, such as a file rewritten in place.
func (d *Detector) Touch(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.After(d.touched) {
		d.touched = t
	}
}

// Forget drops out-of-band changes, used when the watched directory changes.
func (d *Detector) Forget() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touched = time.Time{}
}
