package galleri

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"
)

// Watcher feeds filesystem events for image files into a Detector, so that
// rewriting an image in place is noticed even though the directory mtime
// does not move.
type Watcher struct {
	w   *fsnotify.Watcher
	det *Detector

	mu  sync.Mutex
	dir string
}

// NewWatcher returns a watcher reporting to det.
func NewWatcher(det *Detector) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	return &Watcher{w: w, det: det}, nil
}

// SetDir switches the watched directory. An empty dir stops watching.
func (w *Watcher) SetDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir != "" && filepath.Clean(dir) == w.dir {
		return nil
	}
	if w.dir != "" {
		if err := w.w.Remove(w.dir); err != nil {
			klog.V(1).Infof("unwatch %s: %v", w.dir, err)
		}
	}

	w.dir = ""
	w.det.Forget()
	if dir == "" {
		return nil
	}

	dir = filepath.Clean(dir)
	if err := w.w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.dir = dir
	klog.Infof("watching %s ...", dir)
	return nil
}

func (w *Watcher) watching(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir != "" && w.dir == dir
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if !IsImage(event.Name) || !w.watching(filepath.Dir(event.Name)) {
				continue
			}
			klog.V(1).Infof("event: %s", event)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				w.det.Touch(time.Now())
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.w.Close()
}
