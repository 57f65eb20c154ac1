package galleri

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

var (
	// ErrNotConfigured means no settings location was designated.
	ErrNotConfigured = errors.New("settings directory is not configured")
	// ErrDirectoryNotFound means a proposed image directory does not exist.
	ErrDirectoryNotFound = errors.New("directory does not exist")
)

// Store persists the config document as JSON inside a settings directory.
//
// There is no locking around read-modify-write: concurrent saves are last-writer-wins.
type Store struct {
	dir string
}

// NewStore returns a store rooted at the settings directory dir. An empty dir
// yields a store whose operations all fail with ErrNotConfigured.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the config document, or "" if unconfigured.
func (s *Store) Path() string {
	if s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, ConfigName)
}

// Configured reports whether a settings location was designated.
func (s *Store) Configured() bool {
	return s.dir != ""
}

// Ensure creates the settings directory and a default document if either is missing.
func (s *Store) Ensure() error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	_, err := os.Stat(s.Path())
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat: %w", err)
	}

	klog.Infof("creating default config at %s", s.Path())
	return s.write(NewDocument())
}

// Load returns the current document, creating a default one if needed.
func (s *Store) Load() (*Document, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}

	bs, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	d := NewDocument()
	if err := json.Unmarshal(bs, d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path(), err)
	}
	if d.ImageInfo == nil {
		d.ImageInfo = map[string]Annotation{}
	}
	return d, nil
}

// Save overwrites the persisted document.
func (s *Store) Save(d *Document) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	if _, err := os.Stat(s.Path()); err == nil {
		if err := copy.Copy(s.Path(), s.Path()+".bak"); err != nil {
			klog.Warningf("unable to back up %s: %v", s.Path(), err)
		}
	}

	return s.write(d)
}

func (s *Store) write(d *Document) error {
	if d.ImageInfo == nil {
		d.ImageInfo = map[string]Annotation{}
	}

	bs, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	f, err := os.CreateTemp(s.dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(bs); err != nil {
		f.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(f.Name(), s.Path()); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	klog.V(1).Infof("saved %s (%d annotations)", s.Path(), len(d.ImageInfo))
	return nil
}

// SetDirectory points the document at a new image directory. The path must
// exist; otherwise ErrDirectoryNotFound is returned and nothing is written.
func (s *Store) SetDirectory(path string) (*Document, error) {
	d, err := s.Load()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, fmt.Errorf("%q: %w", path, ErrDirectoryNotFound)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%q: %w", path, ErrDirectoryNotFound)
	}

	d.ImageDirectory = path
	if err := s.Save(d); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	klog.Infof("image directory is now %s", path)
	return d, nil
}

// Upsert inserts or replaces the annotation for filename and persists the document.
func (s *Store) Upsert(filename string, a Annotation) error {
	d, err := s.Load()
	if err != nil {
		return err
	}

	if a.Tags == nil {
		a.Tags = Tags{}
	}
	d.ImageInfo[filename] = a

	if err := s.Save(d); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	klog.V(1).Infof("annotated %s: tags=%v", filename, a.Tags)
	return nil
}
