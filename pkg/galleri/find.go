package galleri

import (
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Extensions are the supported image extensions, lower-case and without a dot.
var Extensions = []string{"png", "jpg", "jpeg", "gif", "bmp"}

// ScanStatus says how a directory scan went.
type ScanStatus int

const (
	// ScanOK means at least one image was found.
	ScanOK ScanStatus = iota
	// ScanEmpty means the directory was readable but held no images.
	ScanEmpty
	// ScanUnconfigured means no directory was given.
	ScanUnconfigured
	// ScanInaccessible means the directory is missing or unreadable.
	ScanInaccessible
)

func (s ScanStatus) String() string {
	switch s {
	case ScanOK:
		return "ok"
	case ScanEmpty:
		return "empty"
	case ScanUnconfigured:
		return "unconfigured"
	case ScanInaccessible:
		return "inaccessible"
	}
	return "unknown"
}

// Scan is the result of listing a directory. Names are in directory enumeration
// order, which is platform dependent.
type Scan struct {
	Names  []string
	Status ScanStatus
	Err    error
}

// IsImage reports whether name has a supported image extension (case-insensitive).
func IsImage(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

// ListImages lists the image files directly inside dir. Failures degrade to an
// empty list with ScanInaccessible.
func ListImages(dir string) Scan {
	s := Scan{Names: []string{}}
	if dir == "" {
		s.Status = ScanUnconfigured
		return s
	}

	des, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		klog.Warningf("unable to read %s: %v", dir, err)
		s.Status = ScanInaccessible
		s.Err = err
		return s
	}

	for _, de := range des {
		if de.IsDir() || !IsImage(de.Name()) {
			continue
		}
		s.Names = append(s.Names, de.Name())
	}

	s.Status = ScanOK
	if len(s.Names) == 0 {
		s.Status = ScanEmpty
	}
	klog.V(1).Infof("found %d images in %s", len(s.Names), dir)
	return s
}

// splitExt splits a name like Python's os.path.splitext: leading dots are not
// treated as an extension separator.
func splitExt(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}

// Shorten truncates the name portion of filename to max-3 characters plus "..."
// when it is longer than max. The extension is kept as-is.
func Shorten(filename string, max int) string {
	name, ext := splitExt(filename)
	rs := []rune(name)
	if len(rs) <= max {
		return filename
	}
	keep := max - 3
	if keep < 0 {
		keep = 0
	}
	return string(rs[:keep]) + "..." + ext
}
