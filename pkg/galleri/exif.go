package galleri

import (
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// ExifMeasurer measures with the Go decoders first and falls back to exiftool.
type ExifMeasurer struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExifMeasurer starts an exiftool process. Close it when done.
func NewExifMeasurer() (*ExifMeasurer, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &ExifMeasurer{et: et}, nil
}

// Dimensions implements Measurer.
func (m *ExifMeasurer) Dimensions(path string) Dimensions {
	if c, err := decodeConfig(path); err == nil {
		return Dimensions{Width: c.Width, Height: c.Height, Known: true}
	}

	// exiftool talks over a single stdin/stdout pair.
	m.mu.Lock()
	fis := m.et.ExtractMetadata(path)
	m.mu.Unlock()

	if len(fis) == 0 {
		return Dimensions{}
	}
	fi := fis[0]
	if fi.Err != nil {
		klog.Warningf("exiftool failed for %s: %v", path, fi.Err)
		return Dimensions{}
	}

	w, err := fi.GetInt("ImageWidth")
	if err != nil {
		klog.V(1).Infof("unable to get width for %s: %v", path, err)
		return Dimensions{}
	}
	h, err := fi.GetInt("ImageHeight")
	if err != nil {
		klog.V(1).Infof("unable to get height for %s: %v", path, err)
		return Dimensions{}
	}
	return Dimensions{Width: int(w), Height: int(h), Known: true}
}

// Close stops the exiftool process.
func (m *ExifMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.et.Close()
}
