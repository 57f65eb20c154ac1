package galleri

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"k8s.io/klog/v2"
)

// Unknown is displayed when dimensions could not be determined.
const Unknown = "Unknown"

// Dimensions are pixel dimensions. The zero value is unknown.
type Dimensions struct {
	Width  int
	Height int
	Known  bool
}

func (d Dimensions) String() string {
	if !d.Known {
		return Unknown
	}
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Measurer reads the pixel dimensions of an image file.
type Measurer interface {
	Dimensions(path string) Dimensions
}

// DecodeMeasurer reads dimensions from the image header using the registered Go decoders.
type DecodeMeasurer struct{}

// Dimensions implements Measurer.
func (DecodeMeasurer) Dimensions(path string) Dimensions {
	c, err := decodeConfig(path)
	if err != nil {
		klog.Warningf("unable to measure %s: %v", path, err)
		return Dimensions{}
	}
	return Dimensions{Width: c.Width, Height: c.Height, Known: true}
}

func decodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("unable to decode: %w", err)
	}
	return ic, nil
}
