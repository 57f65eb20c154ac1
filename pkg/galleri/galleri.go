// Package galleri lists the images in a watched directory and keeps
// user-authored annotations for them in a JSON sidecar document.
package galleri

// ConfigName is the file name of the config document within the settings directory.
const ConfigName = "config.json"

// Document is the persisted config document.
type Document struct {
	ImageDirectory string                `json:"image_directory"`
	ImageInfo      map[string]Annotation `json:"image_info"`
}

// Annotation is user-authored metadata for one image filename.
type Annotation struct {
	Info   string `json:"info"`
	Source string `json:"source"`
	Tags   Tags   `json:"tags"`
}

// ImageView is the display-ready form of one image.
type ImageView struct {
	Original   string   `json:"original"`
	Shortened  string   `json:"shortened"`
	Info       string   `json:"info"`
	Source     string   `json:"source"`
	Tags       []string `json:"tags"`
	Dimensions string   `json:"dimensions"`
}

// NewDocument returns an unconfigured document.
func NewDocument() *Document {
	return &Document{ImageInfo: map[string]Annotation{}}
}

// Annotation returns the annotation for filename, or an empty one.
func (d *Document) Annotation(filename string) Annotation {
	return d.ImageInfo[filename]
}
