package galleri

import (
	"path/filepath"
)

// ShortLength is the name length above which display names are shortened.
const ShortLength = 20

// Gallery is the merged view of a directory scan and its annotations.
type Gallery struct {
	Images  []ImageView
	AllTags []string
	Scan    ScanStatus
}

// Build merges the images found in dir with their annotations. Images without
// an annotation get empty info, source, and tags.
func Build(dir string, annotations map[string]Annotation, m Measurer) Gallery {
	if m == nil {
		m = DecodeMeasurer{}
	}

	s := ListImages(dir)
	g := Gallery{Images: []ImageView{}, Scan: s.Status}

	lists := [][]string{}
	for _, name := range s.Names {
		a := annotations[name]
		tags := []string(a.Tags)
		if tags == nil {
			tags = []string{}
		}
		lists = append(lists, tags)

		g.Images = append(g.Images, ImageView{
			Original:   name,
			Shortened:  Shorten(name, ShortLength),
			Info:       a.Info,
			Source:     a.Source,
			Tags:       tags,
			Dimensions: m.Dimensions(filepath.Join(dir, name)).String(),
		})
	}

	g.AllTags = TagSet(lists...)
	return g
}
