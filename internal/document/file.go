package document

import (
	"encoding/json"
	"fmt"
	"image"
	"os"

	"github.com/evnlme/RefLayer/pkg/geometry"
)

// File is the on-disk JSON form of a document (.refdoc). Layer pixel
// data is not embedded; reference layers are rebuilt from their source
// images via the annotation metadata after loading.
type File struct {
	Version     int                   `json:"version"`
	Name        string                `json:"name"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Layers      []LayerFile           `json:"layers"`
	Annotations map[string]annotation `json:"annotations,omitempty"`
}

// LayerFile describes one layer in a document file.
type LayerFile struct {
	Name    string            `json:"name"`
	Visible bool              `json:"visible"`
	Offset  geometry.PointInt `json:"offset"`
	Width   int               `json:"width"`
	Height  int               `json:"height"`
}

// Save writes the document to path as JSON.
func (d *Document) Save(path string) error {
	file := File{
		Version:     1,
		Name:        d.name,
		Width:       d.bounds.Width,
		Height:      d.bounds.Height,
		Annotations: d.annotations,
	}
	for _, n := range d.root.children {
		b := n.Bounds()
		file.Layers = append(file.Layers, LayerFile{
			Name:    n.name,
			Visible: n.visible,
			Offset:  geometry.PointInt{X: n.offset.X, Y: n.offset.Y},
			Width:   b.Width,
			Height:  b.Height,
		})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a document file written by Save. Layers come back with
// empty rasters of their recorded size; reference layers regain pixels
// on their next full rebuild.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid document file: %w", err)
	}
	if file.Width <= 0 || file.Height <= 0 {
		return nil, fmt.Errorf("invalid document file: canvas %dx%d", file.Width, file.Height)
	}

	d := New(file.Name, file.Width, file.Height)
	if file.Annotations != nil {
		d.annotations = file.Annotations
	}
	for _, lf := range file.Layers {
		n := d.CreateNode(lf.Name)
		n.visible = lf.Visible
		if lf.Width > 0 && lf.Height > 0 {
			n.raster = image.NewRGBA(image.Rect(0, 0, lf.Width, lf.Height))
		}
		n.offset = image.Pt(lf.Offset.X, lf.Offset.Y)
		d.root.AddChildAbove(n, nil)
	}
	return d, nil
}
