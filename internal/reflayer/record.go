// Package reflayer tracks reference-image layers inside a document: one
// record per pinned image, the decision between cheaply repositioning the
// placed layer and rebuilding it from source, and the per-document record
// collection persisted in the document's annotation store.
package reflayer

import (
	"fmt"

	"github.com/evnlme/RefLayer/internal/document"
	"github.com/evnlme/RefLayer/internal/transform"
	"github.com/evnlme/RefLayer/pkg/geometry"
)

// placementKey identifies the last successfully applied placement. When
// the key for the current inputs matches, the placed pixels are already
// correct and only the layer position may need to change.
type placementKey struct {
	path  string
	scale float64
}

// Record is the state of one reference image in a document. The bound
// layer is referenced by name and resolved through the document on every
// use; the layer may have been deleted or moved externally at any time.
type Record struct {
	LayerName    string
	Path         string
	Alignment    transform.Alignment
	Margins      transform.Margins
	Scale        float64 // user-requested multiplier
	ScaleToFit   bool
	CurrentScale float64 // effective scale applied by the last rebuild

	applied    placementKey
	prevBounds geometry.Rect // native bounds of the last decoded source
}

// NewRecord creates a record with the defaults for a freshly pinned
// image: centered, 100% scale, shrink to fit.
func NewRecord(layerName, path string) *Record {
	return &Record{
		LayerName:    layerName,
		Path:         path,
		Alignment:    transform.Center,
		Scale:        1.0,
		ScaleToFit:   true,
		CurrentScale: 1.0,
	}
}

// Node resolves the bound layer in the given document, nil when it no
// longer exists.
func (r *Record) Node(doc *document.Document) *document.Node {
	return doc.NodeByName(r.LayerName)
}

// container returns the placement target for the current margins.
func (r *Record) container(doc *document.Document) geometry.Rect {
	return transform.Container(doc.Bounds().ToFloat(), r.Margins)
}

// Update re-places the record's layer after any of its inputs changed.
//
// When the source path and the freshly computed scale both match the
// last applied placement, the layer is only moved; its pixels are left
// alone so repeated margin and alignment edits never resample. Any other
// change re-decodes the source, builds a fresh layer, scales and moves
// it, and splices it into the old layer's tree position.
//
// A missing or detached layer makes Update a no-op (reconciliation
// prunes such records). A placement with non-positive scale is computed
// but not applied. Only an unreadable source image returns an error, so
// the caller can keep the previous path.
func (r *Record) Update(doc *document.Document) error {
	node := r.Node(doc)
	if node == nil || node.Parent() == nil {
		return nil
	}

	container := r.container(doc)
	if r.applied.path == r.Path && r.applied.path != "" {
		p := transform.Compute(container, r.prevBounds, r.Alignment, r.Scale, r.ScaleToFit)
		if p.Scale == r.applied.scale {
			if p.Scale > 0 {
				off := p.Offset()
				node.MoveTo(int(off.X), int(off.Y))
			}
			return nil
		}
	}

	img, err := document.LoadImage(r.Path)
	if err != nil {
		return fmt.Errorf("reference %q: %w", r.LayerName, err)
	}

	fresh := doc.CreateNode(r.LayerName)
	fresh.SetRaster(img)
	bounds := fresh.Bounds().ToFloat()

	p := transform.Compute(container, bounds, r.Alignment, r.Scale, r.ScaleToFit)
	if p.Scale <= 0 {
		// Degenerate container. Leave the existing placement untouched;
		// the next margin or canvas change recomputes from scratch.
		return nil
	}

	fresh.SetVisible(false)
	node.Parent().AddChildAbove(fresh, node)
	fresh.ScaleNode(geometry.NewPoint2D(p.X0, p.Y0), int(p.Width), int(p.Height))
	off := p.Offset()
	fresh.MoveTo(int(off.X), int(off.Y))
	fresh.SetVisible(node.Visible())
	node.Remove()

	r.CurrentScale = p.Scale
	r.applied = placementKey{path: r.Path, scale: p.Scale}
	r.prevBounds = bounds
	return nil
}
