package document

import (
	"image"
	"image/draw"

	"github.com/evnlme/RefLayer/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// Node is a single layer in a document's tree. Children are ordered
// bottom to top; only the root carries children in practice, but the
// tree shape matches the painting-host model so layers can be grouped.
type Node struct {
	name     string
	visible  bool
	raster   *image.RGBA
	offset   image.Point // document position of the raster origin
	parent   *Node
	children []*Node
}

// Name returns the layer name.
func (n *Node) Name() string { return n.name }

// SetName renames the layer.
func (n *Node) SetName(name string) { n.name = name }

// Visible reports whether the layer is composited.
func (n *Node) Visible() bool { return n.visible }

// SetVisible toggles the layer on or off.
func (n *Node) SetVisible(v bool) { n.visible = v }

// Parent returns the parent node, or nil for the root and for nodes
// that have been removed from the tree.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child layers, bottom to top.
func (n *Node) Children() []*Node { return n.children }

// Raster returns the pixel data, nil for group nodes.
func (n *Node) Raster() *image.RGBA { return n.raster }

// SetRaster replaces the pixel data and resets the node position.
func (n *Node) SetRaster(img *image.RGBA) {
	n.raster = img
	n.offset = image.Point{}
}

// Bounds returns the layer extent in document coordinates.
func (n *Node) Bounds() geometry.RectInt {
	if n.raster == nil {
		return geometry.RectInt{}
	}
	b := n.raster.Bounds()
	return geometry.RectInt{
		X:      n.offset.X + b.Min.X,
		Y:      n.offset.Y + b.Min.Y,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// MoveTo places the raster origin at the given document position.
func (n *Node) MoveTo(x, y int) {
	n.offset = image.Pt(x, y)
}

// ScaleNode resamples the raster to w x h pixels around the given pivot
// point, in document coordinates. Degenerate target sizes are ignored.
func (n *Node) ScaleNode(pivot geometry.Point2D, w, h int) {
	if n.raster == nil || w <= 0 || h <= 0 {
		return
	}
	src := n.raster
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)

	sx := float64(w) / float64(sb.Dx())
	sy := float64(h) / float64(sb.Dy())
	tl := geometry.NewPoint2D(float64(n.offset.X+sb.Min.X), float64(n.offset.Y+sb.Min.Y))
	n.raster = dst
	n.offset = image.Pt(
		int(pivot.X+(tl.X-pivot.X)*sx),
		int(pivot.Y+(tl.Y-pivot.Y)*sy),
	)
}

// Index returns the node's position among its siblings, -1 when detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// IndexPath returns the sibling indices from the root down to this node.
// Paths compare lexicographically in depth-first order, so a larger path
// means a higher position in the visual stack.
func (n *Node) IndexPath() []int {
	var path []int
	for cur := n; cur.parent != nil; cur = cur.parent {
		path = append([]int{cur.Index()}, path...)
	}
	return path
}

// AddChildAbove inserts child directly above the given sibling, or at
// the top of the stack when sibling is nil or not a child of this node.
func (n *Node) AddChildAbove(child, sibling *Node) {
	child.Remove()
	child.parent = n

	at := len(n.children)
	if sibling != nil {
		for i, c := range n.children {
			if c == sibling {
				at = i + 1
				break
			}
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[at+1:], n.children[at:])
	n.children[at] = child
}

// Remove detaches the node from its parent. The node keeps its raster
// so it can be re-attached, but it no longer composites and its parent
// lookup reports nil.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// ComparePaths orders two index paths depth-first: most significant
// index first, shorter paths before their descendants.
func ComparePaths(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
