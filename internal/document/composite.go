package document

import (
	"image"
	"image/color"
	"image/draw"
)

// Refresh composites the visible layer stack onto a white canvas and
// returns the flattened result. The host equivalent is a projection
// recompute; callers invoke it after every placement change.
func (d *Document) Refresh() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, d.bounds.Width, d.bounds.Height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	compositeInto(out, d.root)
	return out
}

// compositeInto draws n's subtree bottom to top.
func compositeInto(dst *image.RGBA, n *Node) {
	for _, c := range n.children {
		if !c.visible {
			continue
		}
		if c.raster != nil {
			b := c.raster.Bounds()
			target := b.Add(c.offset)
			draw.Draw(dst, target, c.raster, b.Min, draw.Over)
		}
		compositeInto(dst, c)
	}
}
