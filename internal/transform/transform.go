// Package transform computes the placement of a reference image inside a
// container rectangle: a uniform scale plus a translation, chosen by an
// alignment policy and an optional shrink-to-fit policy.
package transform

import (
	"fmt"

	"github.com/evnlme/RefLayer/pkg/geometry"
)

// Alignment selects one of nine positions on a 3x3 grid. The row is
// Alignment/3 (top, middle, bottom) and the column is Alignment%3
// (left, center, right).
type Alignment int

const (
	TopLeft Alignment = iota
	Top
	TopRight
	Left
	Center
	Right
	BottomLeft
	Bottom
	BottomRight
)

var alignmentNames = [...]string{
	"TOP_LEFT", "TOP", "TOP_RIGHT",
	"LEFT", "CENTER", "RIGHT",
	"BOTTOM_LEFT", "BOTTOM", "BOTTOM_RIGHT",
}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
	return alignmentNames[a]
}

// IsValid reports whether a is one of the nine grid positions.
func (a Alignment) IsValid() bool {
	return a >= TopLeft && a <= BottomRight
}

// Row returns the vertical grid position (0 top, 1 middle, 2 bottom).
func (a Alignment) Row() int { return int(a) / 3 }

// Col returns the horizontal grid position (0 left, 1 center, 2 right).
func (a Alignment) Col() int { return int(a) % 3 }

// ParseAlignment returns the alignment with the given name, as produced
// by String.
func ParseAlignment(name string) (Alignment, error) {
	for i, n := range alignmentNames {
		if n == name {
			return Alignment(i), nil
		}
	}
	return Center, fmt.Errorf("unknown alignment %q", name)
}

// Margins are pixel insets from the document edges that define the
// container rectangle. They are not validated against the document size;
// margins larger than the document yield a degenerate container.
type Margins struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Params describes a computed placement: scale the source image uniformly
// by Scale around its own origin (X0, Y0), then move its top-left corner
// to (DX, DY). Width and Height are the resulting placed size.
type Params struct {
	X0     float64
	Y0     float64
	DX     float64
	DY     float64
	Scale  float64
	Width  float64
	Height float64
}

// Offset returns the node move delta (DX-X0, DY-Y0).
func (p Params) Offset() geometry.Point2D {
	return geometry.Point2D{X: p.DX - p.X0, Y: p.DY - p.Y0}
}

// Affine returns the placement as a single affine transform mapping
// source-image coordinates to document coordinates.
func (p Params) Affine() geometry.AffineTransform {
	move := geometry.Translation(p.DX-p.X0*p.Scale, p.DY-p.Y0*p.Scale)
	return move.Compose(geometry.Scale(p.Scale, p.Scale))
}

// Compute maps the image rectangle into the container under the given
// alignment and scaling policy. imageScale is the user-requested
// multiplier on the image's native size; when scaleToFit is true the
// result is additionally shrunk (never grown) to fit the container.
//
// The function is pure and never fails for well-formed numeric input.
// A container with a non-positive dimension produces a non-positive
// Scale; callers must treat that as "do not place" rather than applying
// it. An image with a zero dimension is outside the contract (decoded
// images are never empty).
func Compute(container, img geometry.Rect, align Alignment, imageScale float64, scaleToFit bool) Params {
	wc, hc := container.Width, container.Height
	wi, hi := img.Width*imageScale, img.Height*imageScale

	s := 1.0
	if scaleToFit {
		s = min(wc/wi, hc/hi, 1.0)
	}

	return Params{
		X0:     img.X,
		Y0:     img.Y,
		DX:     container.X + (wc-wi*s)*float64(align.Col())/2,
		DY:     container.Y + (hc-hi*s)*float64(align.Row())/2,
		Scale:  s * imageScale,
		Width:  wi * s,
		Height: hi * s,
	}
}

// Container returns the placement container for a document: its bounds
// inset by the margins.
func Container(docBounds geometry.Rect, m Margins) geometry.Rect {
	return docBounds.Inset(float64(m.Left), float64(m.Right), float64(m.Top), float64(m.Bottom))
}
