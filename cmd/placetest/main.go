// Command placetest computes a reference placement for a given canvas,
// image, and settings, and prints the result.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/evnlme/RefLayer/internal/document"
	"github.com/evnlme/RefLayer/internal/transform"
	"github.com/evnlme/RefLayer/pkg/geometry"
)

func main() {
	canvasW := flag.Int("cw", 1920, "Canvas width in pixels")
	canvasH := flag.Int("ch", 1080, "Canvas height in pixels")
	imgPath := flag.String("i", "", "Path to the reference image")
	imgW := flag.Int("iw", 0, "Image width (used when -i is not given)")
	imgH := flag.Int("ih", 0, "Image height (used when -i is not given)")
	alignName := flag.String("align", "CENTER", "Alignment (e.g. TOP_LEFT, CENTER, BOTTOM_RIGHT)")
	left := flag.Int("ml", 0, "Left margin")
	right := flag.Int("mr", 0, "Right margin")
	top := flag.Int("mt", 0, "Top margin")
	bottom := flag.Int("mb", 0, "Bottom margin")
	scale := flag.Float64("scale", 1.0, "User scale multiplier")
	noFit := flag.Bool("nofit", false, "Disable shrink-to-fit")
	flag.Parse()

	align, err := transform.ParseAlignment(*alignName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var img geometry.Rect
	if *imgPath != "" {
		raster, err := document.LoadImage(*imgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		b := raster.Bounds()
		img = geometry.Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}
		fmt.Printf("=== Image: %s (%dx%d) ===\n", *imgPath, b.Dx(), b.Dy())
	} else {
		if *imgW <= 0 || *imgH <= 0 {
			fmt.Println("Usage: placetest [-i <image> | -iw <w> -ih <h>] [-cw <w> -ch <h>] [options]")
			os.Exit(1)
		}
		img = geometry.Rect{Width: float64(*imgW), Height: float64(*imgH)}
	}

	docBounds := geometry.Rect{Width: float64(*canvasW), Height: float64(*canvasH)}
	margins := transform.Margins{Left: *left, Right: *right, Top: *top, Bottom: *bottom}
	container := transform.Container(docBounds, margins)
	if container.IsDegenerate() {
		fmt.Fprintf(os.Stderr, "margins leave no usable canvas area\n")
		os.Exit(1)
	}

	p := transform.Compute(container, img, align, *scale, !*noFit)

	fmt.Printf("Container: x=%.0f y=%.0f w=%.0f h=%.0f\n",
		container.X, container.Y, container.Width, container.Height)
	fmt.Printf("Alignment: %s  scale=%g  fit=%v\n", align, *scale, !*noFit)
	fmt.Printf("Placement: x=%.2f y=%.2f w=%.2f h=%.2f\n", p.DX, p.DY, p.Width, p.Height)
	fmt.Printf("Effective scale: %.4f\n", p.Scale)
}
