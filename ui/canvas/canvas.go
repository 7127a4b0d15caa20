// Package canvas provides a document viewport with pan and zoom.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// ImageCanvas displays the flattened document with pan, zoom, and
// fit-to-window.
type ImageCanvas struct {
	widget.BaseWidget

	source *image.RGBA
	img    *fynecanvas.Image
	scroll *zoomScroll

	zoom        float64
	fitToWindow bool

	onZoomChange func(zoom float64)
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *ImageCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *ImageCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Use wheel for zoom, not scroll
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// NewImageCanvas creates an empty canvas at 100% zoom with fit enabled.
func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{
		zoom:        1.0,
		fitToWindow: true,
	}
	ic.ExtendBaseWidget(ic)

	ic.img = fynecanvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	ic.img.FillMode = fynecanvas.ImageFillContain
	ic.img.ScaleMode = fynecanvas.ImageScaleSmooth
	ic.scroll = newZoomScroll(ic.img, ic)
	return ic
}

func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ic.scroll)
}

// Container returns the scrollable canvas area.
func (ic *ImageCanvas) Container() fyne.CanvasObject {
	return ic
}

// SetImage replaces the displayed image.
func (ic *ImageCanvas) SetImage(img *image.RGBA) {
	ic.source = img
	ic.img.Image = img
	ic.applyZoom()
}

// OnZoomChange sets a callback fired after every explicit zoom change.
func (ic *ImageCanvas) OnZoomChange(fn func(zoom float64)) {
	ic.onZoomChange = fn
}

// Zoom returns the current zoom factor.
func (ic *ImageCanvas) Zoom() float64 { return ic.zoom }

// ZoomIn increases the zoom by one step.
func (ic *ImageCanvas) ZoomIn() { ic.SetZoom(ic.zoom * zoomStep) }

// ZoomOut decreases the zoom by one step.
func (ic *ImageCanvas) ZoomOut() { ic.SetZoom(ic.zoom / zoomStep) }

// SetZoom sets an absolute zoom factor, clamped, and disables fit.
func (ic *ImageCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	ic.zoom = zoom
	ic.fitToWindow = false
	ic.applyZoom()
	if ic.onZoomChange != nil {
		ic.onZoomChange(zoom)
	}
}

// GetFitToWindow reports whether the image is scaled to the viewport.
func (ic *ImageCanvas) GetFitToWindow() bool {
	return ic.fitToWindow
}

// SetFitToWindow toggles fitting the image to the viewport.
func (ic *ImageCanvas) SetFitToWindow(fit bool) {
	ic.fitToWindow = fit
	ic.applyZoom()
}

// applyZoom sizes the image object for the current zoom mode.
func (ic *ImageCanvas) applyZoom() {
	if ic.source == nil {
		ic.img.Refresh()
		return
	}
	if ic.fitToWindow {
		ic.img.FillMode = fynecanvas.ImageFillContain
		ic.img.SetMinSize(fyne.NewSize(0, 0))
	} else {
		b := ic.source.Bounds()
		w := float32(float64(b.Dx()) * ic.zoom)
		h := float32(float64(b.Dy()) * ic.zoom)
		ic.img.FillMode = fynecanvas.ImageFillStretch
		ic.img.SetMinSize(fyne.NewSize(w, h))
		ic.img.Resize(fyne.NewSize(w, h))
	}
	ic.img.Refresh()
	ic.scroll.scroll.Refresh()
}
