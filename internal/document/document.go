// Package document implements the layer/document model the reference
// controller drives: a tree of raster layers inside fixed canvas bounds,
// named annotation slots for extension metadata, and compositing.
package document

import (
	"sort"

	"github.com/evnlme/RefLayer/pkg/geometry"
)

type annotation struct {
	Description string `json:"description"`
	Data        []byte `json:"data"`
}

// Document is one open canvas with its layer tree and metadata.
type Document struct {
	name        string
	bounds      geometry.RectInt
	root        *Node
	annotations map[string]annotation
}

// New creates an empty document with the given canvas size.
func New(name string, width, height int) *Document {
	return &Document{
		name:        name,
		bounds:      geometry.RectInt{Width: width, Height: height},
		root:        &Node{name: "root", visible: true},
		annotations: make(map[string]annotation),
	}
}

// Name returns the document name, the identity used by the controller.
func (d *Document) Name() string { return d.name }

// Bounds returns the canvas rectangle.
func (d *Document) Bounds() geometry.RectInt { return d.bounds }

// SetBounds resizes the canvas. Layer content is not moved.
func (d *Document) SetBounds(b geometry.RectInt) { d.bounds = b }

// Root returns the root group node.
func (d *Document) Root() *Node { return d.root }

// CreateNode creates a detached paint layer. The caller attaches it
// with AddChildAbove.
func (d *Document) CreateNode(name string) *Node {
	return &Node{name: name, visible: true}
}

// NodeByName returns the first node with the given name in depth-first
// order, or nil.
func (d *Document) NodeByName(name string) *Node {
	var find func(n *Node) *Node
	find = func(n *Node) *Node {
		for _, c := range n.children {
			if c.name == name {
				return c
			}
			if got := find(c); got != nil {
				return got
			}
		}
		return nil
	}
	return find(d.root)
}

// SetAnnotation stores named extension metadata on the document.
func (d *Document) SetAnnotation(name, description string, data []byte) {
	d.annotations[name] = annotation{Description: description, Data: data}
}

// Annotation returns the data stored under the given name, nil if absent.
func (d *Document) Annotation(name string) []byte {
	return d.annotations[name].Data
}

// RemoveAnnotation deletes an annotation slot.
func (d *Document) RemoveAnnotation(name string) {
	delete(d.annotations, name)
}

// AnnotationTypes lists the stored annotation names, sorted.
func (d *Document) AnnotationTypes() []string {
	names := make([]string, 0, len(d.annotations))
	for name := range d.annotations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
