package document

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/evnlme/RefLayer/pkg/geometry"
)

func newTestDoc() *Document {
	return New("test", 100, 80)
}

func attach(t *testing.T, d *Document, name string, w, h int) *Node {
	t.Helper()
	n := d.CreateNode(name)
	n.SetRaster(image.NewRGBA(image.Rect(0, 0, w, h)))
	d.Root().AddChildAbove(n, nil)
	return n
}

func TestAddChildAboveOrdering(t *testing.T) {
	d := newTestDoc()
	a := attach(t, d, "a", 1, 1)
	b := attach(t, d, "b", 1, 1)

	// Insert c directly above a: stack becomes a, c, b.
	c := d.CreateNode("c")
	c.SetRaster(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	d.Root().AddChildAbove(c, a)

	got := d.Root().Children()
	want := []*Node{a, c, b}
	if len(got) != len(want) {
		t.Fatalf("child count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %s, want %s", i, got[i].Name(), want[i].Name())
		}
	}
	if c.Index() != 1 {
		t.Errorf("c.Index() = %d, want 1", c.Index())
	}
}

func TestRemoveDetaches(t *testing.T) {
	d := newTestDoc()
	a := attach(t, d, "a", 1, 1)

	a.Remove()
	if a.Parent() != nil {
		t.Error("removed node still has a parent")
	}
	if d.NodeByName("a") != nil {
		t.Error("removed node still resolvable by name")
	}
	if a.Index() != -1 {
		t.Errorf("removed node Index() = %d, want -1", a.Index())
	}

	// Removing twice is harmless.
	a.Remove()
}

func TestNodeByNameDepthFirst(t *testing.T) {
	d := newTestDoc()
	attach(t, d, "a", 1, 1)
	group := d.CreateNode("group")
	d.Root().AddChildAbove(group, nil)
	inner := d.CreateNode("inner")
	group.AddChildAbove(inner, nil)

	if d.NodeByName("inner") != inner {
		t.Error("nested node not found")
	}
	if d.NodeByName("missing") != nil {
		t.Error("lookup of missing name returned a node")
	}
}

func TestIndexPathOrdering(t *testing.T) {
	d := newTestDoc()
	a := attach(t, d, "a", 1, 1)
	group := d.CreateNode("group")
	d.Root().AddChildAbove(group, nil)
	inner := d.CreateNode("inner")
	group.AddChildAbove(inner, nil)

	if got := a.IndexPath(); len(got) != 1 || got[0] != 0 {
		t.Errorf("a.IndexPath() = %v, want [0]", got)
	}
	if got := inner.IndexPath(); len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("inner.IndexPath() = %v, want [1 0]", got)
	}

	if ComparePaths(a.IndexPath(), inner.IndexPath()) >= 0 {
		t.Error("path [0] should order before [1 0]")
	}
	if ComparePaths([]int{1}, []int{1, 0}) >= 0 {
		t.Error("parent path should order before its child")
	}
	if ComparePaths([]int{2}, []int{2}) != 0 {
		t.Error("equal paths should compare equal")
	}
}

func TestMoveAndBounds(t *testing.T) {
	d := newTestDoc()
	n := attach(t, d, "a", 10, 20)

	n.MoveTo(5, 7)
	want := geometry.RectInt{X: 5, Y: 7, Width: 10, Height: 20}
	if n.Bounds() != want {
		t.Errorf("Bounds() = %+v, want %+v", n.Bounds(), want)
	}
}

func TestScaleNode(t *testing.T) {
	d := newTestDoc()
	n := attach(t, d, "a", 40, 20)

	n.ScaleNode(geometry.NewPoint2D(0, 0), 20, 10)
	want := geometry.RectInt{Width: 20, Height: 10}
	if n.Bounds() != want {
		t.Errorf("Bounds() after scale = %+v, want %+v", n.Bounds(), want)
	}

	// Degenerate targets leave the raster alone.
	n.ScaleNode(geometry.NewPoint2D(0, 0), 0, 10)
	if n.Bounds() != want {
		t.Errorf("Bounds() after degenerate scale = %+v, want %+v", n.Bounds(), want)
	}
}

func TestRefreshComposite(t *testing.T) {
	d := New("test", 4, 4)
	n := attach(t, d, "a", 2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			n.Raster().SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	n.MoveTo(1, 1)

	out := d.Refresh()
	if got := out.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background pixel = %v, want white", got)
	}
	if got := out.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("layer pixel = %v, want red", got)
	}

	n.SetVisible(false)
	out = d.Refresh()
	if got := out.RGBAAt(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("hidden layer still composited: %v", got)
	}
}

func TestAnnotations(t *testing.T) {
	d := newTestDoc()
	if d.Annotation("RefLayer") != nil {
		t.Error("unset annotation should be nil")
	}
	d.SetAnnotation("RefLayer", "RefLayer Metadata", []byte(`[]`))
	if string(d.Annotation("RefLayer")) != `[]` {
		t.Errorf("Annotation = %q, want []", d.Annotation("RefLayer"))
	}
	if got := d.AnnotationTypes(); len(got) != 1 || got[0] != "RefLayer" {
		t.Errorf("AnnotationTypes = %v", got)
	}
	d.RemoveAnnotation("RefLayer")
	if d.Annotation("RefLayer") != nil {
		t.Error("annotation survived removal")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	d := New("roundtrip", 320, 240)
	n := attach(t, d, "##RefLayer 1", 10, 10)
	n.MoveTo(3, 4)
	n.SetVisible(false)
	d.SetAnnotation("RefLayer", "RefLayer Metadata", []byte(`[{"node":"##RefLayer 1"}]`))

	path := filepath.Join(t.TempDir(), "doc.refdoc")
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name() != "roundtrip" || loaded.Bounds() != (geometry.RectInt{Width: 320, Height: 240}) {
		t.Errorf("loaded doc %s %+v", loaded.Name(), loaded.Bounds())
	}
	ln := loaded.NodeByName("##RefLayer 1")
	if ln == nil {
		t.Fatal("layer missing after load")
	}
	if ln.Visible() {
		t.Error("visibility not preserved")
	}
	if ln.Bounds() != (geometry.RectInt{X: 3, Y: 4, Width: 10, Height: 10}) {
		t.Errorf("layer bounds = %+v", ln.Bounds())
	}
	if string(loaded.Annotation("RefLayer")) != `[{"node":"##RefLayer 1"}]` {
		t.Error("annotation not preserved")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.refdoc")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted a non-JSON file")
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewRGBA(image.Rect(0, 0, 6, 4))
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 6, 4) {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("LoadImage accepted a missing file")
	}
}

func TestIsSupportedImage(t *testing.T) {
	cases := map[string]bool{
		"a.png":  true,
		"a.PNG":  true,
		"a.webp": true,
		"a.tga":  true,
		"a.txt":  false,
		"a.kra":  false,
		"a":      false,
	}
	for path, want := range cases {
		if got := IsSupportedImage(path); got != want {
			t.Errorf("IsSupportedImage(%q) = %v, want %v", path, got, want)
		}
	}
}
