package reflayer

import (
	"encoding/json"
	"testing"

	"github.com/evnlme/RefLayer/internal/document"
	"github.com/evnlme/RefLayer/internal/transform"
)

func TestCodecRoundTrip(t *testing.T) {
	doc := document.New("test", 100, 80)
	for _, name := range []string{"##RefLayer 1", "##RefLayer 2"} {
		doc.Root().AddChildAbove(doc.CreateNode(name), nil)
	}

	st := &DocumentState{}
	a := NewRecord("##RefLayer 1", "/refs/a.png")
	a.Alignment = transform.BottomRight
	a.Margins = transform.Margins{Left: 10, Right: 20, Top: 30, Bottom: 40}
	a.Scale = 0.75
	a.ScaleToFit = false
	a.CurrentScale = 0.75
	st.Add(a)
	b := NewRecord("##RefLayer 2", "/refs/b.png")
	st.Add(b)

	data, err := Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	loaded, discarded, err := Unmarshal(data, doc)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(discarded) != 0 {
		t.Fatalf("discarded = %v", discarded)
	}
	if len(loaded.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(loaded.Records))
	}

	got := loaded.Records[0]
	if got.LayerName != a.LayerName || got.Path != a.Path ||
		got.Alignment != a.Alignment || got.Margins != a.Margins ||
		got.Scale != a.Scale || got.ScaleToFit != a.ScaleToFit ||
		got.CurrentScale != a.CurrentScale {
		t.Errorf("record mismatch: %+v vs %+v", got, a)
	}
	// The pre-save active selection is not recovered; the first record
	// in the sequence becomes active.
	if loaded.Active() != loaded.Records[0] {
		t.Error("active is not the first decoded record")
	}
}

func TestUnmarshalDropsUnresolvableLayers(t *testing.T) {
	doc := document.New("test", 100, 80)
	doc.Root().AddChildAbove(doc.CreateNode("##RefLayer 2"), nil)

	st := &DocumentState{}
	st.Add(NewRecord("##RefLayer 1", "/refs/a.png")) // will not resolve
	st.Add(NewRecord("##RefLayer 2", "/refs/b.png"))

	data, err := Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	loaded, discarded, err := Unmarshal(data, doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Records) != 1 || loaded.Records[0].LayerName != "##RefLayer 2" {
		t.Errorf("records = %+v, want only ##RefLayer 2", loaded.LayerNames())
	}
	if len(discarded) != 1 || discarded[0].Node != "##RefLayer 1" {
		t.Errorf("discarded = %+v", discarded)
	}
}

func TestUnmarshalValidatesFields(t *testing.T) {
	doc := document.New("test", 100, 80)
	doc.Root().AddChildAbove(doc.CreateNode("ok"), nil)
	doc.Root().AddChildAbove(doc.CreateNode("bad-align"), nil)
	doc.Root().AddChildAbove(doc.CreateNode("bad-scale"), nil)

	raw := []map[string]interface{}{
		{"node": "bad-align", "path": "a.png", "alignment": "MIDDLE", "scale": 1.0, "scaleToFit": true, "currentScale": 1.0},
		{"node": "bad-scale", "path": "b.png", "alignment": "CENTER", "scale": -2.0, "scaleToFit": true, "currentScale": 1.0},
		{"node": "ok", "path": "c.png", "alignment": "CENTER", "scale": 1.0, "scaleToFit": true, "currentScale": 1.0},
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}

	loaded, discarded, err := Unmarshal(data, doc)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(loaded.Records) != 1 || loaded.Records[0].LayerName != "ok" {
		t.Errorf("records = %v, want only ok", loaded.LayerNames())
	}
	if len(discarded) != 2 {
		t.Errorf("discarded = %+v, want 2 entries", discarded)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	doc := document.New("test", 100, 80)
	if _, _, err := Unmarshal([]byte("{not json"), doc); err == nil {
		t.Error("Unmarshal accepted garbage")
	}
}
