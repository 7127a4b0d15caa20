package reflayer

import (
	"testing"

	"github.com/evnlme/RefLayer/internal/document"
)

// newStateDoc builds a document with n attached layers named
// "##RefLayer 1..n" and a state holding one record per layer, in
// creation order.
func newStateDoc(t *testing.T, n int) (*document.Document, *DocumentState) {
	t.Helper()
	doc := document.New("test", 100, 80)
	st := &DocumentState{}
	for i := 1; i <= n; i++ {
		name := st.NextLayerName()
		node := doc.CreateNode(name)
		doc.Root().AddChildAbove(node, nil)
		st.Records = append(st.Records, NewRecord(name, "img.png"))
	}
	return doc, st
}

func TestReconcilePrunesOrphans(t *testing.T) {
	doc, st := newStateDoc(t, 3)
	st.SetActive(st.Records[1])

	doc.NodeByName("##RefLayer 2").Remove()
	st.Reconcile(doc)

	if len(st.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(st.Records))
	}
	if st.ByLayerName("##RefLayer 2") != nil {
		t.Error("pruned record still present")
	}
	// The pruned record was active; the topmost survivor takes over.
	if st.Active() == nil || st.Active().LayerName != "##RefLayer 3" {
		t.Errorf("active = %v, want ##RefLayer 3", st.Active())
	}
}

func TestReconcileOrdersByTreePosition(t *testing.T) {
	doc, st := newStateDoc(t, 3)
	// Shuffle the collection out of tree order.
	st.Records[0], st.Records[2] = st.Records[2], st.Records[0]
	st.active = nil

	st.Reconcile(doc)

	// Tree stack is 1 (bottom), 2, 3 (top); the collection lists the
	// topmost first and it becomes the default active record.
	want := []string{"##RefLayer 3", "##RefLayer 2", "##RefLayer 1"}
	for i, name := range want {
		if st.Records[i].LayerName != name {
			t.Errorf("record %d = %s, want %s", i, st.Records[i].LayerName, name)
		}
	}
	if st.Active() != st.Records[0] {
		t.Error("active is not the topmost record")
	}

	// Repeated reconciliation is stable.
	before := st.Active()
	st.Reconcile(doc)
	st.Reconcile(doc)
	if st.Active() != before {
		t.Error("active record drifted across repeated reconciles")
	}
}

func TestReconcileKeepsExplicitActive(t *testing.T) {
	doc, st := newStateDoc(t, 3)
	st.SetActive(st.Records[0]) // bottom layer

	st.Reconcile(doc)
	if st.Active().LayerName != "##RefLayer 1" {
		t.Errorf("active = %s, want ##RefLayer 1", st.Active().LayerName)
	}
}

func TestReconcileEmpty(t *testing.T) {
	doc, st := newStateDoc(t, 2)
	doc.NodeByName("##RefLayer 1").Remove()
	doc.NodeByName("##RefLayer 2").Remove()

	st.Reconcile(doc)
	if len(st.Records) != 0 || st.Active() != nil {
		t.Errorf("records = %d, active = %v, want empty", len(st.Records), st.Active())
	}
}

func TestAddDelete(t *testing.T) {
	st := &DocumentState{}
	a := NewRecord("a", "a.png")
	b := NewRecord("b", "b.png")

	st.Add(a)
	st.Add(b)
	if st.Active() != b {
		t.Error("Add did not activate the new record")
	}

	st.Delete(b)
	if st.Active() != a {
		t.Error("Delete did not hand the active slot to a survivor")
	}
	st.Delete(a)
	if st.Active() != nil || len(st.Records) != 0 {
		t.Error("state not empty after deleting all records")
	}
}

func TestSetActiveRejectsForeignRecord(t *testing.T) {
	st := &DocumentState{}
	a := NewRecord("a", "a.png")
	st.Add(a)

	st.SetActive(NewRecord("other", "x.png"))
	if st.Active() != a {
		t.Error("foreign record became active")
	}
}

func TestNextLayerName(t *testing.T) {
	st := &DocumentState{}
	if got := st.NextLayerName(); got != "##RefLayer 1" {
		t.Errorf("NextLayerName = %q, want ##RefLayer 1", got)
	}

	st.Add(NewRecord("##RefLayer 2", "a.png"))
	st.Add(NewRecord("renamed by user", "b.png"))
	st.Add(NewRecord("##RefLayer 7", "c.png"))
	if got := st.NextLayerName(); got != "##RefLayer 8" {
		t.Errorf("NextLayerName = %q, want ##RefLayer 8", got)
	}
}
