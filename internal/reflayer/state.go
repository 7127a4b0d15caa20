package reflayer

import (
	"fmt"
	"sort"

	"github.com/evnlme/RefLayer/internal/document"
)

// DocumentState is the ordered set of reference records for one
// document, with at most one active record. Records are ordered by the
// tree position of their bound layers, topmost first.
type DocumentState struct {
	Records []*Record
	active  *Record
}

// Active returns the active record, nil when there is none.
func (st *DocumentState) Active() *Record { return st.active }

// SetActive marks the given record active. Records not present in the
// collection are ignored.
func (st *DocumentState) SetActive(r *Record) {
	for _, rec := range st.Records {
		if rec == r {
			st.active = r
			return
		}
	}
}

// Add appends a record and makes it active.
func (st *DocumentState) Add(r *Record) {
	st.Records = append(st.Records, r)
	st.active = r
}

// Delete removes a record. When it was active, the topmost remaining
// record takes over.
func (st *DocumentState) Delete(r *Record) {
	for i, rec := range st.Records {
		if rec == r {
			st.Records = append(st.Records[:i], st.Records[i+1:]...)
			break
		}
	}
	if st.active == r {
		st.active = nil
		if len(st.Records) > 0 {
			st.active = st.Records[0]
		}
	}
}

// Reconcile drops records whose bound layer no longer sits in the
// document's tree, re-sorts the rest by current tree position (topmost
// first), and reassigns the active record deterministically when it was
// pruned or never set. The layer tree mutates outside this extension's
// control, so this runs before every read of the collection.
func (st *DocumentState) Reconcile(doc *document.Document) {
	kept := st.Records[:0]
	for _, r := range st.Records {
		if n := r.Node(doc); n != nil && n.Parent() != nil {
			kept = append(kept, r)
		}
	}
	st.Records = kept

	sort.SliceStable(st.Records, func(i, j int) bool {
		pi := st.Records[i].Node(doc).IndexPath()
		pj := st.Records[j].Node(doc).IndexPath()
		return document.ComparePaths(pi, pj) > 0
	})

	if st.active != nil {
		found := false
		for _, r := range st.Records {
			if r == st.active {
				found = true
				break
			}
		}
		if !found {
			st.active = nil
		}
	}
	if st.active == nil && len(st.Records) > 0 {
		st.active = st.Records[0]
	}
}

// LayerNames returns the record layer names in collection order.
func (st *DocumentState) LayerNames() []string {
	names := make([]string, len(st.Records))
	for i, r := range st.Records {
		names[i] = r.LayerName
	}
	return names
}

// ByLayerName returns the record bound to the named layer, nil if none.
func (st *DocumentState) ByLayerName(name string) *Record {
	for _, r := range st.Records {
		if r.LayerName == name {
			return r
		}
	}
	return nil
}

// NextLayerName generates a fresh auto-name of the form "##RefLayer N",
// one past the highest numeric suffix among existing records.
func (st *DocumentState) NextLayerName() string {
	maxNum := 0
	for _, r := range st.Records {
		name := r.LayerName
		i := len(name)
		for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
			i--
		}
		if i == len(name) {
			continue
		}
		num := 0
		for _, c := range name[i:] {
			num = num*10 + int(c-'0')
		}
		if num > maxNum {
			maxNum = num
		}
	}
	return fmt.Sprintf("##RefLayer %d", maxNum+1)
}
