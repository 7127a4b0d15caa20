package reflayer

import (
	"encoding/json"
	"fmt"

	"github.com/evnlme/RefLayer/internal/document"
	"github.com/evnlme/RefLayer/internal/transform"
)

// recordFile is the JSON shape of one record in the annotation slot.
type recordFile struct {
	Node         string            `json:"node"`
	Path         string            `json:"path"`
	Alignment    string            `json:"alignment"`
	Margins      transform.Margins `json:"margins"`
	Scale        float64           `json:"scale"`
	ScaleToFit   bool              `json:"scaleToFit"`
	CurrentScale float64           `json:"currentScale"`
}

// Discard reports a persisted record that could not be restored.
type Discard struct {
	Node   string
	Reason string
}

// Marshal encodes the record collection as a UTF-8 JSON array for the
// document annotation store.
func Marshal(st *DocumentState) ([]byte, error) {
	out := make([]recordFile, len(st.Records))
	for i, r := range st.Records {
		out[i] = recordFile{
			Node:         r.LayerName,
			Path:         r.Path,
			Alignment:    r.Alignment.String(),
			Margins:      r.Margins,
			Scale:        r.Scale,
			ScaleToFit:   r.ScaleToFit,
			CurrentScale: r.CurrentScale,
		}
	}
	return json.Marshal(out)
}

// Unmarshal decodes a persisted record collection against the given
// document. Records whose layer name no longer resolves, or whose fields
// fail validation, are discarded with a reason instead of failing the
// whole load. The first restored record becomes active.
func Unmarshal(data []byte, doc *document.Document) (*DocumentState, []Discard, error) {
	var in []recordFile
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, nil, fmt.Errorf("invalid reference metadata: %w", err)
	}

	st := &DocumentState{}
	var discarded []Discard
	for _, rf := range in {
		align, err := transform.ParseAlignment(rf.Alignment)
		if err != nil {
			discarded = append(discarded, Discard{Node: rf.Node, Reason: err.Error()})
			continue
		}
		if rf.Scale <= 0 {
			discarded = append(discarded, Discard{Node: rf.Node, Reason: fmt.Sprintf("invalid scale %v", rf.Scale)})
			continue
		}
		if doc.NodeByName(rf.Node) == nil {
			discarded = append(discarded, Discard{Node: rf.Node, Reason: "layer no longer exists"})
			continue
		}
		st.Records = append(st.Records, &Record{
			LayerName:    rf.Node,
			Path:         rf.Path,
			Alignment:    align,
			Margins:      rf.Margins,
			Scale:        rf.Scale,
			ScaleToFit:   rf.ScaleToFit,
			CurrentScale: rf.CurrentScale,
		})
	}
	if len(st.Records) > 0 {
		st.active = st.Records[0]
	}
	return st, discarded, nil
}
