// Package app provides application state and the controller that keeps
// reference layers synchronized with their documents.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/evnlme/RefLayer/internal/document"
	"github.com/evnlme/RefLayer/internal/reflayer"
	"github.com/evnlme/RefLayer/internal/transform"
)

const (
	// AnnotationName is the per-document metadata slot holding the
	// serialized reference records.
	AnnotationName        = "RefLayer"
	annotationDescription = "RefLayer Metadata"
)

// EventType identifies different application events.
type EventType int

const (
	EventDocumentChanged EventType = iota
	EventRecordsChanged
	EventPlacementUpdated
	EventVisibilityChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State owns the open documents and their reference-record collections.
// All mutation happens on the UI thread, one event at a time; the mutex
// only guards the listener table.
type State struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventListener

	docs      map[string]*document.Document
	refs      map[string]*reflayer.DocumentState
	activeDoc string
}

// NewState creates a new application state.
func NewState() *State {
	return &State{
		listeners: make(map[EventType][]EventListener),
		docs:      make(map[string]*document.Document),
		refs:      make(map[string]*reflayer.DocumentState),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// NewDocument creates a blank document, registers it, and makes it
// active.
func (s *State) NewDocument(name string, width, height int) (*document.Document, error) {
	if _, exists := s.docs[name]; exists {
		return nil, fmt.Errorf("document %q is already open", name)
	}
	doc := document.New(name, width, height)
	s.docs[name] = doc
	s.activeDoc = name
	s.Emit(EventDocumentChanged, doc)
	return doc, nil
}

// OpenDocument loads a document file, registers it, and makes it
// active. Restored reference layers come back with empty rasters, so
// every record is rebuilt from its source image before the document is
// announced; a source that can no longer be read leaves its layer blank
// until the user repoints the record.
func (s *State) OpenDocument(path string) (*document.Document, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	s.docs[doc.Name()] = doc
	s.activeDoc = doc.Name()
	if st := s.RefState(); st != nil {
		for _, rec := range st.Records {
			if err := rec.Update(doc); err != nil {
				log.Printf("document %s: %v", doc.Name(), err)
			}
		}
		s.persist(doc)
	}
	s.Emit(EventDocumentChanged, doc)
	return doc, nil
}

// SaveDocument persists the active document, including the current
// reference metadata, to path.
func (s *State) SaveDocument(path string) error {
	doc := s.ActiveDocument()
	if doc == nil {
		return fmt.Errorf("no active document")
	}
	s.persist(doc)
	return doc.Save(path)
}

// CloseDocument drops a document and its reference state.
func (s *State) CloseDocument(name string) {
	delete(s.docs, name)
	delete(s.refs, name)
	if s.activeDoc == name {
		s.activeDoc = ""
		for other := range s.docs {
			s.activeDoc = other
			break
		}
		s.Emit(EventDocumentChanged, s.ActiveDocument())
	}
}

// ActiveDocument returns the active document, nil when none is open.
func (s *State) ActiveDocument() *document.Document {
	return s.docs[s.activeDoc]
}

// SetActiveDocument switches the active view to a registered document.
func (s *State) SetActiveDocument(name string) {
	if _, ok := s.docs[name]; !ok {
		return
	}
	s.activeDoc = name
	s.Emit(EventDocumentChanged, s.docs[name])
}

// DocumentNames lists the open documents.
func (s *State) DocumentNames() []string {
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	return names
}

// RefState returns the reference state of the active document,
// reconciled against its live layer tree. The state is created on first
// access, from the document's annotation slot when one exists. Returns
// nil when no document is active.
func (s *State) RefState() *reflayer.DocumentState {
	doc := s.ActiveDocument()
	if doc == nil {
		return nil
	}
	st, ok := s.refs[doc.Name()]
	if !ok {
		st = &reflayer.DocumentState{}
		if data := doc.Annotation(AnnotationName); data != nil {
			loaded, discarded, err := reflayer.Unmarshal(data, doc)
			if err != nil {
				log.Printf("document %s: %v", doc.Name(), err)
			} else {
				st = loaded
			}
			for _, disc := range discarded {
				log.Printf("document %s: dropped reference %q: %s", doc.Name(), disc.Node, disc.Reason)
			}
		}
		s.refs[doc.Name()] = st
	}
	st.Reconcile(doc)
	return st
}

// ActiveRecord returns the active reference record, nil when there is
// no document or no record.
func (s *State) ActiveRecord() *reflayer.Record {
	st := s.RefState()
	if st == nil {
		return nil
	}
	return st.Active()
}

// persist writes the record collection into the document's annotation
// slot.
func (s *State) persist(doc *document.Document) {
	st, ok := s.refs[doc.Name()]
	if !ok {
		return
	}
	data, err := reflayer.Marshal(st)
	if err != nil {
		log.Printf("document %s: failed to serialize references: %v", doc.Name(), err)
		return
	}
	doc.SetAnnotation(AnnotationName, annotationDescription, data)
}

// applyActive re-places the active record and persists the collection.
func (s *State) applyActive() error {
	doc := s.ActiveDocument()
	st := s.RefState()
	if doc == nil || st == nil {
		return nil
	}
	var err error
	if rec := st.Active(); rec != nil {
		err = rec.Update(doc)
	}
	s.persist(doc)
	s.Emit(EventPlacementUpdated, st.Active())
	return err
}

// AddReference creates a new reference layer for the given image at the
// top of the layer stack and places it. On an unreadable image the
// layer and record are rolled back.
func (s *State) AddReference(path string) error {
	doc := s.ActiveDocument()
	st := s.RefState()
	if doc == nil || st == nil {
		return nil
	}

	node := doc.CreateNode(st.NextLayerName())
	doc.Root().AddChildAbove(node, nil)
	rec := reflayer.NewRecord(node.Name(), path)
	st.Add(rec)

	if err := rec.Update(doc); err != nil {
		st.Delete(rec)
		node.Remove()
		return err
	}
	s.persist(doc)
	s.Emit(EventRecordsChanged, st)
	s.Emit(EventPlacementUpdated, rec)
	return nil
}

// DeleteReference removes the active record and its layer.
func (s *State) DeleteReference() {
	doc := s.ActiveDocument()
	st := s.RefState()
	if doc == nil || st == nil {
		return
	}
	rec := st.Active()
	if rec == nil {
		return
	}
	if node := rec.Node(doc); node != nil {
		node.Remove()
	}
	st.Delete(rec)
	s.persist(doc)
	s.Emit(EventRecordsChanged, st)
	s.Emit(EventPlacementUpdated, st.Active())
}

// SelectReference makes the record bound to the named layer active.
func (s *State) SelectReference(layerName string) {
	st := s.RefState()
	if st == nil {
		return
	}
	if rec := st.ByLayerName(layerName); rec != nil {
		st.SetActive(rec)
		s.Emit(EventRecordsChanged, st)
	}
}

// SetPath points the active record at a new source image. When the
// image cannot be decoded the previous path and placement are kept.
func (s *State) SetPath(path string) error {
	doc := s.ActiveDocument()
	rec := s.ActiveRecord()
	if doc == nil || rec == nil {
		return nil
	}
	old := rec.Path
	rec.Path = path
	if err := s.applyActive(); err != nil {
		rec.Path = old
		s.persist(doc)
		return err
	}
	return nil
}

// NextImage advances the active record to the next image in its folder.
func (s *State) NextImage() error {
	rec := s.ActiveRecord()
	if rec == nil {
		return nil
	}
	path, err := reflayer.NextImage(rec.Path)
	if err != nil {
		return err
	}
	return s.SetPath(path)
}

// PrevImage steps the active record back to the previous image in its
// folder.
func (s *State) PrevImage() error {
	rec := s.ActiveRecord()
	if rec == nil {
		return nil
	}
	path, err := reflayer.PrevImage(rec.Path)
	if err != nil {
		return err
	}
	return s.SetPath(path)
}

// SetAlignment re-places the active record under a new alignment.
func (s *State) SetAlignment(a transform.Alignment) error {
	rec := s.ActiveRecord()
	if rec == nil || !a.IsValid() {
		return nil
	}
	rec.Alignment = a
	return s.applyActive()
}

// SetMargins re-places the active record inside new margins.
func (s *State) SetMargins(m transform.Margins) error {
	rec := s.ActiveRecord()
	if rec == nil {
		return nil
	}
	rec.Margins = m
	return s.applyActive()
}

// SetScale sets the user scale multiplier (1.0 = native size).
func (s *State) SetScale(scale float64) error {
	rec := s.ActiveRecord()
	if rec == nil || scale <= 0 {
		return nil
	}
	rec.Scale = scale
	return s.applyActive()
}

// SetScaleToFit toggles shrink-to-fit for the active record.
func (s *State) SetScaleToFit(fit bool) error {
	rec := s.ActiveRecord()
	if rec == nil {
		return nil
	}
	rec.ScaleToFit = fit
	return s.applyActive()
}

// ToggleVisible flips the visibility of the active record's layer and
// reports the new state.
func (s *State) ToggleVisible() bool {
	doc := s.ActiveDocument()
	rec := s.ActiveRecord()
	if doc == nil || rec == nil {
		return false
	}
	node := rec.Node(doc)
	if node == nil {
		return false
	}
	node.SetVisible(!node.Visible())
	s.Emit(EventVisibilityChanged, node.Visible())
	return node.Visible()
}
