// Package panels provides the docked reference-layer panel.
package panels

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/evnlme/RefLayer/internal/app"
	"github.com/evnlme/RefLayer/internal/document"
	"github.com/evnlme/RefLayer/internal/reflayer"
	"github.com/evnlme/RefLayer/internal/transform"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// RefPanel is the docked panel controlling the reference layers of the
// active document.
type RefPanel struct {
	state *app.State
	win   fyne.Window
	box   *fyne.Container

	// Record selection
	recordSelect *widget.Select
	addBtn       *widget.Button
	deleteBtn    *widget.Button

	// Source image
	pathLabel  *widget.Label
	browseBtn  *widget.Button
	prevBtn    *widget.Button
	nextBtn    *widget.Button
	visibleBtn *widget.Button

	// Alignment grid, row-major top-left to bottom-right
	alignChecks [9]*widget.Check

	// Margins
	leftEntry   *widget.Entry
	rightEntry  *widget.Entry
	topEntry    *widget.Entry
	bottomEntry *widget.Entry
	widthEntry  *widget.Entry
	heightEntry *widget.Entry
	lockWidth   *widget.Check
	lockHeight  *widget.Check

	// Scale
	scaleEntry   *widget.Entry
	fitCheck     *widget.Check
	currentScale *widget.Label

	// Suppresses change handlers while widgets are loaded from a record.
	updating bool
}

// NewRefPanel creates the panel and wires it to the application state.
func NewRefPanel(state *app.State) *RefPanel {
	rp := &RefPanel{state: state}
	rp.buildRecordRow()
	rp.buildSourceRow()
	tabs := container.NewAppTabs(
		container.NewTabItem("Alignment", rp.buildAlignmentTab()),
		container.NewTabItem("Margins", rp.buildMarginsTab()),
		container.NewTabItem("Scale", rp.buildScaleTab()),
	)

	rp.box = container.NewVBox(
		container.NewBorder(nil, nil, nil, container.NewHBox(rp.addBtn, rp.deleteBtn), rp.recordSelect),
		rp.pathLabel,
		container.NewHBox(rp.prevBtn, rp.nextBtn, rp.visibleBtn, rp.browseBtn),
		widget.NewSeparator(),
		tabs,
	)

	state.On(app.EventRecordsChanged, func(interface{}) { rp.Reload() })
	state.On(app.EventDocumentChanged, func(interface{}) { rp.Reload() })
	state.On(app.EventPlacementUpdated, func(interface{}) { rp.refreshCurrentScale() })

	rp.Reload()
	return rp
}

// SetWindow sets the parent window used for dialogs.
func (rp *RefPanel) SetWindow(win fyne.Window) {
	rp.win = win
}

// Container returns the panel's root widget.
func (rp *RefPanel) Container() fyne.CanvasObject {
	return rp.box
}

func (rp *RefPanel) buildRecordRow() {
	rp.recordSelect = widget.NewSelect(nil, func(name string) {
		if rp.updating {
			return
		}
		rp.state.SelectReference(name)
	})
	rp.recordSelect.PlaceHolder = "(no references)"

	rp.addBtn = widget.NewButton("+", rp.onAdd)
	rp.deleteBtn = widget.NewButton("-", func() {
		rp.state.DeleteReference()
	})
}

func (rp *RefPanel) buildSourceRow() {
	rp.pathLabel = widget.NewLabel("")
	rp.pathLabel.Truncation = fyne.TextTruncateEllipsis

	rp.prevBtn = widget.NewButton("<", func() {
		if err := rp.state.PrevImage(); err != nil {
			rp.showError(err)
		}
	})
	rp.nextBtn = widget.NewButton(">", func() {
		if err := rp.state.NextImage(); err != nil {
			rp.showError(err)
		}
	})
	rp.visibleBtn = widget.NewButton("Hide", func() {
		if rp.state.ToggleVisible() {
			rp.visibleBtn.SetText("Hide")
		} else {
			rp.visibleBtn.SetText("Show")
		}
	})
	rp.browseBtn = widget.NewButton("Browse...", rp.onBrowse)
}

func (rp *RefPanel) buildAlignmentTab() fyne.CanvasObject {
	grid := container.NewGridWithColumns(3)
	for i := 0; i < 9; i++ {
		a := transform.Alignment(i)
		check := widget.NewCheck("", func(on bool) {
			rp.onAlignChecked(a, on)
		})
		rp.alignChecks[i] = check
		grid.Add(check)
	}
	return container.NewVBox(widget.NewLabel("Position inside margins:"), grid)
}

// onAlignChecked keeps the nine checks mutually exclusive, the way a
// radio grid would, and applies the chosen alignment.
func (rp *RefPanel) onAlignChecked(a transform.Alignment, on bool) {
	if rp.updating {
		return
	}
	if !on {
		// Re-check: one box is always selected.
		rp.updating = true
		rp.alignChecks[a].SetChecked(true)
		rp.updating = false
		return
	}
	rp.updating = true
	for i, check := range rp.alignChecks {
		check.SetChecked(transform.Alignment(i) == a)
	}
	rp.updating = false
	if err := rp.state.SetAlignment(a); err != nil {
		rp.showError(err)
	}
}

func (rp *RefPanel) buildMarginsTab() fyne.CanvasObject {
	rp.leftEntry = rp.newMarginEntry()
	rp.rightEntry = rp.newMarginEntry()
	rp.topEntry = rp.newMarginEntry()
	rp.bottomEntry = rp.newMarginEntry()

	rp.widthEntry = widget.NewEntry()
	rp.widthEntry.OnSubmitted = func(string) { rp.commitSize() }
	rp.heightEntry = widget.NewEntry()
	rp.heightEntry.OnSubmitted = func(string) { rp.commitSize() }

	rp.lockWidth = widget.NewCheck("Lock width", nil)
	rp.lockHeight = widget.NewCheck("Lock height", nil)

	form := container.New(layoutTwoColumns(),
		widget.NewLabel("Left:"), rp.leftEntry,
		widget.NewLabel("Right:"), rp.rightEntry,
		widget.NewLabel("Top:"), rp.topEntry,
		widget.NewLabel("Bottom:"), rp.bottomEntry,
		widget.NewLabel("Width:"), rp.widthEntry,
		widget.NewLabel("Height:"), rp.heightEntry,
	)
	return container.NewVBox(form, rp.lockWidth, rp.lockHeight)
}

func layoutTwoColumns() fyne.Layout {
	return layout2col{}
}

// layout2col is a plain two-column grid; GridWithColumns stretches rows
// evenly which wastes panel height, so rows here hug their min size.
type layout2col struct{}

func (layout2col) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var w1, w2, h float32
	for i, o := range objects {
		min := o.MinSize()
		if i%2 == 0 {
			if min.Width > w1 {
				w1 = min.Width
			}
		} else {
			if min.Width > w2 {
				w2 = min.Width
			}
			h += min.Height
		}
	}
	return fyne.NewSize(w1+w2, h)
}

func (layout2col) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	var w1 float32
	for i, o := range objects {
		if i%2 == 0 && o.MinSize().Width > w1 {
			w1 = o.MinSize().Width
		}
	}
	var y float32
	for i := 0; i+1 < len(objects); i += 2 {
		label, field := objects[i], objects[i+1]
		rowH := field.MinSize().Height
		label.Resize(fyne.NewSize(w1, rowH))
		label.Move(fyne.NewPos(0, y))
		field.Resize(fyne.NewSize(size.Width-w1, rowH))
		field.Move(fyne.NewPos(w1, y))
		y += rowH
	}
}

func (rp *RefPanel) newMarginEntry() *widget.Entry {
	e := widget.NewEntry()
	e.OnSubmitted = func(string) { rp.commitMargins() }
	return e
}

// commitMargins applies the margin entries. With a lock engaged the
// opposite margin absorbs the change so the container keeps its size.
func (rp *RefPanel) commitMargins() {
	if rp.updating {
		return
	}
	doc := rp.state.ActiveDocument()
	rec := rp.state.ActiveRecord()
	if doc == nil || rec == nil {
		return
	}
	m := transform.Margins{
		Left:   rp.entryInt(rp.leftEntry, rec.Margins.Left),
		Right:  rp.entryInt(rp.rightEntry, rec.Margins.Right),
		Top:    rp.entryInt(rp.topEntry, rec.Margins.Top),
		Bottom: rp.entryInt(rp.bottomEntry, rec.Margins.Bottom),
	}
	if rp.lockWidth.Checked {
		width := doc.Bounds().Width - rec.Margins.Left - rec.Margins.Right
		m.Right = doc.Bounds().Width - m.Left - width
	}
	if rp.lockHeight.Checked {
		height := doc.Bounds().Height - rec.Margins.Top - rec.Margins.Bottom
		m.Bottom = doc.Bounds().Height - m.Top - height
	}
	if err := rp.state.SetMargins(m); err != nil {
		rp.showError(err)
	}
	rp.loadMargins(rec)
}

// commitSize applies the width/height entries by moving the right and
// bottom margins.
func (rp *RefPanel) commitSize() {
	if rp.updating {
		return
	}
	doc := rp.state.ActiveDocument()
	rec := rp.state.ActiveRecord()
	if doc == nil || rec == nil {
		return
	}
	m := rec.Margins
	if w := rp.entryInt(rp.widthEntry, -1); w >= 0 {
		m.Right = doc.Bounds().Width - m.Left - w
	}
	if h := rp.entryInt(rp.heightEntry, -1); h >= 0 {
		m.Bottom = doc.Bounds().Height - m.Top - h
	}
	if err := rp.state.SetMargins(m); err != nil {
		rp.showError(err)
	}
	rp.loadMargins(rec)
}

func (rp *RefPanel) entryInt(e *widget.Entry, fallback int) int {
	v, err := strconv.Atoi(e.Text)
	if err != nil {
		return fallback
	}
	return v
}

func (rp *RefPanel) buildScaleTab() fyne.CanvasObject {
	rp.scaleEntry = widget.NewEntry()
	rp.scaleEntry.OnSubmitted = func(text string) {
		if rp.updating {
			return
		}
		pct, err := strconv.ParseFloat(text, 64)
		if err != nil || pct <= 0 {
			rp.refreshCurrentScale()
			return
		}
		if err := rp.state.SetScale(pct / 100); err != nil {
			rp.showError(err)
		}
	}

	rp.fitCheck = widget.NewCheck("Scale to fit", func(on bool) {
		if rp.updating {
			return
		}
		if err := rp.state.SetScaleToFit(on); err != nil {
			rp.showError(err)
		}
	})

	rp.currentScale = widget.NewLabel("")

	return container.New(layoutTwoColumns(),
		widget.NewLabel("Scale (%):"), rp.scaleEntry,
		widget.NewLabel(""), rp.fitCheck,
		widget.NewLabel("Effective:"), rp.currentScale,
	)
}

func (rp *RefPanel) onAdd() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		if err := rp.state.AddReference(reader.URI().Path()); err != nil {
			rp.showError(err)
		}
	}, rp.win)
	fd.SetFilter(storage.NewExtensionFileFilter(document.SupportedExtensions()))
	fd.Show()
}

func (rp *RefPanel) onBrowse() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		if err := rp.state.SetPath(reader.URI().Path()); err != nil {
			rp.showError(err)
		}
	}, rp.win)
	fd.SetFilter(storage.NewExtensionFileFilter(document.SupportedExtensions()))
	fd.Show()
}

// Reload repopulates every widget from the active record.
func (rp *RefPanel) Reload() {
	rp.updating = true
	defer func() { rp.updating = false }()

	st := rp.state.RefState()
	if st == nil {
		rp.recordSelect.Options = nil
		rp.recordSelect.ClearSelected()
		rp.setEnabled(false)
		return
	}
	rp.recordSelect.Options = st.LayerNames()
	rec := st.Active()
	if rec == nil {
		rp.recordSelect.ClearSelected()
		rp.recordSelect.Refresh()
		rp.setEnabled(false)
		return
	}
	rp.setEnabled(true)
	rp.recordSelect.SetSelected(rec.LayerName)

	rp.pathLabel.SetText(filepath.Base(rec.Path))
	if doc := rp.state.ActiveDocument(); doc != nil {
		if node := rec.Node(doc); node != nil && !node.Visible() {
			rp.visibleBtn.SetText("Show")
		} else {
			rp.visibleBtn.SetText("Hide")
		}
	}

	for i, check := range rp.alignChecks {
		check.SetChecked(transform.Alignment(i) == rec.Alignment)
	}
	rp.loadMargins(rec)
	rp.scaleEntry.SetText(strconv.FormatFloat(rec.Scale*100, 'f', -1, 64))
	rp.fitCheck.SetChecked(rec.ScaleToFit)
	rp.refreshCurrentScale()
}

// loadMargins fills the margin and size entries from a record.
func (rp *RefPanel) loadMargins(rec *reflayer.Record) {
	was := rp.updating
	rp.updating = true
	defer func() { rp.updating = was }()

	rp.leftEntry.SetText(strconv.Itoa(rec.Margins.Left))
	rp.rightEntry.SetText(strconv.Itoa(rec.Margins.Right))
	rp.topEntry.SetText(strconv.Itoa(rec.Margins.Top))
	rp.bottomEntry.SetText(strconv.Itoa(rec.Margins.Bottom))
	if doc := rp.state.ActiveDocument(); doc != nil {
		rp.widthEntry.SetText(strconv.Itoa(doc.Bounds().Width - rec.Margins.Left - rec.Margins.Right))
		rp.heightEntry.SetText(strconv.Itoa(doc.Bounds().Height - rec.Margins.Top - rec.Margins.Bottom))
	}
}

func (rp *RefPanel) setEnabled(on bool) {
	widgets := []fyne.Disableable{
		rp.deleteBtn, rp.browseBtn, rp.prevBtn, rp.nextBtn, rp.visibleBtn,
		rp.leftEntry, rp.rightEntry, rp.topEntry, rp.bottomEntry,
		rp.widthEntry, rp.heightEntry, rp.scaleEntry, rp.fitCheck,
	}
	for _, w := range widgets {
		if on {
			w.Enable()
		} else {
			w.Disable()
		}
	}
	for _, check := range rp.alignChecks {
		if on {
			check.Enable()
		} else {
			check.Disable()
		}
	}
}

// refreshCurrentScale updates the effective-scale readout.
func (rp *RefPanel) refreshCurrentScale() {
	rec := rp.state.ActiveRecord()
	if rec == nil {
		rp.currentScale.SetText("")
		return
	}
	rp.currentScale.SetText(fmt.Sprintf("%.1f%%", rec.CurrentScale*100))
}

func (rp *RefPanel) showError(err error) {
	if rp.win != nil {
		dialog.ShowError(err, rp.win)
	}
}
