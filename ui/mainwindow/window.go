// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"github.com/evnlme/RefLayer/internal/app"
	"github.com/evnlme/RefLayer/internal/version"
	"github.com/evnlme/RefLayer/ui/canvas"
	"github.com/evnlme/RefLayer/ui/panels"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	prefKeyLastDir      = "lastDirectory"
	prefKeyLastDocument = "lastDocument"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	canvas    *canvas.ImageCanvas
	refPanel  *panels.RefPanel
	docSelect *widget.Select
	statusBar *widget.Label

	// Menu items that need state tracking
	fitToWindowItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State) *MainWindow {
	win := fyneApp.NewWindow("RefLayer")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restoreLastDocument()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas()

	mw.refPanel = panels.NewRefPanel(mw.state)
	mw.refPanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,               // top
		nil,                   // bottom
		nil,                   // left
		nil,                   // right
		mw.canvas.Container(), // center
	)

	// Main layout: reference panel | canvas area
	split := container.NewHSplit(
		mw.refPanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// createToolbar creates the toolbar with the document switcher and zoom
// controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.docSelect = widget.NewSelect(nil, func(name string) {
		if mw.state.ActiveDocument() != nil && mw.state.ActiveDocument().Name() == name {
			return
		}
		mw.state.SetActiveDocument(name)
	})
	mw.docSelect.PlaceHolder = "(no document)"

	zoomOutBtn := widget.NewButton("-", func() {
		mw.canvas.ZoomOut()
	})
	zoomInBtn := widget.NewButton("+", func() {
		mw.canvas.ZoomIn()
	})
	fitBtn := widget.NewButton("Fit", func() {
		mw.onToggleFitToWindow()
	})
	actualBtn := widget.NewButton("1:1", func() {
		mw.onActualSize()
	})

	return container.NewHBox(
		widget.NewLabel("Document:"),
		mw.docSelect,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Document...", mw.onNewDocument),
		fyne.NewMenuItem("Open Document...", mw.onOpenDocument),
		fyne.NewMenuItem("Save Document As...", mw.onSaveDocument),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Flattened...", mw.onExportFlattened),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close Document", mw.onCloseDocument),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("  Fit to Window", mw.onToggleFitToWindow)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDocumentChanged, func(data interface{}) {
		mw.syncDocuments()
		mw.redraw()
		if doc := mw.state.ActiveDocument(); doc != nil {
			mw.SetTitle("RefLayer - " + doc.Name())
			mw.updateStatus("Active document: " + doc.Name())
		} else {
			mw.SetTitle("RefLayer")
			mw.updateStatus("Ready")
		}
	})

	mw.state.On(app.EventPlacementUpdated, func(data interface{}) {
		mw.redraw()
	})

	mw.state.On(app.EventRecordsChanged, func(data interface{}) {
		mw.redraw()
	})

	mw.state.On(app.EventVisibilityChanged, func(data interface{}) {
		mw.redraw()
	})
}

// redraw re-composites the active document into the canvas.
func (mw *MainWindow) redraw() {
	doc := mw.state.ActiveDocument()
	if doc == nil {
		mw.canvas.SetImage(nil)
		return
	}
	mw.canvas.SetImage(doc.Refresh())
}

// syncDocuments refreshes the document switcher options.
func (mw *MainWindow) syncDocuments() {
	mw.docSelect.Options = mw.state.DocumentNames()
	if doc := mw.state.ActiveDocument(); doc != nil {
		mw.docSelect.SetSelected(doc.Name())
	} else {
		mw.docSelect.ClearSelected()
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// restoreLastDocument reopens the document used in the last session.
func (mw *MainWindow) restoreLastDocument() {
	path := mw.app.Preferences().String(prefKeyLastDocument)
	if path == "" {
		return
	}
	if _, err := mw.state.OpenDocument(path); err != nil {
		mw.updateStatus("Could not reopen " + filepath.Base(path))
	}
}

// Menu action handlers

func (mw *MainWindow) onNewDocument() {
	name := widget.NewEntry()
	name.SetText("Untitled")
	width := widget.NewEntry()
	width.SetText("1920")
	height := widget.NewEntry()
	height.SetText("1080")

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Width", width),
		widget.NewFormItem("Height", height),
	}
	dialog.ShowForm("New Document", "Create", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		var w, h int
		if _, err := fmt.Sscanf(width.Text+" "+height.Text, "%d %d", &w, &h); err != nil || w <= 0 || h <= 0 {
			dialog.ShowError(fmt.Errorf("invalid canvas size %q x %q", width.Text, height.Text), mw.Window)
			return
		}
		if _, err := mw.state.NewDocument(name.Text, w, h); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
}

func (mw *MainWindow) onOpenDocument() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if _, err := mw.state.OpenDocument(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.app.Preferences().SetString(prefKeyLastDocument, path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".refdoc"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveDocument() {
	if mw.state.ActiveDocument() == nil {
		mw.updateStatus("No document to save")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".refdoc" {
			path += ".refdoc"
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveDocument(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.app.Preferences().SetString(prefKeyLastDocument, path)
		mw.updateStatus("Saved " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName(mw.state.ActiveDocument().Name() + ".refdoc")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportFlattened() {
	doc := mw.state.ActiveDocument()
	if doc == nil {
		mw.updateStatus("No document to export")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)
		if err := doc.ExportFlattened(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName(doc.Name() + ".png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onCloseDocument() {
	if doc := mw.state.ActiveDocument(); doc != nil {
		mw.state.CloseDocument(doc.Name())
	}
}

func (mw *MainWindow) onToggleFitToWindow() {
	enabled := !mw.canvas.GetFitToWindow()
	mw.canvas.SetFitToWindow(enabled)

	if enabled {
		mw.fitToWindowItem.Label = "✓ Fit to Window"
	} else {
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onActualSize() {
	mw.canvas.SetZoom(1.0)
	mw.fitToWindowItem.Label = "  Fit to Window"
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About RefLayer",
		fmt.Sprintf("RefLayer v%s\n\n"+
			"Pins reference images inside the document canvas,\n"+
			"scaled and aligned within configurable margins.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
