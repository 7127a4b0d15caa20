// Package main provides the entry point for the RefLayer application.
package main

import (
	"log"
	"os"

	"github.com/evnlme/RefLayer/internal/app"
	"github.com/evnlme/RefLayer/internal/version"
	"github.com/evnlme/RefLayer/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting RefLayer v%s", version.Version)

	fyneApp := fyneapp.NewWithID("com.evnlme.reflayer")
	fyneApp.Settings().SetTheme(&app.RefLayerTheme{})

	appState := app.NewState()
	win := mainwindow.New(fyneApp, appState)

	// Open documents passed on the command line.
	for _, path := range os.Args[1:] {
		if _, err := appState.OpenDocument(path); err != nil {
			log.Printf("Failed to open document %s: %v", path, err)
		}
	}

	win.ShowAndRun()
}
