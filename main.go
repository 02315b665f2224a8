package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/storage"
	"taskdeck/internal/store"
	"taskdeck/internal/tui"
)

func main() {
	dbPath, err := storage.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	adapter, err := storage.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer adapter.Close()

	tasks, err := store.NewTaskStore(adapter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading tasks: %v\n", err)
		os.Exit(1)
	}
	profile, err := store.NewProfileStore(adapter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading profile: %v\n", err)
		os.Exit(1)
	}
	settings, err := store.NewSettingsStore(adapter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading settings: %v\n", err)
		os.Exit(1)
	}

	app := tui.NewApp(tasks, profile, settings)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
