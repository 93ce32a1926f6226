package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/dailytask/internal/config"
	"github.com/nissyi-gh/dailytask/internal/importer"
	"github.com/nissyi-gh/dailytask/internal/notify"
	"github.com/nissyi-gh/dailytask/internal/store"
	"github.com/nissyi-gh/dailytask/internal/tasks"
	"github.com/nissyi-gh/dailytask/internal/timesheet"
	"github.com/nissyi-gh/dailytask/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file (default $XDG_CONFIG_HOME/dailytask/config.yaml)")
	dbPath := flag.String("db", "", "Path to the task database (overrides config)")
	logPath := flag.String("log", "", "Write logs to this file (overrides config)")
	exportDir := flag.String("export", "", "Export the timesheet into this directory and exit")
	importFile := flag.String("import", "", "Import tasks from a YAML file and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *logPath != "" {
		cfg.Log.File = *logPath
	}

	slots, err := store.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer slots.Close()

	headless := *exportDir != "" || *importFile != ""
	if !headless {
		closeLog, err := setupLogging(cfg.Log.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
	}

	taskStore := tasks.Open(slots, tasks.WithKey(cfg.Storage.Key))

	if headless {
		if err := runHeadless(taskStore, *importFile, *exportDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slots.Close()
			os.Exit(1)
		}
		return
	}

	var notifier notify.Notifier = notify.Disabled{}
	if cfg.Notifications.Enabled {
		notifier = notify.NewDesktop()
	}

	m := ui.NewModel(taskStore, notifier, ui.Options{
		TickInterval:     cfg.Timers.TickInterval,
		ReminderInterval: cfg.Timers.ReminderInterval,
		ExportDir:        cfg.Export.Dir,
		CopyToClipboard:  cfg.Export.CopyToClipboard,
		LastSaved: func() (time.Time, bool, error) {
			return slots.UpdatedAt(cfg.Storage.Key)
		},
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		slots.Close()
		os.Exit(1)
	}
}

// setupLogging keeps log output off the terminal while the TUI owns it.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "dailytask")
	if err != nil {
		return nil, err
	}
	return func() { f.Close() }, nil
}

func runHeadless(s *tasks.Store, importFile, exportDir string) error {
	if importFile != "" {
		data, err := os.ReadFile(importFile)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		n, err := importer.Import(s, string(data))
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d tasks\n", n)
	}
	if exportDir != "" {
		path, err := timesheet.Export(exportDir, s.Tasks(), time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Timesheet written to %s\n", path)
	}
	return nil
}
