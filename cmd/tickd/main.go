// Command tickd is the terminal multi-activity stopwatch.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hkarvonen/tickd/internal/app"
	"github.com/hkarvonen/tickd/internal/config"
	"github.com/hkarvonen/tickd/internal/localstore"
	"github.com/hkarvonen/tickd/internal/mirror"
	"github.com/hkarvonen/tickd/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tickd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := localstore.NewStore(cfg.Data.Dir, logger)
	if err != nil {
		return err
	}

	var m app.Mirror
	if cfg.SyncEnabled() {
		m = mirror.NewClient(cfg.Sync.ServerURL, cfg.Sync.PrincipalID)
		logger.Printf("Main: sync enabled against %s", cfg.Sync.ServerURL)
	}

	svc := app.NewService(store, m, logger,
		app.WithTickInterval(time.Duration(cfg.UI.TickMs)*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.Queue().Start(ctx)

	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	program := tea.NewProgram(ui.NewModel(svc), tea.WithAltScreen())

	svc.OnChange(func() {
		program.Send(ui.RefreshMsg{})
	})

	watcher := localstore.NewWatcher(store, svc.HandleExternalChange, logger)
	watcher.Start()

	_, runErr := program.Run()

	watcher.Stop()
	cancel()
	svc.Queue().Stop()
	svc.Scheduler().Shutdown()
	return runErr
}

func buildLogger(cfg *config.Config) (*log.Logger, func(), error) {
	if cfg.Log.File == "" {
		// The TUI owns stdout; keep the default logger quiet on stderr.
		return log.New(os.Stderr, "", log.LstdFlags), func() {}, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }, nil
}
