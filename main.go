package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/steward/internal/config"
	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/digest"
	"github.com/sadopc/steward/internal/dispatch"
	"github.com/sadopc/steward/internal/remind"
	"github.com/sadopc/steward/internal/store"
	"github.com/sadopc/steward/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so debug logs go to a file or nowhere.
	log := slog.New(slog.DiscardHandler)
	if cfg.Debug {
		f, err := os.OpenFile(cfg.DebugLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	machine := dialog.NewMachine(s, cfg.Limits, cfg.DialogTimeout)
	engine := digest.New(s, digestLocation(s))

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dispatcher := dispatch.New(s, machine, engine, home, log)

	var p *tea.Program
	scheduler := remind.New(s, remind.Handler{
		Daily:   func(d *digest.Daily) { p.Send(tui.DailyMsg{Payload: d}) },
		Evening: func(e *digest.Evening) { p.Send(tui.EveningMsg{Payload: e}) },
		Weekly:  func(w *digest.Weekly) { p.Send(tui.WeeklyMsg{Payload: w}) },
		Monthly: func(m *digest.Monthly) { p.Send(tui.MonthlyMsg{Payload: m}) },
	}, log)

	app := tui.NewApp(dispatcher, func() {
		if err := scheduler.Start(); err != nil {
			log.Error("scheduler restart failed", "err", err)
		}
	})
	p = tea.NewProgram(app, tea.WithAltScreen())

	if err := scheduler.Start(); err != nil {
		log.Error("scheduler start failed", "err", err)
	}
	defer scheduler.Stop()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// digestLocation resolves the settings timezone for interactive digest views.
func digestLocation(s *store.Store) *time.Location {
	settings, err := s.GetSettings()
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
