package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/core"
	"github.com/vovakirdan/stardust/internal/i18n"
	"github.com/vovakirdan/stardust/internal/platform/tui"
	"github.com/vovakirdan/stardust/internal/run"
	"github.com/vovakirdan/stardust/internal/storage"
)

// session is everything an interactive command needs for one profile.
type session struct {
	store   *storage.Store
	profile *storage.Profile
	lib     *content.Library
	loc     *i18n.Localizer
	mgr     *run.Manager
	logFile *os.File
}

// openSession opens the save database and builds a manager for the
// configured profile. While the TUI owns the terminal, logs go to a file
// next to the database.
func openSession(ctx context.Context) (*session, error) {
	lib, err := content.Default()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	bundle, err := i18n.Default()
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	s := &session{
		store:   store,
		profile: store.Profile(cfg.Storage.Profile),
		lib:     lib,
		loc:     bundle.Localizer(cfg.Settings.Language),
	}

	runLogger := logger
	if f, err := openLogFile(cfg.Storage.DBPath); err == nil {
		s.logFile = f
		runLogger = log.NewWithOptions(f, log.Options{
			ReportTimestamp: true,
			Prefix:          "stardust",
			Level:           cfg.LogLevel(),
		})
	}

	settings := cfg.CoreSettings()
	svc := core.Services{
		Audio:     tui.NewBell(os.Stdout, settings),
		Localizer: s.loc,
		Settings:  settings,
	}
	s.mgr = run.NewManager(s.profile, lib, svc, runLogger.With("profile", s.profile.Name()))
	if err := s.mgr.Init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database and log file.
func (s *session) Close() {
	s.store.Close()
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// runTUI hands the terminal to the run UI.
func (s *session) runTUI(ctx context.Context) error {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	return tui.Run(ctx, tui.Options{
		Manager:   s.mgr,
		Localizer: s.loc,
		History:   s.profile,
		Width:     width,
		Height:    height,
	})
}

func openLogFile(dbPath string) (*os.File, error) {
	if strings.HasPrefix(dbPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[2:])
	}
	path := filepath.Join(filepath.Dir(dbPath), "stardust.log")
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
