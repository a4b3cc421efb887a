package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/core"
	"github.com/vovakirdan/stardust/internal/i18n"
	"github.com/vovakirdan/stardust/internal/run"
	"github.com/vovakirdan/stardust/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.stardust/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Settings apply to every session.
	Settings core.Settings
}

// SSHServer serves one run per SSH session. The SSH user name selects the
// save profile, so reconnecting resumes the same run.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	lib    *content.Library
	bundle *i18n.Bundle
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. The server takes ownership of store.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, lib *content.Library, bundle *i18n.Bundle, logger *log.Logger) (*SSHServer, error) {
	if store == nil {
		return nil, errors.New("ssh server needs a store")
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "stardust-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		lib:    lib,
		bundle: bundle,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".stardust", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a run session for each SSH connection.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	profile := s.store.Profile(sess.User())
	loc := s.bundle.Localizer(s.config.Settings.Language)
	svc := core.Services{
		Audio:     NewBell(sess, s.config.Settings),
		Localizer: loc,
		Settings:  s.config.Settings,
	}
	logger := s.logger.With("profile", profile.Name())

	mgr := run.NewManager(profile, s.lib, svc, logger)
	if err := mgr.Init(sess.Context()); err != nil {
		logger.Error("load meta", "error", err)
		return nil, nil
	}
	if _, err := mgr.LoadRun(sess.Context()); err != nil {
		logger.Warn("discarding unreadable save", "error", err)
	}

	model := NewModel(sess.Context(), Options{
		Manager:   mgr,
		Localizer: loc,
		History:   profile,
		Width:     pty.Window.Width,
		Height:    pty.Window.Height,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is done or the
// process is interrupted.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errc:
		if ok {
			s.logger.Error("server error", "error", err)
			s.store.Close()
			return err
		}
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server and closes the store.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
