package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/i18n"
	"github.com/vovakirdan/stardust/internal/platform/tui"
	"github.com/vovakirdan/stardust/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stardust SSH server",
	Long: `Start an SSH server that lets players connect and climb.

The SSH user name picks the save profile, so reconnecting as the same
user resumes the same run and history.

Host key handling:
  - If --host-key (or server.host_key_path) is set, uses that key file
  - Otherwise, auto-generates a key at ~/.stardust/host_key

Examples:
  stardust serve                           # Listen on the configured address
  stardust serve --ssh :2222               # Listen on port 2222
  stardust serve --host-key ./my_host_key  # Use specific host key

Players connect with:
  ssh alice@localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.Server.Addr
	if flagSSHAddr != "" {
		addr = flagSSHAddr
	}
	hostKey := cfg.Server.HostKeyPath
	if flagHostKey != "" {
		hostKey = flagHostKey
	}

	lib, err := content.Default()
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	bundle, err := i18n.Default()
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     addr,
		HostKeyPath: hostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Settings:    cfg.CoreSettings(),
	}, store, lib, bundle, logger)
	if err != nil {
		store.Close()
		return err
	}

	fmt.Printf("Starting stardust SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe(cmd.Context())
}
