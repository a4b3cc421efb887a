// stardust is a deterministic deck-building roguelike for the terminal.
//
// Usage:
//
//	stardust play              - Open the game, or start a run from flags
//	stardust daily             - Start today's shared daily run
//	stardust continue          - Resume the saved run
//	stardust history           - Show finished runs for a profile
//	stardust decode <token>    - Inspect a share token or link
//	stardust modifiers         - List run modifiers
//	stardust serve             - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>   - Config file (default: search ~/.stardust and ./configs)
//	--profile <name>  - Save profile (default: from config)
//	--db <path>       - Save database path (default: from config)
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/stardust/internal/config"
)

var (
	// Global flags
	flagConfig  string
	flagProfile string
	flagDBPath  string

	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stardust",
	Short: "Stardust Runner - a seeded deck-building climb in your terminal",
	Long: `Stardust Runner is a deck-building roguelike. Climb ten floors of
battles, shops and events with a deck you build as you go. Every run is
seeded, so a run can be shared as a token and replayed exactly.

Available commands:
  play       - Start a new run
  daily      - Start today's daily run
  continue   - Resume the saved run
  history    - Show finished runs
  decode     - Inspect a share token or link
  modifiers  - List run modifiers
  serve      - Start SSH server for remote play

Examples:
  stardust play
  stardust play --seed 12345
  stardust play --link '#run=eyJ...&ghost=W3s...'
  stardust daily --profile alice
  stardust serve --ssh :2222`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Save profile name")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to save database")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(modifiersCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads .env, the config file and flag overrides, then builds the
// logger shared by every command.
func setup(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagProfile != "" {
		cfg.Storage.Profile = flagProfile
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "stardust",
		Level:           cfg.LogLevel(),
	})
	return nil
}
