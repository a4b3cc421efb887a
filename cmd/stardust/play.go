package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stardust/internal/modifier"
	"github.com/vovakirdan/stardust/internal/run"
	"github.com/vovakirdan/stardust/internal/share"
)

var (
	flagSeed     string
	flagModifier string
	flagToken    string
	flagGhost    string
	flagLink     string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Stardust Runner",
	Long: `Open the game. Without flags the title menu is shown; any of the
run flags starts a new run straight away, replacing the saved one.

Controls:
  Up/Down, H/J/K/L  - Move the cursor
  Enter/Space       - Play card / choose
  E                 - End turn
  S                 - Skip reward / leave shop
  P                 - Drink a potion
  G                 - Replay the ghost's next move
  Esc/B             - Back to title
  Q/Ctrl+C          - Quit

Examples:
  stardust play
  stardust play --seed 12345
  stardust play --modifier daily
  stardust play --token eyJzZWVkIjoi...
  stardust play --link 'https://example.com/#run=...&ghost=...'`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Start today's daily run",
	Long: `Start the daily run: a seed shared by every player for the current
UTC day, with one extra strike, defend and card in hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flagModifier = modifier.Daily
		return runPlay(cmd, nil)
	},
}

var continueCmd = &cobra.Command{
	Use:   "continue",
	Short: "Resume the saved run",
	Args:  cobra.NoArgs,
	RunE:  runContinue,
}

func init() {
	playCmd.Flags().StringVar(&flagSeed, "seed", "", "Run seed (random if empty)")
	playCmd.Flags().StringVar(&flagModifier, "modifier", "", "Run modifier id (see 'stardust modifiers')")
	playCmd.Flags().StringVar(&flagToken, "token", "", "Start from a shared run token")
	playCmd.Flags().StringVar(&flagGhost, "ghost", "", "Race a shared ghost token")
	playCmd.Flags().StringVar(&flagLink, "link", "", "Start from a share link or fragment")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	token, ghost := flagToken, flagGhost
	if flagLink != "" {
		f := share.ParseFragment(flagLink)
		if f.Run == "" && f.Ghost == "" {
			return fmt.Errorf("link %q has no run or ghost token", flagLink)
		}
		token, ghost = f.Run, f.Ghost
	}

	if ghost != "" {
		log := share.DecodeGhost(ghost)
		if len(log) == 0 {
			return errors.New("ghost token is empty or malformed")
		}
		s.mgr.AttachGhost(run.NewGhost(log))
	}

	switch {
	case token != "":
		tok, ok := share.DecodeRun(token)
		if !ok {
			return errors.New("run token is malformed")
		}
		if err := s.mgr.NewRunFromToken(ctx, tok); err != nil {
			return err
		}
	case flagModifier != "":
		if err := s.mgr.StartModifier(ctx, flagModifier, flagSeed); err != nil {
			return err
		}
	case flagSeed != "" || ghost != "":
		if err := s.mgr.NewRun(ctx, flagSeed, modifier.Modifier{}); err != nil {
			return err
		}
	}

	return s.runTUI(ctx)
}

func runContinue(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	ok, err := s.mgr.LoadRun(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no saved run for profile %q", s.profile.Name())
	}
	return s.runTUI(ctx)
}
