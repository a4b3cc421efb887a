package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stardust/internal/share"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <token|link>",
	Short: "Inspect a share token or link",
	Long: `Print what a share token carries. Accepts a bare run token or a link
or fragment with run= and ghost= parts.

Examples:
  stardust decode eyJzZWVkIjoiMTIzIn0
  stardust decode '#run=eyJ...&ghost=W3s...'`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func runDecode(_ *cobra.Command, args []string) error {
	arg := args[0]

	f := share.Fragment{Run: arg}
	if strings.Contains(arg, "=") && (strings.Contains(arg, "run=") || strings.Contains(arg, "ghost=")) {
		f = share.ParseFragment(arg)
	}

	found := false
	if f.Run != "" {
		tok, ok := share.DecodeRun(f.Run)
		if !ok {
			return errors.New("run token is malformed")
		}
		found = true

		mod := "standard"
		if tok.Modifier != nil && tok.Modifier.ID != "" {
			mod = tok.Modifier.ID
		}
		fmt.Printf("Seed:     %s\n", tok.Seed)
		fmt.Printf("Modifier: %s\n", mod)
		fmt.Printf("Deck:     %d cards\n", len(tok.Deck))
		for _, id := range tok.Deck {
			fmt.Printf("  %s\n", id)
		}
	}

	if f.Ghost != "" {
		entries := share.DecodeGhost(f.Ghost)
		found = found || len(entries) > 0
		fmt.Printf("Ghost:    %d actions\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  %d  %s\n", e.T, e.Action)
		}
	}

	if !found {
		return errors.New("nothing to decode")
	}
	return nil
}
