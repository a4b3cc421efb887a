package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stardust/internal/modifier"
)

var modifiersCmd = &cobra.Command{
	Use:   "modifiers",
	Short: "List run modifiers",
	Long:  `Shows every registered run modifier and today's seed for those with one.`,
	Args:  cobra.NoArgs,
	Run:   runModifiers,
}

func runModifiers(_ *cobra.Command, _ []string) {
	defs := modifier.List()

	maxIDLen := 2 // "ID" header
	for _, d := range defs {
		maxIDLen = max(maxIDLen, len(d.ID))
	}

	fmt.Println("Available modifiers:")
	fmt.Println()
	fmt.Printf("  %-*s  %-10s  %s\n", maxIDLen, "ID", "Hand bonus", "Seed")
	fmt.Printf("  %-*s  %-10s  %s\n", maxIDLen, "--", "----------", "----")

	now := time.Now()
	for _, d := range defs {
		seed := d.SeedFor(now)
		if seed == "" {
			seed = "-"
		}
		fmt.Printf("  %-*s  %-10d  %s\n", maxIDLen, d.ID, d.HandBonus, seed)
	}

	fmt.Println()
	fmt.Println("Run 'stardust play --modifier <id>' to start a run with one.")
}
