package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stardust/internal/storage"
)

var (
	flagLimit    int
	flagProfiles bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished runs",
	Long: `Display the most recent finished runs for a profile, newest first,
followed by lifetime stats.

Examples:
  stardust history
  stardust history --profile alice --limit 5
  stardust history --profiles`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&flagProfiles, "profiles", false, "List profiles instead of runs")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagProfiles {
		profiles, err := store.Profiles(ctx)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles yet.")
			return nil
		}
		fmt.Printf("  %-16s  %-9s  %s\n", "Profile", "Saved run", "Last saved")
		fmt.Printf("  %-16s  %-9s  %s\n", "-------", "---------", "----------")
		for _, p := range profiles {
			saved := "no"
			if p.HasRun {
				saved = "yes"
			}
			fmt.Printf("  %-16s  %-9s  %s\n", p.Name, saved, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	}

	profile := store.Profile(cfg.Storage.Profile)
	runs, err := profile.RecentRuns(ctx, flagLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Run history - %s\n", profile.Name())
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'stardust play' to start your first climb!")
		return nil
	}

	fmt.Printf("  %-16s  %-12s  %-10s  %-7s  %-5s  %s\n", "Date", "Seed", "Modifier", "Outcome", "Floor", "Stardust")
	fmt.Printf("  %-16s  %-12s  %-10s  %-7s  %-5s  %s\n", "----", "----", "--------", "-------", "-----", "--------")
	for _, r := range runs {
		outcome := "loss"
		if r.Victory {
			outcome = "win"
		}
		fmt.Printf("  %-16s  %-12s  %-10s  %-7s  %-5d  +%d\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"), r.Seed, r.Modifier, outcome, r.Floor, r.Reward)
	}

	stats, err := profile.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Wins: %d (%.0f%%)  Best floor: %d  Stardust earned: %d\n",
		stats.Runs, stats.Wins, stats.WinRate()*100, stats.BestFloor, stats.TotalStardust)
	return nil
}
