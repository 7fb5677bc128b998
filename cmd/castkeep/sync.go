// ABOUTME: Sync command reconciling tracked feeds into the directory
// ABOUTME: Syncs one feed or all of them with colored per-feed progress output

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	syncpkg "castkeep/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync [url-or-id]",
	Short: "Sync podcast feeds",
	Long: `Fetch tracked feeds and reconcile new episodes into the directory.

With no arguments, every tracked podcast is synced sequentially with a
delay between feeds. One failing feed never aborts the rest of the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxEpisodes, _ := cmd.Flags().GetInt("max-episodes")

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		if len(args) == 1 {
			podcast, err := resolvePodcast(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Syncing %s... ", podcast.Title)
			result := reconciler.SyncOne(cmd.Context(), podcast.FeedURL, maxEpisodes)
			if result.Err != nil {
				fmt.Printf("%s %v\n", red("x"), result.Err)
				return fmt.Errorf("sync failed")
			}
			fmt.Printf("%s %d new, %d total\n", green("v"), result.NewEpisodes, result.Total)
			return nil
		}

		results, err := reconciler.SyncAll(cmd.Context())
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No podcasts tracked. Add one with 'castkeep feed add <url>'")
			return nil
		}

		var totalNew, failures int
		for _, result := range results {
			name := result.Title
			if name == "" {
				name = result.FeedURL
			}
			if result.State == syncpkg.StateFailed {
				fmt.Printf("%s %s: %v\n", red("x"), name, result.Err)
				failures++
				continue
			}
			if result.NewEpisodes > 0 {
				fmt.Printf("%s %s: %d new\n", green("v"), name, result.NewEpisodes)
				totalNew += result.NewEpisodes
			} else {
				fmt.Printf("%s %s: no new episodes\n", green("v"), name)
			}
		}

		fmt.Println()
		fmt.Printf("Summary: %d feed(s) synced\n", len(results))
		if totalNew > 0 {
			fmt.Printf("  %s %d new episodes\n", green("v"), totalNew)
		}
		if failures > 0 {
			fmt.Printf("  %s %d failed\n", red("x"), failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntP("max-episodes", "n", 0, "cap episodes considered per feed (0 = all)")
}
