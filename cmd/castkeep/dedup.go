// ABOUTME: Dedup commands for scanning and removing duplicate episodes
// ABOUTME: Scan is read-only; remove is admin-gated and deletes in atomic batches

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"castkeep/internal/config"
	"castkeep/internal/dedup"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Find and remove duplicate episodes",
	Long: `Detect episodes stored more than once under different IDs.

Duplicates are matched on normalized title, podcast, audio URL, and
description, so they are found even when feeds rotate GUIDs. The oldest
copy of each group survives removal.`,
}

var dedupScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List duplicate episode groups without deleting",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newDedupEngine()
		groups, err := engine.Scan()
		if err != nil {
			return fmt.Errorf("failed to scan for duplicates: %w", err)
		}

		if len(groups) == 0 {
			color.Green("No duplicate episodes found.")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		var total int
		for _, group := range groups {
			fmt.Printf("%s %s\n", group.Original.Title, faint("("+group.Original.PodcastTitle+")"))
			fmt.Printf("  keep   %s %s\n", group.Original.ID, faint(group.Original.PublishDate.Format(config.DateFormatShort)))
			for _, duplicate := range group.Duplicates {
				fmt.Printf("  remove %s %s\n", duplicate.ID, faint(duplicate.PublishDate.Format(config.DateFormatShort)))
				total++
			}
			fmt.Println()
		}

		fmt.Printf("%d group(s), %d removable episode(s)\n", len(groups), total)
		fmt.Println("Run 'castkeep dedup remove' to delete them.")
		return nil
	},
}

var dedupRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete duplicate episodes, keeping the oldest of each group",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		engine := newDedupEngine()
		result, err := engine.Remove(cmd.Context())
		if err != nil {
			if result != nil && result.Removed > 0 {
				fmt.Printf("Removed %d episode(s) in %d batch(es) before failing.\n", result.Removed, result.Batches)
				fmt.Println("Re-run 'castkeep dedup remove' to finish; completed batches stay deleted.")
			}
			return fmt.Errorf("duplicate removal failed: %w", err)
		}

		if result.Removed == 0 {
			color.Green("No duplicate episodes found.")
			return nil
		}
		color.Green("Removed %d duplicate episode(s) from %d group(s) in %d batch(es).",
			result.Removed, result.Groups, result.Batches)
		return nil
	},
}

func newDedupEngine() *dedup.Engine {
	engine := dedup.NewEngine(store)
	engine.SetBatchSize(cfg.DedupBatchSize)
	return engine
}

func init() {
	rootCmd.AddCommand(dedupCmd)
	dedupCmd.AddCommand(dedupScanCmd)
	dedupCmd.AddCommand(dedupRemoveCmd)
}
