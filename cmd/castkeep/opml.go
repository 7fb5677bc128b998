// ABOUTME: OPML import and export of tracked podcast subscriptions
// ABOUTME: Import syncs each feed; export groups podcasts by genre

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"castkeep/internal/opml"
)

var opmlCmd = &cobra.Command{
	Use:   "opml",
	Short: "Import and export subscriptions as OPML",
}

var opmlImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import feeds from an OPML file",
	Long: `Import podcast subscriptions from an OPML file.

Each feed is synced as it is imported. Feeds that fail to fetch or
parse are reported and skipped; already-tracked feeds are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := opml.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read OPML: %w", err)
		}

		feeds := doc.Feeds()
		if len(feeds) == 0 {
			fmt.Println("No feeds in OPML file")
			return nil
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()

		var added, skipped, failed int
		for _, feed := range feeds {
			name := feed.Title
			if name == "" {
				name = feed.URL
			}
			fmt.Printf("Importing %s... ", name)

			if _, err := store.GetPodcastByFeedURL(feed.URL); err == nil {
				fmt.Printf("%s already tracked\n", faint("-"))
				skipped++
				continue
			}

			result := reconciler.SyncOne(cmd.Context(), feed.URL, 0)
			if result.Err != nil {
				fmt.Printf("%s %v\n", red("x"), result.Err)
				failed++
				continue
			}
			fmt.Printf("%s %d episode(s)\n", green("v"), result.Total)
			added++
		}

		fmt.Println()
		fmt.Printf("Imported %d, skipped %d, failed %d\n", added, skipped, failed)
		return nil
	},
}

var opmlExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export tracked feeds as OPML",
	Long:  "Export tracked podcasts as OPML 2.0, grouped by genre. Writes to stdout without a file argument.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		podcasts, err := store.ListPodcasts()
		if err != nil {
			return fmt.Errorf("failed to list podcasts: %w", err)
		}

		doc := opml.NewDocument("castkeep subscriptions")
		for _, podcast := range podcasts {
			if err := doc.AddFeed(opml.Feed{
				URL:   podcast.FeedURL,
				Title: podcast.Title,
				Genre: podcast.Genre,
			}); err != nil {
				return fmt.Errorf("failed to build OPML: %w", err)
			}
		}

		if len(args) == 0 {
			return doc.Write(os.Stdout)
		}
		if err := doc.WriteFile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Exported %d feed(s) to %s\n", len(podcasts), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(opmlCmd)
	opmlCmd.AddCommand(opmlImportCmd)
	opmlCmd.AddCommand(opmlExportCmd)
}
