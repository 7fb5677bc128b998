// ABOUTME: Feed management commands for adding, listing, removing, and discovering podcast feeds
// ABOUTME: Adding a feed runs a full first sync so the podcast lands populated

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"castkeep/internal/config"
	"castkeep/internal/discover"
	"castkeep/internal/identity"
	"castkeep/internal/models"
	"castkeep/internal/storage"
)

var feedCmd = &cobra.Command{
	Use:     "feed",
	Aliases: []string{"f"},
	Short:   "Manage podcast feeds",
	Long:    "Add, list, remove, and discover podcast RSS feeds",
}

var feedAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a podcast feed",
	Long:  "Add a podcast feed to the directory and run its first sync",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feedURL := args[0]
		maxEpisodes, _ := cmd.Flags().GetInt("max-episodes")

		if existing, err := store.GetPodcastByFeedURL(feedURL); err == nil {
			return fmt.Errorf("feed already tracked: %s (%s)", feedURL, existing.Title)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to check for existing feed: %w", err)
		}

		result := reconciler.SyncOne(cmd.Context(), feedURL, maxEpisodes)
		if result.Err != nil {
			return fmt.Errorf("failed to add feed: %w", result.Err)
		}

		color.Green("Added: %s", result.Title)
		fmt.Printf("  ID: %s\n", result.PodcastID)
		fmt.Printf("  Episodes: %d\n", result.Total)
		return nil
	},
}

var feedListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked podcasts",
	RunE: func(cmd *cobra.Command, args []string) error {
		podcasts, err := store.ListPodcasts()
		if err != nil {
			return fmt.Errorf("failed to list podcasts: %w", err)
		}

		if len(podcasts) == 0 {
			fmt.Println("No podcasts tracked. Add one with 'castkeep feed add <url>'")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		fmt.Printf("Tracking %d podcast(s):\n\n", len(podcasts))
		for _, podcast := range podcasts {
			fmt.Printf("%s %s\n", podcast.DisplayName(), faint("("+podcast.ID+")"))
			fmt.Printf("  %s — %d episode(s)", podcast.Publisher, podcast.TotalEpisodes)
			if podcast.LastSyncDate != nil {
				fmt.Printf(", synced %s", faint(podcast.LastSyncDate.Format(config.DateFormatShort)))
			}
			fmt.Printf("\n  %s\n\n", faint(podcast.FeedURL))
		}
		return nil
	},
}

var feedRemoveCmd = &cobra.Command{
	Use:   "remove <url-or-id>",
	Short: "Remove a podcast and its episodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		podcast, err := resolvePodcast(args[0])
		if err != nil {
			return err
		}

		if err := store.DeletePodcast(podcast.ID); err != nil {
			return fmt.Errorf("failed to remove podcast: %w", err)
		}

		fmt.Printf("Removed: %s (%d episodes)\n", podcast.Title, podcast.TotalEpisodes)
		return nil
	},
}

var feedDiscoverCmd = &cobra.Command{
	Use:   "discover <url>",
	Short: "Find the podcast feed behind a website URL",
	Long: `Resolve a website URL to its podcast RSS feed.

Tries the URL as a direct feed, then scans the page's <link> elements,
then probes common feed paths. Use --add to start tracking the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		add, _ := cmd.Flags().GetBool("add")

		d := discover.New(fetcher)
		feed, err := d.Discover(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		color.Green("Found feed: %s", feed.URL)
		if feed.Title != "" {
			fmt.Printf("  Title: %s\n", feed.Title)
		}

		if !add {
			fmt.Println("\nRun 'castkeep feed add' with this URL to track it.")
			return nil
		}

		result := reconciler.SyncOne(cmd.Context(), feed.URL, 0)
		if result.Err != nil {
			return fmt.Errorf("failed to add discovered feed: %w", result.Err)
		}
		color.Green("Added: %s (%d episodes)", result.Title, result.Total)
		return nil
	},
}

// resolvePodcast finds a podcast by ID or feed URL.
func resolvePodcast(ref string) (*models.Podcast, error) {
	podcast, err := store.GetPodcast(ref)
	if err == nil {
		return podcast, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up podcast: %w", err)
	}

	podcast, err = store.GetPodcastByFeedURL(ref)
	if err == nil {
		return podcast, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up podcast: %w", err)
	}

	// The ID is derived from the URL, so an untracked feed URL still
	// resolves to a well-formed (absent) ID.
	if podcast, err := store.GetPodcast(identity.PodcastID(ref)); err == nil {
		return podcast, nil
	}
	return nil, fmt.Errorf("podcast not found: %s", ref)
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.AddCommand(feedAddCmd)
	feedCmd.AddCommand(feedListCmd)
	feedCmd.AddCommand(feedRemoveCmd)
	feedCmd.AddCommand(feedDiscoverCmd)

	feedAddCmd.Flags().IntP("max-episodes", "n", 0, "cap episodes imported on first sync (0 = all)")
	feedDiscoverCmd.Flags().Bool("add", false, "track the discovered feed immediately")
}
