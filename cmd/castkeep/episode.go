// ABOUTME: Episode commands for listing, viewing, and curating featured picks
// ABOUTME: Show renders HTML descriptions as markdown in the terminal

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"castkeep/internal/config"
	"castkeep/internal/content"
	"castkeep/internal/storage"
)

var episodeCmd = &cobra.Command{
	Use:     "episode",
	Aliases: []string{"ep"},
	Short:   "Browse and curate episodes",
}

var episodeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List episodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		podcastRef, _ := cmd.Flags().GetString("podcast")
		featured, _ := cmd.Flags().GetBool("featured")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := episodeListFilter(featured, limit)
		if podcastRef != "" {
			podcast, err := resolvePodcast(podcastRef)
			if err != nil {
				return err
			}
			filter.PodcastID = &podcast.ID
		}

		episodes, err := store.ListEpisodes(filter)
		if err != nil {
			return fmt.Errorf("failed to list episodes: %w", err)
		}
		if len(episodes) == 0 {
			fmt.Println("No episodes found")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		for _, episode := range episodes {
			fmt.Print(faint(episode.ID))
			if episode.Featured {
				fmt.Printf(" %s", yellow("★"))
			} else {
				fmt.Print("  ")
			}
			fmt.Printf(" %s", episode.Title)
			fmt.Printf(" %s", faint(episode.PublishDate.Format(config.DateFormatShort)))
			fmt.Printf(" %s", faint("— "+episode.PodcastTitle))
			fmt.Println()
			if snippet := content.Snippet(episode.Description, config.SnippetLength); snippet != "" {
				fmt.Printf("    %s\n", faint(snippet))
			}
		}
		return nil
	},
}

// episodeListFilter builds the list filter; a non-positive limit means
// no limit rather than LIMIT 0.
func episodeListFilter(featuredOnly bool, limit int) *storage.EpisodeFilter {
	filter := &storage.EpisodeFilter{FeaturedOnly: featuredOnly}
	if limit > 0 {
		filter.Limit = &limit
	}
	return filter
}

var episodeShowCmd = &cobra.Command{
	Use:   "show <episode-id>",
	Short: "Show full episode details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		episode, err := store.GetEpisode(args[0])
		if err != nil {
			return fmt.Errorf("episode not found: %s", args[0])
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%s\n\n", bold(episode.Title))
		fmt.Printf("%s %s\n", faint("Podcast:"), episode.PodcastTitle)
		fmt.Printf("%s %s\n", faint("Published:"), episode.PublishDate.Format(config.DateFormatLong))
		if episode.Duration != "" {
			fmt.Printf("%s %s\n", faint("Duration:"), episode.Duration)
		}
		fmt.Printf("%s %s\n", faint("Audio:"), cyan(episode.AudioURL))
		if len(episode.Tags) > 0 {
			fmt.Printf("%s %s\n", faint("Tags:"), strings.Join(episode.Tags, ", "))
		}
		if episode.Featured {
			order := ""
			if episode.FeaturedOrder != nil {
				order = fmt.Sprintf(" (#%d)", *episode.FeaturedOrder)
			}
			fmt.Printf("%s featured%s\n", faint("Curation:"), order)
		}
		fmt.Println(strings.Repeat("─", 60))

		if episode.Description == "" {
			fmt.Println("\n(No description available)")
			return nil
		}

		markdown := content.ToMarkdown(episode.Description)
		rendered, err := glamour.Render(markdown, "dark")
		if err != nil {
			fmt.Printf("%s\n\n%s\n", faint("(markdown rendering unavailable, showing plain text)"), markdown)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

var episodeFeatureCmd = &cobra.Command{
	Use:   "feature <episode-id>",
	Short: "Mark an episode as featured",
	Long:  "Feature an episode. Its position is appended after the current featured list.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		episode, err := store.GetEpisode(args[0])
		if err != nil {
			return fmt.Errorf("episode not found: %s", args[0])
		}

		order, err := nextFeaturedOrder(store)
		if err != nil {
			return err
		}
		if err := store.SetEpisodeFeatured(episode.ID, true, &order); err != nil {
			return fmt.Errorf("failed to feature episode: %w", err)
		}

		color.Green("Featured: %s (#%d)", episode.Title, order)
		return nil
	},
}

var episodeUnfeatureCmd = &cobra.Command{
	Use:   "unfeature <episode-id>",
	Short: "Remove an episode from the featured list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		episode, err := store.GetEpisode(args[0])
		if err != nil {
			return fmt.Errorf("episode not found: %s", args[0])
		}

		if err := store.SetEpisodeFeatured(episode.ID, false, nil); err != nil {
			return fmt.Errorf("failed to unfeature episode: %w", err)
		}

		fmt.Printf("Unfeatured: %s\n", episode.Title)
		return nil
	},
}

// nextFeaturedOrder returns one past the highest current featured order.
func nextFeaturedOrder(store storage.Store) (int, error) {
	featured, err := store.ListEpisodes(&storage.EpisodeFilter{FeaturedOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list featured episodes: %w", err)
	}

	max := 0
	for _, episode := range featured {
		if episode.FeaturedOrder != nil && *episode.FeaturedOrder > max {
			max = *episode.FeaturedOrder
		}
	}
	return max + 1, nil
}

func init() {
	rootCmd.AddCommand(episodeCmd)
	episodeCmd.AddCommand(episodeListCmd)
	episodeCmd.AddCommand(episodeShowCmd)
	episodeCmd.AddCommand(episodeFeatureCmd)
	episodeCmd.AddCommand(episodeUnfeatureCmd)

	episodeListCmd.Flags().StringP("podcast", "p", "", "filter by podcast ID or feed URL")
	episodeListCmd.Flags().BoolP("featured", "f", false, "only featured episodes, in curated order")
	episodeListCmd.Flags().IntP("limit", "n", config.DefaultListLimit, "max episodes to show (0 = all)")
}
