// ABOUTME: RSS/Atom podcast feed parsing using gofeed, normalized to Podcast + Episode records
// ABOUTME: Preserves the field fallback precedence feeds depend on and drops items without audio

package parse

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
	gofeedext "github.com/mmcdole/gofeed/extensions"

	"castkeep/internal/identity"
	"castkeep/internal/models"
	"castkeep/internal/tags"
	"castkeep/internal/timeutil"
)

// now is swappable for tests that pin the publish-date fallback.
var now = time.Now

// Parse parses raw RSS 2.0 or Atom XML into a normalized Podcast and its
// episodes. Items without a resolvable audio URL are silently filtered
// out, not errors. A missing feed root or malformed XML is a hard parse
// failure.
func Parse(raw []byte, feedURL string) (*models.Podcast, []models.Episode, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("parse feed: %w", err)
	}

	podcast := &models.Podcast{
		ID:          identity.PodcastID(feedURL),
		Title:       firstNonEmpty(feed.Title, models.DefaultPodcastTitle),
		Description: feed.Description,
		Image:       podcastImage(feed),
		Publisher:   publisher(feed),
		Language:    firstNonEmpty(feed.Language, models.DefaultLanguage),
		Genre:       genre(feed),
		FeedURL:     feedURL,
	}

	episodes := make([]models.Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		if episode, ok := parseEpisode(item, podcast); ok {
			episodes = append(episodes, episode)
		}
	}

	podcast.TotalEpisodes = len(episodes)
	return podcast, episodes, nil
}

// parseEpisode normalizes one feed item. The second return value is false
// when the item has no resolvable audio URL.
func parseEpisode(item *gofeed.Item, podcast *models.Podcast) (models.Episode, bool) {
	audioURL := extractAudioURL(item)
	if audioURL == "" {
		return models.Episode{}, false
	}

	title := firstNonEmpty(item.Title, models.DefaultEpisodeTitle)
	description := firstNonEmpty(item.Description, item.Content)
	publishDate := publishDate(item, title, description)

	var duration string
	if item.ITunesExt != nil {
		duration = item.ITunesExt.Duration
	}
	audioLength, _ := timeutil.DurationSeconds(duration)

	return models.Episode{
		ID:           episodeID(item, podcast.ID, title, publishDate, audioURL),
		PodcastID:    podcast.ID,
		PodcastTitle: podcast.Title,
		Title:        title,
		Description:  description,
		PublishDate:  publishDate,
		AudioURL:     audioURL,
		AudioLength:  audioLength,
		Duration:     duration,
		Image:        firstNonEmpty(episodeImage(item), podcast.Image),
		Featured:     false,
		Tags:         tags.Extract(title, description, item.Categories...),
		Genre:        podcast.Genre,
	}, true
}

// episodeID feeds the item metadata into the deterministic ID derivation.
// The raw published text is preferred over the resolved date so that an
// unchanged feed item keeps its ID even when our fallback heuristics
// change.
func episodeID(item *gofeed.Item, podcastID, title string, publishDate time.Time, audioURL string) string {
	pubDate := item.Published
	if pubDate == "" {
		pubDate = publishDate.UTC().Format(time.RFC3339)
	}
	return identity.EpisodeID(podcastID, title, pubDate, item.GUID, audioURL)
}

// publishDate resolves an item's publish date through the lossy but
// always-succeeding chain: pubDate/published -> updated -> 4-digit year in
// title then description -> now. The ordering is load-bearing for dedup
// and sort behavior.
func publishDate(item *gofeed.Item, title, description string) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	if fallback, ok := timeutil.YearFallback(title, description); ok {
		return fallback
	}
	return now()
}

// extractAudioURL resolves an episode's media URL: enclosures first
// (audio-typed preferred; gofeed also maps Atom rel=enclosure links here),
// then media:content. Empty means the item is dropped.
func extractAudioURL(item *gofeed.Item) string {
	var untyped string
	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		if isAudioType(enclosure.Type) {
			return enclosure.URL
		}
		if untyped == "" {
			untyped = enclosure.URL
		}
	}
	if untyped != "" {
		return untyped
	}

	return mediaExtensionURL(item.Extensions, "content")
}

func isAudioType(mimeType string) bool {
	switch mimeType {
	case "audio/mpeg", "audio/mp3", "audio/x-m4a":
		return true
	}
	return false
}

// episodeImage prefers item-level artwork: itunes:image, then
// media:thumbnail, then the item's own image element. The caller falls
// back to the podcast image.
func episodeImage(item *gofeed.Item) string {
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return item.ITunesExt.Image
	}
	if thumb := mediaExtensionURL(item.Extensions, "thumbnail"); thumb != "" {
		return thumb
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

// podcastImage resolves channel artwork: image/url, then itunes:image,
// then media:thumbnail. gofeed maps an Atom logo into Image, which covers
// the last rung of the chain.
func podcastImage(feed *gofeed.Feed) string {
	if feed.Image != nil && feed.Image.URL != "" {
		return feed.Image.URL
	}
	if feed.ITunesExt != nil && feed.ITunesExt.Image != "" {
		return feed.ITunesExt.Image
	}
	return mediaExtensionURL(feed.Extensions, "thumbnail")
}

func publisher(feed *gofeed.Feed) string {
	if feed.Author != nil && feed.Author.Name != "" {
		return feed.Author.Name
	}
	if feed.ITunesExt != nil && feed.ITunesExt.Author != "" {
		return feed.ITunesExt.Author
	}
	return models.DefaultPublisher
}

func genre(feed *gofeed.Feed) string {
	if feed.ITunesExt != nil && len(feed.ITunesExt.Categories) > 0 && feed.ITunesExt.Categories[0] != nil {
		return feed.ITunesExt.Categories[0].Text
	}
	return ""
}

// mediaExtensionURL pulls the url attribute off the first media:<name>
// extension element.
func mediaExtensionURL(extensions gofeedext.Extensions, name string) string {
	for _, element := range extensions["media"][name] {
		if url := element.Attrs["url"]; url != "" {
			return url
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
