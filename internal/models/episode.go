// ABOUTME: Episode model representing a single playable podcast episode
// ABOUTME: Provides featured-curation helpers and the non-empty audio URL invariant

package models

import "time"

// DefaultEpisodeTitle is used when an item has no title element.
const DefaultEpisodeTitle = "Untitled Episode"

// Episode represents one episode of a podcast. An Episode is only ever
// persisted with a non-empty AudioURL; items without a resolvable audio
// source are filtered out at parse time.
type Episode struct {
	ID            string    // Stable identifier derived from podcast id + item metadata
	PodcastID     string    // Owning podcast, always references an existing Podcast
	PodcastTitle  string    // Denormalized for display and duplicate fingerprinting
	Title         string    // Episode title, defaults to DefaultEpisodeTitle
	Description   string    // Item description, may contain HTML
	PublishDate   time.Time // Parsed publish date, never zero (fallback chain ends at "now")
	AudioURL      string    // Downloadable media URL, required
	AudioLength   int       // Duration in seconds parsed from itunes:duration, 0 if unknown
	Duration      string    // Raw itunes:duration text as it appeared in the feed
	Image         string    // Episode artwork, falls back to the podcast image
	Featured      bool      // Curated onto the front page
	FeaturedOrder *int      // Ordering key among featured episodes, nil when not featured
	Tags          []string  // Derived keyword set plus explicit feed categories
	Genre         string    // Inherited from the podcast
	CreatedAt     time.Time // First time the episode was stored
}

// Feature marks the episode as featured at the given position.
func (e *Episode) Feature(order int) {
	e.Featured = true
	e.FeaturedOrder = &order
}

// Unfeature clears the featured flag and ordering key.
func (e *Episode) Unfeature() {
	e.Featured = false
	e.FeaturedOrder = nil
}
