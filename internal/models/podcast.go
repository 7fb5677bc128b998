// ABOUTME: Podcast model representing a tracked RSS/Atom podcast feed
// ABOUTME: Holds directory metadata plus sync bookkeeping (episode count, last sync)

package models

import "time"

// Placeholder values used when a feed omits the corresponding field.
const (
	DefaultPodcastTitle = "Unknown Podcast"
	DefaultPublisher    = "Unknown Publisher"
	DefaultLanguage     = "en"
)

// Podcast represents a podcast in the directory. The ID is derived
// deterministically from FeedURL, so re-ingesting the same feed always
// lands on the same record.
type Podcast struct {
	ID            string     // Stable identifier derived from the feed URL
	Title         string     // Podcast title, defaults to DefaultPodcastTitle
	Description   string     // Channel-level description
	Image         string     // Cover image URL
	Publisher     string     // Author/publisher, defaults to DefaultPublisher
	Language      string     // Feed language, defaults to DefaultLanguage
	Genre         string     // Best-effort genre, often empty for RSS feeds
	FeedURL       string     // Canonical source URL, immutable once set
	TotalEpisodes int        // Recomputed on each sync from the parsed episode count
	LastSyncDate  *time.Time // Timestamp of the most recent successful ingestion
	CreatedAt     time.Time  // First time the feed was ingested
}

// Tracked reports whether the podcast can be re-synced. Podcasts imported
// without a feed URL (legacy seed data) are skipped by bulk sync.
func (p *Podcast) Tracked() bool {
	return p.FeedURL != ""
}

// DisplayName returns the title, falling back to the feed URL for
// podcasts whose feed never supplied one.
func (p *Podcast) DisplayName() string {
	if p.Title != "" && p.Title != DefaultPodcastTitle {
		return p.Title
	}
	if p.FeedURL != "" {
		return p.FeedURL
	}
	return p.Title
}
