// ABOUTME: Storage interface for podcast directory persistence
// ABOUTME: Collection-scoped CRUD with merge-upsert writes and an atomic batch-delete primitive

package storage

import (
	"errors"
	"time"

	"castkeep/internal/models"
)

// ErrNotFound is returned when a requested podcast or episode does not exist.
var ErrNotFound = errors.New("not found")

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	PodcastID    *string // Only episodes of this podcast
	FeaturedOnly bool    // Only featured episodes, ordered by FeaturedOrder
	Limit        *int    // Cap the result size
}

// Store defines the persistence contract for the podcast directory. Writes
// are merge-upserts keyed by the deterministic record IDs, which is what
// makes concurrent sync writers converge instead of duplicating.
type Store interface {
	// Close closes the store and releases resources.
	Close() error

	// Podcast operations

	// SavePodcast upserts a podcast by ID. Existing FeedURL and CreatedAt
	// are preserved; everything else is merged from the given record.
	SavePodcast(podcast *models.Podcast) error

	// GetPodcast retrieves a podcast by ID.
	GetPodcast(id string) (*models.Podcast, error)

	// GetPodcastByFeedURL finds a podcast by its feed URL.
	GetPodcastByFeedURL(feedURL string) (*models.Podcast, error)

	// ListPodcasts returns all podcasts, newest first.
	ListPodcasts() ([]*models.Podcast, error)

	// DeletePodcast removes a podcast and all its episodes (cascade).
	DeletePodcast(id string) error

	// UpdatePodcastSyncDate stamps the most recent successful sync.
	UpdatePodcastSyncDate(id string, syncedAt time.Time) error

	// Episode operations

	// SaveEpisode upserts an episode by ID. Curation state (Featured,
	// FeaturedOrder) and CreatedAt are preserved on update; feed-derived
	// fields are merged.
	SaveEpisode(episode *models.Episode) error

	// GetEpisode retrieves an episode by ID.
	GetEpisode(id string) (*models.Episode, error)

	// ListEpisodes returns episodes matching the filter, newest first
	// (featured order when FeaturedOnly is set).
	ListEpisodes(filter *EpisodeFilter) ([]*models.Episode, error)

	// SetEpisodeFeatured updates only the curation state of an episode.
	SetEpisodeFeatured(id string, featured bool, order *int) error

	// DeleteEpisode removes a single episode.
	DeleteEpisode(id string) error

	// DeleteEpisodesBatch removes the given episodes in one atomic
	// transaction: either every listed episode is deleted or none are.
	DeleteEpisodesBatch(ids []string) error

	// CountEpisodes counts episodes, optionally scoped to one podcast.
	CountEpisodes(podcastID *string) (int, error)
}
