// ABOUTME: Feed sync reconciler coordinating fetch, parse, diff, and persist
// ABOUTME: Per-feed state machine with failure isolation and rate-limited batch runs

package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"castkeep/internal/models"
	"castkeep/internal/storage"
	"castkeep/internal/tags"
)

// DefaultFeedDelay spaces out sequential feed syncs so batch runs do not
// hammer feed hosts or trip the CORS proxies' rate limits.
const DefaultFeedDelay = time.Second

// State names one step of a feed's sync lifecycle. Failed is absorbing:
// a feed that fails at any step stays failed for that run.
type State string

const (
	StatePending    State = "pending"
	StateFetching   State = "fetching"
	StateParsing    State = "parsing"
	StateDiffing    State = "diffing"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Fetcher retrieves raw feed bytes.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// ParseFunc turns raw feed bytes into a podcast and its episodes.
type ParseFunc func(raw []byte, feedURL string) (*models.Podcast, []models.Episode, error)

// Result reports the outcome of syncing one feed. Err is set only when
// State is StateFailed; a failed feed never aborts the rest of a batch.
type Result struct {
	PodcastID   string
	FeedURL     string
	Title       string
	State       State
	NewEpisodes int
	Total       int // Episodes stored for the podcast after the sync
	Err         error
}

// Reconciler syncs feeds into the store. Fetching, parsing, and
// persistence are injected so each can be swapped out in tests.
type Reconciler struct {
	fetcher   Fetcher
	parse     ParseFunc
	store     storage.Store
	feedDelay time.Duration
	log       *log.Logger
}

// NewReconciler wires a reconciler from its collaborators.
func NewReconciler(fetcher Fetcher, parse ParseFunc, store storage.Store) *Reconciler {
	return &Reconciler{
		fetcher:   fetcher,
		parse:     parse,
		store:     store,
		feedDelay: DefaultFeedDelay,
		log:       log.Default().With("component", "sync"),
	}
}

// SetLogger replaces the reconciler's logger.
func (r *Reconciler) SetLogger(logger *log.Logger) {
	r.log = logger.With("component", "sync")
}

// SetFeedDelay overrides the pause between feeds in batch runs.
func (r *Reconciler) SetFeedDelay(d time.Duration) {
	if d >= 0 {
		r.feedDelay = d
	}
}

// SyncOne fetches one feed and reconciles it into the store. Episodes
// already present (by ID or by title+date) are left untouched, so
// curation state survives re-syncs. maxEpisodes caps how many parsed
// episodes are considered; 0 means no cap.
func (r *Reconciler) SyncOne(ctx context.Context, feedURL string, maxEpisodes int) *Result {
	result := &Result{FeedURL: feedURL, State: StatePending}
	logger := r.log.With("feed", feedURL)

	result.State = StateFetching
	raw, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return result.fail(logger, fmt.Errorf("fetch: %w", err))
	}

	result.State = StateParsing
	podcast, episodes, err := r.parse(raw, feedURL)
	if err != nil {
		return result.fail(logger, fmt.Errorf("parse: %w", err))
	}
	result.PodcastID = podcast.ID
	result.Title = podcast.Title

	if maxEpisodes > 0 && len(episodes) > maxEpisodes {
		episodes = episodes[:maxEpisodes]
	}

	result.State = StateDiffing
	fresh, err := r.diff(podcast.ID, episodes)
	if err != nil {
		return result.fail(logger, fmt.Errorf("diff: %w", err))
	}

	result.State = StatePersisting
	// The podcast row must exist before its episodes: episodes carry a
	// foreign key to it. TotalEpisodes stays the parser's count for this
	// fetch, so a feed that drops items reports its current size.
	if err := r.store.SavePodcast(podcast); err != nil {
		return result.fail(logger, fmt.Errorf("save podcast: %w", err))
	}
	for i := range fresh {
		episode := &fresh[i]
		episode.Featured = false
		episode.FeaturedOrder = nil
		if len(episode.Tags) == 0 {
			episode.Tags = tags.Extract(episode.Title, episode.Description)
		}
		if err := r.store.SaveEpisode(episode); err != nil {
			return result.fail(logger, fmt.Errorf("save episode %s: %w", episode.ID, err))
		}
		result.NewEpisodes++
	}

	total, err := r.store.CountEpisodes(&podcast.ID)
	if err != nil {
		return result.fail(logger, fmt.Errorf("count episodes: %w", err))
	}
	result.Total = total

	syncedAt := time.Now().UTC()
	if err := r.store.UpdatePodcastSyncDate(podcast.ID, syncedAt); err != nil {
		return result.fail(logger, fmt.Errorf("update sync date: %w", err))
	}

	result.State = StateDone
	logger.Info("feed synced", "podcast", podcast.Title, "new", result.NewEpisodes, "total", total)
	return result
}

// SyncAll syncs every tracked podcast sequentially. Feeds are spaced out
// by the configured delay, each feed's failure is isolated into its own
// Result, and cancellation is honored between feeds so a batch can be
// stopped without tearing down the feed currently in flight.
func (r *Reconciler) SyncAll(ctx context.Context) ([]*Result, error) {
	podcasts, err := r.store.ListPodcasts()
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}

	runID := uuid.New().String()
	logger := r.log.With("run", runID)
	logger.Info("sync run starting", "feeds", len(podcasts))

	// rate.Every treats a zero interval as no limit.
	limiter := rate.NewLimiter(rate.Every(r.feedDelay), 1)

	results := make([]*Result, 0, len(podcasts))
	for _, podcast := range podcasts {
		if !podcast.Tracked() {
			logger.Debug("skipping untracked podcast", "podcast", podcast.ID)
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			logger.Warn("sync run canceled", "completed", len(results))
			return results, err
		}
		results = append(results, r.SyncOne(ctx, podcast.FeedURL, 0))
	}

	var newEpisodes, failures int
	for _, result := range results {
		newEpisodes += result.NewEpisodes
		if result.State == StateFailed {
			failures++
		}
	}
	logger.Info("sync run complete", "feeds", len(results), "new", newEpisodes, "failures", failures)
	return results, nil
}

// diff returns the episodes not already stored for the podcast. An
// episode counts as present when its ID matches, or when its title and
// publish day match an existing episode. The secondary key catches feeds
// that reshuffle GUIDs or publish timestamps between fetches.
func (r *Reconciler) diff(podcastID string, episodes []models.Episode) ([]models.Episode, error) {
	stored, err := r.store.ListEpisodes(&storage.EpisodeFilter{PodcastID: &podcastID})
	if err != nil {
		return nil, err
	}

	seenIDs := make(map[string]bool, len(stored))
	seenKeys := make(map[string]bool, len(stored))
	for _, episode := range stored {
		seenIDs[episode.ID] = true
		seenKeys[titleDateKey(episode.Title, episode.PublishDate)] = true
	}

	var fresh []models.Episode
	for _, episode := range episodes {
		if seenIDs[episode.ID] || seenKeys[titleDateKey(episode.Title, episode.PublishDate)] {
			continue
		}
		seenIDs[episode.ID] = true
		seenKeys[titleDateKey(episode.Title, episode.PublishDate)] = true
		fresh = append(fresh, episode)
	}
	return fresh, nil
}

func (result *Result) fail(logger *log.Logger, err error) *Result {
	result.State = StateFailed
	result.Err = err
	logger.Error("feed sync failed", "err", err)
	return result
}

func titleDateKey(title string, published time.Time) string {
	return strings.ToLower(strings.TrimSpace(title)) + "_" + published.UTC().Format("2006-01-02")
}
