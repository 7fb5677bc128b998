// ABOUTME: Duplicate episode detection via normalized content fingerprints
// ABOUTME: Groups near-duplicates and removes non-survivors in bounded atomic batches

package dedup

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"castkeep/internal/models"
	"castkeep/internal/storage"
)

// DefaultBatchSize bounds one deletion batch. The underlying store commits
// a batch as a single transaction and caps transaction size around 500
// operations, so stay under it.
const DefaultBatchSize = 400

// interBatchDelay spaces out sequential batch commits so a large cleanup
// does not overwhelm the store.
const interBatchDelay = 100 * time.Millisecond

// descPrefixLen is how much of the description participates in the
// fingerprint.
const descPrefixLen = 100

var whitespacePattern = regexp.MustCompile(`\s+`)

// Group is a set of episodes sharing a content fingerprint. Original is
// the designated survivor: the oldest episode by publish date, ties
// breaking to the first one encountered. Everything in Duplicates is a
// removal candidate.
type Group struct {
	Fingerprint string
	Original    *models.Episode
	Duplicates  []*models.Episode
}

// Result summarizes a removal run.
type Result struct {
	Groups  int // Duplicate groups found
	Removed int // Episodes deleted
	Batches int // Batch commits performed
}

// EpisodeStore is the slice of the storage contract the engine needs.
type EpisodeStore interface {
	ListEpisodes(filter *storage.EpisodeFilter) ([]*models.Episode, error)
	DeleteEpisodesBatch(ids []string) error
}

// Engine detects and removes duplicate episodes across the whole store.
type Engine struct {
	store     EpisodeStore
	batchSize int
	delay     time.Duration
	log       *log.Logger
}

// NewEngine creates a deduplication engine over the given store.
func NewEngine(store EpisodeStore) *Engine {
	return &Engine{
		store:     store,
		batchSize: DefaultBatchSize,
		delay:     interBatchDelay,
		log:       log.Default().With("component", "dedup"),
	}
}

// SetBatchSize overrides the deletion batch cap. Values below 1 keep the
// default.
func (e *Engine) SetBatchSize(size int) {
	if size >= 1 {
		e.batchSize = size
	}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(logger *log.Logger) {
	e.log = logger.With("component", "dedup")
}

// Fingerprint computes the normalized content key used to detect
// duplicate episodes independent of their stored IDs: collapsed lowercase
// title, lowercase podcast title, trimmed audio URL, and the first 100
// characters of the collapsed lowercase description.
func Fingerprint(episode *models.Episode) string {
	parts := []string{
		collapse(strings.ToLower(episode.Title)),
		strings.ToLower(strings.TrimSpace(episode.PodcastTitle)),
		strings.TrimSpace(episode.AudioURL),
		prefix(collapse(strings.ToLower(episode.Description)), descPrefixLen),
	}
	return strings.Join(parts, "|")
}

// FindDuplicates groups episodes by fingerprint in a single pass. Any
// fingerprint shared by more than one episode yields a Group with the
// oldest episode as survivor.
func FindDuplicates(episodes []*models.Episode) []Group {
	byFingerprint := make(map[string][]*models.Episode)
	var order []string

	for _, episode := range episodes {
		fp := Fingerprint(episode)
		if _, seen := byFingerprint[fp]; !seen {
			order = append(order, fp)
		}
		byFingerprint[fp] = append(byFingerprint[fp], episode)
	}

	var groups []Group
	for _, fp := range order {
		members := byFingerprint[fp]
		if len(members) < 2 {
			continue
		}

		survivor := members[0]
		for _, candidate := range members[1:] {
			if candidate.PublishDate.Before(survivor.PublishDate) {
				survivor = candidate
			}
		}

		group := Group{Fingerprint: fp, Original: survivor}
		for _, member := range members {
			if member != survivor {
				group.Duplicates = append(group.Duplicates, member)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// Scan loads every stored episode and reports the duplicate groups
// without deleting anything.
func (e *Engine) Scan() ([]Group, error) {
	episodes, err := e.store.ListEpisodes(nil)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	return FindDuplicates(episodes), nil
}

// Remove scans for duplicates and deletes every non-survivor. Deletions
// happen in bounded batches, each batch atomic, committed sequentially
// with a short delay in between. The overall run is not atomic: a failure
// partway leaves earlier batches deleted, which is safe to resume because
// fingerprints are recomputed fresh on the next run.
func (e *Engine) Remove(ctx context.Context) (*Result, error) {
	groups, err := e.Scan()
	if err != nil {
		return nil, err
	}

	result := &Result{Groups: len(groups)}
	if len(groups) == 0 {
		e.log.Info("no duplicate episodes found")
		return result, nil
	}

	var ids []string
	for _, group := range groups {
		for _, duplicate := range group.Duplicates {
			ids = append(ids, duplicate.ID)
		}
	}
	e.log.Info("removing duplicate episodes", "groups", len(groups), "episodes", len(ids))

	for start := 0; start < len(ids); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + e.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		if err := e.store.DeleteEpisodesBatch(batch); err != nil {
			return result, fmt.Errorf("delete batch %d: %w", result.Batches+1, err)
		}
		result.Batches++
		result.Removed += len(batch)
		e.log.Debug("batch committed", "batch", result.Batches, "deleted", len(batch))

		if end < len(ids) {
			select {
			case <-time.After(e.delay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	e.log.Info("duplicate removal complete", "removed", result.Removed, "batches", result.Batches)
	return result, nil
}

func collapse(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
