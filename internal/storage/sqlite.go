// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite (pure Go)
// ABOUTME: Merge-upserts via ON CONFLICT DO UPDATE, batch deletes as single transactions

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"castkeep/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) a SQLite-backed store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL keeps the manual-sync and scheduled-sync writers from blocking
	// each other
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS podcasts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			image TEXT DEFAULT '',
			publisher TEXT DEFAULT '',
			language TEXT DEFAULT '',
			genre TEXT DEFAULT '',
			feed_url TEXT UNIQUE NOT NULL,
			total_episodes INTEGER DEFAULT 0,
			last_sync_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			podcast_id TEXT NOT NULL REFERENCES podcasts(id) ON DELETE CASCADE,
			podcast_title TEXT DEFAULT '',
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			publish_date TIMESTAMP NOT NULL,
			audio_url TEXT NOT NULL CHECK (audio_url <> ''),
			audio_length INTEGER DEFAULT 0,
			duration TEXT DEFAULT '',
			image TEXT DEFAULT '',
			featured INTEGER DEFAULT 0,
			featured_order INTEGER,
			tags TEXT DEFAULT '',
			genre TEXT DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_episodes_podcast_id ON episodes(podcast_id);
		CREATE INDEX IF NOT EXISTS idx_episodes_publish_date ON episodes(publish_date);
		CREATE INDEX IF NOT EXISTS idx_episodes_featured ON episodes(featured);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Podcast operations

// SavePodcast upserts a podcast by ID, preserving FeedURL and CreatedAt
// for existing records.
func (s *SQLiteStore) SavePodcast(podcast *models.Podcast) error {
	createdAt := podcast.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO podcasts (id, title, description, image, publisher, language, genre,
			feed_url, total_episodes, last_sync_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			image = excluded.image,
			publisher = excluded.publisher,
			language = excluded.language,
			genre = excluded.genre,
			total_episodes = excluded.total_episodes,
			last_sync_date = COALESCE(excluded.last_sync_date, podcasts.last_sync_date)
	`
	_, err := s.db.Exec(query,
		podcast.ID, podcast.Title, podcast.Description, podcast.Image,
		podcast.Publisher, podcast.Language, podcast.Genre, podcast.FeedURL,
		podcast.TotalEpisodes, timeToSQL(podcast.LastSyncDate), createdAt,
	)
	if err != nil {
		return fmt.Errorf("save podcast: %w", err)
	}
	return nil
}

const podcastColumns = `id, title, description, image, publisher, language, genre,
	feed_url, total_episodes, last_sync_date, created_at`

// GetPodcast retrieves a podcast by ID.
func (s *SQLiteStore) GetPodcast(id string) (*models.Podcast, error) {
	row := s.db.QueryRow(`SELECT `+podcastColumns+` FROM podcasts WHERE id = ?`, id)
	return scanPodcast(row)
}

// GetPodcastByFeedURL finds a podcast by its feed URL.
func (s *SQLiteStore) GetPodcastByFeedURL(feedURL string) (*models.Podcast, error) {
	row := s.db.QueryRow(`SELECT `+podcastColumns+` FROM podcasts WHERE feed_url = ?`, feedURL)
	return scanPodcast(row)
}

// ListPodcasts returns all podcasts, newest first.
func (s *SQLiteStore) ListPodcasts() ([]*models.Podcast, error) {
	rows, err := s.db.Query(`SELECT ` + podcastColumns + ` FROM podcasts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query podcasts: %w", err)
	}
	defer rows.Close()

	var podcasts []*models.Podcast
	for rows.Next() {
		podcast, err := scanPodcast(rows)
		if err != nil {
			return nil, err
		}
		podcasts = append(podcasts, podcast)
	}
	return podcasts, rows.Err()
}

// DeletePodcast removes a podcast and all its episodes (cascade).
func (s *SQLiteStore) DeletePodcast(id string) error {
	result, err := s.db.Exec(`DELETE FROM podcasts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete podcast: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("podcast %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdatePodcastSyncDate stamps the most recent successful sync.
func (s *SQLiteStore) UpdatePodcastSyncDate(id string, syncedAt time.Time) error {
	result, err := s.db.Exec(`UPDATE podcasts SET last_sync_date = ? WHERE id = ?`, syncedAt, id)
	if err != nil {
		return fmt.Errorf("update sync date: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("podcast %s: %w", id, ErrNotFound)
	}
	return nil
}

// Episode operations

// SaveEpisode upserts an episode by ID. Feed-derived fields are merged;
// curation state and CreatedAt survive re-syncs untouched.
func (s *SQLiteStore) SaveEpisode(episode *models.Episode) error {
	createdAt := episode.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO episodes (id, podcast_id, podcast_title, title, description,
			publish_date, audio_url, audio_length, duration, image,
			featured, featured_order, tags, genre, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			podcast_title = excluded.podcast_title,
			title = excluded.title,
			description = excluded.description,
			publish_date = excluded.publish_date,
			audio_url = excluded.audio_url,
			audio_length = excluded.audio_length,
			duration = excluded.duration,
			image = excluded.image,
			tags = excluded.tags,
			genre = excluded.genre
	`
	_, err := s.db.Exec(query,
		episode.ID, episode.PodcastID, episode.PodcastTitle, episode.Title,
		episode.Description, episode.PublishDate, episode.AudioURL,
		episode.AudioLength, episode.Duration, episode.Image,
		episode.Featured, intToSQL(episode.FeaturedOrder), tagsToSQL(episode.Tags),
		episode.Genre, createdAt,
	)
	if err != nil {
		return fmt.Errorf("save episode: %w", err)
	}
	return nil
}

const episodeColumns = `id, podcast_id, podcast_title, title, description,
	publish_date, audio_url, audio_length, duration, image,
	featured, featured_order, tags, genre, created_at`

// GetEpisode retrieves an episode by ID.
func (s *SQLiteStore) GetEpisode(id string) (*models.Episode, error) {
	row := s.db.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id)
	return scanEpisode(row)
}

// ListEpisodes returns episodes matching the filter.
func (s *SQLiteStore) ListEpisodes(filter *EpisodeFilter) ([]*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes`
	var conditions []string
	var args []any

	if filter != nil {
		if filter.PodcastID != nil {
			conditions = append(conditions, "podcast_id = ?")
			args = append(args, *filter.PodcastID)
		}
		if filter.FeaturedOnly {
			conditions = append(conditions, "featured = 1")
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if filter != nil && filter.FeaturedOnly {
		query += " ORDER BY featured_order IS NULL, featured_order ASC, publish_date DESC"
	} else {
		query += " ORDER BY publish_date DESC"
	}

	if filter != nil && filter.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*models.Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}

// SetEpisodeFeatured updates only the curation state of an episode.
func (s *SQLiteStore) SetEpisodeFeatured(id string, featured bool, order *int) error {
	result, err := s.db.Exec(
		`UPDATE episodes SET featured = ?, featured_order = ? WHERE id = ?`,
		featured, intToSQL(order), id,
	)
	if err != nil {
		return fmt.Errorf("update featured state: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("episode %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteEpisode removes a single episode.
func (s *SQLiteStore) DeleteEpisode(id string) error {
	result, err := s.db.Exec(`DELETE FROM episodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete episode: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("episode %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteEpisodesBatch removes the given episodes in a single transaction.
func (s *SQLiteStore) DeleteEpisodesBatch(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch delete: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`DELETE FROM episodes WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare batch delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("batch delete episode %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch delete: %w", err)
	}
	return nil
}

// CountEpisodes counts episodes, optionally scoped to one podcast.
func (s *SQLiteStore) CountEpisodes(podcastID *string) (int, error) {
	var count int
	var err error
	if podcastID != nil {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM episodes WHERE podcast_id = ?`, *podcastID).Scan(&count)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM episodes`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count episodes: %w", err)
	}
	return count, nil
}

// Scan helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPodcast(row rowScanner) (*models.Podcast, error) {
	podcast := &models.Podcast{}
	var lastSync sql.NullTime
	err := row.Scan(
		&podcast.ID, &podcast.Title, &podcast.Description, &podcast.Image,
		&podcast.Publisher, &podcast.Language, &podcast.Genre, &podcast.FeedURL,
		&podcast.TotalEpisodes, &lastSync, &podcast.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan podcast: %w", err)
	}
	if lastSync.Valid {
		podcast.LastSyncDate = &lastSync.Time
	}
	return podcast, nil
}

func scanEpisode(row rowScanner) (*models.Episode, error) {
	episode := &models.Episode{}
	var featuredOrder sql.NullInt64
	var tagsJSON string
	err := row.Scan(
		&episode.ID, &episode.PodcastID, &episode.PodcastTitle, &episode.Title,
		&episode.Description, &episode.PublishDate, &episode.AudioURL,
		&episode.AudioLength, &episode.Duration, &episode.Image,
		&episode.Featured, &featuredOrder, &tagsJSON, &episode.Genre,
		&episode.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan episode: %w", err)
	}
	if featuredOrder.Valid {
		order := int(featuredOrder.Int64)
		episode.FeaturedOrder = &order
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &episode.Tags); err != nil {
			return nil, fmt.Errorf("decode episode tags: %w", err)
		}
	}
	return episode, nil
}

func timeToSQL(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func intToSQL(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func tagsToSQL(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(encoded)
}
