// ABOUTME: Tests for the SQLite store: CRUD, merge-upsert semantics, batch deletes
// ABOUTME: Uses t.TempDir() databases, no shared fixtures between tests

package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"castkeep/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testPodcast() *models.Podcast {
	return &models.Podcast{
		ID:          "rss_abc123",
		Title:       "Improvement Hour",
		Description: "Weekly conversations",
		Image:       "https://example.com/cover.jpg",
		Publisher:   "Improvement Media",
		Language:    "en",
		FeedURL:     "https://example.com/feed.xml",
	}
}

func testEpisode(id, podcastID string, published time.Time) *models.Episode {
	return &models.Episode{
		ID:           id,
		PodcastID:    podcastID,
		PodcastTitle: "Improvement Hour",
		Title:        "Episode " + id,
		Description:  "About " + id,
		PublishDate:  published,
		AudioURL:     "https://x/" + id + ".mp3",
		AudioLength:  1800,
		Duration:     "30:00",
		Tags:         []string{"Lean"},
	}
}

func TestPodcastCRUD(t *testing.T) {
	store := newTestStore(t)
	podcast := testPodcast()

	if err := store.SavePodcast(podcast); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}

	got, err := store.GetPodcast(podcast.ID)
	if err != nil {
		t.Fatalf("GetPodcast failed: %v", err)
	}
	if got.Title != podcast.Title || got.FeedURL != podcast.FeedURL {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set on insert")
	}

	got, err = store.GetPodcastByFeedURL(podcast.FeedURL)
	if err != nil {
		t.Fatalf("GetPodcastByFeedURL failed: %v", err)
	}
	if got.ID != podcast.ID {
		t.Errorf("ID = %q, want %q", got.ID, podcast.ID)
	}

	podcasts, err := store.ListPodcasts()
	if err != nil {
		t.Fatalf("ListPodcasts failed: %v", err)
	}
	if len(podcasts) != 1 {
		t.Errorf("ListPodcasts count = %d, want 1", len(podcasts))
	}

	if err := store.DeletePodcast(podcast.ID); err != nil {
		t.Fatalf("DeletePodcast failed: %v", err)
	}
	if _, err := store.GetPodcast(podcast.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestSavePodcast_MergePreservesCreatedAtAndFeedURL(t *testing.T) {
	store := newTestStore(t)
	podcast := testPodcast()
	if err := store.SavePodcast(podcast); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}
	original, _ := store.GetPodcast(podcast.ID)

	// Re-sync with updated metadata and a different feed URL claim
	updated := testPodcast()
	updated.Title = "Improvement Hour (Rebranded)"
	updated.TotalEpisodes = 42
	if err := store.SavePodcast(updated); err != nil {
		t.Fatalf("second SavePodcast failed: %v", err)
	}

	got, err := store.GetPodcast(podcast.ID)
	if err != nil {
		t.Fatalf("GetPodcast failed: %v", err)
	}
	if got.Title != "Improvement Hour (Rebranded)" {
		t.Errorf("Title not merged: %q", got.Title)
	}
	if got.TotalEpisodes != 42 {
		t.Errorf("TotalEpisodes not merged: %d", got.TotalEpisodes)
	}
	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt changed on merge: %v vs %v", got.CreatedAt, original.CreatedAt)
	}
}

func TestEpisodeCRUD(t *testing.T) {
	store := newTestStore(t)
	podcast := testPodcast()
	if err := store.SavePodcast(podcast); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}

	published := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	episode := testEpisode("rss_ep_1", podcast.ID, published)
	if err := store.SaveEpisode(episode); err != nil {
		t.Fatalf("SaveEpisode failed: %v", err)
	}

	got, err := store.GetEpisode(episode.ID)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}
	if got.AudioURL != episode.AudioURL {
		t.Errorf("AudioURL = %q, want %q", got.AudioURL, episode.AudioURL)
	}
	if !got.PublishDate.Equal(published) {
		t.Errorf("PublishDate = %v, want %v", got.PublishDate, published)
	}
	if !reflect.DeepEqual(got.Tags, episode.Tags) {
		t.Errorf("Tags = %v, want %v", got.Tags, episode.Tags)
	}
	if got.FeaturedOrder != nil {
		t.Error("FeaturedOrder should round-trip as nil")
	}

	if err := store.DeleteEpisode(episode.ID); err != nil {
		t.Fatalf("DeleteEpisode failed: %v", err)
	}
	if _, err := store.GetEpisode(episode.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestSaveEpisode_MergePreservesCuration(t *testing.T) {
	store := newTestStore(t)
	if err := store.SavePodcast(testPodcast()); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}

	published := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	episode := testEpisode("rss_ep_1", "rss_abc123", published)
	if err := store.SaveEpisode(episode); err != nil {
		t.Fatalf("SaveEpisode failed: %v", err)
	}

	order := 3
	if err := store.SetEpisodeFeatured(episode.ID, true, &order); err != nil {
		t.Fatalf("SetEpisodeFeatured failed: %v", err)
	}

	// Re-sync writes the episode again with featured=false; curation must
	// survive the merge
	resynced := testEpisode("rss_ep_1", "rss_abc123", published)
	resynced.Description = "Updated description from the feed"
	if err := store.SaveEpisode(resynced); err != nil {
		t.Fatalf("re-sync SaveEpisode failed: %v", err)
	}

	got, err := store.GetEpisode(episode.ID)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}
	if got.Description != "Updated description from the feed" {
		t.Errorf("Description not merged: %q", got.Description)
	}
	if !got.Featured {
		t.Error("Featured flag clobbered by re-sync")
	}
	if got.FeaturedOrder == nil || *got.FeaturedOrder != 3 {
		t.Errorf("FeaturedOrder clobbered by re-sync: %v", got.FeaturedOrder)
	}
}

func TestListEpisodes_Filters(t *testing.T) {
	store := newTestStore(t)
	if err := store.SavePodcast(testPodcast()); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}
	other := testPodcast()
	other.ID = "rss_other"
	other.FeedURL = "https://example.org/other.xml"
	if err := store.SavePodcast(other); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}

	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, podcastID := range []string{"rss_abc123", "rss_abc123", "rss_other"} {
		episode := testEpisode(string(rune('a'+i)), podcastID, base.AddDate(0, 0, i))
		if err := store.SaveEpisode(episode); err != nil {
			t.Fatalf("SaveEpisode failed: %v", err)
		}
	}

	podcastID := "rss_abc123"
	episodes, err := store.ListEpisodes(&EpisodeFilter{PodcastID: &podcastID})
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("filtered count = %d, want 2", len(episodes))
	}
	// Newest first
	if episodes[0].PublishDate.Before(episodes[1].PublishDate) {
		t.Error("episodes not ordered newest first")
	}

	limit := 1
	episodes, err = store.ListEpisodes(&EpisodeFilter{Limit: &limit})
	if err != nil {
		t.Fatalf("ListEpisodes with limit failed: %v", err)
	}
	if len(episodes) != 1 {
		t.Errorf("limited count = %d, want 1", len(episodes))
	}
}

func TestListEpisodes_FeaturedOrdering(t *testing.T) {
	store := newTestStore(t)
	if err := store.SavePodcast(testPodcast()); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}

	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.SaveEpisode(testEpisode(id, "rss_abc123", base)); err != nil {
			t.Fatalf("SaveEpisode failed: %v", err)
		}
	}
	two, one := 2, 1
	if err := store.SetEpisodeFeatured("a", true, &two); err != nil {
		t.Fatal(err)
	}
	if err := store.SetEpisodeFeatured("b", true, &one); err != nil {
		t.Fatal(err)
	}

	featured, err := store.ListEpisodes(&EpisodeFilter{FeaturedOnly: true})
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(featured) != 2 {
		t.Fatalf("featured count = %d, want 2", len(featured))
	}
	if featured[0].ID != "b" || featured[1].ID != "a" {
		t.Errorf("featured order = [%s, %s], want [b, a]", featured[0].ID, featured[1].ID)
	}
}

func TestDeleteEpisodesBatch_Atomic(t *testing.T) {
	store := newTestStore(t)
	if err := store.SavePodcast(testPodcast()); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}

	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.SaveEpisode(testEpisode(id, "rss_abc123", base)); err != nil {
			t.Fatalf("SaveEpisode failed: %v", err)
		}
	}

	if err := store.DeleteEpisodesBatch([]string{"a", "c"}); err != nil {
		t.Fatalf("DeleteEpisodesBatch failed: %v", err)
	}

	count, err := store.CountEpisodes(nil)
	if err != nil {
		t.Fatalf("CountEpisodes failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 remaining", count)
	}
	if _, err := store.GetEpisode("b"); err != nil {
		t.Errorf("survivor b missing: %v", err)
	}

	// Empty batch is a no-op
	if err := store.DeleteEpisodesBatch(nil); err != nil {
		t.Errorf("empty batch returned error: %v", err)
	}
}

func TestDeletePodcast_CascadesToEpisodes(t *testing.T) {
	store := newTestStore(t)
	if err := store.SavePodcast(testPodcast()); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := store.SaveEpisode(testEpisode("a", "rss_abc123", base)); err != nil {
		t.Fatalf("SaveEpisode failed: %v", err)
	}

	if err := store.DeletePodcast("rss_abc123"); err != nil {
		t.Fatalf("DeletePodcast failed: %v", err)
	}

	count, err := store.CountEpisodes(nil)
	if err != nil {
		t.Fatalf("CountEpisodes failed: %v", err)
	}
	if count != 0 {
		t.Errorf("episode count after cascade = %d, want 0", count)
	}
}

func TestSaveEpisode_RejectsEmptyAudioURL(t *testing.T) {
	store := newTestStore(t)
	if err := store.SavePodcast(testPodcast()); err != nil {
		t.Fatalf("SavePodcast failed: %v", err)
	}

	episode := testEpisode("a", "rss_abc123", time.Now())
	episode.AudioURL = ""
	if err := store.SaveEpisode(episode); err == nil {
		t.Error("expected CHECK constraint error for empty audio URL")
	}
}
