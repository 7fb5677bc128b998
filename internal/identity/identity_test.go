// ABOUTME: Tests for deterministic podcast and episode ID derivation
// ABOUTME: Covers stability across calls, input sensitivity, and ID shape

package identity

import (
	"strings"
	"testing"
)

func TestPodcastID_Deterministic(t *testing.T) {
	url := "https://example.com/feed.xml"

	first := PodcastID(url)
	second := PodcastID(url)

	if first != second {
		t.Errorf("PodcastID not stable: %q vs %q", first, second)
	}
}

func TestPodcastID_Shape(t *testing.T) {
	id := PodcastID("https://example.com/feed.xml")

	if !strings.HasPrefix(id, "rss_") {
		t.Errorf("PodcastID = %q, want rss_ prefix", id)
	}
	if len(id) > len("rss_")+20 {
		t.Errorf("PodcastID too long: %q (%d chars)", id, len(id))
	}
	// URL-safe alphabet only, so the ID is usable as a document key
	if strings.ContainsAny(id, "/+=") {
		t.Errorf("PodcastID contains non-key-safe characters: %q", id)
	}
}

func TestPodcastID_DistinctURLs(t *testing.T) {
	// Hosts differ within the first 15 bytes, the part the truncated
	// encoding actually covers.
	a := PodcastID("https://alpha.fm/feed.xml")
	b := PodcastID("https://omega.fm/feed.xml")

	if a == b {
		t.Errorf("distinct URLs produced the same ID: %q", a)
	}
}

func TestPodcastID_SharedPrefixCollision(t *testing.T) {
	// Truncating to 20 base64 chars keeps exactly the first 15 bytes of
	// the URL, so feeds that agree on those bytes share an ID. Known
	// limitation of the derivation, pinned here so a future change to the
	// scheme is a deliberate one.
	a := PodcastID("https://pods.example.com/shows/alpha/feed.xml")
	b := PodcastID("https://pods.example.com/shows/omega/feed.xml")

	if a != b {
		t.Errorf("URLs sharing their first 15 bytes should collide: %q vs %q", a, b)
	}
}

func TestPodcastID_Unicode(t *testing.T) {
	// Unicode URLs must encode without error and stay deterministic
	url := "https://example.com/ποδκαστ.xml"

	first := PodcastID(url)
	second := PodcastID(url)

	if first != second {
		t.Errorf("Unicode PodcastID not stable: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, "rss_") {
		t.Errorf("Unicode PodcastID = %q, want rss_ prefix", first)
	}
}

func TestEpisodeID_Deterministic(t *testing.T) {
	first := EpisodeID("rss_abc", "Episode 1", "Mon, 01 Jan 2024 00:00:00 GMT", "guid-1", "https://x/a.mp3")
	second := EpisodeID("rss_abc", "Episode 1", "Mon, 01 Jan 2024 00:00:00 GMT", "guid-1", "https://x/a.mp3")

	if first != second {
		t.Errorf("EpisodeID not stable: %q vs %q", first, second)
	}
}

func TestEpisodeID_Shape(t *testing.T) {
	id := EpisodeID("rss_abc", "Episode 1", "2024-01-01", "guid-1", "https://x/a.mp3")

	if !strings.HasPrefix(id, "rss_ep_") {
		t.Errorf("EpisodeID = %q, want rss_ep_ prefix", id)
	}
	suffix := strings.TrimPrefix(id, "rss_ep_")
	if suffix == "" {
		t.Fatal("EpisodeID has empty hash suffix")
	}
	for _, r := range suffix {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", r) {
			t.Errorf("EpisodeID suffix %q contains non-base36 rune %q", suffix, r)
		}
	}
}

func TestEpisodeID_InputSensitivity(t *testing.T) {
	base := EpisodeID("rss_abc", "Episode 1", "2024-01-01", "guid-1", "https://x/a.mp3")

	variants := map[string]string{
		"title":    EpisodeID("rss_abc", "Episode 2", "2024-01-01", "guid-1", "https://x/a.mp3"),
		"date":     EpisodeID("rss_abc", "Episode 1", "2024-01-02", "guid-1", "https://x/a.mp3"),
		"guid":     EpisodeID("rss_abc", "Episode 1", "2024-01-01", "guid-2", "https://x/a.mp3"),
		"audioURL": EpisodeID("rss_abc", "Episode 1", "2024-01-01", "guid-1", "https://x/b.mp3"),
		"podcast":  EpisodeID("rss_xyz", "Episode 1", "2024-01-01", "guid-1", "https://x/a.mp3"),
	}

	for field, id := range variants {
		if id == base {
			t.Errorf("changing %s did not change the episode ID", field)
		}
	}
}
