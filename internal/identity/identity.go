// ABOUTME: Deterministic identifier derivation for podcasts and episodes
// ABOUTME: Same feed URL or episode metadata always produces the same ID across syncs

package identity

import (
	"encoding/base64"
	"strconv"
	"strings"
)

const (
	podcastPrefix = "rss_"
	episodePrefix = "rss_ep_"

	// Length of the encoded feed-URL portion of a podcast ID. Long enough
	// to keep distinct feeds distinct in practice, short enough for
	// document-store key limits.
	podcastIDLen = 20
)

// PodcastID derives a stable identifier from a feed URL. The URL is
// base64-encoded (URL-safe alphabet, so the result is a valid document
// key) and truncated. The same URL always yields the same ID.
func PodcastID(feedURL string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(feedURL))
	if len(encoded) > podcastIDLen {
		encoded = encoded[:podcastIDLen]
	}
	return podcastPrefix + encoded
}

// EpisodeID derives a stable identifier for an episode from the owning
// podcast ID and the item's metadata. Re-parsing the same feed item yields
// the same ID, which is what makes re-sync diffing work. No timestamp or
// random salt goes into the composite.
func EpisodeID(podcastID, title, pubDate, guid, audioURL string) string {
	composite := strings.Join([]string{podcastID, title, pubDate, guid, audioURL}, "_")
	return episodePrefix + strconv.FormatInt(abs32(hash32(composite)), 36)
}

// hash32 is a rolling multiply-add hash with 32-bit overflow wrapping:
// h = h*31 + c for each rune of s.
func hash32(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}

func abs32(n int32) int64 {
	v := int64(n)
	if v < 0 {
		return -v
	}
	return v
}
