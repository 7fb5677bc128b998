// ABOUTME: Tests for OPML subscription parsing, grouping, and round-trips
// ABOUTME: Covers genre groups, flat lists, duplicates, and file IO

package opml

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

const sampleOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Podcasts</title></head>
  <body>
    <outline text="Technology">
      <outline text="Tech Talks" type="rss" xmlUrl="https://example.com/tech.xml"/>
      <outline text="Go Time" title="Go Time" type="rss" xmlUrl="https://example.com/gotime.xml"/>
    </outline>
    <outline text="Standalone Show" type="rss" xmlUrl="https://example.com/standalone.xml"/>
  </body>
</opml>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleOPML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if doc.Title != "Podcasts" {
		t.Errorf("Title = %q, want Podcasts", doc.Title)
	}

	feeds := doc.Feeds()
	if len(feeds) != 3 {
		t.Fatalf("got %d feeds, want 3", len(feeds))
	}

	want := []Feed{
		{URL: "https://example.com/tech.xml", Title: "Tech Talks", Genre: "Technology"},
		{URL: "https://example.com/gotime.xml", Title: "Go Time", Genre: "Technology"},
		{URL: "https://example.com/standalone.xml", Title: "Standalone Show", Genre: ""},
	}
	for i, w := range want {
		if feeds[i] != w {
			t.Errorf("feed %d = %+v, want %+v", i, feeds[i], w)
		}
	}
}

func TestParse_DuplicateURLsKeptOnce(t *testing.T) {
	input := `<opml version="2.0"><head><title>T</title></head><body>
<outline text="A" type="rss" xmlUrl="https://example.com/a.xml"/>
<outline text="A again" type="rss" xmlUrl="https://example.com/a.xml"/>
</body></opml>`

	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Feeds()) != 1 {
		t.Errorf("got %d feeds, want 1", len(doc.Feeds()))
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse(strings.NewReader("not xml at all")); err == nil {
		t.Error("expected error for invalid OPML")
	}
}

func TestAddFeed_RejectsDuplicates(t *testing.T) {
	doc := NewDocument("Podcasts")
	feed := Feed{URL: "https://example.com/a.xml", Title: "A"}

	if err := doc.AddFeed(feed); err != nil {
		t.Fatalf("AddFeed: %v", err)
	}
	if err := doc.AddFeed(feed); err == nil {
		t.Error("expected error adding duplicate URL")
	}
	if !doc.Contains(feed.URL) {
		t.Error("Contains should report the added URL")
	}
}

func TestWrite_GroupsByGenre(t *testing.T) {
	doc := NewDocument("Podcasts")
	for _, feed := range []Feed{
		{URL: "https://example.com/tech.xml", Title: "Tech Talks", Genre: "Technology"},
		{URL: "https://example.com/lean.xml", Title: "Lean Thinking", Genre: "Business"},
		{URL: "https://example.com/gotime.xml", Title: "Go Time", Genre: "Technology"},
		{URL: "https://example.com/solo.xml", Title: "Solo Show"},
	} {
		if err := doc.AddFeed(feed); err != nil {
			t.Fatalf("AddFeed: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	parsed, err := Parse(&buf)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}

	feeds := parsed.Feeds()
	if len(feeds) != 4 {
		t.Fatalf("round trip lost feeds: got %d, want 4", len(feeds))
	}
	byURL := make(map[string]Feed)
	for _, feed := range feeds {
		byURL[feed.URL] = feed
	}
	if byURL["https://example.com/gotime.xml"].Genre != "Technology" {
		t.Errorf("Go Time genre = %q, want Technology", byURL["https://example.com/gotime.xml"].Genre)
	}
	if byURL["https://example.com/solo.xml"].Genre != "" {
		t.Errorf("Solo Show genre = %q, want empty", byURL["https://example.com/solo.xml"].Genre)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs", "podcasts.opml")

	doc := NewDocument("My Podcasts")
	if err := doc.AddFeed(Feed{URL: "https://example.com/a.xml", Title: "A", Genre: "Technology"}); err != nil {
		t.Fatalf("AddFeed: %v", err)
	}
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if loaded.Title != "My Podcasts" {
		t.Errorf("Title = %q, want My Podcasts", loaded.Title)
	}
	feeds := loaded.Feeds()
	if len(feeds) != 1 || feeds[0].URL != "https://example.com/a.xml" {
		t.Errorf("feeds = %+v", feeds)
	}
}
