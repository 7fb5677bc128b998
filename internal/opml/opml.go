// ABOUTME: OPML import and export for tracked podcast subscriptions
// ABOUTME: Flat feed lists with optional genre grouping, round-trip XML serialization

package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Feed is one podcast subscription in an OPML document. Genre comes from
// the enclosing outline group, when there is one.
type Feed struct {
	URL   string
	Title string
	Genre string
}

// Document is a podcast subscription list. Feeds keep their document
// order; duplicate URLs are rejected on add.
type Document struct {
	Title string
	feeds []Feed
	byURL map[string]bool
}

type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	XMLURL   string       `xml:"xmlUrl,attr,omitempty"`
	Children []outlineXML `xml:"outline,omitempty"`
}

// NewDocument creates an empty subscription list with the given title.
func NewDocument(title string) *Document {
	return &Document{Title: title, byURL: make(map[string]bool)}
}

// Parse reads an OPML document. Nested outlines one level deep are
// treated as genre groups; deeper nesting is flattened into the
// enclosing group.
func Parse(r io.Reader) (*Document, error) {
	var raw opmlXML
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode OPML: %w", err)
	}

	doc := NewDocument(raw.Head.Title)
	for _, outline := range raw.Body.Outlines {
		collect(doc, outline, "")
	}
	return doc, nil
}

// ParseFile reads an OPML document from a file.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open OPML file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

func collect(doc *Document, outline outlineXML, genre string) {
	if outline.XMLURL != "" {
		title := outline.Title
		if title == "" {
			title = outline.Text
		}
		// Duplicate URLs in the source document are kept once.
		_ = doc.AddFeed(Feed{URL: outline.XMLURL, Title: title, Genre: genre})
		return
	}

	childGenre := genre
	if genre == "" {
		childGenre = outline.Text
	}
	for _, child := range outline.Children {
		collect(doc, child, childGenre)
	}
}

// Feeds returns every subscription in document order.
func (d *Document) Feeds() []Feed {
	out := make([]Feed, len(d.feeds))
	copy(out, d.feeds)
	return out
}

// AddFeed appends a subscription. Adding a URL that is already present
// is an error.
func (d *Document) AddFeed(feed Feed) error {
	if d.byURL == nil {
		d.byURL = make(map[string]bool)
	}
	if d.byURL[feed.URL] {
		return fmt.Errorf("feed already present: %s", feed.URL)
	}
	d.feeds = append(d.feeds, feed)
	d.byURL[feed.URL] = true
	return nil
}

// Contains reports whether the document already lists the URL.
func (d *Document) Contains(url string) bool {
	return d.byURL[url]
}

// Write serializes the document as OPML 2.0. Feeds with a genre are
// grouped under one outline per genre, in first-seen order; ungrouped
// feeds sit at the root.
func (d *Document) Write(w io.Writer) error {
	doc := opmlXML{
		Version: "2.0",
		Head:    headXML{Title: d.Title},
	}

	groupIndex := make(map[string]int)
	for _, feed := range d.feeds {
		entry := outlineXML{
			Text:   feed.Title,
			Title:  feed.Title,
			Type:   "rss",
			XMLURL: feed.URL,
		}
		if feed.Genre == "" {
			doc.Body.Outlines = append(doc.Body.Outlines, entry)
			continue
		}

		idx, ok := groupIndex[feed.Genre]
		if !ok {
			doc.Body.Outlines = append(doc.Body.Outlines, outlineXML{Text: feed.Genre})
			idx = len(doc.Body.Outlines) - 1
			groupIndex[feed.Genre] = idx
		}
		doc.Body.Outlines[idx].Children = append(doc.Body.Outlines[idx].Children, entry)
	}

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("write XML header: %w", err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode OPML: %w", err)
	}
	return nil
}

// WriteFile writes the document to a file, creating parent directories
// as needed.
func (d *Document) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()
	return d.Write(file)
}
