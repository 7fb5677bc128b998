// ABOUTME: Feed discovery resolving a website URL to its podcast RSS feed
// ABOUTME: Tries direct parse, HTML link rel=alternate extraction, then common path probing

package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"castkeep/internal/parse"
)

// Common feed paths to probe when other discovery methods fail.
var commonFeedPaths = []string{
	"/feed.xml",
	"/feed",
	"/rss.xml",
	"/rss",
	"/podcast.xml",
	"/podcast/feed",
	"/atom.xml",
	"/index.xml",
	"/feeds/posts/default",
}

var (
	ErrNoFeedFound = errors.New("no podcast feed found at URL")
	ErrInvalidURL  = errors.New("invalid URL")
)

// maxPageSize caps how much of an HTML page is read when scanning for
// feed links.
const maxPageSize = 2 * 1024 * 1024

// Feed is a feed located during discovery.
type Feed struct {
	URL   string // Absolute URL of the feed
	Title string // Podcast title (from feed content or the link element)
}

// Fetcher retrieves raw feed bytes, typically the proxy-fallback fetch
// client.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// Discoverer finds podcast feeds starting from an arbitrary URL. Feed
// candidates go through the injected Fetcher so they get the same proxy
// fallback as regular syncs; HTML pages are fetched directly since the
// proxy chain rejects non-XML bodies.
type Discoverer struct {
	fetcher    Fetcher
	httpClient *http.Client
}

// New creates a discoverer around the given feed fetcher.
func New(fetcher Fetcher) *Discoverer {
	return &Discoverer{
		fetcher:    fetcher,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Discover resolves inputURL to a podcast feed. Strategies in order:
//
//  1. Fetch and parse the URL as a direct feed
//  2. Fetch the URL as HTML and follow <link rel="alternate"> feed links
//  3. Probe common feed paths on the site root
func (d *Discoverer) Discover(ctx context.Context, inputURL string) (*Feed, error) {
	parsedURL, err := url.Parse(inputURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	if feed := d.tryFeed(ctx, inputURL); feed != nil {
		return feed, nil
	}

	if candidates, err := d.pageFeedLinks(ctx, parsedURL); err == nil {
		for _, candidate := range candidates {
			if feed := d.tryFeed(ctx, candidate.URL); feed != nil {
				if feed.Title == "" {
					feed.Title = candidate.Title
				}
				return feed, nil
			}
		}
	}

	root := &url.URL{Scheme: parsedURL.Scheme, Host: parsedURL.Host}
	for _, path := range commonFeedPaths {
		if feed := d.tryFeed(ctx, root.String()+path); feed != nil {
			return feed, nil
		}
	}

	return nil, ErrNoFeedFound
}

// tryFeed fetches candidateURL and parses it as a feed. Returns nil when
// the URL is unreachable or does not hold a parseable feed.
func (d *Discoverer) tryFeed(ctx context.Context, candidateURL string) *Feed {
	raw, err := d.fetcher.Fetch(ctx, candidateURL)
	if err != nil {
		return nil
	}
	podcast, _, err := parse.Parse(raw, candidateURL)
	if err != nil {
		return nil
	}
	return &Feed{URL: candidateURL, Title: podcast.Title}
}

// pageFeedLinks fetches the page as HTML and extracts feed URLs from
// <link rel="alternate"> elements, resolved against the page URL.
func (d *Discoverer) pageFeedLinks(ctx context.Context, pageURL *url.URL) ([]Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	var feeds []Feed
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" {
			var rel, linkType, href, title string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "rel":
					rel = attr.Val
				case "type":
					linkType = attr.Val
				case "href":
					href = attr.Val
				case "title":
					title = attr.Val
				}
			}
			if rel == "alternate" && isFeedContentType(linkType) && href != "" {
				if ref, err := url.Parse(href); err == nil {
					feeds = append(feeds, Feed{
						URL:   pageURL.ResolveReference(ref).String(),
						Title: title,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return feeds, nil
}

func isFeedContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom") ||
		strings.Contains(contentType, "xml")
}
