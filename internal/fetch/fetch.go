// ABOUTME: Feed fetcher with direct fetch plus CORS-proxy fallback chain
// ABOUTME: Normalizes proxy response envelopes (JSON wrappers, raw XML, HTML error pages) to raw feed text

package fetch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// MaxResponseSize caps feed downloads at 10MB.
const MaxResponseSize = 10 * 1024 * 1024

const userAgent = "castkeep/1.0 (podcast sync)"

// ErrFeedUnreachable is returned when the direct fetch and every proxy
// failed or none yielded parseable XML. Per-feed and recoverable: callers
// running a multi-feed sync move on to the next feed.
var ErrFeedUnreachable = errors.New("feed unreachable: direct fetch and all proxies failed")

// DefaultProxies is the ordered proxy fallback chain: a local developer
// proxy first, then public CORS-proxy services. The target URL is appended
// URL-encoded.
var DefaultProxies = []string{
	"http://localhost:3001/proxy?url=",
	"https://api.allorigins.win/get?url=",
	"https://corsproxy.io/?",
	"https://api.codetabs.com/v1/proxy?quest=",
}

// envelope is the JSON wrapper shape some proxies put around the feed body.
type envelope struct {
	Contents string `json:"contents"`
	Response string `json:"response"`
}

// Client fetches raw feed text for a URL, trying a direct request before
// walking the proxy chain.
type Client struct {
	httpClient *http.Client
	proxies    []string
	log        *log.Logger
}

// NewClient creates a fetcher with the given proxy chain. A nil or empty
// chain falls back to DefaultProxies.
func NewClient(proxies []string) *Client {
	if len(proxies) == 0 {
		proxies = DefaultProxies
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		proxies:    proxies,
		log:        log.Default().With("component", "fetch"),
	}
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(logger *log.Logger) {
	c.log = logger.With("component", "fetch")
}

// Fetch retrieves the raw XML for feedURL. The direct request wins when it
// returns success and a well-formed XML body; otherwise proxies are tried
// in order and the first one yielding valid XML wins. Failing proxies are
// logged and skipped, not retried.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if err := validateTarget(feedURL); err != nil {
		return nil, err
	}

	if body, err := c.get(ctx, feedURL); err == nil {
		if !looksLikeHTML(body) && wellFormedXML(body) {
			c.log.Debug("fetched feed directly", "url", feedURL)
			return body, nil
		}
		c.log.Debug("direct fetch returned non-XML body", "url", feedURL)
	} else {
		c.log.Debug("direct fetch failed, trying proxies", "url", feedURL, "err", err)
	}

	for i, proxy := range c.proxies {
		body, err := c.fetchViaProxy(ctx, proxy, feedURL)
		if err != nil {
			c.log.Warn("proxy failed", "proxy", i+1, "err", err)
			continue
		}
		c.log.Debug("fetched feed via proxy", "url", feedURL, "proxy", i+1)
		return body, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrFeedUnreachable, feedURL)
}

// fetchViaProxy requests the feed through one proxy and unwraps whatever
// envelope that proxy uses. Returns an error unless the result is
// well-formed XML.
func (c *Client) fetchViaProxy(ctx context.Context, proxy, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxy+url.QueryEscape(feedURL), nil)
	if err != nil {
		return nil, fmt.Errorf("create proxy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy status %d", resp.StatusCode)
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	xmlText, err := unwrap(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, err
	}

	if !wellFormedXML(xmlText) {
		return nil, errors.New("proxy response is not well-formed XML")
	}
	return xmlText, nil
}

// unwrap normalizes a proxy response to raw feed text. Proxies differ:
// some wrap the body in a JSON envelope, some return the XML directly, and
// some fail by serving an HTML error page that must be rejected rather
// than mis-parsed as feed data.
func unwrap(contentType string, body []byte) ([]byte, error) {
	if strings.Contains(contentType, "application/json") {
		return unwrapJSON(body)
	}

	if looksLikeHTML(body) {
		return nil, errors.New("proxy returned HTML error page")
	}

	// Not declared as JSON but may still be an envelope
	if unwrapped, err := unwrapJSON(body); err == nil {
		return unwrapped, nil
	}

	return body, nil
}

func unwrapJSON(body []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode proxy envelope: %w", err)
	}
	switch {
	case env.Contents != "":
		return []byte(env.Contents), nil
	case env.Response != "":
		return []byte(env.Response), nil
	default:
		return nil, errors.New("no content received from proxy")
	}
}

// looksLikeHTML sniffs for an HTML document in the first chunk of a body.
func looksLikeHTML(body []byte) bool {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html")
}

// wellFormedXML reports whether the body tokenizes as XML with at least
// one element. This is the Go equivalent of checking for a parser error
// node before trusting a proxy's output.
func wellFormedXML(body []byte) bool {
	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	sawElement := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return sawElement
		}
		if err != nil {
			return false
		}
		if _, ok := token.(xml.StartElement); ok {
			sawElement = true
		}
	}
}

// get performs a plain GET of the target URL with the size cap applied.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response too large (exceeds %d bytes)", MaxResponseSize)
	}
	return body, nil
}

// validateTarget blocks requests that resolve to private IP ranges.
// Loopback stays allowed because the first proxy in the default chain is a
// local developer proxy.
func validateTarget(target string) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q", parsed.Scheme)
	}

	if ips, err := net.LookupIP(parsed.Hostname()); err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return errors.New("access to private IP ranges is not allowed")
			}
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
