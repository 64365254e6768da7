// Package scraper looks up and fetches Wikipedia articles.
//
// This package offers a configurable client that queries the MediaWiki search
// API, fetches article pages, and extracts their metadata and main content
// node. Requests are rate limited and bounded in concurrency so that a single
// Scraper can be shared by concurrent callers without overwhelming the site.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/tesh254/wikimd/internal/logger"
)

// Config holds configuration options for the scraper.
//
// This struct allows customization of the scraper's behavior including
// request parameters, timeouts, rate limiting and the endpoints it talks to.
type Config struct {
	// UserAgent is the User-Agent header value sent with HTTP requests
	UserAgent string
	// Timeout specifies the maximum duration to wait for an HTTP request to complete
	Timeout time.Duration
	// RequestDelay specifies the minimum time between two requests
	// A zero value disables pacing
	RequestDelay time.Duration
	// MaxConcurrent limits the total number of concurrent HTTP requests
	MaxConcurrent int
	// APIURL is the MediaWiki api.php endpoint used for searching
	APIURL string
	// WikiURL is the site root that article paths (/wiki/<Title>) are appended to
	WikiURL string
	// ContentSelector is a CSS selector tried before the built-in ones when
	// locating an article's main content
	ContentSelector string
	// Verbose enables banners and tables on the log output
	Verbose bool
}

// DefaultConfig returns a default configuration with reasonable values.
//
// The default configuration targets the English Wikipedia with a standard
// user agent, a reasonable timeout and conservative rate limiting.
//
// Returns:
//   - A Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		UserAgent:     "Mozilla/5.0 (compatible; wikimd/1.0)",
		Timeout:       10 * time.Second,
		RequestDelay:  200 * time.Millisecond,
		MaxConcurrent: 2,
		APIURL:        "https://en.wikipedia.org/w/api.php",
		WikiURL:       "https://en.wikipedia.org",
	}
}

// defaultContentSelectors locate the article body, most specific first.
var defaultContentSelectors = []string{
	"#mw-content-text",
	"main",
	"article",
	"#content",
	"body",
}

// Metadata holds metadata information extracted from a webpage.
type Metadata struct {
	// Title is the content of the <title> tag
	Title string
	// Description is the content of the meta description tag
	Description string
}

// SearchResult is one hit returned by the search API.
type SearchResult struct {
	Title     string `json:"title"`
	PageID    int    `json:"pageid"`
	Snippet   string `json:"snippet"`
	WordCount int    `json:"wordcount"`
}

type searchResponse struct {
	Query struct {
		Search []SearchResult `json:"search"`
	} `json:"query"`
}

// Article is a fetched and parsed article page.
type Article struct {
	// Title is the article title the page was requested by
	Title string
	// URL is the page address
	URL string
	// Metadata contains metadata extracted from the page head
	Metadata Metadata
	// Document is the parsed page
	Document *html.Node
	// Content is the main content node within Document
	Content *html.Node
}

// Scraper is responsible for talking to the wiki.
//
// It handles searching, fetching pages and extracting their content while
// respecting rate limits and timeouts.
type Scraper struct {
	// Config contains all the configuration options for this scraper
	Config *Config
	// client is the HTTP client used for making requests
	client *http.Client
	// limiter spaces requests by Config.RequestDelay
	limiter *rate.Limiter
	// requestSem is a semaphore channel to limit concurrent requests
	requestSem chan struct{}
}

// New creates a new scraper with the given configuration.
//
// If config is nil, default configuration will be used.
//
// Parameters:
//   - config: The configuration to use for this scraper (or nil for defaults)
//
// Returns:
//   - A new Scraper instance ready to use
func New(config *Config) *Scraper {
	if config == nil {
		config = DefaultConfig()
	} else {
		c := *config
		config = &c
	}
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}

	limit := rate.Inf
	if config.RequestDelay > 0 {
		limit = rate.Every(config.RequestDelay)
	}

	s := &Scraper{
		Config:     config,
		client:     &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		requestSem: make(chan struct{}, config.MaxConcurrent),
	}
	s.displayInitBanner()
	return s
}

// waitForRateLimit takes a concurrency slot and waits for the limiter. The
// caller must release the slot when its request is done.
func (s *Scraper) waitForRateLimit(ctx context.Context) error {
	select {
	case s.requestSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		<-s.requestSem
		return err
	}
	return nil
}

// Search queries the search API and returns its hits in ranking order.
func (s *Scraper) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint, err := url.Parse(s.Config.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("utf8", "")
	params.Set("srsearch", query)
	endpoint.RawQuery = params.Encode()

	body, _, err := s.fetch(ctx, endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	logger.Debug("search %q returned %d results", query, len(resp.Query.Search))
	s.displaySearchResults(query, resp.Query.Search)
	return resp.Query.Search, nil
}

// slugEscaper undoes the escaping of parentheses, which wiki paths keep.
var slugEscaper = strings.NewReplacer("%28", "(", "%29", ")")

// ArticleURL returns the page address of title under wikiURL.
func ArticleURL(wikiURL, title string) string {
	slug := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	return strings.TrimRight(wikiURL, "/") + "/wiki/" + slugEscaper.Replace(url.PathEscape(slug))
}

// FetchArticle fetches the page for title and parses it.
//
// Parameters:
//   - ctx: Bounds the request
//   - title: The article title, as returned by Search
//
// Returns:
//   - The parsed Article, or an error if the page cannot be fetched or parsed
func (s *Scraper) FetchArticle(ctx context.Context, title string) (*Article, error) {
	pageURL := ArticleURL(s.Config.WikiURL, title)

	done := s.startSpinner("Fetching " + title)
	body, contentType, err := s.fetch(ctx, pageURL)
	close(done)
	if err != nil {
		s.displayError(err)
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	if !strings.Contains(contentType, "text/html") {
		return nil, fmt.Errorf("not HTML content: %s", contentType)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	article := &Article{
		Title:    title,
		URL:      pageURL,
		Document: doc,
		Content:  s.mainContent(doc),
		Metadata: Metadata{
			Title:       extractTitle(doc),
			Description: extractDescription(doc),
		},
	}
	s.displayMetadata(article)
	return article, nil
}

// fetch performs a rate limited GET and returns the body and content type.
func (s *Scraper) fetch(ctx context.Context, urlStr string) ([]byte, string, error) {
	if err := s.waitForRateLimit(ctx); err != nil {
		return nil, "", err
	}
	defer func() { <-s.requestSem }() // Release semaphore when done

	ctx, cancel := context.WithTimeout(ctx, s.Config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	logger.Debug("GET %s", urlStr)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// mainContent finds the main content node of a page.
//
// The configured selector is tried first, then the built-in ones. If none
// matches, the whole document is returned.
func (s *Scraper) mainContent(doc *html.Node) *html.Node {
	selectors := defaultContentSelectors
	if s.Config.ContentSelector != "" {
		selectors = append([]string{s.Config.ContentSelector}, selectors...)
	}

	page := goquery.NewDocumentFromNode(doc)
	for _, sel := range selectors {
		if found := page.Find(sel).First(); found.Length() > 0 {
			logger.Debug("main content matched %q", sel)
			return found.Get(0)
		}
	}
	return doc
}

// extractTitle extracts the title from an HTML node
func extractTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := extractTitle(c); title != "" {
			return title
		}
	}

	return ""
}

// extractDescription extracts the meta description from an HTML node
func extractDescription(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		var isDesc, hasContent bool
		var content string

		for _, a := range n.Attr {
			if a.Key == "name" && a.Val == "description" {
				isDesc = true
			}
			if a.Key == "content" {
				content = a.Val
				hasContent = true
			}
		}

		if isDesc && hasContent {
			return content
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if desc := extractDescription(c); desc != "" {
			return desc
		}
	}

	return ""
}
