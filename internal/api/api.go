// Package api ties the scraper, the Markdown parser and the article cache
// together into the operations exposed by the CLI and the MCP server.
package api

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/tesh254/wikimd/internal/logger"
	"github.com/tesh254/wikimd/internal/scraper"
	"github.com/tesh254/wikimd/internal/storage"
)

// ErrNoResults is returned by Lookup when the search has no hits.
var ErrNoResults = errors.New("no results found")

// Wiki is the subset of the scraper the API depends on.
type Wiki interface {
	Search(ctx context.Context, query string) ([]scraper.SearchResult, error)
	FetchArticle(ctx context.Context, title string) (*scraper.Article, error)
}

// LookupOptions tunes a Lookup call.
type LookupOptions struct {
	// Refresh bypasses the cache and refetches the article.
	Refresh bool
}

// API provides the wikimd operations.
type API struct {
	wiki    Wiki
	parser  *scraper.Parser
	storage *storage.Storage
}

// NewAPI creates a new API instance. st may be nil to disable caching.
func NewAPI(wiki Wiki, parser *scraper.Parser, st *storage.Storage) *API {
	return &API{
		wiki:    wiki,
		parser:  parser,
		storage: st,
	}
}

// Parser returns the parser used for conversions.
func (a *API) Parser() *scraper.Parser {
	return a.parser
}

// ConvertHTML converts an HTML document with the configured parser.
func (a *API) ConvertHTML(html string) (string, error) {
	return a.parser.ToMarkdown(html)
}

// Lookup resolves query to the first search hit and returns that article
// as Markdown, fetching and caching it when needed.
func (a *API) Lookup(ctx context.Context, query string, opts LookupOptions) (*storage.Document, error) {
	if a.storage != nil && !opts.Refresh {
		doc, err := a.storage.FindByTitle(query)
		if err == nil {
			logger.Debug("cache hit for %q", query)
			return doc, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("cache lookup failed: %v", err)
		}
	}

	results, err := a.wiki.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResults, query)
	}
	title := results[0].Title
	logger.Info("first result for %q: %s", query, title)

	if a.storage != nil && !opts.Refresh {
		if doc, err := a.storage.FindByTitle(title); err == nil {
			logger.Debug("cache hit for %q", title)
			return doc, nil
		}
	}

	article, err := a.wiki.FetchArticle(ctx, title)
	if err != nil {
		return nil, err
	}
	content, err := a.parser.NodeToMarkdown(article.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", article.URL, err)
	}

	doc := &storage.Document{
		URL:         article.URL,
		Title:       title,
		Description: article.Metadata.Description,
		Content:     content,
		Checksum:    fmt.Sprintf("%x", sha256.Sum256([]byte(content))),
		Engine:      string(a.parser.Engine()),
		FetchedAt:   time.Now(),
	}
	if a.storage != nil {
		if err := a.storage.UpsertDocument(doc); err != nil {
			logger.Warn("failed to cache %s: %v", doc.URL, err)
		}
	}
	return doc, nil
}

// GetDocument retrieves a cached document by URL.
func (a *API) GetDocument(url string) (*storage.Document, error) {
	if a.storage == nil {
		return nil, storage.ErrNotFound
	}
	return a.storage.GetDocument(url)
}

// DeleteDocuments deletes cached documents by URL prefix.
func (a *API) DeleteDocuments(urlPrefix string) (int64, error) {
	if a.storage == nil {
		return 0, nil
	}
	return a.storage.DeleteDocumentsByPrefix(urlPrefix)
}

// ListDocuments lists all cached documents.
func (a *API) ListDocuments() ([]*storage.Document, error) {
	if a.storage == nil {
		return nil, nil
	}
	return a.storage.ListDocuments()
}
