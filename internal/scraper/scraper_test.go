package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesh254/wikimd/internal/logger"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
<title>Go (programming language) - Wikipedia</title>
<meta name="description" content="Programming language">
</head>
<body>
<div id="mw-navigation">Navigation</div>
<div id="mw-content-text"><p><b>Go</b> is a language.</p></div>
</body>
</html>`

const searchJSON = `{"query":{"search":[
	{"title":"Go (programming language)","pageid":25039021,"snippet":"<span class=\"searchmatch\">Go</span> is","wordcount":9000},
	{"title":"Go (game)","pageid":11887,"snippet":"board game","wordcount":7000}
]}}`

// newWiki starts a fake wiki serving the search API and one article.
func newWiki(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("list") != "search" || q.Get("format") != "json" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		if q.Get("srsearch") == "broken" {
			w.Write([]byte("{not json"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchJSON))
	})
	mux.HandleFunc("/wiki/Go_(programming_language)", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "wikimd-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	})
	mux.HandleFunc("/wiki/Data", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testConfig(srv *httptest.Server) *Config {
	cfg := DefaultConfig()
	cfg.UserAgent = "wikimd-test"
	cfg.RequestDelay = 0
	cfg.APIURL = srv.URL + "/w/api.php"
	cfg.WikiURL = srv.URL
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", cfg.APIURL)
	assert.Equal(t, "https://en.wikipedia.org", cfg.WikiURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Positive(t, cfg.MaxConcurrent)
}

func TestNew_NilConfig(t *testing.T) {
	s := New(nil)
	require.NotNil(t, s)
	assert.Equal(t, DefaultConfig(), s.Config)
}

func TestNew_DoesNotModifyConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrent = 0

	s := New(cfg)
	assert.Equal(t, 1, s.Config.MaxConcurrent)
	assert.Equal(t, 0, cfg.MaxConcurrent)
	assert.NotSame(t, cfg, s.Config)
}

func TestArticleURL(t *testing.T) {
	tests := []struct {
		name     string
		wikiURL  string
		title    string
		expected string
	}{
		{
			name:     "spaces become underscores",
			wikiURL:  "https://en.wikipedia.org",
			title:    "Go (programming language)",
			expected: "https://en.wikipedia.org/wiki/Go_(programming_language)",
		},
		{
			name:     "trailing slash",
			wikiURL:  "https://en.wikipedia.org/",
			title:    "Rust",
			expected: "https://en.wikipedia.org/wiki/Rust",
		},
		{
			name:     "reserved characters escaped",
			wikiURL:  "https://en.wikipedia.org",
			title:    "What?",
			expected: "https://en.wikipedia.org/wiki/What%3F",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ArticleURL(tc.wikiURL, tc.title))
		})
	}
}

func TestSearch(t *testing.T) {
	srv, _ := newWiki(t)
	s := New(testConfig(srv))

	results, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Go (programming language)", results[0].Title)
	assert.Equal(t, 25039021, results[0].PageID)
	assert.Equal(t, 7000, results[1].WordCount)
}

func TestSearch_BadJSON(t *testing.T) {
	srv, _ := newWiki(t)
	s := New(testConfig(srv))

	_, err := s.Search(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode search response")
}

func TestSearch_StatusError(t *testing.T) {
	srv, _ := newWiki(t)
	cfg := testConfig(srv)
	cfg.APIURL = srv.URL + "/missing"
	s := New(cfg)

	_, err := s.Search(context.Background(), "golang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}

func TestFetchArticle(t *testing.T) {
	srv, _ := newWiki(t)
	s := New(testConfig(srv))

	article, err := s.FetchArticle(context.Background(), "Go (programming language)")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/wiki/Go_(programming_language)", article.URL)
	assert.Equal(t, "Go (programming language) - Wikipedia", article.Metadata.Title)
	assert.Equal(t, "Programming language", article.Metadata.Description)
	require.NotNil(t, article.Content)
	assert.Equal(t, "div", article.Content.Data)

	p, err := NewParser(EngineNative, []string{"script", "style"})
	require.NoError(t, err)
	md, err := p.NodeToMarkdown(article.Content)
	require.NoError(t, err)
	assert.Equal(t, "**Go** is a language.", md)
}

func TestFetchArticle_ContentSelector(t *testing.T) {
	srv, _ := newWiki(t)
	cfg := testConfig(srv)
	cfg.ContentSelector = "#mw-navigation"
	s := New(cfg)

	article, err := s.FetchArticle(context.Background(), "Go (programming language)")
	require.NoError(t, err)
	p, err := NewParser(EngineNative, nil)
	require.NoError(t, err)
	md, err := p.NodeToMarkdown(article.Content)
	require.NoError(t, err)
	assert.Equal(t, "Navigation", md)
}

func TestFetchArticle_NotHTML(t *testing.T) {
	srv, _ := newWiki(t)
	s := New(testConfig(srv))

	_, err := s.FetchArticle(context.Background(), "Data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not HTML content")
}

func TestFetchArticle_NotFound(t *testing.T) {
	srv, _ := newWiki(t)
	s := New(testConfig(srv))

	_, err := s.FetchArticle(context.Background(), "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}

func TestFetch_CanceledContext(t *testing.T) {
	srv, hits := newWiki(t)
	s := New(testConfig(srv))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, "golang")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits.Load())
}

func TestVerboseOutput(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	srv, _ := newWiki(t)
	cfg := testConfig(srv)
	cfg.Verbose = true
	s := New(cfg)

	_, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Wiki Client Initialized")
	assert.Contains(t, out, "Go (programming language)")
	// snippets are rendered from HTML
	assert.NotContains(t, out, "searchmatch")
}
