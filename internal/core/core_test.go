package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/tesh254/wikimd/internal/api"
	"github.com/tesh254/wikimd/internal/scraper"
	"github.com/tesh254/wikimd/internal/storage"
)

type stubWiki struct{}

func (stubWiki) Search(_ context.Context, query string) ([]scraper.SearchResult, error) {
	if query == "nothing" {
		return nil, nil
	}
	return []scraper.SearchResult{{Title: "Rust (programming language)"}}, nil
}

func (stubWiki) FetchArticle(_ context.Context, title string) (*scraper.Article, error) {
	doc, err := html.Parse(strings.NewReader("<p>A <em>systems</em> language.</p>"))
	if err != nil {
		return nil, err
	}
	return &scraper.Article{
		Title:   title,
		URL:     scraper.ArticleURL("https://wiki.test", title),
		Content: doc,
	}, nil
}

func newCore(t *testing.T) *Core {
	t.Helper()
	parser, err := scraper.NewParser(scraper.EngineNative, []string{"script", "style"})
	require.NoError(t, err)
	st, err := storage.NewStorage(filepath.Join(t.TempDir(), "wikimd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(api.NewAPI(stubWiki{}, parser, st))
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestConvertHTML(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()

	res, _, err := c.convertHTML(ctx, nil, ConvertHTMLArgs{HTML: "<h1>T</h1><style>p{}</style><p>body</p>"})
	require.NoError(t, err)
	assert.Equal(t, "# T\n\nbody", text(t, res))

	res, _, err = c.convertHTML(ctx, nil, ConvertHTMLArgs{
		HTML:     "<p>a</p><aside>b</aside><script>c</script>",
		SkipTags: []string{"ASIDE"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a\n\nc", text(t, res))
}

func TestWikiLookup(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()

	res, _, err := c.wikiLookup(ctx, nil, WikiLookupArgs{Query: "rust"})
	require.NoError(t, err)

	var out struct {
		Document DocumentOutput `json:"document"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "Rust (programming language)", out.Document.Title)
	assert.Equal(t, "A *systems* language.", out.Document.Content)
	assert.Equal(t, "native", out.Document.Engine)

	_, _, err = c.wikiLookup(ctx, nil, WikiLookupArgs{Query: "nothing"})
	assert.ErrorIs(t, err, api.ErrNoResults)
}

func TestDocumentTools(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()

	_, _, err := c.wikiLookup(ctx, nil, WikiLookupArgs{Query: "rust"})
	require.NoError(t, err)
	url := "https://wiki.test/wiki/Rust_(programming_language)"

	res, _, err := c.listDocuments(ctx, nil, ListDocumentsArgs{})
	require.NoError(t, err)
	var list struct {
		Documents []DocumentOutput `json:"documents"`
		Total     int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Documents, 1)
	assert.Equal(t, url, list.Documents[0].URL)

	res, _, err = c.listDocuments(ctx, nil, ListDocumentsArgs{Offset: 5, Limit: 2})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	assert.Empty(t, list.Documents)
	assert.Equal(t, 1, list.Total)

	res, _, err = c.listDocuments(ctx, nil, ListDocumentsArgs{Offset: 1, Limit: math.MaxInt})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	assert.Empty(t, list.Documents)

	res, _, err = c.listDocuments(ctx, nil, ListDocumentsArgs{Limit: math.MaxInt})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	assert.Len(t, list.Documents, 1)

	_, _, err = c.listDocuments(ctx, nil, ListDocumentsArgs{Offset: -1})
	assert.Error(t, err)

	res, _, err = c.getDocument(ctx, nil, GetDocumentArgs{URL: url})
	require.NoError(t, err)
	var doc DocumentOutput
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &doc))
	assert.Equal(t, "A *systems* language.", doc.Content)

	_, _, err = c.deleteDocument(ctx, nil, DeleteDocumentArgs{})
	assert.Error(t, err)

	res, _, err = c.deleteDocument(ctx, nil, DeleteDocumentArgs{URLPrefix: "https://wiki.test/"})
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 documents", text(t, res))

	_, _, err = c.getDocument(ctx, nil, GetDocumentArgs{URL: url})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInstrument(t *testing.T) {
	calls := testutil.ToFloat64(metricToolCalls.WithLabelValues("test_tool"))
	errs := testutil.ToFloat64(metricToolErrors.WithLabelValues("test_tool"))

	h := instrument("test_tool", func(_ context.Context, _ *mcp.CallToolRequest, fail bool) (*mcp.CallToolResult, any, error) {
		if fail {
			return nil, nil, errors.New("boom")
		}
		return textResult("ok"), nil, nil
	})

	_, _, err := h(context.Background(), nil, false)
	require.NoError(t, err)
	_, _, err = h(context.Background(), nil, true)
	require.Error(t, err)

	assert.Equal(t, calls+2, testutil.ToFloat64(metricToolCalls.WithLabelValues("test_tool")))
	assert.Equal(t, errs+1, testutil.ToFloat64(metricToolErrors.WithLabelValues("test_tool")))
}

func TestLoggingHandler(t *testing.T) {
	var buf bytes.Buffer
	h := loggingHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "short and stout")
	}), &buf)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	id := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "RequestID: "+id)
	assert.Contains(t, lines[0], "Incoming Request: POST /mcp")
	assert.Contains(t, lines[1], "Status: 418")
	assert.Contains(t, lines[1], "Response Size: 15 bytes")
}

func TestHandlerMetrics(t *testing.T) {
	c := newCore(t)
	srv := httptest.NewServer(c.Handler(c.NewServer("test")))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}
