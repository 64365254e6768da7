// Package core exposes wikimd as an MCP server over stdio or streamable HTTP.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tesh254/wikimd/internal/api"
	"github.com/tesh254/wikimd/internal/logger"
	"github.com/tesh254/wikimd/internal/scraper"
	"github.com/tesh254/wikimd/internal/storage"
)

const defaultListLimit = 20

type Core struct {
	api *api.API
}

// New returns a Core serving internalAPI.
func New(internalAPI *api.API) *Core {
	return &Core{api: internalAPI}
}

type ConvertHTMLArgs struct {
	HTML     string   `json:"html" jsonschema:"the HTML document to convert"`
	SkipTags []string `json:"skip_tags,omitempty" jsonschema:"tag names whose subtrees are dropped, replacing the configured set"`
}

type WikiLookupArgs struct {
	Query   string `json:"query" jsonschema:"article title or search terms"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"refetch even when the article is cached"`
}

type ListDocumentsArgs struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type GetDocumentArgs struct {
	URL string `json:"url" jsonschema:"the article URL"`
}

type DeleteDocumentArgs struct {
	URLPrefix string `json:"url_prefix" jsonschema:"delete every cached article whose URL starts with this"`
}

type DocumentOutput struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Checksum    string `json:"checksum"`
	Engine      string `json:"engine"`
}

func newDocumentOutput(doc *storage.Document) DocumentOutput {
	return DocumentOutput{
		URL:         doc.URL,
		Title:       doc.Title,
		Description: doc.Description,
		Content:     doc.Content,
		Checksum:    doc.Checksum,
		Engine:      doc.Engine,
	}
}

// NewServer builds the MCP server with every wikimd tool registered.
func (c *Core) NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "wikimd MCP Server", Version: version}, nil)
	c.registerTools(server)
	return server
}

// StartServer serves over HTTP when httpAddress is set, stdio otherwise.
func (c *Core) StartServer(ctx context.Context, version, httpAddress string) error {
	server := c.NewServer(version)
	if httpAddress != "" {
		return c.ListenHTTP(server, httpAddress)
	}
	return c.ServeStdio(ctx, server)
}

// Handler returns the HTTP handler: the MCP endpoint behind request logging,
// plus Prometheus metrics at /metrics.
func (c *Core) Handler(server *mcp.Server) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", loggingHandler(handler, logger.Output()))
	return mux
}

func (c *Core) ListenHTTP(server *mcp.Server, httpAddress string) error {
	fmt.Fprintf(logger.Output(), "wikimd MCP handler listening at %s\n", httpAddress)
	return http.ListenAndServe(httpAddress, c.Handler(server))
}

func (c *Core) ServeStdio(ctx context.Context, server *mcp.Server) error {
	transport := &mcp.StdioTransport{}
	var t mcp.Transport = transport
	if logger.IsVerbose() {
		t = &mcp.LoggingTransport{Transport: transport, Writer: logger.Output()}
	}
	logger.Info("starting wikimd MCP server with stdio transport")
	return server.Run(ctx, t)
}

func (c *Core) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_html",
		Description: "Convert an HTML document to Markdown.",
	}, instrument("convert_html", c.convertHTML))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wiki_lookup",
		Description: "Look up a Wikipedia article by title or search terms and return it as Markdown.",
	}, instrument("wiki_lookup", c.wikiLookup))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List cached articles with pagination.",
	}, instrument("list_documents", c.listDocuments))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get a cached article by URL.",
	}, instrument("get_document", c.getDocument))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete cached articles by URL prefix.",
	}, instrument("delete_document", c.deleteDocument))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return textResult(string(result)), nil
}

func (c *Core) convertHTML(ctx context.Context, req *mcp.CallToolRequest, args ConvertHTMLArgs) (*mcp.CallToolResult, any, error) {
	parser := c.api.Parser()
	if args.SkipTags != nil {
		var err error
		parser, err = scraper.NewParser(parser.Engine(), args.SkipTags)
		if err != nil {
			return nil, nil, err
		}
	}
	md, err := parser.ToMarkdown(args.HTML)
	if err != nil {
		return nil, nil, err
	}
	return textResult(md), nil, nil
}

func (c *Core) wikiLookup(ctx context.Context, req *mcp.CallToolRequest, args WikiLookupArgs) (*mcp.CallToolResult, any, error) {
	doc, err := c.api.Lookup(ctx, args.Query, api.LookupOptions{Refresh: args.Refresh})
	if err != nil {
		return nil, nil, err
	}
	res, err := jsonResult(map[string]any{"document": newDocumentOutput(doc)})
	return res, nil, err
}

func (c *Core) listDocuments(ctx context.Context, req *mcp.CallToolRequest, args ListDocumentsArgs) (*mcp.CallToolResult, any, error) {
	if args.Offset < 0 || args.Limit < 0 {
		return nil, nil, fmt.Errorf("limit and offset must not be negative")
	}
	docs, err := c.api.ListDocuments()
	if err != nil {
		return nil, nil, err
	}
	limit := args.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	limit = min(limit, len(docs))
	start := min(args.Offset, len(docs))
	end := min(start+limit, len(docs))

	paginated := make([]DocumentOutput, 0, end-start)
	for _, doc := range docs[start:end] {
		paginated = append(paginated, newDocumentOutput(doc))
	}
	res, err := jsonResult(map[string]any{"documents": paginated, "total": len(docs)})
	return res, nil, err
}

func (c *Core) getDocument(ctx context.Context, req *mcp.CallToolRequest, args GetDocumentArgs) (*mcp.CallToolResult, any, error) {
	doc, err := c.api.GetDocument(args.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("get %s: %w", args.URL, err)
	}
	res, err := jsonResult(newDocumentOutput(doc))
	return res, nil, err
}

func (c *Core) deleteDocument(ctx context.Context, req *mcp.CallToolRequest, args DeleteDocumentArgs) (*mcp.CallToolResult, any, error) {
	if args.URLPrefix == "" {
		return nil, nil, fmt.Errorf("url_prefix is required")
	}
	n, err := c.api.DeleteDocuments(args.URLPrefix)
	if err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Deleted %d documents", n)), nil, nil
}
