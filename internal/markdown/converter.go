package markdown

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrParseFailure is returned when the HTML parser cannot produce a
// document tree at all. Malformed markup is not a parse failure: the parser
// recovers from it and the converter renders whatever tree results.
var ErrParseFailure = errors.New("markdown: parse failure")

// Converter renders HTML as Markdown. It is immutable once built and safe
// for concurrent use.
type Converter struct {
	skip skipSet
}

// New creates a Converter from config. A nil config selects DefaultConfig.
// The skip tags are copied, so later changes to config have no effect.
func New(config *Config) *Converter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Converter{
		skip: newSkipSet(config.SkipTags),
	}
}

// SkipTags returns the lower-cased skip tags in sorted order.
func (c *Converter) SkipTags() []string {
	return c.skip.sorted()
}

// Convert parses htmlText and renders it as Markdown.
func (c *Converter) Convert(htmlText string) (string, error) {
	return c.ConvertReader(strings.NewReader(htmlText))
}

// ConvertReader parses the HTML read from r and renders it as Markdown.
// Read errors are reported as parse failures.
func (c *Converter) ConvertReader(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	if doc == nil {
		return "", ErrParseFailure
	}
	return c.ConvertNode(doc), nil
}

// ConvertNode renders an already parsed tree. n may be a document node or
// any element inside one; a skipped element renders as the empty string.
func (c *Converter) ConvertNode(n *html.Node) string {
	if n == nil {
		return ""
	}
	r := newRenderer(c)
	r.block(n)
	return r.finish()
}

// skipped reports whether n is an element whose subtree must be dropped.
func (c *Converter) skipped(n *html.Node) bool {
	return n.Type == html.ElementNode && c.skip.has(n.Data)
}
