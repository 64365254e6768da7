package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"

	"github.com/tesh254/wikimd/internal/markdown"
)

// Engine names an HTML to Markdown implementation.
type Engine string

const (
	// EngineNative is the built-in converter.
	EngineNative Engine = "native"
	// EngineLibrary is html-to-markdown, kept for comparison.
	EngineLibrary Engine = "library"
)

// ErrUnknownEngine is returned by ParseEngine for unsupported names.
var ErrUnknownEngine = errors.New("unknown conversion engine")

// ParseEngine maps a name to an Engine. The empty name selects EngineNative.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineNative:
		return EngineNative, nil
	case EngineLibrary:
		return EngineLibrary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Parser converts HTML to Markdown with the selected engine. Both engines
// drop the same skip tags.
type Parser struct {
	engine  Engine
	native  *markdown.Converter
	library *converter.Converter
}

// NewParser builds a Parser for engine that drops skipTags.
func NewParser(engine Engine, skipTags []string) (*Parser, error) {
	p := &Parser{engine: engine}
	switch engine {
	case EngineNative:
		p.native = markdown.New(&markdown.Config{SkipTags: skipTags})
	case EngineLibrary:
		p.library = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		)
		for _, tag := range skipTags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			p.library.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	return p, nil
}

// Engine returns the engine this parser uses.
func (p *Parser) Engine() Engine {
	return p.engine
}

// ToMarkdown converts HTML content to Markdown format.
func (p *Parser) ToMarkdown(htmlString string) (string, error) {
	if p.native != nil {
		return p.native.Convert(htmlString)
	}
	md, err := p.library.ConvertString(htmlString)
	if err != nil {
		return "", fmt.Errorf("html-to-markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// NodeToMarkdown converts an already parsed tree.
func (p *Parser) NodeToMarkdown(n *html.Node) (string, error) {
	if p.native != nil {
		return p.native.ConvertNode(n), nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("failed to render node: %w", err)
	}
	return p.ToMarkdown(buf.String())
}
