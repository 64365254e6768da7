package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// category is the rendering rule an element is dispatched to.
type category int

const (
	// catBlock is the generic block: children rendered in flow, separated
	// from siblings by blank lines. Unknown elements fall back to it.
	catBlock category = iota
	catHeading
	catList
	catListItem
	catPre
	catBlockquote
	catRule
	catTable
	catBreak
	catStrong
	catEmphasis
	catCode
	catLink
	catImage
	// catInline passes children through without markup or block breaks.
	catInline
)

var categories = map[string]category{
	"h1": catHeading,
	"h2": catHeading,
	"h3": catHeading,
	"h4": catHeading,
	"h5": catHeading,
	"h6": catHeading,

	"ul": catList,
	"ol": catList,
	"li": catListItem,

	"pre":        catPre,
	"blockquote": catBlockquote,
	"hr":         catRule,
	"table":      catTable,
	"br":         catBreak,

	"strong": catStrong,
	"b":      catStrong,
	"em":     catEmphasis,
	"i":      catEmphasis,
	"code":   catCode,
	"a":      catLink,
	"img":    catImage,

	"span":  catInline,
	"small": catInline,
	"sub":   catInline,
	"sup":   catInline,
	"abbr":  catInline,
	"cite":  catInline,
	"label": catInline,
	"mark":  catInline,
	"u":     catInline,
	"s":     catInline,
	"del":   catInline,
	"ins":   catInline,
	"q":     catInline,
	"time":  catInline,
	"kbd":   catInline,
	"var":   catInline,
	"samp":  catInline,
	"font":  catInline,
}

func categorize(n *html.Node) category {
	if c, ok := categories[strings.ToLower(n.Data)]; ok {
		return c
	}
	return catBlock
}

// isBlock reports whether c starts a new block when met in block flow.
func (c category) isBlock() bool {
	return c <= catTable
}

// headingLevel returns 1-6 for h1-h6.
func headingLevel(n *html.Node) int {
	return int(n.Data[1] - '0')
}

// attr returns the value of the attribute key and whether it is present.
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}
