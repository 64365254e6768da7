package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// indentUnit is added in front of list lines for every level of nesting.
// Four columns clear the content offset of both "- " and "NN. " markers.
const indentUnit = "    "

// block is one finished unit of block level output.
type block struct {
	text string
	// list blocks carry their own nesting indentation already.
	list bool
}

// renderer is the render context of one conversion. It is never shared
// between calls.
type renderer struct {
	conv *Converter
	// depth is the current list nesting depth.
	depth int
	// pre is set inside preformatted regions, where text is neither
	// escaped nor collapsed.
	pre    bool
	blocks []block
	para   inlineWriter
}

func newRenderer(c *Converter) *renderer {
	return &renderer{conv: c}
}

// child returns an empty context for a nested region, inheriting the list
// depth and the preformatted flag.
func (r *renderer) child() *renderer {
	return &renderer{conv: r.conv, depth: r.depth, pre: r.pre}
}

// flush closes the paragraph being built, if any.
func (r *renderer) flush() {
	text := escapeLineStart(tidyParagraph(r.para.String()))
	r.para.reset()
	if text != "" {
		r.blocks = append(r.blocks, block{text: text})
	}
}

func (r *renderer) emit(text string) {
	if text != "" {
		r.blocks = append(r.blocks, block{text: text})
	}
}

func (r *renderer) emitList(text string) {
	if text != "" {
		r.blocks = append(r.blocks, block{text: text, list: true})
	}
}

// finish flushes pending text and joins all blocks with one blank line.
func (r *renderer) finish() string {
	r.flush()
	texts := make([]string, len(r.blocks))
	for i, b := range r.blocks {
		texts[i] = b.text
	}
	return strings.Trim(strings.Join(texts, "\n\n"), "\n")
}

func (r *renderer) blockChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.block(c)
	}
}

func (r *renderer) inlineChildren(w *inlineWriter, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.inline(w, c)
	}
}

// block renders n in block flow: block elements become blocks of their
// own, everything else is appended to the current paragraph.
func (r *renderer) block(n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		r.blockChildren(n)
		return
	case html.TextNode:
		r.text(&r.para, n.Data)
		return
	case html.ElementNode:
	default:
		return
	}
	if r.conv.skipped(n) {
		return
	}

	cat := categorize(n)
	if !cat.isBlock() {
		if r.hasStructure(n) {
			r.wrapper(n, cat)
			return
		}
		r.inline(&r.para, n)
		return
	}

	r.flush()
	switch cat {
	case catHeading:
		r.heading(n)
	case catList:
		r.list(n)
	case catListItem:
		// li outside of ul/ol
		r.emitList(r.item(n, "- "))
	case catPre:
		r.fence(n)
	case catBlockquote:
		r.blockquote(n)
	case catRule:
		r.emit("---")
	case catTable:
		r.table(n)
	default:
		r.blockChildren(n)
		r.flush()
	}
}

// inline renders n into w without introducing block breaks.
func (r *renderer) inline(w *inlineWriter, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(w, n.Data)
		return
	case html.ElementNode:
	default:
		return
	}
	if r.conv.skipped(n) {
		return
	}

	cat := categorize(n)
	if r.pre || w.literal {
		// no markup inside code
		if cat == catBreak {
			if r.pre {
				w.raw("\n")
			} else {
				w.space()
			}
			return
		}
		r.inlineChildren(w, n)
		return
	}

	switch cat {
	case catBreak:
		w.newline()
	case catStrong:
		r.emphasis(w, n, "**")
	case catEmphasis:
		r.emphasis(w, n, "*")
	case catCode:
		r.code(w, n)
	case catLink:
		r.link(w, n)
	case catImage:
		r.image(w, n)
	case catInline:
		r.inlineChildren(w, n)
	case catPre:
		w.space()
		r.preSpan(w, n)
		w.space()
	default:
		// A block element inside inline content is flattened.
		w.space()
		r.inlineChildren(w, n)
		w.space()
	}
}

// hasStructure reports whether n contains a heading, list, quote, rule,
// table or preformatted element that is not skipped.
func (r *renderer) hasStructure(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || r.conv.skipped(c) {
			continue
		}
		if cat := categorize(c); cat.isBlock() && cat != catBlock {
			return true
		}
		if r.hasStructure(c) {
			return true
		}
	}
	return false
}

// wrapper renders an inline element that wraps block structure, such as a
// link around a heading. Its children keep their block rules. A link around
// a lone heading is kept on the heading text.
func (r *renderer) wrapper(n *html.Node, cat category) {
	r.flush()
	sub := r.child()
	sub.blockChildren(n)
	sub.flush()

	if href, _ := attr(n, "href"); cat == catLink && len(sub.blocks) == 1 {
		b := sub.blocks[0]
		href = strings.TrimSpace(href)
		level := len(b.text) - len(strings.TrimLeft(b.text, "#"))
		if href != "" && !b.list && level > 0 && strings.HasPrefix(b.text[level:], " ") && !strings.Contains(b.text, "\n") {
			b.text = b.text[:level+1] + "[" + b.text[level+1:] + "](" + destination(href) + title(n) + ")"
		}
		sub.blocks[0] = b
	}
	r.blocks = append(r.blocks, sub.blocks...)
}

func (r *renderer) text(w *inlineWriter, s string) {
	if r.pre {
		w.raw(s)
		return
	}
	w.text(s)
}
