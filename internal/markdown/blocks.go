package markdown

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

func (r *renderer) heading(n *html.Node) {
	var w inlineWriter
	r.inlineChildren(&w, n)
	text := strings.TrimSpace(strings.ReplaceAll(w.String(), "\n", " "))
	if text == "" {
		return
	}
	r.emit(strings.Repeat("#", headingLevel(n)) + " " + text)
}

// list renders ul and ol. Items are numbered by their position among the
// li siblings; anything else inside the list is attached to the item
// before it.
func (r *renderer) list(n *html.Node) {
	ordered := isElement(n, "ol")
	var items []string
	index := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r.conv.skipped(c) {
			continue
		}
		if isElement(c, "li") {
			index++
			marker := "- "
			if ordered {
				marker = strconv.Itoa(index) + ". "
			}
			items = append(items, r.item(c, marker))
			continue
		}

		sub := r.child()
		sub.depth++
		sub.block(c)
		sub.flush()
		if len(sub.blocks) == 0 {
			continue
		}
		text := r.layoutItem("", sub.blocks)
		if len(items) == 0 {
			items = append(items, text)
		} else {
			items[len(items)-1] += "\n" + text
		}
	}
	r.emitList(strings.Join(items, "\n"))
}

// item renders one li. Its content is rendered one nesting level deeper.
func (r *renderer) item(li *html.Node, marker string) string {
	sub := r.child()
	sub.depth++
	sub.blockChildren(li)
	sub.flush()
	return r.layoutItem(strings.Repeat(indentUnit, r.depth)+marker, sub.blocks)
}

// layoutItem lays out the blocks of a list item. The first line follows
// prefix; later lines are indented to the item's content. An empty prefix
// lays the blocks out as a continuation of the previous item.
func (r *renderer) layoutItem(prefix string, blocks []block) string {
	pad := strings.Repeat(indentUnit, r.depth+1)
	var b strings.Builder
	started := false
	if prefix != "" {
		b.WriteString(prefix)
		if len(blocks) > 0 && blocks[0].list {
			b.Reset()
			b.WriteString(strings.TrimRight(prefix, " "))
			b.WriteString("\n")
		} else {
			started = true
		}
	}

	for i, blk := range blocks {
		if i > 0 {
			if blk.list {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		for j, line := range strings.Split(blk.text, "\n") {
			if j > 0 {
				b.WriteString("\n")
			}
			first := started && i == 0 && j == 0
			if !first && !blk.list && line != "" {
				b.WriteString(pad)
			}
			b.WriteString(line)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// fence renders a preformatted region as a fenced code block.
func (r *renderer) fence(n *html.Node) {
	sub := r.child()
	sub.pre = true
	var w inlineWriter
	sub.inlineChildren(&w, n)

	code := strings.TrimPrefix(w.String(), "\n")
	code = strings.TrimRight(code, "\n")
	if strings.TrimSpace(code) == "" {
		return
	}
	marker := strings.Repeat("`", max(3, longestRun(code, '`')+1))
	r.emit(marker + codeLanguage(n) + "\n" + code + "\n" + marker)
}

// codeLanguage looks for a language-* or lang-* class on pre or on its
// first code child.
func codeLanguage(pre *html.Node) string {
	if lang := classLanguage(pre); lang != "" {
		return lang
	}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, "code") {
			return classLanguage(c)
		}
	}
	return ""
}

func classLanguage(n *html.Node) string {
	class, _ := attr(n, "class")
	for _, name := range strings.Fields(class) {
		for _, prefix := range []string{"language-", "lang-"} {
			if lang, ok := strings.CutPrefix(name, prefix); ok && lang != "" {
				return lang
			}
		}
	}
	return ""
}

func (r *renderer) blockquote(n *html.Node) {
	sub := r.child()
	sub.depth = 0
	sub.blockChildren(n)
	text := sub.finish()
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	r.emit(strings.Join(lines, "\n"))
}

// table renders a pipe table whose first row is the header.
func (r *renderer) table(n *html.Node) {
	var caption string
	var rows [][]string
	var collect func(*html.Node)
	collect = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || r.conv.skipped(c) {
				continue
			}
			switch strings.ToLower(c.Data) {
			case "caption":
				caption = r.cell(c)
			case "thead", "tbody", "tfoot":
				collect(c)
			case "tr":
				rows = append(rows, r.row(c))
			}
		}
	}
	collect(n)

	r.emit(caption)
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return
	}

	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		if i == 0 {
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	r.emit(strings.Join(lines, "\n"))
}

func (r *renderer) row(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if r.conv.skipped(c) {
			continue
		}
		if isElement(c, "td") || isElement(c, "th") {
			cells = append(cells, r.cell(c))
		}
	}
	return cells
}

func (r *renderer) cell(n *html.Node) string {
	var w inlineWriter
	r.inlineChildren(&w, n)
	text := strings.TrimSpace(strings.ReplaceAll(w.String(), "\n", " "))
	return strings.ReplaceAll(text, "|", `\|`)
}
