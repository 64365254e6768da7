package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// inlineWriter accumulates inline Markdown. Whitespace is collapsed across
// node boundaries: a run of spaces becomes one pending space that is only
// written once more content follows, and never at the start of a line.
type inlineWriter struct {
	buf strings.Builder
	// literal disables escaping, as inside code spans.
	literal bool
	// lead records whitespace seen before any content.
	lead bool
	// pending records whitespace seen after the last content.
	pending bool
}

func (w *inlineWriter) text(s string) {
	for _, c := range s {
		if isSpace(c) {
			w.space()
			continue
		}
		w.flushSpace()
		if !w.literal && needsEscape(c) {
			w.buf.WriteByte('\\')
		}
		w.buf.WriteRune(c)
	}
}

// markup writes s as already formatted Markdown.
func (w *inlineWriter) markup(s string) {
	if s == "" {
		return
	}
	w.flushSpace()
	w.buf.WriteString(s)
}

// raw writes s untouched, bypassing whitespace handling.
func (w *inlineWriter) raw(s string) {
	w.buf.WriteString(s)
}

func (w *inlineWriter) space() {
	if w.buf.Len() == 0 {
		w.lead = true
		return
	}
	if strings.HasSuffix(w.buf.String(), "\n") {
		return
	}
	w.pending = true
}

func (w *inlineWriter) newline() {
	w.pending = false
	w.buf.WriteByte('\n')
}

func (w *inlineWriter) flushSpace() {
	if w.pending {
		w.buf.WriteByte(' ')
		w.pending = false
	}
}

func (w *inlineWriter) String() string {
	return w.buf.String()
}

func (w *inlineWriter) reset() {
	w.buf.Reset()
	w.lead = false
	w.pending = false
}

// content returns what was written, with line breaks at either end folded
// into the lead and pending flags so the caller can wrap it in markers.
func (w *inlineWriter) content() string {
	s := w.buf.String()
	t := strings.TrimLeft(s, "\n")
	if len(t) < len(s) {
		w.lead = true
	}
	u := strings.TrimRight(t, "\n")
	if len(u) < len(t) {
		w.pending = true
	}
	return u
}

// embed writes the formatted form of inner into w, keeping the whitespace
// that surrounded inner's content outside of it.
func (w *inlineWriter) embed(inner *inlineWriter, formatted string) {
	if inner.lead {
		w.space()
	}
	w.markup(formatted)
	if inner.pending {
		w.space()
	}
}

func (r *renderer) emphasis(w *inlineWriter, n *html.Node, marker string) {
	inner := &inlineWriter{}
	r.inlineChildren(inner, n)
	content := inner.content()
	if content != "" {
		content = marker + content + marker
	}
	w.embed(inner, content)
}

func (r *renderer) code(w *inlineWriter, n *html.Node) {
	inner := &inlineWriter{literal: true}
	r.inlineChildren(inner, n)
	content := inner.content()
	if content == "" {
		w.embed(inner, "")
		return
	}
	ticks := strings.Repeat("`", longestRun(content, '`')+1)
	if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") {
		content = " " + content + " "
	}
	w.embed(inner, ticks+content+ticks)
}

// preSpan renders a pre reached in inline flow, where no fence can open, as
// a code span. Its text is neither escaped nor collapsed.
func (r *renderer) preSpan(w *inlineWriter, n *html.Node) {
	sub := r.child()
	sub.pre = true
	var inner inlineWriter
	sub.inlineChildren(&inner, n)

	code := strings.Trim(inner.String(), "\n")
	if strings.TrimSpace(code) == "" {
		return
	}
	ticks := strings.Repeat("`", longestRun(code, '`')+1)
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		code = " " + code + " "
	}
	w.markup(ticks + code + ticks)
}

func (r *renderer) link(w *inlineWriter, n *html.Node) {
	inner := &inlineWriter{}
	r.inlineChildren(inner, n)
	content := inner.content()

	href, _ := attr(n, "href")
	href = strings.TrimSpace(href)
	if href == "" {
		w.embed(inner, content)
		return
	}
	w.embed(inner, "["+content+"]("+destination(href)+title(n)+")")
}

func (r *renderer) image(w *inlineWriter, n *html.Node) {
	alt, _ := attr(n, "alt")
	src, _ := attr(n, "src")
	src = strings.TrimSpace(src)
	if src == "" {
		// Nothing to point at; keep the description as text.
		w.text(alt)
		return
	}
	w.markup("![" + escapeText(alt) + "](" + destination(src) + title(n) + ")")
}

// title returns the link title suffix, including its leading space.
func title(n *html.Node) string {
	t, _ := attr(n, "title")
	t = collapseSpace(t)
	if t == "" {
		return ""
	}
	return ` "` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(t) + `"`
}
