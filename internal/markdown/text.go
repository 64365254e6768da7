package markdown

import "strings"

// isSpace reports whether c is HTML inter-element whitespace. Non-breaking
// spaces are content and are kept.
func isSpace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func needsEscape(c rune) bool {
	switch c {
	case '\\', '*', '_', '`', '[', ']':
		return true
	}
	return false
}

// escapeLineStart escapes a marker at the start of a paragraph that would
// otherwise read as a heading, list item or quote.
func escapeLineStart(s string) string {
	digits := len(s) - len(strings.TrimLeft(s, "0123456789"))
	if digits > 0 {
		if digits <= 9 && markerEnd(s, digits) && (s[digits] == '.' || s[digits] == ')') {
			return s[:digits] + `\` + s[digits:]
		}
		return s
	}
	if s == "" {
		return s
	}
	switch s[0] {
	case '#':
		hashes := len(s) - len(strings.TrimLeft(s, "#"))
		if hashes <= 6 && (hashes == len(s) || s[hashes] == ' ' || s[hashes] == '\n') {
			return `\` + s
		}
	case '-', '+':
		if markerEnd(s, 0) {
			return `\` + s
		}
	case '>':
		return `\` + s
	}
	return s
}

// markerEnd reports whether the byte at i is followed by a space, a line
// break or the end of s.
func markerEnd(s string, i int) bool {
	return i < len(s) && (i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\n')
}

// escapeText collapses whitespace in s and escapes Markdown punctuation.
func escapeText(s string) string {
	var w inlineWriter
	w.text(s)
	return w.String()
}

func collapseSpace(s string) string {
	var w inlineWriter
	w.literal = true
	w.text(s)
	return w.String()
}

// longestRun returns the length of the longest run of c in s.
func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

// destination formats a link or image target. Targets that would end the
// link early are wrapped in angle brackets.
func destination(href string) string {
	href = strings.NewReplacer("\n", "", "\r", "").Replace(href)
	if strings.ContainsAny(href, " \t<>") || !balancedParens(href) {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(href) + ">"
	}
	return href
}

func balancedParens(s string) bool {
	depth := 0
	for _, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// tidyParagraph trims line breaks around a paragraph and keeps at most one
// blank line inside it.
func tidyParagraph(s string) string {
	s = strings.Trim(s, "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
