// Package markdown converts HTML documents to Markdown.
//
// The conversion is a single recursive walk over a golang.org/x/net/html
// document tree. Elements are grouped into a closed set of categories
// (heading, list, emphasis, link, preformatted and so on) and each category
// has one rendering rule. Block level output is collected as a sequence of
// blocks that are joined with exactly one blank line; inline output is
// accumulated with whitespace collapsed and Markdown punctuation escaped.
//
// A Converter carries only its immutable configuration, so a single instance
// can be shared by any number of goroutines.
package markdown
