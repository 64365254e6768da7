package markdown

import (
	"sort"
	"strings"
)

// Config holds the options used to build a Converter.
type Config struct {
	// SkipTags lists tag names whose whole subtree is dropped from the
	// output. Matching is case-insensitive. Names that never occur in a
	// document are accepted and simply never match.
	SkipTags []string
}

// DefaultConfig returns a Config that drops script and style elements.
func DefaultConfig() *Config {
	return &Config{
		SkipTags: []string{"script", "style"},
	}
}

// skipSet is the normalized, read-only form of Config.SkipTags.
type skipSet map[string]struct{}

func newSkipSet(tags []string) skipSet {
	set := make(skipSet, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}

func (s skipSet) has(tag string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[strings.ToLower(tag)]
	return ok
}

func (s skipSet) sorted() []string {
	tags := make([]string, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
