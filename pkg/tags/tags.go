// Package tags matches note text against the vocabulary of tags in use.
package tags

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/tally/pkg/core"
)

// wordClass is the set of runes that make up a word for boundary purposes.
const wordClass = `\p{L}\p{N}_`

// Synthesize returns the vocabulary entries that occur in content as a whole
// word or phrase, ignoring case. Results keep the vocabulary's casing and order.
func Synthesize(content string, vocabulary []string) []string {
	var out []string
	seen := make(map[string]bool, len(vocabulary))
	for _, tag := range vocabulary {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		if phraseRe(tag).MatchString(content) {
			out = append(out, tag)
		}
	}
	return out
}

func phraseRe(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^` + wordClass + `])` + regexp.QuoteMeta(tag) + `(?:$|[^` + wordClass + `])`)
}

var (
	hashtagRe     = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	capitalizedRe = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
)

// stopWords are capitalised words never promoted to tags.
var stopWords = map[string]bool{"The": true, "A": true, "An": true}

// Auto proposes tags from the content alone: #hashtags (without the '#')
// and capitalised words of three or more letters.
func Auto(content string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if tag != "" && !seen[tag] && !stopWords[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	for _, m := range hashtagRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	for _, w := range capitalizedRe.FindAllString(content, -1) {
		add(w)
	}
	return out
}

// Vocabulary collects the tags used by non-deleted notes, in first-seen order.
func Vocabulary(notes []core.Note) []string {
	var out []string
	seen := make(map[string]bool)
	for _, n := range notes {
		if n.Deleted {
			continue
		}
		for _, t := range n.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Merge appends the tags of extra missing from base, preserving order.
func Merge(base []string, extra ...[]string) []string {
	out := append([]string(nil), base...)
	seen := make(map[string]bool, len(out))
	for _, t := range out {
		seen[t] = true
	}
	for _, list := range extra {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Normalize trims a manually entered tag. It reports false for blank tags.
func Normalize(tag string) (string, bool) {
	tag = strings.TrimFunc(tag, unicode.IsSpace)
	return tag, tag != ""
}
