// Package parser extracts [[wikilinks]], frontmatter, and tags from note text and
// rewrites links for display.
package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ContextRadius is the number of characters captured on each side of a link.
const ContextRadius = 50

var linkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// Link is one [[...]] occurrence. Start and End are character (rune) offsets
// of the full marker, End exclusive.
type Link struct {
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Context string `json:"context"`
}

// ParseLinks returns every [[text]] occurrence in content in left-to-right order.
// Text is trimmed. It returns nil when content has no markers.
func ParseLinks(content string) []Link {
	locs := linkRe.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	out := make([]Link, 0, len(locs))
	runePos, bytePos := 0, 0
	for _, loc := range locs {
		runePos += utf8.RuneCountInString(content[bytePos:loc[0]])
		bytePos = loc[0]

		start := runePos
		end := start + utf8.RuneCountInString(content[loc[0]:loc[1]])
		ctxFrom := stepBack(content, loc[0], ContextRadius)
		ctxTo := stepForward(content, loc[1], ContextRadius)

		out = append(out, Link{
			Text:    strings.TrimSpace(content[loc[2]:loc[3]]),
			Start:   start,
			End:     end,
			Context: content[ctxFrom:ctxTo],
		})
	}
	return out
}

// LinkTitles returns the distinct, non-empty link texts in first-seen order.
func LinkTitles(content string) []string {
	links := ParseLinks(content)
	seen := make(map[string]struct{}, len(links))
	var out []string
	for _, l := range links {
		if l.Text == "" {
			continue
		}
		if _, ok := seen[l.Text]; ok {
			continue
		}
		seen[l.Text] = struct{}{}
		out = append(out, l.Text)
	}
	return out
}

// stepBack moves byte index i back by up to n runes.
func stepBack(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

// stepForward moves byte index i forward by up to n runes.
func stepForward(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// StripLinks blanks out every [[...]] marker, leaving the surrounding text.
func StripLinks(content string) string {
	return linkRe.ReplaceAllString(content, " ")
}
