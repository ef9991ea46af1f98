package links

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"

	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/parser"
)

// Mention is another note whose title appears in plain text without a [[link]].
type Mention struct {
	NoteID string `json:"note_id"`
	Title  string `json:"title"`
	Count  int    `json:"count"`
}

// FindMentions scans content outside of [[...]] markers for whole-word, case-insensitive
// occurrences of the candidate titles. Notes in skip (self, already linked) are ignored.
// Results follow first occurrence order.
func FindMentions(content string, candidates []models.NoteTitle, skip map[string]bool) ([]Mention, error) {
	var (
		patterns []string
		owners   [][]models.NoteTitle
		index    = make(map[string]int)
	)
	for _, n := range candidates {
		if skip[n.ID] {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(n.Title))
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			owners[i] = append(owners[i], n)
			continue
		}
		index[key] = len(patterns)
		patterns = append(patterns, key)
		owners = append(owners, []models.NoteTitle{n})
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("links: build mention matcher: %w", err)
	}

	haystack := []byte(strings.ToLower(parser.StripLinks(content)))
	var (
		out  []Mention
		byID = make(map[string]int)
	)
	for _, m := range ac.FindAllOverlapping(haystack) {
		if !wordBoundary(haystack, m.Start, m.End) {
			continue
		}
		for _, n := range owners[m.PatternID] {
			if i, ok := byID[n.ID]; ok {
				out[i].Count++
				continue
			}
			byID[n.ID] = len(out)
			out = append(out, Mention{NoteID: n.ID, Title: n.Title, Count: 1})
		}
	}
	return out, nil
}

func wordBoundary(text []byte, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRune(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRune(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// isWordRune treats letters and digits as word characters, except for scripts
// written without spaces where any boundary is accepted.
func isWordRune(r rune) bool {
	if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
