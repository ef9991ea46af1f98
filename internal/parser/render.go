package parser

import (
	"net/url"
	"strings"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

const (
	// NotePathPrefix prefixes the link target of a resolved reference.
	NotePathPrefix = "/notes/"
	// BrokenScheme marks a reference that matched no note.
	BrokenScheme = "broken:"
)

// TitleMap maps note titles to note ids for display-time link resolution.
// Both the exact and the lowercased title are keys. On collisions the first note
// keeps the key; owner titles are loaded oldest first.
type TitleMap map[string]string

// NewTitleMap builds a TitleMap from an owner's notes.
func NewTitleMap(notes []models.NoteTitle) TitleMap {
	m := make(TitleMap, len(notes)*2)
	for _, n := range notes {
		if _, ok := m[n.Title]; !ok {
			m[n.Title] = n.ID
		}
		lower := strings.ToLower(n.Title)
		if _, ok := m[lower]; !ok {
			m[lower] = n.ID
		}
	}
	return m
}

// Lookup resolves a link text, lowercased key first.
func (m TitleMap) Lookup(title string) (string, bool) {
	title = strings.TrimSpace(title)
	if id, ok := m[strings.ToLower(title)]; ok {
		return id, true
	}
	id, ok := m[title]
	return id, ok
}

// RenderLinks rewrites every [[title]] into a Markdown link: resolved titles point at
// /notes/<id>, unknown ones at broken:<title>. It also returns the broken titles in order.
func RenderLinks(content string, titles TitleMap) (string, []string) {
	locs := linkRe.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return content, nil
	}

	var (
		b      strings.Builder
		broken []string
		last   int
	)
	b.Grow(len(content))
	for _, loc := range locs {
		b.WriteString(content[last:loc[0]])
		title := strings.TrimSpace(content[loc[2]:loc[3]])
		b.WriteString("[")
		b.WriteString(title)
		b.WriteString("](")
		if id, ok := titles.Lookup(title); ok {
			b.WriteString(NotePathPrefix)
			b.WriteString(id)
		} else {
			b.WriteString(BrokenScheme)
			b.WriteString(url.PathEscape(title))
			broken = append(broken, title)
		}
		b.WriteString(")")
		last = loc[1]
	}
	b.WriteString(content[last:])
	return b.String(), broken
}
