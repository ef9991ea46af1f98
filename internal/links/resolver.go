// Package links resolves [[title]] references to notes and keeps a note's outgoing
// link rows in step with its content.
package links

import (
	"strings"
	"time"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

type titleEntry struct {
	id        string
	lower     string
	updatedAt time.Time
}

// TitleIndex answers title lookups over one owner's notes.
type TitleIndex struct {
	entries []titleEntry
}

// NewTitleIndex indexes the given notes. Notes with a blank title are skipped.
func NewTitleIndex(notes []models.NoteTitle) *TitleIndex {
	ix := &TitleIndex{entries: make([]titleEntry, 0, len(notes))}
	for _, n := range notes {
		lower := strings.ToLower(strings.TrimSpace(n.Title))
		if lower == "" {
			continue
		}
		ix.entries = append(ix.entries, titleEntry{id: n.ID, lower: lower, updatedAt: n.UpdatedAt})
	}
	return ix
}

// Len reports the number of indexed notes.
func (ix *TitleIndex) Len() int { return len(ix.entries) }

// Resolve finds the note whose title contains text, ignoring case. The note
// selfID is never a candidate. When several match, an exact title match wins,
// then the most recently updated note, then the smallest id.
// self is true when nothing but selfID itself matched, so callers can tell a
// self-reference from a broken link.
func (ix *TitleIndex) Resolve(text, selfID string) (id string, ok, self bool) {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return "", false, false
	}

	var (
		best  *titleEntry
		exact bool
	)
	for i := range ix.entries {
		e := &ix.entries[i]
		if !strings.Contains(e.lower, q) {
			continue
		}
		if e.id == selfID {
			self = true
			continue
		}
		eExact := e.lower == q
		if best == nil || ranksBefore(e, eExact, best, exact) {
			best, exact = e, eExact
		}
	}

	if best == nil {
		return "", false, self
	}
	return best.id, true, false
}

func ranksBefore(a *titleEntry, aExact bool, b *titleEntry, bExact bool) bool {
	if aExact != bExact {
		return aExact
	}
	if !a.updatedAt.Equal(b.updatedAt) {
		return a.updatedAt.After(b.updatedAt)
	}
	return a.id < b.id
}
