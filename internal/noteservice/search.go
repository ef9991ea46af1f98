package noteservice

import (
	"context"
	"strings"
	"time"

	"github.com/jly61/knowledge-and-blog/internal/store"
)

// SearchQuery filters a search over one owner's notes.
type SearchQuery struct {
	Query      string
	CategoryID string
	TagIDs     []string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// SearchResult is a matching note with a snippet around the first content hit.
type SearchResult struct {
	NoteListItem
	Snippet string `json:"snippet"`
}

// Search matches the query against titles and contents, ignoring case.
// Pinned notes come first, then the most recently updated.
func (s *Service) Search(ctx context.Context, ownerID string, q SearchQuery) ([]SearchResult, error) {
	query := strings.TrimSpace(q.Query)
	notes, err := s.store.ListNotes(ctx, store.NoteFilter{
		OwnerID:    ownerID,
		Query:      query,
		CategoryID: q.CategoryID,
		TagIDs:     q.TagIDs,
		From:       q.From,
		To:         q.To,
		Limit:      clampLimit(q.Limit),
	})
	if err != nil {
		return nil, err
	}
	items, err := s.listItems(ctx, notes)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, len(items))
	for i, item := range items {
		out[i] = SearchResult{NoteListItem: item, Snippet: item.Preview}
		if sn, ok := snippet(notes[i].Content, query); ok {
			out[i].Snippet = sn
		}
	}
	return out, nil
}
