package links

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

type memWriter struct {
	titles    []models.NoteTitle
	links     []models.NoteLink
	insertErr error
}

func (m *memWriter) DeleteOutgoingLinks(_ context.Context, noteID string) error {
	kept := m.links[:0]
	for _, l := range m.links {
		if l.SourceID != noteID {
			kept = append(kept, l)
		}
	}
	m.links = kept
	return nil
}

func (m *memWriter) NoteTitles(context.Context, string) ([]models.NoteTitle, error) {
	return m.titles, nil
}

func (m *memWriter) InsertLinks(_ context.Context, links []models.NoteLink) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.links = append(m.links, links...)
	return nil
}

func (m *memWriter) pairs() []string {
	var out []string
	for _, l := range m.links {
		out = append(out, l.SourceID+"->"+l.TargetID)
	}
	sort.Strings(out)
	return out
}

func quietSync() *Synchronizer {
	return NewSynchronizer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSync_CreatesResolvedLinks(t *testing.T) {
	now := time.Now()
	w := &memWriter{titles: []models.NoteTitle{
		{ID: "a", Title: "Alpha", UpdatedAt: now},
		{ID: "b", Title: "Beta", UpdatedAt: now},
	}}

	res, err := quietSync().Sync(context.Background(), w, "a", "u1", "see [[beta]] and [[Gamma]] and [[Alpha]]")
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	require.Equal(t, []string{"Gamma"}, res.Unresolved)
	require.Equal(t, []string{"a->b"}, w.pairs())
	require.Equal(t, 4, w.links[0].Position)
	require.Equal(t, "see [[beta]] and [[Gamma]] and [[Alpha]]", w.links[0].Context)
}

func TestSync_Idempotent(t *testing.T) {
	w := &memWriter{titles: []models.NoteTitle{
		{ID: "a", Title: "Alpha"},
		{ID: "b", Title: "Beta"},
		{ID: "c", Title: "Charlie"},
	}}
	content := "[[Beta]] [[Charlie]] [[Beta]]"
	s := quietSync()

	_, err := s.Sync(context.Background(), w, "a", "u1", content)
	require.NoError(t, err)
	first := w.pairs()

	_, err = s.Sync(context.Background(), w, "a", "u1", content)
	require.NoError(t, err)
	require.Equal(t, first, w.pairs())
	require.Equal(t, []string{"a->b", "a->b", "a->c"}, first)
}

func TestSync_ReplacesPreviousLinks(t *testing.T) {
	w := &memWriter{
		titles: []models.NoteTitle{{ID: "a", Title: "Alpha"}, {ID: "b", Title: "Beta"}},
		links:  []models.NoteLink{{ID: "old", SourceID: "a", TargetID: "b"}, {ID: "in", SourceID: "b", TargetID: "a"}},
	}
	res, err := quietSync().Sync(context.Background(), w, "a", "u1", "nothing linked now")
	require.NoError(t, err)
	require.Zero(t, res.Created)
	require.Equal(t, []string{"b->a"}, w.pairs())
}

func TestSync_InsertFailure(t *testing.T) {
	boom := errors.New("disk full")
	w := &memWriter{titles: []models.NoteTitle{{ID: "b", Title: "Beta"}}, insertErr: boom}
	_, err := quietSync().Sync(context.Background(), w, "a", "u1", "[[Beta]]")
	require.ErrorIs(t, err, boom)
}

func TestSync_SelfReferenceIsNotUnresolved(t *testing.T) {
	w := &memWriter{titles: []models.NoteTitle{{ID: "a", Title: "Alpha"}}}
	res, err := quietSync().Sync(context.Background(), w, "a", "u1", "[[Alpha]] [[alpha]] [[Missing]]")
	require.NoError(t, err)
	require.Zero(t, res.Created)
	require.Equal(t, []string{"Missing"}, res.Unresolved)
	require.Empty(t, w.pairs())
}
