package noteservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
)

func TestCategories(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Reading Notes"})
	require.NoError(t, err)
	require.Equal(t, "reading-notes", c.Slug)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "reading notes!"})
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "???"})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	n, err := svc.CreateNote(ctx, "u1", NoteInput{Title: "Book", CategoryID: &c.ID})
	require.NoError(t, err)
	require.Equal(t, "Reading Notes", n.Category.Name)

	require.ErrorIs(t, svc.DeleteCategory(ctx, c.ID), apperr.ErrInUse)

	renamed, err := svc.UpdateCategory(ctx, c.ID, CategoryInput{Name: "Books", Color: "#00ff00"})
	require.NoError(t, err)
	require.Equal(t, "books", renamed.Slug)

	counts, err := svc.ListCategories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, counts, 1)
	require.Equal(t, 1, counts[0].NoteCount)

	require.NoError(t, svc.DeleteNote(ctx, "u1", n.ID))
	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	goTag, err := svc.CreateTag(ctx, TagInput{Name: "Go", Color: "#00add8"})
	require.NoError(t, err)
	dbTag, err := svc.CreateTag(ctx, TagInput{Name: "Databases"})
	require.NoError(t, err)

	n, err := svc.CreateNote(ctx, "u1", NoteInput{Title: "sqlx", TagIDs: []string{goTag.ID, dbTag.ID}})
	require.NoError(t, err)
	require.Len(t, n.Tags, 2)
	require.Equal(t, "Databases", n.Tags[0].Name)

	require.ErrorIs(t, svc.DeleteTag(ctx, goTag.ID), apperr.ErrInUse)

	g, err := svc.Graph(ctx, "u1", GraphOptions{TagIDs: []string{goTag.ID}})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)

	_, err = svc.UpdateNote(ctx, "u1", n.ID, NoteInput{Title: "sqlx"}, "")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTag(ctx, goTag.ID))

	_, err = svc.UpdateTag(ctx, goTag.ID, TagInput{Name: "Golang"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
