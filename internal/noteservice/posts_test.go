package noteservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
)

func TestPublish(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)
	n := mustCreate(t, svc, "u1", "Hello World", "first draft")

	p, err := svc.Publish(ctx, "u1", n.ID)
	require.NoError(t, err)
	require.Equal(t, "hello-world", p.Slug)
	require.True(t, p.Published)
	require.NotNil(t, p.PublishedAt)

	_, err = svc.UpdateNote(ctx, "u1", n.ID, NoteInput{Title: "Hello World", Content: "second draft"}, "")
	require.NoError(t, err)
	again, err := svc.Publish(ctx, "u1", n.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, again.ID)
	require.Equal(t, "hello-world", again.Slug)
	require.Equal(t, "second draft", again.Content)
	require.True(t, p.PublishedAt.Equal(*again.PublishedAt))

	twin := mustCreate(t, svc, "u1", "Hello World", "another")
	other, err := svc.Publish(ctx, "u1", twin.ID)
	require.NoError(t, err)
	require.Equal(t, "hello-world-"+twin.ID[:8], other.Slug)

	got, err := svc.GetPost(ctx, "hello-world")
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	posts, err := svc.ListPosts(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	require.NoError(t, svc.DeleteNote(ctx, "u1", n.ID))
	got, err = svc.GetPost(ctx, "hello-world")
	require.NoError(t, err)
	require.Nil(t, got.NoteID)

	require.ErrorIs(t, svc.DeletePost(ctx, "u2", got.ID), apperr.ErrNotFound)
	require.NoError(t, svc.DeletePost(ctx, "u1", got.ID))
	_, err = svc.GetPost(ctx, "hello-world")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
