package noteservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/parser"
	"github.com/jly61/knowledge-and-blog/internal/store"
)

// Publish creates the blog post for a note, or refreshes it from the note's
// current title and content when it already exists.
func (s *Service) Publish(ctx context.Context, ownerID, noteID string) (*models.Post, error) {
	var post *models.Post
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.GetNote(ctx, ownerID, noteID)
		if err != nil {
			return err
		}
		now := s.now()

		existing, err := tx.PostByNote(ctx, ownerID, noteID)
		switch {
		case err == nil:
			post = existing
		case errors.Is(err, apperr.ErrNotFound):
			post = &models.Post{ID: s.newID(), OwnerID: ownerID, NoteID: &n.ID, CreatedAt: now}
		default:
			return err
		}

		post.Title = n.Title
		post.Content = n.Content
		post.Excerpt = preview(n)
		post.CategoryID = n.CategoryID
		post.Published = true
		post.UpdatedAt = now
		if post.PublishedAt == nil {
			post.PublishedAt = &now
		}
		if post.Slug, err = uniqueSlug(ctx, tx, n, post.ID); err != nil {
			return err
		}

		if existing != nil {
			return tx.UpdatePost(ctx, post)
		}
		return tx.InsertPost(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("note published", "note_id", noteID, "post_id", post.ID, "slug", post.Slug)
	return post, nil
}

// ListPosts returns published posts of every owner, newest first.
func (s *Service) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.store.ListPosts(ctx, store.PostFilter{
		PublishedOnly: true,
		Limit:         clampLimit(limit),
		Offset:        max(offset, 0),
	})
}

// GetPost returns a published post by slug.
func (s *Service) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.store.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, fmt.Errorf("post %s: %w", slug, apperr.ErrNotFound)
	}
	return p, nil
}

// DeletePost removes one of the owner's posts. The source note is untouched.
func (s *Service) DeletePost(ctx context.Context, ownerID, id string) error {
	return s.store.DeletePost(ctx, ownerID, id)
}

// uniqueSlug derives a slug from the note title, falling back to the note id,
// and suffixes it until no other post uses it.
func uniqueSlug(ctx context.Context, tx *store.Tx, n *models.Note, postID string) (string, error) {
	base := parser.Slugify(n.Title)
	if base == "" {
		base = "note-" + shortID(n.ID)
	}
	candidates := []string{base, base + "-" + shortID(n.ID)}
	for _, slug := range candidates {
		taken, err := tx.SlugTaken(ctx, slug, postID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	for i := 2; ; i++ {
		slug := fmt.Sprintf("%s-%d", candidates[1], i)
		taken, err := tx.SlugTaken(ctx, slug, postID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
