package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
	"github.com/jly61/knowledge-and-blog/internal/models"
)

var postColumns = []string{
	"id", "owner_id", "note_id", "title", "slug", "content", "excerpt", "category_id",
	"published", "published_at", "created_at", "updated_at",
}

// PostFilter narrows ListPosts. An empty OwnerID lists every owner's posts.
type PostFilter struct {
	OwnerID       string
	PublishedOnly bool
	Limit         int
	Offset        int
}

// InsertPost stores a post; a taken slug yields ErrAlreadyExists.
func (c conn) InsertPost(ctx context.Context, p *models.Post) error {
	_, err := c.exec(ctx, c.sb.Insert("posts").Columns(postColumns...).
		Values(p.ID, p.OwnerID, p.NoteID, p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID,
			p.Published, p.PublishedAt, p.CreatedAt, p.UpdatedAt))
	return postErr(p.Slug, err)
}

// UpdatePost overwrites the mutable fields of a post.
func (c conn) UpdatePost(ctx context.Context, p *models.Post) error {
	return postErr(p.ID, c.execOne(ctx, c.sb.Update("posts").
		SetMap(map[string]any{
			"title":        p.Title,
			"slug":         p.Slug,
			"content":      p.Content,
			"excerpt":      p.Excerpt,
			"category_id":  p.CategoryID,
			"published":    p.Published,
			"published_at": p.PublishedAt,
			"updated_at":   p.UpdatedAt,
		}).
		Where(sq.Eq{"id": p.ID, "owner_id": p.OwnerID})))
}

// PostByNote returns the post published from a note.
func (c conn) PostByNote(ctx context.Context, ownerID, noteID string) (*models.Post, error) {
	var p models.Post
	err := c.get(ctx, &p, c.sb.Select(postColumns...).From("posts").
		Where(sq.Eq{"owner_id": ownerID, "note_id": noteID}).
		OrderBy("created_at", "id").Limit(1))
	if err != nil {
		return nil, postErr(noteID, err)
	}
	return &p, nil
}

// PostBySlug returns a post by slug.
func (c conn) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	if err := c.get(ctx, &p, c.sb.Select(postColumns...).From("posts").Where(sq.Eq{"slug": slug})); err != nil {
		return nil, postErr(slug, err)
	}
	return &p, nil
}

// SlugTaken reports whether another post already uses slug.
func (c conn) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	q := c.sb.Select("COUNT(*)").From("posts").Where(sq.Eq{"slug": slug})
	if exceptID != "" {
		q = q.Where(sq.NotEq{"id": exceptID})
	}
	if err := c.get(ctx, &n, q); err != nil {
		return false, fmt.Errorf("store: slug lookup: %w", err)
	}
	return n > 0, nil
}

// ListPosts returns posts, latest publication first.
func (c conn) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	q := c.sb.Select(postColumns...).From("posts").OrderBy("published_at DESC", "created_at DESC", "id")
	if f.OwnerID != "" {
		q = q.Where(sq.Eq{"owner_id": f.OwnerID})
	}
	if f.PublishedOnly {
		q = q.Where(sq.Eq{"published": true})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	out := []models.Post{}
	if err := c.selectAll(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("store: list posts: %w", err)
	}
	return out, nil
}

// DeletePost removes an owner's post.
func (c conn) DeletePost(ctx context.Context, ownerID, id string) error {
	return postErr(id, c.execOne(ctx, c.sb.Delete("posts").Where(sq.Eq{"id": id, "owner_id": ownerID})))
}

func postErr(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("store: post %s: %w", key, apperr.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("store: post %s: %w", key, apperr.ErrAlreadyExists)
	default:
		return fmt.Errorf("store: post %s: %w", key, err)
	}
}
