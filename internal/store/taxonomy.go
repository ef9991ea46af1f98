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

var (
	categoryColumns = []string{"id", "name", "slug", "description", "color", "created_at", "updated_at"}
	tagColumns      = []string{"id", "name", "slug", "color", "created_at", "updated_at"}
)

// CategoryCount is a category with the number of an owner's notes in it.
type CategoryCount struct {
	models.Category
	NoteCount int `db:"note_count" json:"note_count"`
}

// TagCount is a tag with the number of an owner's notes carrying it.
type TagCount struct {
	models.Tag
	NoteCount int `db:"note_count" json:"note_count"`
}

// ListCategories returns every category ordered by name.
func (c conn) ListCategories(ctx context.Context) ([]models.Category, error) {
	out := []models.Category{}
	if err := c.selectAll(ctx, &out, c.sb.Select(categoryColumns...).From("categories").OrderBy("name", "id")); err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	return out, nil
}

// CategoryCounts returns every category with the owner's note count.
func (c conn) CategoryCounts(ctx context.Context, ownerID string) ([]CategoryCount, error) {
	cols := prefixed("c", categoryColumns)
	out := []CategoryCount{}
	err := c.selectAll(ctx, &out, c.sb.
		Select(append(cols, "COUNT(n.id) AS note_count")...).
		From("categories c").
		LeftJoin("notes n ON n.category_id = c.id AND n.owner_id = ?", ownerID).
		GroupBy(cols...).
		OrderBy("c.name", "c.id"))
	if err != nil {
		return nil, fmt.Errorf("store: category counts: %w", err)
	}
	return out, nil
}

// GetCategory returns a category by id.
func (c conn) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	if err := c.get(ctx, &cat, c.sb.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id})); err != nil {
		return nil, taxonomyErr("category", id, err)
	}
	return &cat, nil
}

// CategoryBySlug returns a category by slug.
func (c conn) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	if err := c.get(ctx, &cat, c.sb.Select(categoryColumns...).From("categories").Where(sq.Eq{"slug": slug})); err != nil {
		return nil, taxonomyErr("category", slug, err)
	}
	return &cat, nil
}

// InsertCategory stores a category; a taken slug yields ErrAlreadyExists.
func (c conn) InsertCategory(ctx context.Context, cat *models.Category) error {
	_, err := c.exec(ctx, c.sb.Insert("categories").Columns(categoryColumns...).
		Values(cat.ID, cat.Name, cat.Slug, cat.Description, cat.Color, cat.CreatedAt, cat.UpdatedAt))
	return taxonomyErr("category", cat.Slug, err)
}

// UpdateCategory overwrites name, slug, description and color.
func (c conn) UpdateCategory(ctx context.Context, cat *models.Category) error {
	err := c.execOne(ctx, c.sb.Update("categories").
		SetMap(map[string]any{
			"name":        cat.Name,
			"slug":        cat.Slug,
			"description": cat.Description,
			"color":       cat.Color,
			"updated_at":  cat.UpdatedAt,
		}).
		Where(sq.Eq{"id": cat.ID}))
	return taxonomyErr("category", cat.ID, err)
}

// DeleteCategory removes a category no note or post refers to.
func (c conn) DeleteCategory(ctx context.Context, id string) error {
	var used int
	err := c.get(ctx, &used, c.sb.Select("COUNT(*)").From("notes").Where(sq.Eq{"category_id": id}))
	if err != nil {
		return fmt.Errorf("store: category usage: %w", err)
	}
	var posts int
	err = c.get(ctx, &posts, c.sb.Select("COUNT(*)").From("posts").Where(sq.Eq{"category_id": id}))
	if err != nil {
		return fmt.Errorf("store: category usage: %w", err)
	}
	if used+posts > 0 {
		return fmt.Errorf("store: category %s used by %d notes and %d posts: %w", id, used, posts, apperr.ErrInUse)
	}
	return taxonomyErr("category", id, c.execOne(ctx, c.sb.Delete("categories").Where(sq.Eq{"id": id})))
}

// ListTags returns every tag ordered by name.
func (c conn) ListTags(ctx context.Context) ([]models.Tag, error) {
	out := []models.Tag{}
	if err := c.selectAll(ctx, &out, c.sb.Select(tagColumns...).From("tags").OrderBy("name", "id")); err != nil {
		return nil, fmt.Errorf("store: list tags: %w", err)
	}
	return out, nil
}

// TagCounts returns every tag with the owner's note count.
func (c conn) TagCounts(ctx context.Context, ownerID string) ([]TagCount, error) {
	cols := prefixed("t", tagColumns)
	out := []TagCount{}
	err := c.selectAll(ctx, &out, c.sb.
		Select(append(cols, "COUNT(n.id) AS note_count")...).
		From("tags t").
		LeftJoin("note_tags nt ON nt.tag_id = t.id").
		LeftJoin("notes n ON n.id = nt.note_id AND n.owner_id = ?", ownerID).
		GroupBy(cols...).
		OrderBy("t.name", "t.id"))
	if err != nil {
		return nil, fmt.Errorf("store: tag counts: %w", err)
	}
	return out, nil
}

// GetTag returns a tag by id.
func (c conn) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	var t models.Tag
	if err := c.get(ctx, &t, c.sb.Select(tagColumns...).From("tags").Where(sq.Eq{"id": id})); err != nil {
		return nil, taxonomyErr("tag", id, err)
	}
	return &t, nil
}

// TagBySlug returns a tag by slug.
func (c conn) TagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var t models.Tag
	if err := c.get(ctx, &t, c.sb.Select(tagColumns...).From("tags").Where(sq.Eq{"slug": slug})); err != nil {
		return nil, taxonomyErr("tag", slug, err)
	}
	return &t, nil
}

// TagsByIDs returns the tags with the given ids that exist, ordered by name.
func (c conn) TagsByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	out := []models.Tag{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := c.selectAll(ctx, &out, c.sb.Select(tagColumns...).From("tags").
		Where(sq.Eq{"id": ids}).OrderBy("name", "id")); err != nil {
		return nil, fmt.Errorf("store: tags by id: %w", err)
	}
	return out, nil
}

// InsertTag stores a tag; a taken slug yields ErrAlreadyExists.
func (c conn) InsertTag(ctx context.Context, t *models.Tag) error {
	_, err := c.exec(ctx, c.sb.Insert("tags").Columns(tagColumns...).
		Values(t.ID, t.Name, t.Slug, t.Color, t.CreatedAt, t.UpdatedAt))
	return taxonomyErr("tag", t.Slug, err)
}

// UpdateTag overwrites name, slug and color.
func (c conn) UpdateTag(ctx context.Context, t *models.Tag) error {
	err := c.execOne(ctx, c.sb.Update("tags").
		SetMap(map[string]any{
			"name":       t.Name,
			"slug":       t.Slug,
			"color":      t.Color,
			"updated_at": t.UpdatedAt,
		}).
		Where(sq.Eq{"id": t.ID}))
	return taxonomyErr("tag", t.ID, err)
}

// DeleteTag removes a tag no note carries.
func (c conn) DeleteTag(ctx context.Context, id string) error {
	var used int
	if err := c.get(ctx, &used, c.sb.Select("COUNT(*)").From("note_tags").Where(sq.Eq{"tag_id": id})); err != nil {
		return fmt.Errorf("store: tag usage: %w", err)
	}
	if used > 0 {
		return fmt.Errorf("store: tag %s used by %d notes: %w", id, used, apperr.ErrInUse)
	}
	return taxonomyErr("tag", id, c.execOne(ctx, c.sb.Delete("tags").Where(sq.Eq{"id": id})))
}

// SetNoteTags replaces the tag set of a note.
func (c conn) SetNoteTags(ctx context.Context, noteID string, tagIDs []string) error {
	if _, err := c.exec(ctx, c.sb.Delete("note_tags").Where(sq.Eq{"note_id": noteID})); err != nil {
		return fmt.Errorf("store: clear note tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	q := c.sb.Insert("note_tags").Columns("note_id", "tag_id")
	seen := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		q = q.Values(noteID, id)
	}
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("store: insert note tags: %w", err)
	}
	return nil
}

// NoteTags returns the tags of each given note, ordered by name.
func (c conn) NoteTags(ctx context.Context, noteIDs ...string) (map[string][]models.Tag, error) {
	out := make(map[string][]models.Tag, len(noteIDs))
	if len(noteIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		NoteID string `db:"note_id"`
		models.Tag
	}
	if err := c.selectAll(ctx, &rows, c.sb.
		Select(append([]string{"nt.note_id"}, prefixed("t", tagColumns)...)...).
		From("note_tags nt").
		Join("tags t ON t.id = nt.tag_id").
		Where(sq.Eq{"nt.note_id": noteIDs}).
		OrderBy("t.name", "t.id")); err != nil {
		return nil, fmt.Errorf("store: note tags: %w", err)
	}
	for _, r := range rows {
		out[r.NoteID] = append(out[r.NoteID], r.Tag)
	}
	return out, nil
}

func taxonomyErr(kind, key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("store: %s %s: %w", kind, key, apperr.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("store: %s %s: %w", kind, key, apperr.ErrAlreadyExists)
	default:
		return fmt.Errorf("store: %s %s: %w", kind, key, err)
	}
}
