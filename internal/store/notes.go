package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
	"github.com/jly61/knowledge-and-blog/internal/models"
)

var noteColumns = []string{
	"id", "owner_id", "title", "content", "excerpt", "category_id",
	"is_pinned", "is_favorite", "is_moc", "checksum", "source_path",
	"created_at", "updated_at",
}

// NoteFilter narrows ListNotes and CountNotes. Zero fields are ignored;
// a zero Limit returns every match.
type NoteFilter struct {
	OwnerID    string
	Query      string
	CategoryID string
	TagIDs     []string
	From       *time.Time
	To         *time.Time
	MOCOnly    bool
	Limit      int
	Offset     int
}

// InsertNote stores a new note.
func (c conn) InsertNote(ctx context.Context, n *models.Note) error {
	_, err := c.exec(ctx, c.sb.Insert("notes").
		Columns(noteColumns...).
		Values(n.ID, n.OwnerID, n.Title, n.Content, n.Excerpt, n.CategoryID,
			n.IsPinned, n.IsFavorite, n.IsMOC, n.Checksum, n.SourcePath,
			n.CreatedAt, n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert note: %w", err)
	}
	return nil
}

// UpdateNote overwrites the mutable fields of an owner's note.
func (c conn) UpdateNote(ctx context.Context, n *models.Note) error {
	err := c.execOne(ctx, c.sb.Update("notes").
		SetMap(map[string]any{
			"title":       n.Title,
			"content":     n.Content,
			"excerpt":     n.Excerpt,
			"category_id": n.CategoryID,
			"is_pinned":   n.IsPinned,
			"is_favorite": n.IsFavorite,
			"is_moc":      n.IsMOC,
			"checksum":    n.Checksum,
			"source_path": n.SourcePath,
			"updated_at":  n.UpdatedAt,
		}).
		Where(sq.Eq{"id": n.ID, "owner_id": n.OwnerID}))
	return noteErr("update", n.ID, err)
}

// SetMOC flips the MOC flag without touching updated_at.
func (c conn) SetMOC(ctx context.Context, ownerID, id string, moc bool) error {
	err := c.execOne(ctx, c.sb.Update("notes").
		Set("is_moc", moc).
		Where(sq.Eq{"id": id, "owner_id": ownerID}))
	return noteErr("set moc", id, err)
}

// DeleteNote removes an owner's note. Links and tag rows cascade; posts are detached.
func (c conn) DeleteNote(ctx context.Context, ownerID, id string) error {
	err := c.execOne(ctx, c.sb.Delete("notes").Where(sq.Eq{"id": id, "owner_id": ownerID}))
	return noteErr("delete", id, err)
}

// GetNote returns an owner's note.
func (c conn) GetNote(ctx context.Context, ownerID, id string) (*models.Note, error) {
	var n models.Note
	err := c.get(ctx, &n, c.sb.Select(noteColumns...).From("notes").
		Where(sq.Eq{"id": id, "owner_id": ownerID}))
	if err != nil {
		return nil, noteErr("get", id, err)
	}
	return &n, nil
}

// NoteBySourcePath returns the note imported from path.
func (c conn) NoteBySourcePath(ctx context.Context, ownerID, path string) (*models.Note, error) {
	var n models.Note
	err := c.get(ctx, &n, c.sb.Select(noteColumns...).From("notes").
		Where(sq.Eq{"owner_id": ownerID, "source_path": path}).
		OrderBy("created_at", "id").
		Limit(1))
	if err != nil {
		return nil, noteErr("get by path", path, err)
	}
	return &n, nil
}

// ImportedChecksums maps the source path of every imported note to its checksum.
func (c conn) ImportedChecksums(ctx context.Context, ownerID string) (map[string]string, error) {
	var rows []struct {
		SourcePath string `db:"source_path"`
		Checksum   string `db:"checksum"`
	}
	err := c.selectAll(ctx, &rows, c.sb.Select("source_path", "checksum").From("notes").
		Where(sq.And{sq.Eq{"owner_id": ownerID}, sq.NotEq{"source_path": ""}}))
	if err != nil {
		return nil, fmt.Errorf("store: imported checksums: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.SourcePath] = r.Checksum
	}
	return out, nil
}

// ListNotes returns matching notes, pinned first, then most recently updated.
func (c conn) ListNotes(ctx context.Context, f NoteFilter) ([]models.Note, error) {
	q := applyNoteFilter(c.sb.Select(prefixed("n", noteColumns)...).From("notes n"), f).
		OrderBy("n.is_pinned DESC", "n.updated_at DESC", "n.id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	notes := []models.Note{}
	if err := c.selectAll(ctx, &notes, q); err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	return notes, nil
}

// CountNotes counts the notes ListNotes would return without paging.
func (c conn) CountNotes(ctx context.Context, f NoteFilter) (int, error) {
	var total int
	if err := c.get(ctx, &total, applyNoteFilter(c.sb.Select("COUNT(*)").From("notes n"), f)); err != nil {
		return 0, fmt.Errorf("store: count notes: %w", err)
	}
	return total, nil
}

// NoteTitles returns the id, title and update time of every owner note,
// oldest first.
func (c conn) NoteTitles(ctx context.Context, ownerID string) ([]models.NoteTitle, error) {
	var out []models.NoteTitle
	err := c.selectAll(ctx, &out, c.sb.Select("id", "title", "updated_at").From("notes").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("store: note titles: %w", err)
	}
	return out, nil
}

func applyNoteFilter(q sq.SelectBuilder, f NoteFilter) sq.SelectBuilder {
	q = q.Where(sq.Eq{"n.owner_id": f.OwnerID})
	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where(sq.Or{
			sq.Expr(`LOWER(n.title) LIKE ? ESCAPE '\'`, p),
			sq.Expr(`LOWER(n.content) LIKE ? ESCAPE '\'`, p),
		})
	}
	if f.CategoryID != "" {
		q = q.Where(sq.Eq{"n.category_id": f.CategoryID})
	}
	if len(f.TagIDs) > 0 {
		q = q.Where(sq.Expr("n.id IN (?)", sq.Select("note_id").From("note_tags").Where(sq.Eq{"tag_id": f.TagIDs})))
	}
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"n.created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(sq.LtOrEq{"n.created_at": *f.To})
	}
	if f.MOCOnly {
		q = q.Where(sq.Eq{"n.is_moc": true})
	}
	return q
}

func noteErr(op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("store: note %s: %w", id, apperr.ErrNotFound)
	default:
		return fmt.Errorf("store: %s note: %w", op, err)
	}
}
