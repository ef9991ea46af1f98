package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

// DeleteOutgoingLinks removes every link whose source is noteID.
func (c conn) DeleteOutgoingLinks(ctx context.Context, noteID string) error {
	if _, err := c.exec(ctx, c.sb.Delete("note_links").Where(sq.Eq{"source_id": noteID})); err != nil {
		return fmt.Errorf("store: delete links: %w", err)
	}
	return nil
}

// linkBatch bounds the rows per INSERT so a statement stays under the driver's
// bind variable limit (6 per row).
const linkBatch = 500

// InsertLinks stores links, linkBatch rows per statement.
func (c conn) InsertLinks(ctx context.Context, links []models.NoteLink) error {
	for start := 0; start < len(links); start += linkBatch {
		end := min(start+linkBatch, len(links))
		q := c.sb.Insert("note_links").Columns("id", "source_id", "target_id", "context", "position", "created_at")
		for _, l := range links[start:end] {
			q = q.Values(l.ID, l.SourceID, l.TargetID, l.Context, l.Position, l.CreatedAt)
		}
		if _, err := c.exec(ctx, q); err != nil {
			return fmt.Errorf("store: insert links: %w", err)
		}
	}
	return nil
}

// OutgoingLinks lists the notes noteID links to, in content order.
func (c conn) OutgoingLinks(ctx context.Context, noteID string) ([]models.LinkedNote, error) {
	out := []models.LinkedNote{}
	err := c.selectAll(ctx, &out, c.sb.
		Select("l.id AS link_id", "n.id AS note_id", "n.title", "l.context", "l.position").
		From("note_links l").
		Join("notes n ON n.id = l.target_id").
		Where(sq.Eq{"l.source_id": noteID}).
		OrderBy("l.position", "l.id"))
	if err != nil {
		return nil, fmt.Errorf("store: outgoing links: %w", err)
	}
	return out, nil
}

// Backlinks lists the notes linking to noteID, most recently updated source first.
func (c conn) Backlinks(ctx context.Context, noteID string) ([]models.LinkedNote, error) {
	out := []models.LinkedNote{}
	err := c.selectAll(ctx, &out, c.sb.
		Select("l.id AS link_id", "n.id AS note_id", "n.title", "l.context", "l.position").
		From("note_links l").
		Join("notes n ON n.id = l.source_id").
		Where(sq.Eq{"l.target_id": noteID}).
		OrderBy("n.updated_at DESC", "l.position", "l.id"))
	if err != nil {
		return nil, fmt.Errorf("store: backlinks: %w", err)
	}
	return out, nil
}

// LinkCounts returns the outgoing and incoming row counts of a note.
func (c conn) LinkCounts(ctx context.Context, noteID string) (models.LinkCounts, error) {
	var lc models.LinkCounts
	if err := c.get(ctx, &lc.Links, c.sb.Select("COUNT(*)").From("note_links").Where(sq.Eq{"source_id": noteID})); err != nil {
		return lc, fmt.Errorf("store: count links: %w", err)
	}
	if err := c.get(ctx, &lc.Backlinks, c.sb.Select("COUNT(*)").From("note_links").Where(sq.Eq{"target_id": noteID})); err != nil {
		return lc, fmt.Errorf("store: count backlinks: %w", err)
	}
	return lc, nil
}

// GraphNotes loads an owner's notes with category, tags (by name) and links,
// ordered by creation time.
func (c conn) GraphNotes(ctx context.Context, ownerID string) ([]models.GraphNote, error) {
	var notes []struct {
		ID         string  `db:"id"`
		Title      string  `db:"title"`
		CategoryID *string `db:"category_id"`
	}
	if err := c.selectAll(ctx, &notes, c.sb.Select("id", "title", "category_id").From("notes").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at", "id")); err != nil {
		return nil, fmt.Errorf("store: graph notes: %w", err)
	}
	if len(notes) == 0 {
		return []models.GraphNote{}, nil
	}

	cats, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	catByID := make(map[string]*models.Category, len(cats))
	for i := range cats {
		catByID[cats[i].ID] = &cats[i]
	}

	var tagRows []struct {
		NoteID string `db:"note_id"`
		models.Tag
	}
	if err := c.selectAll(ctx, &tagRows, c.sb.
		Select(append([]string{"nt.note_id"}, prefixed("t", tagColumns)...)...).
		From("note_tags nt").
		Join("tags t ON t.id = nt.tag_id").
		Join("notes n ON n.id = nt.note_id").
		Where(sq.Eq{"n.owner_id": ownerID}).
		OrderBy("t.name", "t.id")); err != nil {
		return nil, fmt.Errorf("store: graph tags: %w", err)
	}

	var links []models.NoteLink
	if err := c.selectAll(ctx, &links, c.sb.
		Select("l.id", "l.source_id", "l.target_id", "l.context", "l.position", "l.created_at").
		From("note_links l").
		Join("notes n ON n.id = l.source_id").
		Where(sq.Eq{"n.owner_id": ownerID}).
		OrderBy("l.position", "l.id")); err != nil {
		return nil, fmt.Errorf("store: graph links: %w", err)
	}

	out := make([]models.GraphNote, len(notes))
	index := make(map[string]int, len(notes))
	for i, n := range notes {
		out[i] = models.GraphNote{ID: n.ID, Title: n.Title}
		if n.CategoryID != nil {
			out[i].Category = catByID[*n.CategoryID]
		}
		index[n.ID] = i
	}
	for _, r := range tagRows {
		if i, ok := index[r.NoteID]; ok {
			out[i].Tags = append(out[i].Tags, r.Tag)
		}
	}
	for _, l := range links {
		if i, ok := index[l.SourceID]; ok {
			out[i].Outgoing = append(out[i].Outgoing, l)
		}
		if i, ok := index[l.TargetID]; ok {
			out[i].IncomingCount++
		}
	}
	return out, nil
}
