package noteservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
	"github.com/jly61/knowledge-and-blog/internal/checksum"
	"github.com/jly61/knowledge-and-blog/internal/links"
	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/parser"
	"github.com/jly61/knowledge-and-blog/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NoteInput carries the writable fields of a note.
type NoteInput struct {
	Title      string
	Content    string
	Excerpt    string
	CategoryID *string
	TagIDs     []string
	IsPinned   bool
	IsFavorite bool
	IsMOC      bool
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	models.Note
	Category    *models.Category    `json:"category,omitempty"`
	Tags        []models.Tag        `json:"tags"`
	Links       []models.LinkedNote `json:"links"`
	Backlinks   []models.LinkedNote `json:"backlinks"`
	Rendered    string              `json:"rendered"`
	BrokenLinks []string            `json:"broken_links"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Preview    string       `json:"preview"`
	CategoryID *string      `json:"category_id,omitempty"`
	Tags       []models.Tag `json:"tags"`
	IsPinned   bool         `json:"is_pinned"`
	IsFavorite bool         `json:"is_favorite"`
	IsMOC      bool         `json:"is_moc"`
	Checksum   string       `json:"checksum"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ListOptions filters and pages ListNotes.
type ListOptions struct {
	CategoryID string
	TagIDs     []string
	Limit      int
	Offset     int
}

// CreateNote stores a note and its outgoing links in one transaction.
func (s *Service) CreateNote(ctx context.Context, ownerID string, in NoteInput) (*NoteDetail, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	now := s.now()
	n := &models.Note{
		ID:        s.newID(),
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	applyInput(n, in, now)

	var res links.Result
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := checkTaxonomy(ctx, tx, n.CategoryID, in.TagIDs); err != nil {
			return err
		}
		if err := tx.InsertNote(ctx, n); err != nil {
			return err
		}
		if err := tx.SetNoteTags(ctx, n.ID, in.TagIDs); err != nil {
			return err
		}
		var err error
		res, err = s.linker.Sync(ctx, tx, n.ID, ownerID, n.Content)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("note created", "note_id", n.ID, "owner_id", ownerID, "links", res.Created)
	s.emit(Event{Type: EventNoteCreated, OwnerID: ownerID, NoteID: n.ID, Title: n.Title})
	return s.GetNote(ctx, ownerID, n.ID)
}

// UpdateNote replaces a note's fields and relinks it. A non-empty ifMatch must equal
// the stored checksum or ErrConflict is returned.
func (s *Service) UpdateNote(ctx context.Context, ownerID, id string, in NoteInput, ifMatch string) (*NoteDetail, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		res   links.Result
		title string
	)
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.GetNote(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if ifMatch != "" && ifMatch != n.Checksum {
			return apperr.ErrConflict
		}
		applyInput(n, in, s.now())
		if err := checkTaxonomy(ctx, tx, n.CategoryID, in.TagIDs); err != nil {
			return err
		}
		if err := tx.UpdateNote(ctx, n); err != nil {
			return err
		}
		if err := tx.SetNoteTags(ctx, n.ID, in.TagIDs); err != nil {
			return err
		}
		title = n.Title
		res, err = s.linker.Sync(ctx, tx, n.ID, ownerID, n.Content)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("note updated", "note_id", id, "owner_id", ownerID, "links", res.Created)
	s.emit(Event{Type: EventNoteUpdated, OwnerID: ownerID, NoteID: id, Title: title})
	return s.GetNote(ctx, ownerID, id)
}

// DeleteNote removes a note; its links and tag rows go with it and posts are detached.
func (s *Service) DeleteNote(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteNote(ctx, ownerID, id); err != nil {
		return err
	}
	s.log.Info("note deleted", "note_id", id, "owner_id", ownerID)
	s.emit(Event{Type: EventNoteDeleted, OwnerID: ownerID, NoteID: id})
	return nil
}

// GetNote returns a note with tags, links, backlinks, and its rendered content.
func (s *Service) GetNote(ctx context.Context, ownerID, id string) (*NoteDetail, error) {
	n, err := s.store.GetNote(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	d := &NoteDetail{Note: *n}

	if n.CategoryID != nil {
		if d.Category, err = s.store.GetCategory(ctx, *n.CategoryID); err != nil {
			return nil, err
		}
	}
	tags, err := s.store.NoteTags(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	d.Tags = tagsOrEmpty(tags, n.ID)

	if d.Links, err = s.store.OutgoingLinks(ctx, n.ID); err != nil {
		return nil, err
	}
	if d.Backlinks, err = s.store.Backlinks(ctx, n.ID); err != nil {
		return nil, err
	}

	titles, err := s.store.NoteTitles(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var broken []string
	d.Rendered, broken = parser.RenderLinks(n.Content, parser.NewTitleMap(titles))
	d.BrokenLinks = nonNilSlice(broken)
	return d, nil
}

// ListNotes returns a page of the owner's notes and the total match count.
func (s *Service) ListNotes(ctx context.Context, ownerID string, opts ListOptions) ([]NoteListItem, int, error) {
	f := store.NoteFilter{
		OwnerID:    ownerID,
		CategoryID: opts.CategoryID,
		TagIDs:     opts.TagIDs,
		Limit:      clampLimit(opts.Limit),
		Offset:     max(opts.Offset, 0),
	}
	notes, err := s.store.ListNotes(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountNotes(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.listItems(ctx, notes)
	return items, total, err
}

// ListMOC returns the owner's MOC (index) notes.
func (s *Service) ListMOC(ctx context.Context, ownerID string) ([]NoteListItem, error) {
	notes, err := s.store.ListNotes(ctx, store.NoteFilter{OwnerID: ownerID, MOCOnly: true})
	if err != nil {
		return nil, err
	}
	return s.listItems(ctx, notes)
}

// SetMOC marks or unmarks a note as a MOC.
func (s *Service) SetMOC(ctx context.Context, ownerID, id string, moc bool) error {
	if err := s.store.SetMOC(ctx, ownerID, id, moc); err != nil {
		return err
	}
	s.emit(Event{Type: EventNoteUpdated, OwnerID: ownerID, NoteID: id})
	return nil
}

// Preview returns the excerpt of a note, or the start of its content.
func (s *Service) Preview(ctx context.Context, ownerID, id string) (string, error) {
	n, err := s.store.GetNote(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	return preview(n), nil
}

func (s *Service) listItems(ctx context.Context, notes []models.Note) ([]NoteListItem, error) {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	tags, err := s.store.NoteTags(ctx, ids...)
	if err != nil {
		return nil, err
	}
	items := make([]NoteListItem, len(notes))
	for i := range notes {
		items[i] = listItem(&notes[i], tagsOrEmpty(tags, notes[i].ID))
	}
	return items, nil
}

func listItem(n *models.Note, tags []models.Tag) NoteListItem {
	return NoteListItem{
		ID:         n.ID,
		Title:      n.Title,
		Preview:    preview(n),
		CategoryID: n.CategoryID,
		Tags:       tags,
		IsPinned:   n.IsPinned,
		IsFavorite: n.IsFavorite,
		IsMOC:      n.IsMOC,
		Checksum:   n.Checksum,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

func applyInput(n *models.Note, in NoteInput, now time.Time) {
	n.Title = strings.TrimSpace(in.Title)
	n.Content = in.Content
	n.Excerpt = strings.TrimSpace(in.Excerpt)
	n.CategoryID = normalizeCategory(in.CategoryID)
	n.IsPinned = in.IsPinned
	n.IsFavorite = in.IsFavorite
	n.IsMOC = in.IsMOC
	n.Checksum = checksum.SumString(in.Content)
	n.UpdatedAt = now
}

func validateInput(in NoteInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrInvalid)
	}
	return nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultListLimit
	case n > maxListLimit:
		return maxListLimit
	default:
		return n
	}
}
