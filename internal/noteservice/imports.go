package noteservice

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
	"github.com/jly61/knowledge-and-blog/internal/checksum"
	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/parser"
	"github.com/jly61/knowledge-and-blog/internal/store"
)

// ImportChecksum is the checksum a Markdown file produces once imported.
func ImportChecksum(data []byte) string {
	return checksum.SumString(parser.ParseDocument(data).Body)
}

// ImportDocument upserts the note mirrored from a vault file. Category and tags named
// in the file are created when missing. It reports whether a new note was created.
func (s *Service) ImportDocument(ctx context.Context, ownerID, sourcePath string, data []byte) (bool, error) {
	doc := parser.ParseDocument(data)
	title := doc.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(sourcePath), path.Ext(sourcePath))
	}

	var (
		created bool
		noteID  string
	)
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		now := s.now()
		categoryID, err := s.ensureCategory(ctx, tx, doc.Category)
		if err != nil {
			return err
		}
		tagIDs, err := s.ensureTags(ctx, tx, doc.Tags)
		if err != nil {
			return err
		}

		n, err := tx.NoteBySourcePath(ctx, ownerID, sourcePath)
		switch {
		case err == nil:
		case errors.Is(err, apperr.ErrNotFound):
			created = true
			n = &models.Note{ID: s.newID(), OwnerID: ownerID, SourcePath: sourcePath, CreatedAt: now}
		default:
			return err
		}

		n.Title = title
		n.Content = doc.Body
		n.CategoryID = categoryID
		n.Checksum = checksum.SumString(doc.Body)
		n.UpdatedAt = now
		if created {
			err = tx.InsertNote(ctx, n)
		} else {
			err = tx.UpdateNote(ctx, n)
		}
		if err != nil {
			return err
		}
		if err := tx.SetNoteTags(ctx, n.ID, tagIDs); err != nil {
			return err
		}
		noteID = n.ID
		_, err = s.linker.Sync(ctx, tx, n.ID, ownerID, n.Content)
		return err
	})
	if err != nil {
		return false, err
	}

	typ := EventNoteUpdated
	if created {
		typ = EventNoteCreated
	}
	s.emit(Event{Type: typ, OwnerID: ownerID, NoteID: noteID, Title: title})
	return created, nil
}

// DeleteImported removes the note mirrored from sourcePath, if any.
func (s *Service) DeleteImported(ctx context.Context, ownerID, sourcePath string) error {
	n, err := s.store.NoteBySourcePath(ctx, ownerID, sourcePath)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.DeleteNote(ctx, ownerID, n.ID)
}

// ImportedChecksums maps each imported source path of the owner to its checksum.
func (s *Service) ImportedChecksums(ctx context.Context, ownerID string) (map[string]string, error) {
	return s.store.ImportedChecksums(ctx, ownerID)
}

func (s *Service) ensureCategory(ctx context.Context, tx *store.Tx, name string) (*string, error) {
	slug := parser.Slugify(name)
	if slug == "" {
		return nil, nil
	}
	c, err := tx.CategoryBySlug(ctx, slug)
	if err == nil {
		return &c.ID, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	now := s.now()
	c = &models.Category{ID: s.newID(), Name: strings.TrimSpace(name), Slug: slug, CreatedAt: now, UpdatedAt: now}
	if err := tx.InsertCategory(ctx, c); err != nil {
		return nil, err
	}
	return &c.ID, nil
}

func (s *Service) ensureTags(ctx context.Context, tx *store.Tx, names []string) ([]string, error) {
	var ids []string
	for _, name := range names {
		slug := parser.Slugify(name)
		if slug == "" {
			continue
		}
		t, err := tx.TagBySlug(ctx, slug)
		if errors.Is(err, apperr.ErrNotFound) {
			now := s.now()
			t = &models.Tag{ID: s.newID(), Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now}
			err = tx.InsertTag(ctx, t)
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}
