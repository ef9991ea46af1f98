// Package noteservice implements the knowledge-base use cases on top of the store:
// note CRUD with link sync, backlinks, graph, search, taxonomy, publishing and import.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
	"github.com/jly61/knowledge-and-blog/internal/graph"
	"github.com/jly61/knowledge-and-blog/internal/links"
	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/store"
)

// Event types published after a change commits.
const (
	EventNoteCreated = "note.created"
	EventNoteUpdated = "note.updated"
	EventNoteDeleted = "note.deleted"
	EventLinksSynced = "links.synced"
)

// Event describes a committed change to an owner's notes.
type Event struct {
	Type    string
	OwnerID string
	NoteID  string
	Title   string
}

// Service coordinates store transactions and link maintenance.
type Service struct {
	store      *store.Store
	linker     *links.Synchronizer
	log        *slog.Logger
	notify     func(Event)
	now        func() time.Time
	newID      func() string
	graphColor string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithNotifier registers a callback for committed changes.
func WithNotifier(fn func(Event)) Option {
	return func(s *Service) { s.notify = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithGraphColor sets the node color used when a note has no colored category or tag.
func WithGraphColor(c string) Option {
	return func(s *Service) { s.graphColor = c }
}

// New creates a Service.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		log:        slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
		graphColor: graph.DefaultColor,
	}
	for _, o := range opts {
		o(s)
	}
	s.linker = links.NewSynchronizer(s.log)
	return s
}

func (s *Service) emit(e Event) {
	if s.notify != nil {
		s.notify(e)
	}
}

// checkTaxonomy verifies that the referenced category and tags exist.
func checkTaxonomy(ctx context.Context, tx *store.Tx, categoryID *string, tagIDs []string) error {
	if categoryID != nil && *categoryID != "" {
		if _, err := tx.GetCategory(ctx, *categoryID); err != nil {
			return fmt.Errorf("%w: unknown category %q", apperr.ErrInvalid, *categoryID)
		}
	}
	if len(tagIDs) == 0 {
		return nil
	}
	tags, err := tx.TagsByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(tags))
	for _, t := range tags {
		known[t.ID] = true
	}
	for _, id := range tagIDs {
		if !known[id] {
			return fmt.Errorf("%w: unknown tag %q", apperr.ErrInvalid, id)
		}
	}
	return nil
}

func normalizeCategory(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func tagsOrEmpty(m map[string][]models.Tag, id string) []models.Tag {
	return nonNilSlice(m[id])
}
