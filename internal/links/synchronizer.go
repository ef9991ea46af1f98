package links

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/parser"
)

// LinkWriter is the persistence surface link sync needs. Implementations are
// expected to be bound to the transaction that saves the note.
type LinkWriter interface {
	DeleteOutgoingLinks(ctx context.Context, noteID string) error
	NoteTitles(ctx context.Context, ownerID string) ([]models.NoteTitle, error)
	InsertLinks(ctx context.Context, links []models.NoteLink) error
}

// Result summarises one sync.
type Result struct {
	Created    int      `json:"created"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// Synchronizer replaces a note's outgoing links with the ones its content references.
type Synchronizer struct {
	log   *slog.Logger
	newID func() string
	now   func() time.Time
}

// NewSynchronizer returns a Synchronizer logging through log.
func NewSynchronizer(log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{
		log:   log,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Sync loads the owner's titles through w and rebuilds the outgoing links of noteID.
func (s *Synchronizer) Sync(ctx context.Context, w LinkWriter, noteID, ownerID, content string) (Result, error) {
	titles, err := w.NoteTitles(ctx, ownerID)
	if err != nil {
		return Result{}, fmt.Errorf("links: load titles: %w", err)
	}
	return s.SyncWithIndex(ctx, w, NewTitleIndex(titles), noteID, content)
}

// SyncWithIndex is Sync with a prebuilt title index, for bulk resyncs.
func (s *Synchronizer) SyncWithIndex(ctx context.Context, w LinkWriter, ix *TitleIndex, noteID, content string) (Result, error) {
	parsed := parser.ParseLinks(content)

	if err := w.DeleteOutgoingLinks(ctx, noteID); err != nil {
		return Result{}, fmt.Errorf("links: clear outgoing: %w", err)
	}

	var (
		res  Result
		rows []models.NoteLink
		now  = s.now()
	)
	for _, l := range parsed {
		targetID, ok, self := ix.Resolve(l.Text, noteID)
		if !ok {
			if l.Text != "" && !self {
				res.Unresolved = append(res.Unresolved, l.Text)
			}
			continue
		}
		rows = append(rows, models.NoteLink{
			ID:        s.newID(),
			SourceID:  noteID,
			TargetID:  targetID,
			Context:   l.Context,
			Position:  l.Start,
			CreatedAt: now,
		})
	}

	if len(rows) > 0 {
		if err := w.InsertLinks(ctx, rows); err != nil {
			return Result{}, fmt.Errorf("links: insert: %w", err)
		}
	}
	res.Created = len(rows)

	s.log.Debug("links synced",
		"note_id", noteID,
		"parsed", len(parsed),
		"created", res.Created,
		"unresolved", len(res.Unresolved),
	)
	return res, nil
}
