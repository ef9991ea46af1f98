package noteservice

import (
	"context"

	"github.com/jly61/knowledge-and-blog/internal/graph"
	"github.com/jly61/knowledge-and-blog/internal/links"
	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/store"
)

// ResyncSummary reports an owner-wide link rebuild.
type ResyncSummary struct {
	Notes      int `json:"notes"`
	Created    int `json:"created"`
	Unresolved int `json:"unresolved"`
}

// GraphOptions filters the graph projection.
type GraphOptions struct {
	CategoryID string
	TagIDs     []string
}

// Backlinks lists the notes linking to id.
func (s *Service) Backlinks(ctx context.Context, ownerID, id string) ([]models.LinkedNote, error) {
	if _, err := s.store.GetNote(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.store.Backlinks(ctx, id)
}

// Graph projects the owner's notes and links.
func (s *Service) Graph(ctx context.Context, ownerID string, opts GraphOptions) (graph.Data, error) {
	notes, err := s.store.GraphNotes(ctx, ownerID)
	if err != nil {
		return graph.Data{}, err
	}
	return graph.Project(notes, graph.Options{
		CategoryID:   opts.CategoryID,
		TagIDs:       opts.TagIDs,
		DefaultColor: s.graphColor,
	}), nil
}

// ResyncNote rebuilds the outgoing links of one note from its stored content.
func (s *Service) ResyncNote(ctx context.Context, ownerID, id string) (links.Result, error) {
	var res links.Result
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.GetNote(ctx, ownerID, id)
		if err != nil {
			return err
		}
		res, err = s.linker.Sync(ctx, tx, n.ID, ownerID, n.Content)
		return err
	})
	if err != nil {
		return links.Result{}, err
	}
	s.emit(Event{Type: EventLinksSynced, OwnerID: ownerID, NoteID: id})
	return res, nil
}

// ResyncAll rebuilds every outgoing link of an owner in one transaction, so links
// to notes created after their referrer resolve.
func (s *Service) ResyncAll(ctx context.Context, ownerID string) (ResyncSummary, error) {
	var sum ResyncSummary
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		sum = ResyncSummary{}
		notes, err := tx.ListNotes(ctx, store.NoteFilter{OwnerID: ownerID})
		if err != nil {
			return err
		}
		titles, err := tx.NoteTitles(ctx, ownerID)
		if err != nil {
			return err
		}
		ix := links.NewTitleIndex(titles)
		for _, n := range notes {
			res, err := s.linker.SyncWithIndex(ctx, tx, ix, n.ID, n.Content)
			if err != nil {
				return err
			}
			sum.Notes++
			sum.Created += res.Created
			sum.Unresolved += len(res.Unresolved)
		}
		return nil
	})
	if err != nil {
		return ResyncSummary{}, err
	}

	s.log.Info("links resynced", "owner_id", ownerID, "notes", sum.Notes, "links", sum.Created, "unresolved", sum.Unresolved)
	s.emit(Event{Type: EventLinksSynced, OwnerID: ownerID})
	return sum, nil
}

// Mentions lists other notes whose titles appear in id's text without a link.
func (s *Service) Mentions(ctx context.Context, ownerID, id string) ([]links.Mention, error) {
	n, err := s.store.GetNote(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	titles, err := s.store.NoteTitles(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out, err := s.store.OutgoingLinks(ctx, id)
	if err != nil {
		return nil, err
	}

	skip := map[string]bool{id: true}
	for _, l := range out {
		skip[l.NoteID] = true
	}
	mentions, err := links.FindMentions(n.Content, titles, skip)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(mentions), nil
}
