package api

import (
	"net/http"

	"github.com/jly61/knowledge-and-blog/internal/noteservice"
)

// Backlinks handles GET /api/notes/{id}/backlinks.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Backlinks(r.Context(), userID(r), noteID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backlinks": items})
}

// Mentions handles GET /api/notes/{id}/mentions: titles of other notes that
// appear in the text without being linked.
func (h *Handler) Mentions(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Mentions(r.Context(), userID(r), noteID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mentions": items})
}

// SyncNoteLinks handles POST /api/notes/{id}/links/sync.
func (h *Handler) SyncNoteLinks(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ResyncNote(r.Context(), userID(r), noteID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ResyncAll handles POST /api/links/resync.
func (h *Handler) ResyncAll(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.ResyncAll(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the knowledge graph
//	@Tags			graph
//	@Produce		json
//	@Param			category	query		string	false	"Only notes in this category"
//	@Param			tag			query		string	false	"Only notes with any of these tags (repeatable)"
//	@Success		200			{object}	graph.Data
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Graph(r.Context(), userID(r), noteservice.GraphOptions{
		CategoryID: r.URL.Query().Get("category"),
		TagIDs:     queryTags(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
