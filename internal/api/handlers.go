package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jly61/knowledge-and-blog/internal/checksum"
	"github.com/jly61/knowledge-and-blog/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func noteID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with optional pagination and filtering
//	@Tags			notes
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			category	query		string	false	"Filter by category id"
//	@Param			tag			query		string	false	"Filter by tag id (repeatable)"
//	@Success		200			{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.svc.ListNotes(r.Context(), userID(r), noteservice.ListOptions{
		CategoryID: r.URL.Query().Get("category"),
		TagIDs:     queryTags(r),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: total})
}

// GetNote handles GET /api/notes/{id}. The checksum is sent as the ETag.
//
//	@Summary		Get a single note with links, backlinks and rendered content
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	noteservice.NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetNote(r.Context(), userID(r), noteID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	noteservice.NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.CreateNote(r.Context(), userID(r), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Update a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string		true	"Note id"
//	@Param			If-Match	header		string		false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		NoteRequest	true	"Updated note"
//	@Success		200			{object}	noteservice.NoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ifMatch := checksum.ParseIfMatch(r.Header.Get("If-Match"))

	note, err := h.svc.UpdateNote(r.Context(), userID(r), noteID(r), req.input(), ifMatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(r.Context(), userID(r), noteID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles GET /api/notes/{id}/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	text, err := h.svc.Preview(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{ID: id, Preview: text})
}

// SetMOC handles PUT /api/notes/{id}/moc.
func (h *Handler) SetMOC(w http.ResponseWriter, r *http.Request) {
	var req MOCRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetMOC(r.Context(), userID(r), noteID(r), *req.IsMOC); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMOC handles GET /api/moc.
func (h *Handler) ListMOC(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListMOC(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": items})
}

// Search handles GET /api/search.
//
//	@Summary		Search notes by title and content
//	@Tags			search
//	@Produce		json
//	@Param			q			query		string	true	"Search query"
//	@Param			category	query		string	false	"Category id"
//	@Param			tag			query		string	false	"Tag id (repeatable)"
//	@Param			from		query		string	false	"Created on or after (YYYY-MM-DD or RFC 3339)"
//	@Param			to			query		string	false	"Created on or before"
//	@Param			limit		query		int		false	"Max results"
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	from, err := queryTime(r, "from", false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryTime(r, "to", true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	results, err := h.svc.Search(r.Context(), userID(r), noteservice.SearchQuery{
		Query:      q,
		CategoryID: r.URL.Query().Get("category"),
		TagIDs:     queryTags(r),
		From:       from,
		To:         to,
		Limit:      queryInt(r, "limit"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
