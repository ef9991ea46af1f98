package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Publish handles POST /api/notes/{id}/publish. Publishing again refreshes the post.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Publish(r.Context(), userID(r), noteID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ListPosts handles GET /api/posts. Published posts are public.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetPost handles GET /api/posts/{post} where {post} is a slug.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "post"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{post} where {post} is the post id.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePost(r.Context(), userID(r), chi.URLParam(r, "post")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
