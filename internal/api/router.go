package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jly61/knowledge-and-blog/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// Published posts are readable without credentials; everything else goes
// through AuthMiddleware. events, if non-nil, is mounted at GET /events.
func NewRouter(svc *noteservice.Service, authCfg AuthConfig, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Public blog reads.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{post}", h.GetPost)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authCfg))

		// Notes.
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Get("/notes/{id}", h.GetNote)
		r.Put("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)
		r.Get("/notes/{id}/preview", h.Preview)
		r.Put("/notes/{id}/moc", h.SetMOC)
		r.Post("/notes/{id}/publish", h.Publish)
		r.Get("/moc", h.ListMOC)

		// Links and graph.
		r.Get("/notes/{id}/backlinks", h.Backlinks)
		r.Get("/notes/{id}/mentions", h.Mentions)
		r.Post("/notes/{id}/links/sync", h.SyncNoteLinks)
		r.Post("/links/resync", h.ResyncAll)
		r.Get("/graph", h.Graph)

		r.Get("/search", h.Search)

		// Taxonomy.
		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
		r.Get("/tags", h.ListTags)
		r.Post("/tags", h.CreateTag)
		r.Put("/tags/{id}", h.UpdateTag)
		r.Delete("/tags/{id}", h.DeleteTag)

		r.Delete("/posts/{post}", h.DeletePost)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	return r
}
