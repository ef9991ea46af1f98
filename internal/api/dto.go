package api

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jly61/knowledge-and-blog/internal/noteservice"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NoteRequest is the body of POST /notes and PUT /notes/{id}.
type NoteRequest struct {
	Title      string   `json:"title" example:"Project Plan"`
	Content    string   `json:"content" example:"See [[Roadmap]]"`
	Excerpt    string   `json:"excerpt"`
	CategoryID *string  `json:"category_id"`
	TagIDs     []string `json:"tag_ids"`
	IsPinned   bool     `json:"is_pinned"`
	IsFavorite bool     `json:"is_favorite"`
	IsMOC      bool     `json:"is_moc"`
}

func (r *NoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Excerpt, validation.Length(0, 500)),
		validation.Field(&r.CategoryID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&r.TagIDs, validation.Each(validation.Required, is.UUID)),
	)
}

func (r *NoteRequest) input() noteservice.NoteInput {
	return noteservice.NoteInput{
		Title:      r.Title,
		Content:    r.Content,
		Excerpt:    r.Excerpt,
		CategoryID: r.CategoryID,
		TagIDs:     r.TagIDs,
		IsPinned:   r.IsPinned,
		IsFavorite: r.IsFavorite,
		IsMOC:      r.IsMOC,
	}
}

// MOCRequest is the body of PUT /notes/{id}/moc.
type MOCRequest struct {
	IsMOC *bool `json:"is_moc"`
}

func (r *MOCRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IsMOC, validation.NotNil),
	)
}

// CategoryRequest is the body of POST /categories and PUT /categories/{id}.
type CategoryRequest struct {
	Name        string `json:"name" example:"Engineering"`
	Description string `json:"description"`
	Color       string `json:"color" example:"#ef4444"`
}

func (r *CategoryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.Color, validation.Match(hexColor)),
	)
}

// TagRequest is the body of POST /tags and PUT /tags/{id}.
type TagRequest struct {
	Name  string `json:"name" example:"golang"`
	Color string `json:"color"`
}

func (r *TagRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Color, validation.Match(hexColor)),
	)
}

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []noteservice.NoteListItem `json:"notes"`
	Total int                        `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []noteservice.SearchResult `json:"results"`
}

// PreviewResponse is returned by GET /notes/{id}/preview.
type PreviewResponse struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}
