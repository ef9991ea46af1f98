// Package models defines the domain types shared across the knowledge base.
package models

import "time"

// Note is a user's knowledge-base entry.
type Note struct {
	ID         string    `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"owner_id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	Excerpt    string    `db:"excerpt" json:"excerpt,omitempty"`
	CategoryID *string   `db:"category_id" json:"category_id,omitempty"`
	IsPinned   bool      `db:"is_pinned" json:"is_pinned"`
	IsFavorite bool      `db:"is_favorite" json:"is_favorite"`
	IsMOC      bool      `db:"is_moc" json:"is_moc"`
	Checksum   string    `db:"checksum" json:"checksum"`
	SourcePath string    `db:"source_path" json:"source_path,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// NoteTitle is the slice of a note the title resolver needs.
type NoteTitle struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NoteLink is a directed edge from the note containing a [[reference]] to the note it resolved to.
type NoteLink struct {
	ID        string    `db:"id" json:"id"`
	SourceID  string    `db:"source_id" json:"source_id"`
	TargetID  string    `db:"target_id" json:"target_id"`
	Context   string    `db:"context" json:"context"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LinkedNote is a link row joined with the title of the note on the other end.
type LinkedNote struct {
	LinkID   string `db:"link_id" json:"link_id"`
	NoteID   string `db:"note_id" json:"note_id"`
	Title    string `db:"title" json:"title"`
	Context  string `db:"context" json:"context"`
	Position int    `db:"position" json:"position"`
}

// LinkCounts holds the degree of a note in the link graph.
type LinkCounts struct {
	Links     int `json:"links"`
	Backlinks int `json:"backlinks"`
}

// GraphNote is everything the graph projector needs about one note.
type GraphNote struct {
	ID            string
	Title         string
	Category      *Category
	Tags          []Tag
	Outgoing      []NoteLink
	IncomingCount int
}
