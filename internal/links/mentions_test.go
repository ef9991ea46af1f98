package links

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

func TestFindMentions(t *testing.T) {
	notes := []models.NoteTitle{
		{ID: "self", Title: "Daily Log"},
		{ID: "go", Title: "Go"},
		{ID: "plan", Title: "Project Plan"},
		{ID: "linked", Title: "Roadmap"},
	}
	content := "Daily Log: the project plan is good. Go review the [[Roadmap]] and the Project Plan. Roadmap again."
	got, err := FindMentions(content, notes, map[string]bool{"self": true, "linked": true})
	require.NoError(t, err)
	require.Equal(t, []Mention{
		{NoteID: "plan", Title: "Project Plan", Count: 2},
		{NoteID: "go", Title: "Go", Count: 1},
	}, got)
}

func TestFindMentions_InsideLinkIgnored(t *testing.T) {
	got, err := FindMentions("only [[Alpha]] here", []models.NoteTitle{{ID: "a", Title: "Alpha"}}, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFindMentions_NoCandidates(t *testing.T) {
	got, err := FindMentions("text", nil, nil)
	require.NoError(t, err)
	require.Nil(t, got)
}
