package parser

import (
	"testing"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

func TestTitleMap_FirstWins(t *testing.T) {
	m := NewTitleMap([]models.NoteTitle{
		{ID: "1", Title: "Go"},
		{ID: "2", Title: "go"},
	})
	if id, _ := m.Lookup("GO"); id != "1" {
		t.Errorf("lookup GO = %q, want 1", id)
	}
	if id, _ := m.Lookup("go"); id != "1" {
		t.Errorf("lookup go = %q, want 1", id)
	}
	if _, ok := m.Lookup("rust"); ok {
		t.Error("expected miss")
	}
}

func TestRenderLinks(t *testing.T) {
	m := NewTitleMap([]models.NoteTitle{{ID: "abc", Title: "Project Plan"}})
	out, broken := RenderLinks("See [[project plan]] and [[Missing Note]].", m)

	want := "See [project plan](/notes/abc) and [Missing Note](broken:Missing%20Note)."
	if out != want {
		t.Errorf("rendered = %q, want %q", out, want)
	}
	if len(broken) != 1 || broken[0] != "Missing Note" {
		t.Errorf("broken = %v", broken)
	}
}

func TestRenderLinks_NoLinks(t *testing.T) {
	out, broken := RenderLinks("plain", TitleMap{})
	if out != "plain" || broken != nil {
		t.Errorf("got %q %v", out, broken)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Go -- Tips_Tricks ", "go-tips-tricks"},
		{"C++ & Rust!", "c-rust"},
		{"读书 笔记", "读书-笔记"},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
