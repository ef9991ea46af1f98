package noteservice

import (
	"strings"
	"testing"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

func TestSnippet(t *testing.T) {
	content := strings.Repeat("a", 150) + "MATCH" + strings.Repeat("b", 150)
	got, ok := snippet(content, "match")
	if !ok {
		t.Fatal("expected a match")
	}
	want := "..." + strings.Repeat("a", 100) + "MATCH" + strings.Repeat("b", 100) + "..."
	if got != want {
		t.Errorf("snippet = %q", got)
	}

	got, ok = snippet("short Match", "match")
	if !ok || got != "short Match" {
		t.Errorf("snippet = %q %v", got, ok)
	}

	if _, ok := snippet("nothing", "match"); ok {
		t.Error("unexpected match")
	}
}

func TestPreview(t *testing.T) {
	n := &models.Note{Content: strings.Repeat("字", 250)}
	if got := preview(n); len([]rune(got)) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview = %q", got)
	}
	n.Excerpt = "custom"
	if got := preview(n); got != "custom" {
		t.Errorf("preview = %q", got)
	}
	if got := preview(&models.Note{Content: "tiny"}); got != "tiny" {
		t.Errorf("preview = %q", got)
	}
}
