package links

import (
	"testing"
	"time"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

func TestResolve_ExactMatchWins(t *testing.T) {
	now := time.Now()
	ix := NewTitleIndex([]models.NoteTitle{
		{ID: "details", Title: "project plan details", UpdatedAt: now},
		{ID: "plan", Title: "Project Plan", UpdatedAt: now.Add(-time.Hour)},
	})
	id, ok, _ := ix.Resolve("project plan", "other")
	if !ok || id != "plan" {
		t.Fatalf("Resolve = %q %v, want plan", id, ok)
	}
}

func TestResolve_MostRecentThenSmallestID(t *testing.T) {
	now := time.Now()
	ix := NewTitleIndex([]models.NoteTitle{
		{ID: "b", Title: "Go tips", UpdatedAt: now},
		{ID: "a", Title: "Go tricks", UpdatedAt: now},
		{ID: "c", Title: "Go basics", UpdatedAt: now.Add(-time.Minute)},
	})
	id, ok, _ := ix.Resolve("go", "")
	if !ok || id != "a" {
		t.Fatalf("Resolve = %q, want a", id)
	}

	ix = NewTitleIndex([]models.NoteTitle{
		{ID: "a", Title: "Go tricks", UpdatedAt: now.Add(-time.Minute)},
		{ID: "b", Title: "Go tips", UpdatedAt: now},
	})
	if id, _, _ := ix.Resolve("GO", ""); id != "b" {
		t.Fatalf("Resolve = %q, want b", id)
	}
}

func TestResolve_SelfIsDropped(t *testing.T) {
	ix := NewTitleIndex([]models.NoteTitle{{ID: "self", Title: "My Note"}})
	for _, text := range []string{"My Note", "my note", "MY NOTE", "note"} {
		id, ok, self := ix.Resolve(text, "self")
		if ok {
			t.Errorf("Resolve(%q) = %q, want no match", text, id)
		}
		if !self {
			t.Errorf("Resolve(%q) not reported as self-reference", text)
		}
	}
}

func TestResolve_EmptyAndMiss(t *testing.T) {
	ix := NewTitleIndex([]models.NoteTitle{{ID: "1", Title: "Alpha"}, {ID: "2", Title: "  "}})
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1", ix.Len())
	}
	if _, ok, _ := ix.Resolve("   ", ""); ok {
		t.Error("blank text resolved")
	}
	if _, ok, self := ix.Resolve("beta", ""); ok || self {
		t.Error("unknown title resolved")
	}
}

func TestResolve_SelfNeverOutranksOthers(t *testing.T) {
	now := time.Now()
	ix := NewTitleIndex([]models.NoteTitle{
		{ID: "self", Title: "Go concurrency", UpdatedAt: now},
		{ID: "basics", Title: "Go basics", UpdatedAt: now.Add(-time.Hour)},
	})
	id, ok, self := ix.Resolve("Go", "self")
	if !ok || self || id != "basics" {
		t.Fatalf("Resolve = %q %v %v, want basics", id, ok, self)
	}
}
