package parser

import "testing"

func TestParseDocument_FrontmatterAndBody(t *testing.T) {
	d := ParseDocument([]byte("---\ntitle: Hello\ncategory: Work\ntags:\n  - go\n  - notes\n---\n# Hello\nBody with [[Other]].\n"))
	if d.Title != "Hello" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Category != "Work" {
		t.Errorf("category = %q", d.Category)
	}
	if len(d.Tags) != 2 || d.Tags[0] != "go" || d.Tags[1] != "notes" {
		t.Errorf("tags = %v", d.Tags)
	}
	if d.Body != "# Hello\nBody with [[Other]].\n" {
		t.Errorf("body = %q", d.Body)
	}
	if len(d.Links) != 1 || d.Links[0] != "Other" {
		t.Errorf("links = %v", d.Links)
	}
}

func TestParseDocument_NoFrontmatter(t *testing.T) {
	d := ParseDocument([]byte("# Just a heading\nSome text #idea.\n"))
	if d.Frontmatter != nil {
		t.Errorf("frontmatter = %v, want nil", d.Frontmatter)
	}
	if d.Title != "Just a heading" {
		t.Errorf("title = %q", d.Title)
	}
	if len(d.Tags) != 1 || d.Tags[0] != "idea" {
		t.Errorf("tags = %v", d.Tags)
	}
}

func TestParseDocument_InvalidYAML(t *testing.T) {
	raw := "---\n: invalid: yaml: {{{\n---\nBody\n"
	d := ParseDocument([]byte(raw))
	if d.Frontmatter != nil {
		t.Error("expected nil frontmatter on invalid YAML")
	}
	if d.Body != raw {
		t.Errorf("body = %q", d.Body)
	}
}

func TestParseDocument_CommaTags(t *testing.T) {
	d := ParseDocument([]byte("---\ntags: a, b ,#c\n---\ntext #a\n"))
	if len(d.Tags) != 3 || d.Tags[0] != "a" || d.Tags[1] != "b" || d.Tags[2] != "c" {
		t.Errorf("tags = %v", d.Tags)
	}
}
