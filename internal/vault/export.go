package vault

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/jly61/knowledge-and-blog/internal/noteservice"
	"github.com/jly61/knowledge-and-blog/internal/parser"
)

const exportPage = 200

type frontmatter struct {
	Title    string   `yaml:"title"`
	Category string   `yaml:"category,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

// Export writes every note of owner as a Markdown file with frontmatter.
// Imported notes go back to their source path; others are named after their
// title. The output can be imported again.
func Export(ctx context.Context, fs *FS, svc *noteservice.Service, owner string) (int, error) {
	cats, err := svc.ListCategories(ctx, owner)
	if err != nil {
		return 0, err
	}
	catNames := make(map[string]string, len(cats))
	for _, c := range cats {
		catNames[c.ID] = c.Name
	}

	used := make(map[string]bool)
	written := 0
	for offset := 0; ; offset += exportPage {
		items, total, err := svc.ListNotes(ctx, owner, noteservice.ListOptions{Limit: exportPage, Offset: offset})
		if err != nil {
			return written, err
		}
		for _, it := range items {
			note, err := svc.GetNote(ctx, owner, it.ID)
			if err != nil {
				return written, err
			}
			data, err := renderDocument(note, catNames)
			if err != nil {
				return written, err
			}
			name := exportPath(note, used)
			if err := fs.Write(name, data); err != nil {
				return written, err
			}
			written++
		}
		if len(items) == 0 || offset+len(items) >= total {
			return written, nil
		}
	}
}

func renderDocument(n *noteservice.NoteDetail, catNames map[string]string) ([]byte, error) {
	fm := frontmatter{Title: n.Title}
	if n.CategoryID != nil {
		fm.Category = catNames[*n.CategoryID]
	}
	for _, t := range n.Tags {
		fm.Tags = append(fm.Tags, t.Name)
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("vault: frontmatter for %s: %w", n.ID, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// exportPath picks a file name that no earlier note of this export used.
func exportPath(n *noteservice.NoteDetail, used map[string]bool) string {
	name := n.SourcePath
	if name == "" {
		base := parser.Slugify(n.Title)
		if base == "" {
			base = n.ID
		}
		name = base + ".md"
		if used[name] {
			name = fmt.Sprintf("%s-%s.md", base, n.ID[:min(8, len(n.ID))])
		}
	}
	used[name] = true
	return path.Clean(name)
}
