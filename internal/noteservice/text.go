package noteservice

import (
	"strings"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

const (
	previewLength = 200
	snippetRadius = 100
	ellipsis      = "..."
)

// preview is the excerpt, or the first previewLength characters of content.
func preview(n *models.Note) string {
	if n.Excerpt != "" {
		return n.Excerpt
	}
	r := []rune(n.Content)
	if len(r) <= previewLength {
		return n.Content
	}
	return string(r[:previewLength]) + ellipsis
}

// snippet cuts snippetRadius characters either side of the first case-insensitive
// occurrence of query in content. ok is false when content does not contain query.
func snippet(content, query string) (string, bool) {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return "", false
	}
	text := []rune(content)
	lower := []rune(strings.ToLower(content))
	if len(lower) != len(text) {
		// Case mapping changed the length; fall back to an exact match.
		lower = text
		q = []rune(query)
	}

	at := runeIndex(lower, q)
	if at < 0 {
		return "", false
	}
	from := max(at-snippetRadius, 0)
	to := min(at+len(q)+snippetRadius, len(text))

	var b strings.Builder
	if from > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(text[from:to]))
	if to < len(text) {
		b.WriteString(ellipsis)
	}
	return b.String(), true
}

func runeIndex(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
