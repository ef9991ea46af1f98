// Package graph projects an owner's notes and links into a node/edge view.
// Projections are computed per request and never stored.
package graph

import (
	"sort"

	"github.com/jly61/knowledge-and-blog/internal/models"
)

const (
	// DefaultColor is used when neither the category nor a tag has a color.
	DefaultColor = "#3b82f6"

	minNodeSize = 20
	maxNodeSize = 50
)

// Node is a note in the graph view.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Title    string   `json:"title"`
	Color    string   `json:"color"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags"`
	Size     int      `json:"size"`
}

// Edge is a link between two visible nodes.
type Edge struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Arrows string `json:"arrows"`
	Value  int    `json:"value"`
}

// Data is a projected graph.
type Data struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Options filters a projection. Empty fields match everything.
type Options struct {
	CategoryID   string
	TagIDs       []string
	DefaultColor string
}

// Project builds the graph for notes, which must all belong to one owner.
// Node order follows the input order.
func Project(notes []models.GraphNote, opts Options) Data {
	fallback := opts.DefaultColor
	if fallback == "" {
		fallback = DefaultColor
	}
	wantTags := make(map[string]bool, len(opts.TagIDs))
	for _, id := range opts.TagIDs {
		wantTags[id] = true
	}

	data := Data{Nodes: make([]Node, 0, len(notes)), Edges: []Edge{}}
	visible := make(map[string]int, len(notes))
	for _, n := range notes {
		if !matches(n, opts.CategoryID, wantTags) {
			continue
		}
		visible[n.ID] = len(data.Nodes)
		data.Nodes = append(data.Nodes, newNode(n, fallback))
	}

	seen := make(map[[2]string]bool)
	for _, n := range notes {
		if _, ok := visible[n.ID]; !ok {
			continue
		}
		for _, l := range n.Outgoing {
			if _, ok := visible[l.TargetID]; !ok {
				continue
			}
			key := [2]string{l.SourceID, l.TargetID}
			if seen[key] {
				continue
			}
			seen[key] = true
			data.Edges = append(data.Edges, Edge{
				ID:     "edge-" + l.ID,
				From:   l.SourceID,
				To:     l.TargetID,
				Arrows: "to",
				Value:  1,
			})
		}
	}
	return data
}

func matches(n models.GraphNote, categoryID string, tags map[string]bool) bool {
	if categoryID != "" && (n.Category == nil || n.Category.ID != categoryID) {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range n.Tags {
		if tags[t.ID] {
			return true
		}
	}
	return false
}

func newNode(n models.GraphNote, fallback string) Node {
	tags := append([]models.Tag(nil), n.Tags...)
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	node := Node{
		ID:    n.ID,
		Label: n.Title,
		Title: n.Title,
		Color: fallback,
		Tags:  make([]string, 0, len(tags)),
		Size:  NodeSize(len(n.Outgoing) + n.IncomingCount),
	}
	for _, t := range tags {
		node.Tags = append(node.Tags, t.Name)
	}

	switch {
	case n.Category != nil && n.Category.Color != "":
		node.Color = n.Category.Color
	case len(tags) > 0 && tags[0].Color != "":
		node.Color = tags[0].Color
	}
	if n.Category != nil {
		node.Category = n.Category.Name
	}
	return node
}

// NodeSize maps a link count (outgoing plus incoming rows) to a node size.
func NodeSize(linkCount int) int {
	size := minNodeSize + 2*linkCount
	if size > maxNodeSize {
		return maxNodeSize
	}
	if size < minNodeSize {
		return minNodeSize
	}
	return size
}
