// Package graph derives the note/tag graph of a group. The graph is rebuilt
// wholesale whenever the note collection changes; nothing here is persisted.
package graph

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/tags"
)

// Kind distinguishes the two node variants.
type Kind string

const (
	KindNote Kind = "note"
	KindTag  Kind = "tag"
)

// EdgeKind distinguishes the two edge variants.
type EdgeKind string

const (
	EdgeChronological EdgeKind = "chronological"
	EdgeTag           EdgeKind = "tag"
)

// TagPrefix is prepended to a tag label to form its node id.
const TagPrefix = "tag-"

// Node is a vertex with its simulated position and velocity.
type Node struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Kind   Kind    `json:"type"`
	NoteID int64   `json:"noteId,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
}

// Edge connects two nodes by id. S and T are the indices of the endpoints in
// Graph.Nodes and never change for the lifetime of a graph.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`
	S      int      `json:"-"`
	T      int      `json:"-"`
}

// Graph is an arena of nodes and the edges between them. Node order and edge
// indices are fixed once built; only positions and velocities change.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
}

// Stats holds summary counts.
type Stats struct {
	Notes              int
	Tags               int
	ChronologicalEdges int
	TagEdges           int
}

// NoteNodeID is the node id of a note.
func NoteNodeID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// TagNodeID is the node id of a tag label.
func TagNodeID(label string) string {
	return TagPrefix + label
}

// Seeder picks the starting position of a new node.
type Seeder interface {
	Seed() (x, y float64)
}

// RegionSeeder places nodes uniformly in the square [X, X+Size) x [Y, Y+Size).
type RegionSeeder struct {
	X, Y, Size float64
	rng        *rand.Rand
}

// NewRegionSeeder returns a seeder over the given square. A zero seed draws
// from a randomly seeded source.
func NewRegionSeeder(x, y, size float64, seed uint64) *RegionSeeder {
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	return &RegionSeeder{X: x, Y: y, Size: size, rng: rand.New(src)}
}

func (s *RegionSeeder) Seed() (float64, float64) {
	return s.X + s.rng.Float64()*s.Size, s.Y + s.rng.Float64()*s.Size
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
		index: make(map[string]int),
	}
}

// Build derives the graph of a note collection. Notes are ordered by creation
// time (ties keep input order) and chained chronologically; every distinct tag
// becomes one tag node linked from each note that mentions it.
func Build(list []notes.Note, seeder Seeder) *Graph {
	sorted := make([]notes.Note, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})

	g := New()
	for i, n := range sorted {
		noteIdx := g.addNode(Node{
			ID:     NoteNodeID(n.ID),
			Title:  n.Title,
			Kind:   KindNote,
			NoteID: n.ID,
		}, seeder)

		if i > 0 {
			g.addEdge(NoteNodeID(sorted[i-1].ID), NoteNodeID(n.ID), EdgeChronological)
		}

		for _, label := range tags.Extract(n.Content) {
			id := TagNodeID(label)
			if _, ok := g.index[id]; !ok {
				g.addNode(Node{ID: id, Title: "#" + label, Kind: KindTag}, seeder)
			}
			g.addEdge(g.Nodes[noteIdx].ID, id, EdgeTag)
		}
	}
	return g
}

func (g *Graph) addNode(n Node, seeder Seeder) int {
	if idx, ok := g.index[n.ID]; ok {
		// Colliding note ids share one node; the store rejects this case.
		return idx
	}
	if seeder != nil {
		n.X, n.Y = seeder.Seed()
	}
	n.VX, n.VY = 0, 0
	g.Nodes = append(g.Nodes, n)
	idx := len(g.Nodes) - 1
	g.index[n.ID] = idx
	return idx
}

func (g *Graph) addEdge(source, target string, kind EdgeKind) {
	g.Edges = append(g.Edges, Edge{
		Source: source,
		Target: target,
		Kind:   kind,
		S:      g.index[source],
		T:      g.index[target],
	})
}

// Index returns the arena index of the node with the given id.
func (g *Graph) Index(id string) (int, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	idx, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[idx], true
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Clone copies the node positions. Edges and the id index are immutable and
// shared with the original.
func (g *Graph) Clone() *Graph {
	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	return &Graph{Nodes: nodes, Edges: g.Edges, index: g.index}
}

// GetStats returns summary counts.
func (g *Graph) GetStats() Stats {
	var s Stats
	for _, n := range g.Nodes {
		if n.Kind == KindTag {
			s.Tags++
		} else {
			s.Notes++
		}
	}
	for _, e := range g.Edges {
		if e.Kind == EdgeTag {
			s.TagEdges++
		} else {
			s.ChronologicalEdges++
		}
	}
	return s
}

// ─── Export ───

// ExportJSON returns nodes (with current positions) and edges as
// pretty-printed JSON.
func (g *Graph) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// ExportDOT returns the graph in Graphviz DOT format. Node positions are
// written as pinned pos attributes so neato can reproduce the layout.
func (g *Graph) ExportDOT(name string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("graph %q {\n", name))
	b.WriteString("  node [shape=circle, fixedsize=true, width=0.2, fontsize=10];\n\n")

	for _, n := range g.Nodes {
		color := "black"
		if n.Kind == KindTag {
			color = "deepskyblue"
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q, color=%s, pos=\"%.2f,%.2f!\"];\n",
			n.ID, n.Title, color, n.X, -n.Y))
	}

	b.WriteString("\n")
	for _, e := range g.Edges {
		style := "dashed"
		if e.Kind == EdgeTag {
			style = "solid"
		}
		b.WriteString(fmt.Sprintf("  %q -- %q [style=%s];\n", e.Source, e.Target, style))
	}

	b.WriteString("}\n")
	return b.String()
}
