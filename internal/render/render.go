// Package render draws a note graph frame onto a Surface.
package render

import (
	"image/color"
	"math"

	"github.com/msalah0e/notegraph/internal/camera"
	"github.com/msalah0e/notegraph/internal/graph"
)

// Surface is a drawable area of known pixel size. Coordinates are in pixels
// after any translation pushed with Translate.
type Surface interface {
	Width() int
	Height() int
	Clear()
	Save()
	Restore()
	Translate(dx, dy float64)
	// Shadow sets the glow applied to subsequent fills. A zero blur disables it.
	Shadow(blur float64, c color.Color)
	StrokeLine(x1, y1, x2, y2, width float64, c color.Color)
	FillCircle(x, y, r float64, c color.Color)
	// Text draws s left-aligned and vertically centered on (x, y).
	Text(x, y float64, s string, c color.Color)
}

// Scene is everything one frame depends on. Edge S/T indices refer to Nodes.
type Scene struct {
	Nodes     []graph.Node
	Edges     []graph.Edge
	Offset    camera.Vec
	Hovered   string
	Focused   string
	Highlight map[string]bool
}

// Dimmed reports whether n is faded out by an active highlight set. Tags
// never dim.
func (sc Scene) Dimmed(n graph.Node) bool {
	return len(sc.Highlight) > 0 && n.Kind == graph.KindNote && !sc.Highlight[n.ID]
}

// Draw renders sc onto s.
func Draw(s Surface, sc Scene, st Style) {
	s.Clear()
	s.Save()
	defer s.Restore()
	s.Translate(sc.Offset.X, sc.Offset.Y)

	for _, e := range sc.Edges {
		if e.S < 0 || e.T < 0 || e.S >= len(sc.Nodes) || e.T >= len(sc.Nodes) {
			continue
		}
		a, b := sc.Nodes[e.S], sc.Nodes[e.T]
		c := st.TagEdge
		if e.Kind == graph.EdgeChronological {
			c = st.ChronoEdge
		}
		s.StrokeLine(a.X, a.Y, b.X, b.Y, st.LineWidth, c)
	}

	for _, n := range sc.Nodes {
		focused := n.ID == sc.Focused
		hovered := n.ID == sc.Hovered
		dimmed := sc.Dimmed(n)
		radius := st.Radius(n.Kind)

		switch {
		case focused:
			s.Shadow(st.FocusGlow, st.nodeColor(n.Kind))
		case hovered:
			s.Shadow(st.HoverGlow, st.nodeColor(n.Kind))
		case !dimmed:
			s.Shadow(st.AmbientGlow, st.nodeColor(n.Kind))
		default:
			s.Shadow(0, nil)
		}

		fill := st.nodeColor(n.Kind)
		if dimmed {
			fill = st.Dimmed
		}
		r := radius
		if focused {
			r += st.FocusGrow
		}
		s.FillCircle(n.X, n.Y, r, fill)
		s.Shadow(0, nil)

		label := st.NoteLabel
		switch {
		case dimmed:
			label = st.Dimmed
		case n.Kind == graph.KindTag:
			label = st.Tag
		}
		s.Text(n.X+radius+st.LabelGap, n.Y, Label(n.Title, st.LabelBudget), label)
	}
}

// Label truncates title to budget runes, marking the cut with "...".
func Label(title string, budget int) string {
	r := []rune(title)
	if budget <= 0 || len(r) <= budget {
		return title
	}
	return string(r[:budget]) + "..."
}

// Cursor is the pointer shape a host should show.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorPointer Cursor = "pointer"
)

// Pick hit-tests a pointer at surface coordinates (px, py) against node
// centers, undoing the camera offset first. The first node within its radius
// plus the pick padding wins.
func Pick(nodes []graph.Node, offset camera.Vec, px, py float64, st Style) (string, Cursor) {
	x := px - offset.X
	y := py - offset.Y
	for _, n := range nodes {
		if math.Hypot(n.X-x, n.Y-y) <= st.Radius(n.Kind)+st.PickPadding {
			return n.ID, CursorPointer
		}
	}
	return "", CursorDefault
}
