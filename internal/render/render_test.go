package render

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/msalah0e/notegraph/internal/camera"
	"github.com/msalah0e/notegraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	kind  string
	x, y  float64
	r     float64
	blur  float64
	text  string
	color color.Color
}

// recorder is a Surface that logs calls in order.
type recorder struct {
	ops  []op
	blur float64
}

func (r *recorder) Width() int  { return 390 }
func (r *recorder) Height() int { return 390 }
func (r *recorder) Clear()      { r.ops = append(r.ops, op{kind: "clear"}) }
func (r *recorder) Save()       { r.ops = append(r.ops, op{kind: "save"}) }
func (r *recorder) Restore()    { r.ops = append(r.ops, op{kind: "restore"}) }

func (r *recorder) Translate(dx, dy float64) {
	r.ops = append(r.ops, op{kind: "translate", x: dx, y: dy})
}

func (r *recorder) Shadow(blur float64, _ color.Color) { r.blur = blur }

func (r *recorder) StrokeLine(x1, y1, _, _, _ float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "line", x: x1, y: y1, color: c})
}

func (r *recorder) FillCircle(x, y, radius float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "circle", x: x, y: y, r: radius, blur: r.blur, color: c})
}

func (r *recorder) Text(x, y float64, s string, c color.Color) {
	r.ops = append(r.ops, op{kind: "text", x: x, y: y, text: s, color: c})
}

func (r *recorder) of(kind string) []op {
	var out []op
	for _, o := range r.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func scene() Scene {
	nodes := []graph.Node{
		{ID: "1", Title: "first note", Kind: graph.KindNote, X: 10, Y: 10},
		{ID: "2", Title: "a rather long note title", Kind: graph.KindNote, X: 60, Y: 10},
		{ID: "tag-work", Title: "#work", Kind: graph.KindTag, X: 30, Y: 50},
	}
	edges := []graph.Edge{
		{Source: "1", Target: "2", Kind: graph.EdgeChronological, S: 0, T: 1},
		{Source: "1", Target: "tag-work", Kind: graph.EdgeTag, S: 0, T: 2},
	}
	return Scene{Nodes: nodes, Edges: edges}
}

func TestDrawOrder(t *testing.T) {
	st := DefaultStyle()
	sc := scene()
	sc.Offset = camera.Vec{X: 5, Y: -3}
	rec := &recorder{}
	Draw(rec, sc, st)

	require.GreaterOrEqual(t, len(rec.ops), 4)
	assert.Equal(t, "clear", rec.ops[0].kind)
	assert.Equal(t, "save", rec.ops[1].kind)
	assert.Equal(t, op{kind: "translate", x: 5, y: -3}, rec.ops[2])
	assert.Equal(t, "restore", rec.ops[len(rec.ops)-1].kind)

	// edges come before any node
	assert.Equal(t, "line", rec.ops[3].kind)
	assert.Equal(t, "line", rec.ops[4].kind)
	assert.Equal(t, st.ChronoEdge, rec.ops[3].color)
	assert.Equal(t, st.TagEdge, rec.ops[4].color)
}

func TestDrawNodeStates(t *testing.T) {
	st := DefaultStyle()
	sc := scene()
	sc.Focused = "1"
	sc.Hovered = "tag-work"
	rec := &recorder{}
	Draw(rec, sc, st)

	circles := rec.of("circle")
	require.Len(t, circles, 3)

	assert.Equal(t, 10.0, circles[0].r, "focused note grows by 2")
	assert.Equal(t, 30.0, circles[0].blur)
	assert.Equal(t, 8.0, circles[1].r)
	assert.Equal(t, 10.0, circles[1].blur, "ambient glow")
	assert.Equal(t, 6.0, circles[2].r)
	assert.Equal(t, 20.0, circles[2].blur, "hovered")
	assert.Equal(t, st.Tag, circles[2].color)
}

func TestDrawDimming(t *testing.T) {
	st := DefaultStyle()
	sc := scene()
	sc.Highlight = map[string]bool{"1": true}
	rec := &recorder{}
	Draw(rec, sc, st)

	circles := rec.of("circle")
	require.Len(t, circles, 3)
	assert.Equal(t, st.Note, circles[0].color)
	assert.Equal(t, st.Dimmed, circles[1].color)
	assert.Equal(t, 0.0, circles[1].blur, "dimmed nodes have no glow")
	assert.Equal(t, st.Tag, circles[2].color, "tags never dim")

	texts := rec.of("text")
	assert.Equal(t, st.NoteLabel, texts[0].color)
	assert.Equal(t, st.Dimmed, texts[1].color)
	assert.Equal(t, st.Tag, texts[2].color)
}

func TestDrawWithoutHighlightDimsNothing(t *testing.T) {
	st := DefaultStyle()
	for _, hl := range []map[string]bool{nil, {}} {
		sc := scene()
		sc.Highlight = hl
		rec := &recorder{}
		Draw(rec, sc, st)
		for _, c := range rec.of("circle") {
			assert.NotEqual(t, st.Dimmed, c.color)
		}
	}
}

func TestDrawLabels(t *testing.T) {
	st := DefaultStyle()
	sc := scene()
	sc.Focused = "1"
	rec := &recorder{}
	Draw(rec, sc, st)

	texts := rec.of("text")
	require.Len(t, texts, 3)
	assert.Equal(t, "first note", texts[0].text)
	assert.Equal(t, 10.0+8+5, texts[0].x, "label gap uses the base radius")
	assert.Equal(t, "a rather long n...", texts[1].text)
	assert.Equal(t, 30.0+6+5, texts[2].x)
	assert.Equal(t, 50.0, texts[2].y)
}

func TestDrawSkipsDanglingEdges(t *testing.T) {
	sc := scene()
	sc.Edges = append(sc.Edges, graph.Edge{S: 0, T: 9})
	rec := &recorder{}
	Draw(rec, sc, DefaultStyle())
	assert.Len(t, rec.of("line"), 2)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "short", Label("short", 15))
	assert.Equal(t, "exactly fifteen", Label("exactly fifteen", 15))
	assert.Equal(t, "sixteen charact...", Label("sixteen characte", 15))
	assert.Equal(t, "ünïcödé...", Label("ünïcödé title", 7))
	assert.Equal(t, "anything", Label("anything", 0))
}

func TestPick(t *testing.T) {
	st := DefaultStyle()
	nodes := scene().Nodes

	id, cur := Pick(nodes, camera.Vec{}, 10, 10, st)
	assert.Equal(t, "1", id)
	assert.Equal(t, CursorPointer, cur)

	// note radius 8 + padding 5
	id, _ = Pick(nodes, camera.Vec{}, 23, 10, st)
	assert.Equal(t, "1", id)
	id, cur = Pick(nodes, camera.Vec{}, 23.5, 10, st)
	assert.Empty(t, id)
	assert.Equal(t, CursorDefault, cur)

	// tag radius 6 + padding 5
	id, _ = Pick(nodes, camera.Vec{}, 30, 61, st)
	assert.Equal(t, "tag-work", id)
	id, _ = Pick(nodes, camera.Vec{}, 30, 62, st)
	assert.Empty(t, id)
}

func TestPickUndoesOffset(t *testing.T) {
	nodes := scene().Nodes
	id, _ := Pick(nodes, camera.Vec{X: 100, Y: 100}, 110, 110, DefaultStyle())
	assert.Equal(t, "1", id)
	id, _ = Pick(nodes, camera.Vec{X: 100, Y: 100}, 10, 10, DefaultStyle())
	assert.Empty(t, id)
}

func TestBlendAndHex(t *testing.T) {
	bg := color.NRGBA{0, 0, 0, 255}
	assert.Equal(t, "#ffffff", Hex(Blend(color.NRGBA{255, 255, 255, 255}, bg)))
	assert.Equal(t, "#333333", Hex(Blend(alpha(255, 255, 255, 0.2), bg)))
	assert.Equal(t, "#000000", Hex(Blend(nil, bg)))
}

func TestRaster(t *testing.T) {
	st := DefaultStyle()
	r := NewRaster(390, 390, st.Background)
	Draw(r, scene(), st)
	assert.Equal(t, 390, r.Width())

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 390, img.Bounds().Dx())

	// node centers are filled with the node color
	got := color.NRGBAModel.Convert(img.At(10, 10)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, got)
	corner := color.NRGBAModel.Convert(img.At(389, 389)).(color.NRGBA)
	assert.Equal(t, st.Background, corner)
}

func TestCells(t *testing.T) {
	st := DefaultStyle()
	c := NewCells(390, 390, 39, 39, st.Background)
	Draw(c, scene(), st)

	assert.Equal(t, '●', c.Rune(1, 1))
	assert.Equal(t, '●', c.Rune(6, 1))
	assert.Equal(t, '◆', c.Rune(3, 5))
	assert.Equal(t, 'f', c.Rune(2, 1), "label starts right of the node")
	assert.Equal(t, ' ', c.Rune(38, 38))

	x, y := c.PixelAt(1, 1)
	assert.Equal(t, 15.0, x)
	assert.Equal(t, 15.0, y)

	out := c.String()
	assert.Equal(t, 39, len(strings.Split(out, "\n")))
	assert.Contains(t, out, "●")
}

func TestCellsTranslate(t *testing.T) {
	st := DefaultStyle()
	c := NewCells(390, 390, 39, 39, st.Background)
	sc := scene()
	sc.Offset = camera.Vec{X: 100, Y: 0}
	Draw(c, sc, st)
	assert.Equal(t, '●', c.Rune(11, 1))
	assert.NotEqual(t, '●', c.Rune(1, 1))
}
