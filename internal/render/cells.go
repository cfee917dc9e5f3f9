package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	layerEmpty = iota
	layerEdge
	layerGlow
	layerText
	layerNode
)

type cell struct {
	r     rune
	fg    color.NRGBA
	bold  bool
	layer int
}

// Cells is a Surface that rasterizes a pixel-space frame onto a character
// grid for terminal display. Each cell covers Width/cols by Height/rows
// pixels.
type Cells struct {
	w, h       int
	cols, rows int
	background color.Color

	grid  []cell
	dx    float64
	dy    float64
	stack [][2]float64
	blur  float64
}

// NewCells returns a cols x rows grid over a w x h pixel frame.
func NewCells(w, h, cols, rows int, background color.Color) *Cells {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c := &Cells{w: w, h: h, cols: cols, rows: rows, background: background}
	c.grid = make([]cell, cols*rows)
	return c
}

func (c *Cells) Width() int  { return c.w }
func (c *Cells) Height() int { return c.h }

// Size returns the grid dimensions in cells.
func (c *Cells) Size() (cols, rows int) { return c.cols, c.rows }

func (c *Cells) Clear() {
	for i := range c.grid {
		c.grid[i] = cell{}
	}
	c.dx, c.dy = 0, 0
	c.stack = c.stack[:0]
}

func (c *Cells) Save() { c.stack = append(c.stack, [2]float64{c.dx, c.dy}) }

func (c *Cells) Restore() {
	if n := len(c.stack); n > 0 {
		c.dx, c.dy = c.stack[n-1][0], c.stack[n-1][1]
		c.stack = c.stack[:n-1]
	}
}

func (c *Cells) Translate(dx, dy float64) {
	c.dx += dx
	c.dy += dy
}

func (c *Cells) Shadow(blur float64, _ color.Color) { c.blur = blur }

func (c *Cells) StrokeLine(x1, y1, x2, y2, _ float64, col color.Color) {
	sx, sy := c.scale()
	steps := int(math.Hypot((x2-x1)/sx, (y2-y1)/sy)*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.put(x1+(x2-x1)*t, y1+(y2-y1)*t, '·', col, false, layerEdge)
	}
}

func (c *Cells) FillCircle(x, y, r float64, col color.Color) {
	glyph := '●'
	if r < 7 {
		glyph = '◆'
	}
	bold := c.blur >= 20
	if c.blur >= 30 {
		sx, _ := c.scale()
		c.put(x-sx, y, '(', col, true, layerGlow)
		c.put(x+sx, y, ')', col, true, layerGlow)
	}
	c.put(x, y, glyph, col, bold, layerNode)
}

func (c *Cells) Text(x, y float64, s string, col color.Color) {
	sx, _ := c.scale()
	for i, r := range []rune(s) {
		c.put(x+float64(i)*sx, y, r, col, false, layerText)
	}
}

// PixelAt returns the pixel-space center of a cell.
func (c *Cells) PixelAt(col, row int) (float64, float64) {
	sx, sy := c.scale()
	return (float64(col) + 0.5) * sx, (float64(row) + 0.5) * sy
}

// Rune returns the glyph at a cell, or a space.
func (c *Cells) Rune(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return ' '
	}
	if r := c.grid[row*c.cols+col].r; r != 0 {
		return r
	}
	return ' '
}

// String renders the grid with lipgloss colors, one line per row.
func (c *Cells) String() string {
	var b strings.Builder
	bg := lipgloss.Color(Hex(c.background))
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := c.grid[row*c.cols : (row+1)*c.cols]
		for start := 0; start < len(line); {
			end := start + 1
			for end < len(line) && sameStyle(line[start], line[end]) {
				end++
			}
			var run strings.Builder
			for _, cl := range line[start:end] {
				if cl.r == 0 {
					run.WriteByte(' ')
				} else {
					run.WriteRune(cl.r)
				}
			}
			st := lipgloss.NewStyle().Background(bg)
			if line[start].layer != layerEmpty {
				st = st.Foreground(lipgloss.Color(Hex(line[start].fg))).Bold(line[start].bold)
			}
			b.WriteString(st.Render(run.String()))
			start = end
		}
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	if a.layer == layerEmpty || b.layer == layerEmpty {
		return a.layer == b.layer
	}
	return a.fg == b.fg && a.bold == b.bold
}

func (c *Cells) scale() (float64, float64) {
	return float64(c.w) / float64(c.cols), float64(c.h) / float64(c.rows)
}

func (c *Cells) put(x, y float64, r rune, col color.Color, bold bool, layer int) {
	sx, sy := c.scale()
	cx := int(math.Floor((x + c.dx) / sx))
	cy := int(math.Floor((y + c.dy) / sy))
	if cx < 0 || cy < 0 || cx >= c.cols || cy >= c.rows {
		return
	}
	cl := &c.grid[cy*c.cols+cx]
	if layer < cl.layer {
		return
	}
	*cl = cell{r: r, fg: Blend(col, c.background), bold: bold, layer: layer}
}
