package render

import (
	"fmt"
	"image/color"

	"github.com/msalah0e/notegraph/internal/graph"
)

// Style holds the visual constants of a frame.
type Style struct {
	Background color.Color
	Note       color.Color
	Tag        color.Color
	ChronoEdge color.Color
	TagEdge    color.Color
	Dimmed     color.Color
	NoteLabel  color.Color

	NoteRadius float64
	TagRadius  float64
	FocusGrow  float64

	FocusGlow   float64
	HoverGlow   float64
	AmbientGlow float64

	LineWidth   float64
	LabelGap    float64
	LabelBudget int
	PickPadding float64
}

// DefaultStyle returns the dark theme.
func DefaultStyle() Style {
	return Style{
		Background: color.NRGBA{0x0b, 0x12, 0x20, 0xff},
		Note:       color.NRGBA{0xff, 0xff, 0xff, 0xff},
		Tag:        color.NRGBA{0x64, 0xc8, 0xff, 0xff},
		ChronoEdge: alpha(255, 255, 255, 0.15),
		TagEdge:    alpha(100, 200, 255, 0.2),
		Dimmed:     alpha(255, 255, 255, 0.2),
		NoteLabel:  alpha(255, 255, 255, 0.8),

		NoteRadius: 8,
		TagRadius:  6,
		FocusGrow:  2,

		FocusGlow:   30,
		HoverGlow:   20,
		AmbientGlow: 10,

		LineWidth:   1,
		LabelGap:    5,
		LabelBudget: 15,
		PickPadding: 5,
	}
}

// Radius returns the base node radius for a kind.
func (st Style) Radius(k graph.Kind) float64 {
	if k == graph.KindTag {
		return st.TagRadius
	}
	return st.NoteRadius
}

func (st Style) nodeColor(k graph.Kind) color.Color {
	if k == graph.KindTag {
		return st.Tag
	}
	return st.Note
}

func alpha(r, g, b uint8, a float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}
}

// Blend composites c over bg and returns an opaque color.
func Blend(c, bg color.Color) color.NRGBA {
	if c == nil {
		c = color.Transparent
	}
	fg := color.NRGBAModel.Convert(c).(color.NRGBA)
	back := color.NRGBAModel.Convert(bg).(color.NRGBA)
	a := float64(fg.A) / 255
	mix := func(f, b uint8) uint8 {
		return uint8(float64(f)*a + float64(b)*(1-a) + 0.5)
	}
	return color.NRGBA{R: mix(fg.R, back.R), G: mix(fg.G, back.G), B: mix(fg.B, back.B), A: 0xff}
}

// Hex formats c as #rrggbb, dropping alpha.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
