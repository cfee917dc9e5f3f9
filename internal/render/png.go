package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

// Raster is a Surface backed by an in-memory RGBA canvas.
type Raster struct {
	dc         *gg.Context
	background color.Color
	blur       float64
	glow       color.Color
}

// NewRaster returns a w x h canvas cleared to background.
func NewRaster(w, h int, background color.Color) *Raster {
	r := &Raster{dc: gg.NewContext(w, h), background: background}
	r.Clear()
	return r
}

func (r *Raster) Width() int  { return r.dc.Width() }
func (r *Raster) Height() int { return r.dc.Height() }

func (r *Raster) Clear() {
	r.dc.SetColor(r.background)
	r.dc.Clear()
}

func (r *Raster) Save()    { r.dc.Push() }
func (r *Raster) Restore() { r.dc.Pop() }

func (r *Raster) Translate(dx, dy float64) { r.dc.Translate(dx, dy) }

func (r *Raster) Shadow(blur float64, c color.Color) {
	r.blur, r.glow = blur, c
}

func (r *Raster) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

// FillCircle approximates the glow with translucent rings spreading over half
// the blur distance.
func (r *Raster) FillCircle(x, y, radius float64, c color.Color) {
	if r.blur > 0 && r.glow != nil {
		g := color.NRGBAModel.Convert(r.glow).(color.NRGBA)
		rings := int(r.blur/5) + 1
		for i := rings; i >= 1; i-- {
			spread := r.blur / 2 * float64(i) / float64(rings)
			g.A = uint8(60 * (1 - float64(i)/float64(rings+1)))
			r.dc.SetColor(g)
			r.dc.DrawCircle(x, y, radius+spread)
			r.dc.Fill()
		}
	}
	r.dc.SetColor(c)
	r.dc.DrawCircle(x, y, radius)
	r.dc.Fill()
}

func (r *Raster) Text(x, y float64, s string, c color.Color) {
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(s, x, y, 0, 0.5)
}

// Image returns the canvas.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the canvas as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

// SavePNG writes the canvas to a PNG file.
func (r *Raster) SavePNG(path string) error { return r.dc.SavePNG(path) }
