package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newCamera() (*Camera, *clock) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	c := New(390, 390, 500*time.Millisecond)
	c.SetClock(clk.now)
	return c, clk
}

func TestEase(t *testing.T) {
	assert.Equal(t, 0.0, Ease(0))
	assert.Equal(t, 1.0, Ease(1))
	assert.Equal(t, 0.0, Ease(-2))
	assert.Equal(t, 1.0, Ease(3))
	assert.InDelta(t, 0.875, Ease(0.5), 1e-12)
}

func TestStartsAtOrigin(t *testing.T) {
	c, _ := newCamera()
	assert.Equal(t, Vec{}, c.Offset())
	assert.Equal(t, Vec{195, 195}, c.Center)
}

func TestFocusBoundaries(t *testing.T) {
	c, clk := newCamera()
	c.Focus(Vec{100, 50})
	target := Vec{95, 145}
	assert.Equal(t, target, c.Target())

	// t = 0 is the start offset
	assert.Equal(t, Vec{}, c.Offset())
	assert.True(t, c.Animating(clk.t))

	clk.advance(250 * time.Millisecond)
	mid := c.Offset()
	assert.InDelta(t, 95*0.875, mid.X, 1e-9)
	assert.InDelta(t, 145*0.875, mid.Y, 1e-9)

	// t >= 1 is the target exactly
	clk.advance(250 * time.Millisecond)
	assert.Equal(t, target, c.Offset())
	assert.False(t, c.Animating(clk.t))
	clk.advance(time.Hour)
	assert.Equal(t, target, c.Offset())
}

func TestSamplesUseOriginalStart(t *testing.T) {
	c, clk := newCamera()
	c.Focus(Vec{195 - 100, 195})
	start := clk.t

	// Sampling repeatedly must not compound the interpolation.
	for i := 0; i < 10; i++ {
		clk.advance(10 * time.Millisecond)
		c.Offset()
	}
	got := c.At(start.Add(100 * time.Millisecond))
	assert.InDelta(t, 100*Ease(0.2), got.X, 1e-9)
}

func TestRestartMidTransition(t *testing.T) {
	c, clk := newCamera()
	c.Focus(Vec{95, 195}) // target (100, 0)
	clk.advance(250 * time.Millisecond)
	here := c.Offset()

	c.Release()
	assert.Equal(t, here, c.Offset(), "restart continues from the sampled offset")

	clk.advance(500 * time.Millisecond)
	assert.Equal(t, Vec{}, c.Offset())
}

func TestReleaseAfterSettled(t *testing.T) {
	c, clk := newCamera()
	c.Focus(Vec{0, 0})
	clk.advance(time.Second)
	assert.Equal(t, Vec{195, 195}, c.Offset())

	c.Release()
	clk.advance(100 * time.Millisecond)
	got := c.Offset()
	assert.InDelta(t, 195*(1-Ease(0.2)), got.X, 1e-9)
}
