// Package camera animates the viewport offset toward a focused node.
package camera

import (
	"math"
	"sync"
	"time"
)

// DefaultDuration is the length of a focus transition.
const DefaultDuration = 500 * time.Millisecond

// Vec is a 2D point or offset.
type Vec struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v * k.
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Ease is the cubic ease-out curve 1 - (1-t)^3 with t clamped to [0, 1].
func Ease(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return 1 - math.Pow(1-t, 3)
}

// Camera holds one offset and at most one transition. It is safe for
// concurrent use.
type Camera struct {
	Duration time.Duration
	// Center is the viewport center used to compute a focus target.
	Center Vec

	mu      sync.Mutex
	start   Vec
	target  Vec
	startAt time.Time
	moving  bool
	now     func() time.Time
}

// New returns a camera at the origin for a viewport of the given size.
func New(width, height float64, duration time.Duration) *Camera {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Camera{
		Duration: duration,
		Center:   Vec{width / 2, height / 2},
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (c *Camera) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Focus starts a transition that brings the node at pos to the viewport
// center.
func (c *Camera) Focus(pos Vec) {
	c.moveTo(c.Center.Sub(pos))
}

// Release starts a transition back to the origin.
func (c *Camera) Release() {
	c.moveTo(Vec{})
}

// moveTo restarts the transition from the currently sampled offset.
func (c *Camera) moveTo(target Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.start = c.sampleLocked(now)
	c.target = target
	c.startAt = now
	c.moving = true
}

// Offset samples the offset at the camera clock's current time.
func (c *Camera) Offset() Vec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampleLocked(c.now())
}

// At samples the offset at time now.
func (c *Camera) At(now time.Time) Vec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampleLocked(now)
}

// Target returns where the current transition ends.
func (c *Camera) Target() Vec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Animating reports whether a transition is still in progress at now.
func (c *Camera) Animating(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moving && now.Sub(c.startAt) < c.Duration
}

func (c *Camera) sampleLocked(now time.Time) Vec {
	if !c.moving {
		return c.target
	}
	t := float64(now.Sub(c.startAt)) / float64(c.Duration)
	if t >= 1 {
		c.moving = false
		c.start = c.target
		return c.target
	}
	return c.start.Add(c.target.Sub(c.start).Scale(Ease(t)))
}
