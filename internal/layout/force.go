// Package layout runs the force simulation that settles a note graph.
package layout

import (
	"math"

	"github.com/msalah0e/notegraph/internal/graph"
)

// Params are the simulation constants. The zero value is not useful; start
// from DefaultParams.
type Params struct {
	Iterations   int     `toml:"iterations"`
	Center       float64 `toml:"center"`        // pull toward the viewport center
	Damping      float64 `toml:"damping"`       // velocity multiplier per step
	Spring       float64 `toml:"spring"`        // link stiffness
	ChronoLength float64 `toml:"chrono_length"` // rest length of chronological edges
	TagLength    float64 `toml:"tag_length"`    // rest length of tag edges
	Repulsion    float64 `toml:"repulsion"`     // inverse-square pair repulsion
	MinDistance  float64 `toml:"min_distance"`  // floor for pair distances
	MaxSpeed     float64 `toml:"max_speed"`     // per-step displacement cap; 0 disables
	Cooling      float64 `toml:"cooling"`       // trailing fraction of the run over which MaxSpeed cools
	SettleEnergy float64 `toml:"settle_energy"` // stop early below this kinetic energy; 0 disables
}

// DefaultParams returns the reference constants.
func DefaultParams() Params {
	return Params{
		Iterations:   300,
		Center:       0.0005,
		Damping:      0.92,
		Spring:       0.05,
		ChronoLength: 50,
		TagLength:    40,
		Repulsion:    300,
		MinDistance:  1,
		MaxSpeed:     10,
		Cooling:      0.25,
	}
}

// RestLength returns the target length for an edge kind.
func (p Params) RestLength(kind graph.EdgeKind) float64 {
	if kind == graph.EdgeChronological {
		return p.ChronoLength
	}
	return p.TagLength
}

// Temperature returns the speed-cap multiplier for step i of a run: 1 for
// most of the run, then falling linearly over the trailing Cooling fraction.
// It never reaches zero.
func (p Params) Temperature(i int) float64 {
	if p.Cooling <= 0 || p.Iterations <= 0 {
		return 1
	}
	window := float64(p.Iterations) * p.Cooling
	remaining := float64(p.Iterations - i)
	if remaining >= window {
		return 1
	}
	if remaining < 1 {
		remaining = 1
	}
	return remaining / window
}

// Step advances every node of g by one explicit Euler step toward (cx, cy).
// temperature scales the speed cap; pass 1 outside a bounded run.
func Step(g *graph.Graph, p Params, cx, cy, temperature float64) {
	nodes := g.Nodes

	for i := range nodes {
		n := &nodes[i]
		n.VX += (cx - n.X) * p.Center
		n.VY += (cy - n.Y) * p.Center
		n.VX *= p.Damping
		n.VY *= p.Damping
	}

	for _, e := range g.Edges {
		a, b := &nodes[e.S], &nodes[e.T]
		if e.S == e.T {
			continue
		}
		dx := b.X - a.X
		dy := b.Y - a.Y
		d := p.distance(dx, dy)
		f := (d - p.RestLength(e.Kind)) * p.Spring
		fx := dx / d * f
		fy := dy / d * f
		a.VX += fx
		a.VY += fy
		b.VX -= fx
		b.VY -= fy
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := &nodes[i], &nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d := p.distance(dx, dy)
			if dx == 0 && dy == 0 {
				// Coincident points have no axis; split them along a fixed
				// direction derived from their indices.
				dx, dy = separation(i, j)
			}
			f := p.Repulsion / (d * d)
			fx := dx / d * f
			fy := dy / d * f
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}

	limit := p.MaxSpeed * temperature
	for i := range nodes {
		n := &nodes[i]
		if p.MaxSpeed > 0 {
			if v := math.Hypot(n.VX, n.VY); v > limit {
				n.VX *= limit / v
				n.VY *= limit / v
			}
		}
		n.X += n.VX
		n.Y += n.VY
	}
}

func (p Params) distance(dx, dy float64) float64 {
	floor := p.MinDistance
	if floor <= 0 {
		floor = 1
	}
	if d := math.Sqrt(dx*dx + dy*dy); d > floor {
		return d
	}
	return floor
}

func separation(i, j int) (float64, float64) {
	angle := float64(i*31+j*17) * 0.618
	return math.Cos(angle), math.Sin(angle)
}

// KineticEnergy returns the sum of squared velocities.
func KineticEnergy(g *graph.Graph) float64 {
	var e float64
	for _, n := range g.Nodes {
		e += n.VX*n.VX + n.VY*n.VY
	}
	return e
}
