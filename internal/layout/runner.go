package layout

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/msalah0e/notegraph/internal/graph"
	"go.uber.org/zap"
)

// ErrRunning is returned when a run is requested for a generation that is
// already simulating.
var ErrRunning = errors.New("layout: simulation already running")

// Result describes how a run ended.
type Result struct {
	Steps  int
	Energy float64
	// Stale is set when a newer generation took over before the run finished.
	Stale bool
	// Settled is set when the run stopped early under SettleEnergy.
	Settled bool
}

// Runner owns the generation counter for one arena slot. A rebuild calls
// Supersede and starts a run for the returned generation; any older run
// notices on its next step and retires without touching the new arena.
type Runner struct {
	Params Params
	// Frame is the pause between steps. Zero runs steps back to back.
	Frame time.Duration
	Log   *zap.Logger

	gen    atomic.Uint64
	active atomic.Uint64
}

// NewRunner returns a Runner at generation 0.
func NewRunner(p Params, frame time.Duration, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Params: p, Frame: frame, Log: log}
}

// Generation returns the current generation.
func (r *Runner) Generation() uint64 { return r.gen.Load() }

// Supersede advances the generation and returns the new value.
func (r *Runner) Supersede() uint64 { return r.gen.Add(1) }

// Current reports whether gen is still the live generation.
func (r *Runner) Current(gen uint64) bool { return r.gen.Load() == gen }

// Running reports whether a run is in flight.
func (r *Runner) Running() bool { return r.active.Load() != 0 }

// Run simulates g for generation gen, calling frame after every step with g
// itself. Callers that publish g to readers must copy it inside frame.
// Run returns early when gen is superseded, when the kinetic energy drops
// below SettleEnergy, or when ctx is done.
func (r *Runner) Run(ctx context.Context, gen uint64, g *graph.Graph, cx, cy float64, frame func(*graph.Graph)) (Result, error) {
	if !r.Current(gen) {
		return Result{Stale: true}, nil
	}
	for {
		cur := r.active.Load()
		if cur == gen {
			return Result{}, ErrRunning
		}
		if cur > gen {
			return Result{Stale: true}, nil
		}
		if r.active.CompareAndSwap(cur, gen) {
			break
		}
	}
	defer r.active.CompareAndSwap(gen, 0)

	log := r.Log.With(zap.Uint64("generation", gen), zap.Int("nodes", g.Len()))
	log.Debug("simulation started")

	var ticker *time.Ticker
	if r.Frame > 0 {
		ticker = time.NewTicker(r.Frame)
		defer ticker.Stop()
	}

	p := r.Params
	var res Result
	for res.Steps < p.Iterations {
		if !r.Current(gen) {
			res.Stale = true
			log.Debug("simulation retired", zap.Int("steps", res.Steps))
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		Step(g, p, cx, cy, p.Temperature(res.Steps))
		res.Steps++
		res.Energy = KineticEnergy(g)
		if frame != nil {
			frame(g)
		}
		if p.SettleEnergy > 0 && res.Energy < p.SettleEnergy {
			res.Settled = true
			break
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-ticker.C:
			}
		}
	}

	log.Debug("simulation finished",
		zap.Int("steps", res.Steps),
		zap.Float64("energy", res.Energy),
		zap.Bool("settled", res.Settled))
	return res, nil
}

// Settle runs g to completion synchronously with a private Runner. It is
// the entry point for one-shot layouts such as exports.
func Settle(ctx context.Context, g *graph.Graph, p Params, cx, cy float64) (Result, error) {
	r := NewRunner(p, 0, nil)
	return r.Run(ctx, r.Supersede(), g, cx, cy, nil)
}
