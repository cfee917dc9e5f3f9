package parallel

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is used when a non-positive concurrency limit is given.
const DefaultLimit = 4

// Result holds the outcome of one item.
type Result[T any] struct {
	Value   T
	Err     error
	Elapsed time.Duration
}

// OK reports whether the item succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Map runs fn on every item with at most limit calls in flight.
// Returns results in the order items were submitted. A failing item never
// cancels the others; items not yet started when ctx is done get ctx's error.
func Map[In, Out any](ctx context.Context, items []In, limit int, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if limit < 1 {
		limit = DefaultLimit
	}

	results := make([]Result[Out], len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result[Out]{Err: err}
				return nil
			}
			start := time.Now()
			v, err := fn(gctx, item)
			results[i] = Result[Out]{Value: v, Err: err, Elapsed: time.Since(start)}
			return nil // never fail the group; collect results instead
		})
	}

	_ = g.Wait()
	return results
}

// Values returns the successful values in submission order and the errors of
// the failed items.
func Values[T any](results []Result[T]) ([]T, []error) {
	vals := make([]T, 0, len(results))
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		vals = append(vals, r.Value)
	}
	return vals, errs
}
