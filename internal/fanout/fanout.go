// Package fanout runs per-instrument work on a bounded errgroup pool.
// Each task writes only its own result slot; order is restored by index.
package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every index in [0, n) with at most workers in flight.
// A panicking task is converted by onPanic into its slot's value.
// Tasks never fail the group; the returned error is only ctx's error.
func Map[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) T, onPanic func(i int, err error) T) ([]T, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]T, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = onPanic(i, fmt.Errorf("panic: %v", r))
				}
			}()
			results[i] = fn(gctx, i)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
