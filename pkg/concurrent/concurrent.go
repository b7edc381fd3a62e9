package concurrent

import (
	"context"

	"github.com/zeusync/composer/pkg/sequence"
	"golang.org/x/sync/errgroup"
)

// Concurrent runs action for each element of the iterator in its own goroutine,
// at most limit at a time (limit <= 0 means unbounded). It waits for all of them
// and returns the first error; the context passed to action is cancelled once
// any action fails.
func Concurrent[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	errGroup, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		errGroup.SetLimit(limit)
	}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		errGroup.Go(func() error {
			return action(gctx, value)
		})
	}

	return errGroup.Wait()
}

// Map applies mapFn to every element concurrently and returns the results in
// the iterator's order. On error the partial results are discarded.
func Map[T any, R any](ctx context.Context, i *sequence.Iterator[T], limit int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	items := i.Collect()
	out := make([]R, len(items))
	indexes := make([]int, len(items))
	for idx := range indexes {
		indexes[idx] = idx
	}

	err := Concurrent(ctx, sequence.From(indexes), limit, func(ctx context.Context, idx int) error {
		r, err := mapFn(ctx, items[idx])
		if err != nil {
			return err
		}
		out[idx] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
