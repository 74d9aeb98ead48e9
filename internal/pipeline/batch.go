// Package pipeline runs independent batch items with bounded concurrency and
// collects one result per item in input order.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is used when a non-positive concurrency limit is given.
const DefaultLimit = 8

// Result is the outcome of one item. Index is the item's position in the input.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// OK reports whether the item succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Process calls fn for every item, at most limit at a time. A failing or
// panicking item only affects its own result. Items not started before ctx is
// done are recorded with ctx.Err(). The returned slice always has len(items)
// entries.
func Process[I, O any](ctx context.Context, items []I, limit int, fn func(ctx context.Context, item I) (O, error)) []Result[O] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]Result[O], len(items))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		results[i].Index = i

		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			results[i].Value, results[i].Err = run(ctx, item, fn)
			return nil
		})
	}

	_ = g.Wait()

	return results
}

func run[I, O any](ctx context.Context, item I, fn func(ctx context.Context, item I) (O, error)) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("item processing panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return out, err
	}

	return fn(ctx, item)
}

// Count folds a completed result set into success and error totals.
func Count[T any](results []Result[T]) (success, failed int) {
	for _, r := range results {
		if r.OK() {
			success++
		} else {
			failed++
		}
	}
	return success, failed
}
