package expire

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// forEach runs fn(item) for every item, bounded to at most concurrency
// goroutines at once, using errgroup with a semaphore.Weighted (pkg/pipeline
// instead starts a fixed number of Consumer goroutines). A single item's
// error is logged by fn itself (per spec.md §4.7, "any unexpected failure
// is logged and the image is skipped") and never aborts the others; forEach
// only returns an error if ctx is cancelled.
func forEach[T any](ctx context.Context, concurrency int, items []T, fn func(context.Context, T)) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	g, ctx := errgroup.WithContext(ctx)

	for _, item := range items {
		item := item
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			fn(ctx, item)
			return nil
		})
	}
	return g.Wait()
}
