package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/status"
)

// Run wires a Producer and liveWorker Consumers around a buffered job
// channel and waits for all of them to finish, playing the role the
// original coordinator process's join() played over its worker pool
// (spec.md §5; §9 Design Notes redesign). Reporter's Run is started and
// guaranteed to be closed even if the pipeline returns early.
func Run(ctx context.Context, producer *Producer, backup driver.Driver, liveWorker int, lockDir string, reporter *status.Reporter) error {
	if liveWorker <= 0 {
		liveWorker = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan Batch, liveWorker)

	if reporter != nil {
		g.Go(func() error {
			reporter.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		if reporter != nil {
			defer reporter.Close()
		}
		workers, wctx := errgroup.WithContext(ctx)
		workers.Go(func() error {
			return producer.Run(wctx, jobs)
		})
		for i := 0; i < liveWorker; i++ {
			consumer := &Consumer{Clusters: producer.Clusters, Backup: backup, LockDir: lockDir, Reporter: reporter}
			workers.Go(func() error {
				return consumer.Run(wctx, jobs)
			})
		}
		return workers.Wait()
	})

	return g.Wait()
}
