package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/errors"
	"github.com/lacoski/backurne/pkg/lock"
	"github.com/lacoski/backurne/pkg/status"
)

// Consumer implements C6: it drains batches of TransferJobs from a shared
// channel, transferring each job's snapshot from the live side to the
// backup side under the destination image's lock.
//
// Clusters carries every live cluster's driver so a single consumer pool
// can serve batches produced against any of them; the matching driver for a
// job is selected by its image id's pool prefix, the same convention
// pkg/cluster's adapters use to build image ids.
type Consumer struct {
	Clusters []ClusterBinding
	Backup   driver.Driver
	LockDir  string
	Reporter *status.Reporter
}

func (c *Consumer) liveFor(imageID string) (driver.Driver, error) {
	for _, cb := range c.Clusters {
		if cb.Pool != "" && strings.HasPrefix(imageID, cb.Pool+"/") {
			return cb.Live, nil
		}
	}
	if len(c.Clusters) == 1 {
		return c.Clusters[0].Live, nil
	}
	return nil, errors.NewWithContext(errors.ErrCodeFatal, "pipeline: cannot resolve live driver for image", map[string]any{"image": imageID})
}

// Run ranges over jobs until the channel is closed, processing one batch at
// a time. It never returns an error for a single batch's failure; those are
// logged and the batch is skipped, matching the original's "any unexpected
// failure is logged and the image is skipped" rule (spec.md §4.7, applied
// analogously to transfer).
func (c *Consumer) Run(ctx context.Context, jobs <-chan Batch) error {
	for {
		select {
		case batch, ok := <-jobs:
			if !ok {
				return nil
			}
			c.processBatch(ctx, batch)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Consumer) processBatch(ctx context.Context, batch Batch) {
	if len(batch.Jobs) == 0 {
		return
	}

	img, err := lock.Acquire(c.LockDir, batch.Jobs[0].DestinationImageID)
	if err != nil {
		if c.Reporter != nil {
			if contended(err) {
				c.Reporter.LockContended()
			}
			for range batch.Jobs {
				c.Reporter.DoneItem()
			}
		}
		slog.Debug("batch lock contended, skipping", "destination", batch.Jobs[0].DestinationImageID)
		return
	}
	defer img.Release()

	for _, job := range batch.Jobs {
		if err := c.transfer(ctx, job); err != nil {
			slog.Error("transfer failed", "image", job.ImageID, "target", job.TargetSnap, "error", err)
		}
		if c.Reporter != nil {
			c.Reporter.DoneItem()
		}
	}
}

func (c *Consumer) transfer(ctx context.Context, job TransferJob) error {
	var from string
	if job.AnchorSnap != nil {
		from = *job.AnchorSnap
	}

	live, err := c.liveFor(job.ImageID)
	if err != nil {
		return err
	}

	stream, err := live.ExportDiff(ctx, job.ImageID, from, job.TargetSnap)
	if err != nil {
		return err
	}
	defer stream.Close()

	return c.Backup.ImportDiff(ctx, job.DestinationImageID, stream)
}
